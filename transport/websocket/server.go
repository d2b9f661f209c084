package websocket

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

const shutdownTimeout = 5 * time.Second

type gameUseCase interface {
	NewGame(ctx context.Context, humanMark entity.Cell) (*entity.Game, error)
	GetGame(ctx context.Context, id string) (*entity.Game, error)
	MakeTurn(ctx context.Context, id string, row, col int) (*entity.Game, error)
	AbandonGame(ctx context.Context, id string) error
}

type Server struct {
	logger      *slog.Logger
	gameUseCase gameUseCase

	handlers map[string]func(ctx context.Context, message *Message, writer *bufio.ReadWriter) error
}

func New(logger *slog.Logger, gameUseCase gameUseCase) *Server {
	server := &Server{
		logger:      logger.With("component", "websocket"),
		gameUseCase: gameUseCase,

		handlers: make(map[string]func(context.Context, *Message, *bufio.ReadWriter) error),
	}

	server.handlers[actionGameNew] = server.handleNewGame
	server.handlers[actionGameGet] = server.handleGetGame
	server.handlers[actionGameTurn] = server.handleGameTurn
	server.handlers[actionGameLeave] = server.handleGameLeave

	return server
}

// Handler serves the upgrade endpoint. Connections are closed once ctx is done.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// upgradeToWebSocket - upgrades the connection to WebSocket.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeConnection")

	if !strings.EqualFold(req.Header.Get("Upgrade"), "websocket") {
		http.Error(writer, "not a websocket upgrade", http.StatusBadRequest)
		return
	}

	key := req.Header.Get("Sec-WebSocket-Key")
	if key == "" {
		http.Error(writer, "missing Sec-WebSocket-Key", http.StatusBadRequest)
		return
	}

	hijacker, ok := writer.(http.Hijacker)
	if !ok {
		log.Error("web server does not support hijacking", "error", http.StatusText(http.StatusInternalServerError))
		http.Error(writer, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	conn, bufrw, err := hijacker.Hijack()
	if err != nil {
		log.Error("failed to hijack connection", "error", err)
		return
	}

	defer conn.Close()

	// deadlines set by the http server survive the hijack
	if err = conn.SetDeadline(time.Time{}); err != nil {
		log.Error("failed to reset deadline", "error", err)
		return
	}

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	handshake := "HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Accept: " + GenerateAcceptKey(key) + "\r\n\r\n"

	if _, err = bufrw.WriteString(handshake); err != nil {
		log.Error("failed to write handshake", "error", err)
		return
	}

	if err = bufrw.Flush(); err != nil {
		log.Error("failed to flush handshake", "error", err)
		return
	}

	log.Info("WebSocket connection established")

	if err = that.handleMessages(ctx, bufrw); err != nil && ctx.Err() == nil {
		log.Error("error handling messages", "error", err)
	}

	log.Info("WebSocket connection closed")
}

// handleMessages - processes messages from the client until it closes the connection.
func (that *Server) handleMessages(ctx context.Context, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleMessages")

	for {
		request, err := readClientFrame(bufrw)
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return err
		}

		switch request.opCode {
		case opClose:
			return writeFrame(bufrw.Writer, frame{isFin: true, opCode: opClose, payload: request.payload})
		case opPing:
			if err = writeFrame(bufrw.Writer, frame{isFin: true, opCode: opPong, payload: request.payload}); err != nil {
				return err
			}

			continue
		case opPong:
			continue
		}

		if !request.isFin || request.opCode == opContinuation {
			return ErrFragmentedFrame
		}

		if request.opCode != opText {
			return fmt.Errorf("%w: opcode %#x", ErrUnsupportedFrame, request.opCode)
		}

		var message Message
		if err = json.Unmarshal(request.payload, &message); err != nil {
			log.Warn("failed to unmarshal message", "error", err)

			if err = that.sendErrorResponse(bufrw, actionError, "malformed message"); err != nil {
				return err
			}

			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)

			if err = that.sendErrorResponse(bufrw, message.Action, "unknown action"); err != nil {
				return err
			}

			continue
		}

		if err = handler(ctx, &message, bufrw); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}
