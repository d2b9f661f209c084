package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/observability"
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
}

func New(logger *slog.Logger, gameUseCase gameUseCase) *Server {
	return &Server{
		logger:      logger.With("component", "rest"),
		gameUseCase: gameUseCase,
	}
}

// Handler returns the routes wrapped with request metrics.
func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", pingHandler)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /games", that.handleNewGame)
	mux.HandleFunc("GET /games/{id}", that.handleGetGame)
	mux.HandleFunc("POST /games/{id}/moves", that.handleMakeTurn)
	mux.HandleFunc("DELETE /games/{id}", that.handleAbandonGame)

	return observability.MetricsMiddleware(mux)
}

// Start - serves HTTP until ctx is cancelled, then shuts down gracefully.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
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
