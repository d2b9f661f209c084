package websocket

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/transport/response"
)

func (that *Server) handleNewGame(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleNewGame")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return that.sendErrorResponse(bufrw, msg.Action, err.Error())
	}

	game, err := that.gameUseCase.NewGame(ctx, payloadReq.Mark)
	if err != nil {
		log.Error("failed to create game", "error", err)
		return that.sendErrorResponse(bufrw, msg.Action, clientError(err))
	}

	log.Info("game created", "gameID", game.ID)

	return that.sendMessage(bufrw, msg.Action, ResponsePayload{Game: response.NewGame(game)})
}

func (that *Server) handleGetGame(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		return that.sendErrorResponse(bufrw, msg.Action, err.Error())
	}

	if payloadReq.GameID == "" {
		return that.sendErrorResponse(bufrw, msg.Action, "game_id is required")
	}

	game, err := that.gameUseCase.GetGame(ctx, payloadReq.GameID)
	if err != nil {
		return that.sendErrorResponse(bufrw, msg.Action, clientError(err))
	}

	return that.sendMessage(bufrw, msg.Action, ResponsePayload{Game: response.NewGame(game)})
}

func (that *Server) handleGameTurn(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleGameTurn")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return that.sendErrorResponse(bufrw, msg.Action, err.Error())
	}

	if payloadReq.GameID == "" || payloadReq.Row == nil || payloadReq.Col == nil {
		return that.sendErrorResponse(bufrw, msg.Action, "game_id, row and col are required")
	}

	log = log.With("gameID", payloadReq.GameID)

	game, err := that.gameUseCase.MakeTurn(ctx, payloadReq.GameID, *payloadReq.Row, *payloadReq.Col)
	if err != nil {
		log.Warn("turn rejected", "error", err)
		return that.sendErrorResponse(bufrw, msg.Action, clientError(err))
	}

	if game.IsFinished() {
		log.Info("game finished", "result", game.Result)
	}

	return that.sendMessage(bufrw, msg.Action, ResponsePayload{Game: response.NewGame(game)})
}

func (that *Server) handleGameLeave(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	log := that.logger.With("method", "handleGameLeave")

	payloadReq, err := decodePayload(msg)
	if err != nil {
		return that.sendErrorResponse(bufrw, msg.Action, err.Error())
	}

	if payloadReq.GameID == "" {
		return that.sendErrorResponse(bufrw, msg.Action, "game_id is required")
	}

	if err = that.gameUseCase.AbandonGame(ctx, payloadReq.GameID); err != nil {
		log.Warn("failed to leave game", "gameID", payloadReq.GameID, "error", err)
		return that.sendErrorResponse(bufrw, msg.Action, clientError(err))
	}

	log.Info("player left", "gameID", payloadReq.GameID)

	return that.sendMessage(bufrw, msg.Action, ResponsePayload{GameID: payloadReq.GameID})
}

func decodePayload(msg *Message) (RequestPayload, error) {
	var payloadReq RequestPayload
	if len(msg.Payload) == 0 {
		return payloadReq, nil
	}

	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return RequestPayload{}, errors.New("malformed payload")
	}

	return payloadReq, nil
}

// clientError hides storage and other internal failures from the client.
func clientError(err error) string {
	for _, known := range []error{
		apperror.ErrInvalidMove,
		apperror.ErrInvalidMark,
		apperror.ErrGameFinished,
		apperror.ErrNotYourTurn,
		apperror.ErrGameNotFound,
	} {
		if errors.Is(err, known) {
			return err.Error()
		}
	}

	return "internal error"
}

func (that *Server) sendMessage(bufrw *bufio.ReadWriter, action string, payload ResponsePayload) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	responseBytes, err := json.Marshal(Message{Action: action, Payload: payloadBytes})
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	if err = writeFrame(bufrw.Writer, frame{isFin: true, opCode: opText, payload: responseBytes}); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}

	return nil
}

func (that *Server) sendErrorResponse(bufrw *bufio.ReadWriter, action, errorMsg string) error {
	if err := that.sendMessage(bufrw, action, ResponsePayload{Error: errorMsg}); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}

	return nil
}
