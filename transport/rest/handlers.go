package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/transport/response"
)

const maxBodySize = 1 << 10

type newGameRequest struct {
	Mark entity.Cell `json:"mark"`
}

type turnRequest struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

func (that *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleNewGame")

	var req newGameRequest
	if err := decodeBody(r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	game, err := that.gameUseCase.NewGame(r.Context(), req.Mark)
	if err != nil {
		log.Error("failed to create game", "error", err)
		that.writeUseCaseError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, response.NewGame(game))
}

func (that *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.gameUseCase.GetGame(r.Context(), r.PathValue("id"))
	if err != nil {
		that.writeUseCaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response.NewGame(game))
}

func (that *Server) handleMakeTurn(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	log := that.logger.With("method", "handleMakeTurn", "gameID", id)

	var req turnRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Row == nil || req.Col == nil {
		writeError(w, http.StatusBadRequest, "row and col are required")
		return
	}

	game, err := that.gameUseCase.MakeTurn(r.Context(), id, *req.Row, *req.Col)
	if err != nil {
		log.Warn("turn rejected", "error", err)
		that.writeUseCaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response.NewGame(game))
}

func (that *Server) handleAbandonGame(w http.ResponseWriter, r *http.Request) {
	if err := that.gameUseCase.AbandonGame(r.Context(), r.PathValue("id")); err != nil {
		that.writeUseCaseError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeUseCaseError maps domain errors to status codes; anything unknown is a 500.
func (that *Server) writeUseCaseError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperror.ErrGameNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, apperror.ErrGameFinished), errors.Is(err, apperror.ErrNotYourTurn):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, apperror.ErrInvalidMove):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, apperror.ErrInvalidMark):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		that.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

// decodeBody reads a JSON body into dst. allowEmpty accepts a request without a body.
func decodeBody(r *http.Request, dst any, allowEmpty bool) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	decoder.DisallowUnknownFields()

	err := decoder.Decode(dst)
	if errors.Is(err, io.EOF) && allowEmpty {
		return nil
	}

	if err != nil {
		return errors.New("malformed request body")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, response.Error{Error: message})
}
