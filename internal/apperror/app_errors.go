package apperror

import "errors"

var (
	ErrInvalidMove  = errors.New("invalid move")
	ErrInvalidMark  = errors.New("invalid player mark")
	ErrGameFinished = errors.New("game is already finished")
	ErrNotYourTurn  = errors.New("it's not your turn")
	ErrGameNotFound = errors.New("game not found")
)
