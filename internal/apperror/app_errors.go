package apperror

import "errors"

var (
	ErrUnexpectedInput = errors.New("move is not a column number")
	ErrOutOfBounds     = errors.New("column is out of bounds")
	ErrColumnFull      = errors.New("column is full")

	ErrPeerLeft           = errors.New("peer left the session")
	ErrSessionNotFound    = errors.New("session not found")
	ErrMissingSubprotocol = errors.New("client does not support the game sub-protocol")
)
