package entity

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
)

// Message is a single token of the server to client vocabulary.
type Message string

const (
	MsgFirst       Message = "First"
	MsgSecond      Message = "Second"
	MsgGo          Message = "Go"
	MsgWait        Message = "Wait"
	MsgWin         Message = "Win"
	MsgLose        Message = "Lose"
	MsgDraw        Message = "Draw"
	MsgColumnFull  Message = "ColumnFull"
	MsgOutOfBounds Message = "OutOfBounds"
	MsgUnexpected  Message = "Unexpected"
	MsgOtherLeft   Message = "OtherLeft"
)

// ColumnMessage renders a column index the way it travels on the wire.
func ColumnMessage(column int) string {
	return strconv.Itoa(column)
}

// ParseMove validates a move sent by a client.
// It returns apperror.ErrUnexpectedInput for anything that is not a non-negative integer
// and apperror.ErrOutOfBounds for a column past the right edge of the board.
func ParseMove(text string) (int, error) {
	value, err := strconv.ParseUint(text, 10, 0)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", apperror.ErrUnexpectedInput, text)
	}

	if value >= Columns {
		return 0, fmt.Errorf("%w: column %d", apperror.ErrOutOfBounds, value)
	}

	return int(value), nil
}

// Notice maps a rejected move to the token sent back to its author.
func Notice(err error) Message {
	switch {
	case errors.Is(err, apperror.ErrOutOfBounds):
		return MsgOutOfBounds
	case errors.Is(err, apperror.ErrColumnFull):
		return MsgColumnFull
	default:
		return MsgUnexpected
	}
}
