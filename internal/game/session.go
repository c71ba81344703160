package game

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
)

// Peer is a connected client able to exchange text messages.
type Peer interface {
	Send(text string) error
	// Receive blocks until the next message arrives or the channel fails.
	Receive() (string, error)
	Addr() string
	Close() error
}

// pair holds the two peers of a session, addressed by turn.
type pair struct {
	a, b Peer
}

func (that *pair) at(turn entity.Turn) Peer {
	if turn == entity.TurnA {
		return that.a
	}
	return that.b
}

// RandomTurn picks the first mover from the given source.
func RandomTurn(r *rand.Rand) entity.Turn {
	if r.IntN(2) == 0 {
		return entity.TurnA
	}
	return entity.TurnB
}

// Session runs one match between two peers until it is won, drawn or abandoned.
// A Session is driven by a single goroutine and needs no locking.
type Session struct {
	logger *slog.Logger

	id    string
	board entity.Board
	turn  entity.Turn
	first entity.Turn
	peers pair

	closeOnce sync.Once
}

func NewSession(logger *slog.Logger, id string, a, b Peer, first entity.Turn) *Session {
	return &Session{
		logger: logger.With("component", "session", "sessionID", id),

		id:    id,
		board: entity.NewBoard(),
		turn:  first,
		first: first,
		peers: pair{a: a, b: b},
	}
}

func (that *Session) ID() string {
	return that.id
}

func (that *Session) Players() [2]string {
	return [2]string{that.peers.a.Addr(), that.peers.b.Addr()}
}

func (that *Session) FirstMover() entity.Turn {
	return that.first
}

// Turn returns the player whose move is awaited, or the frozen one once the session ended.
func (that *Session) Turn() entity.Turn {
	return that.turn
}

func (that *Session) Board() entity.Board {
	return that.board
}

// Run plays the session to completion and releases both peers.
func (that *Session) Run() entity.Outcome {
	log := that.logger.With("method", "Run")
	defer that.release()

	log.Info("game started", "playerA", that.peers.a.Addr(), "playerB", that.peers.b.Addr(), "first", that.first)

	that.send(that.first, string(entity.MsgFirst))
	that.send(that.first.Flipped(), string(entity.MsgSecond))

	for {
		outcome, done := that.step()
		if done {
			log.Info("game ended", "outcome", outcome.String(), "playerA", that.peers.a.Addr(), "playerB", that.peers.b.Addr())
			return outcome
		}
	}
}

// step handles one message from the current player.
func (that *Session) step() (entity.Outcome, bool) {
	log := that.logger.With("method", "step")

	current := that.turn
	other := current.Flipped()

	text, err := that.peers.at(current).Receive()
	if err != nil {
		log.Error("player disconnected", "player", that.peers.at(current).Addr(), "error", fmt.Errorf("%w: %w", apperror.ErrPeerLeft, err))
		that.send(other, string(entity.MsgOtherLeft))

		return entity.Abandoned(current), true
	}

	column, err := that.move(text)
	if err != nil {
		log.Warn("move rejected", "player", that.peers.at(current).Addr(), "input", text, "error", err)
		that.send(current, string(entity.Notice(err)))

		return entity.Outcome{}, false
	}

	log.Debug("move accepted", "player", that.peers.at(current).Addr(), "column", column)

	switch {
	case that.board.IsWin(column, current):
		that.send(current, string(entity.MsgWin))
		that.send(other, string(entity.MsgLose))
		that.send(other, entity.ColumnMessage(column))
		that.turn.Flip()

		return entity.WinBy(current), true
	case that.board.IsFull():
		that.send(current, string(entity.MsgDraw))
		that.send(other, string(entity.MsgDraw))

		return entity.Draw(), true
	default:
		that.send(current, string(entity.MsgWait))
		that.send(other, string(entity.MsgGo))
		that.send(other, entity.ColumnMessage(column))
		that.turn.Flip()

		return entity.Outcome{}, false
	}
}

// move validates text and drops the disc of the current player.
func (that *Session) move(text string) (int, error) {
	column, err := entity.ParseMove(text)
	if err != nil {
		return 0, err
	}

	if !that.board.Insert(column, that.turn) {
		return 0, fmt.Errorf("%w: column %d", apperror.ErrColumnFull, column)
	}

	return column, nil
}

// send delivers text to a player. Failures are logged and ignored, the recipient may be gone.
func (that *Session) send(turn entity.Turn, text string) {
	peer := that.peers.at(turn)

	that.logger.Debug("sending message", "player", peer.Addr(), "message", text)

	if err := peer.Send(text); err != nil {
		that.logger.Warn("failed to send message", "player", peer.Addr(), "message", text, "error", err)
	}
}

func (that *Session) release() {
	that.closeOnce.Do(func() {
		for _, peer := range []Peer{that.peers.a, that.peers.b} {
			if err := peer.Close(); err != nil {
				that.logger.Warn("failed to close peer", "player", peer.Addr(), "error", err)
			}
		}
	})
}
