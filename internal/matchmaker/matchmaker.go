package matchmaker

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
	"github.com/rocketscienceinc/connectfour-backend/internal/game"
)

const registryTimeout = 5 * time.Second

type sessionRepo interface {
	CreateOrUpdate(ctx context.Context, record *entity.SessionRecord) error
	DeleteByID(ctx context.Context, id string) error
}

// Matchmaker pairs connected peers two by two and runs a Session for each pair.
// The pending slot is only touched by the goroutine executing Run.
type Matchmaker struct {
	logger   *slog.Logger
	sessions sessionRepo

	pending game.Peer
	running sync.WaitGroup
	active  atomic.Int64

	// firstMover picks who opens a session; it runs on the session goroutine.
	firstMover func() entity.Turn
}

func New(logger *slog.Logger, sessions sessionRepo) *Matchmaker {
	return &Matchmaker{
		logger:   logger.With("component", "matchmaker"),
		sessions: sessions,

		firstMover: func() entity.Turn {
			return game.RandomTurn(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
		},
	}
}

// Run consumes peers until ctx is cancelled or the channel is closed.
// A peer still waiting for an opponent at that point is closed. Running sessions are left alone.
func (that *Matchmaker) Run(ctx context.Context, peers <-chan game.Peer) {
	log := that.logger.With("method", "Run")

	defer that.dropPending()

	for {
		select {
		case <-ctx.Done():
			log.Info("matchmaker stopped", "reason", ctx.Err())
			return
		case peer, ok := <-peers:
			if !ok {
				log.Info("peer source closed")
				return
			}

			that.accept(peer)
		}
	}
}

// Wait blocks until every launched session has finished.
func (that *Matchmaker) Wait() {
	that.running.Wait()
}

// Active returns the number of sessions still being played.
func (that *Matchmaker) Active() int {
	return int(that.active.Load())
}

func (that *Matchmaker) accept(peer game.Peer) {
	log := that.logger.With("method", "accept")

	if that.pending == nil {
		that.pending = peer
		log.Info("player waiting for an opponent", "player", peer.Addr())
		return
	}

	opponent := that.pending
	that.pending = nil

	that.launch(opponent, peer)
}

func (that *Matchmaker) launch(a, b game.Peer) {
	id := uuid.NewString()

	that.running.Add(1)
	that.active.Add(1)
	go func() {
		defer that.running.Done()
		defer that.active.Add(-1)

		session := game.NewSession(that.logger, id, a, b, that.firstMover())

		// the registry must not hold back the role messages,
		// but the record is only removed once it was written
		registered := make(chan struct{})
		go func() {
			defer close(registered)
			that.register(session)
		}()

		session.Run()

		<-registered
		that.unregister(session)
	}()
}

func (that *Matchmaker) register(session *game.Session) {
	log := that.logger.With("method", "register", "sessionID", session.ID())

	ctx, cancel := context.WithTimeout(context.Background(), registryTimeout)
	defer cancel()

	record := &entity.SessionRecord{
		ID:         session.ID(),
		Players:    session.Players(),
		FirstMover: session.FirstMover().String(),
		Status:     entity.StatusOngoing,
		StartedAt:  time.Now().UTC(),
	}

	if err := that.sessions.CreateOrUpdate(ctx, record); err != nil {
		log.Error("failed to register session", "error", err)
	}
}

func (that *Matchmaker) unregister(session *game.Session) {
	log := that.logger.With("method", "unregister", "sessionID", session.ID())

	ctx, cancel := context.WithTimeout(context.Background(), registryTimeout)
	defer cancel()

	if err := that.sessions.DeleteByID(ctx, session.ID()); err != nil {
		log.Error("failed to unregister session", "error", err)
	}
}

func (that *Matchmaker) dropPending() {
	if that.pending == nil {
		return
	}

	if err := that.pending.Close(); err != nil {
		that.logger.Warn("failed to close pending player", "player", that.pending.Addr(), "error", err)
	}
	that.pending = nil
}
