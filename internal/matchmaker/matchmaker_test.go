package matchmaker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
	"github.com/rocketscienceinc/connectfour-backend/internal/game"
)

var errRedisDown = errors.New("redis down")

type chanPeer struct {
	addr  string
	inbox chan string

	mu     sync.Mutex
	sent   []string
	closed int
}

func newChanPeer(addr string, moves ...string) *chanPeer {
	inbox := make(chan string, len(moves))
	for _, move := range moves {
		inbox <- move
	}

	return &chanPeer{addr: addr, inbox: inbox}
}

func (that *chanPeer) Send(text string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.sent = append(that.sent, text)
	return nil
}

func (that *chanPeer) Receive() (string, error) {
	move, ok := <-that.inbox
	if !ok {
		return "", io.EOF
	}
	return move, nil
}

func (that *chanPeer) Addr() string {
	return that.addr
}

func (that *chanPeer) Close() error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.closed++
	return nil
}

func (that *chanPeer) Sent() []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return append([]string(nil), that.sent...)
}

func (that *chanPeer) Closed() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.closed
}

type memorySessions struct {
	mu      sync.Mutex
	created []*entity.SessionRecord
	deleted []string
	err     error

	// gate holds back CreateOrUpdate until it is closed
	gate chan struct{}
}

func (that *memorySessions) CreateOrUpdate(_ context.Context, record *entity.SessionRecord) error {
	if that.gate != nil {
		<-that.gate
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	that.created = append(that.created, record)
	return that.err
}

func (that *memorySessions) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.deleted = append(that.deleted, id)
	return that.err
}

func (that *memorySessions) Created() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.created)
}

func (that *memorySessions) Deleted() []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return append([]string(nil), that.deleted...)
}

func newTestMatchmaker(sessions sessionRepo) *Matchmaker {
	matchmaker := New(slog.New(slog.NewTextHandler(io.Discard, nil)), sessions)
	matchmaker.firstMover = func() entity.Turn { return entity.TurnA }

	return matchmaker
}

func TestMatchmaker_Run(t *testing.T) {
	t.Run("Pairs two peers into a session", func(t *testing.T) {
		// Given: two players who will play a vertical win for the first one
		sessions := &memorySessions{}
		matchmaker := newTestMatchmaker(sessions)
		a := newChanPeer("10.0.0.1:1000", "0", "0", "0", "0")
		b := newChanPeer("10.0.0.2:2000", "1", "1", "1")

		peers := make(chan game.Peer, 2)
		peers <- a
		peers <- b
		close(peers)

		// When: the matchmaker consumes them and the session finishes
		matchmaker.Run(context.Background(), peers)
		matchmaker.Wait()

		// Then: the pending player is assigned first and the game reaches a result
		assert.Equal(t, "First", a.Sent()[0])
		assert.Equal(t, "Second", b.Sent()[0])
		assert.Equal(t, "Win", a.Sent()[len(a.Sent())-1])
		assert.Equal(t, 1, a.Closed())
		assert.Equal(t, 1, b.Closed())

		// Then: the session was registered and removed from the live registry
		require.Len(t, sessions.created, 1)
		record := sessions.created[0]
		assert.Equal(t, [2]string{"10.0.0.1:1000", "10.0.0.2:2000"}, record.Players)
		assert.Equal(t, "A", record.FirstMover)
		assert.Equal(t, entity.StatusOngoing, record.Status)
		assert.Equal(t, []string{record.ID}, sessions.deleted)
	})

	t.Run("Lonely peer is released on shutdown", func(t *testing.T) {
		// Given: a single connected player
		matchmaker := newTestMatchmaker(&memorySessions{})
		a := newChanPeer("a")

		peers := make(chan game.Peer, 1)
		peers <- a

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			matchmaker.Run(ctx, peers)
			close(done)
		}()

		require.Eventually(t, func() bool { return len(peers) == 0 }, time.Second, 5*time.Millisecond)

		// When: the application shuts down
		cancel()
		<-done

		// Then: the waiting peer is closed and never got a role
		assert.Equal(t, 1, a.Closed())
		assert.Empty(t, a.Sent())
	})

	t.Run("Odd peer waits for the next connection", func(t *testing.T) {
		// Given: three players, the first two leave right away
		matchmaker := newTestMatchmaker(&memorySessions{})
		a, b, c := newChanPeer("a"), newChanPeer("b"), newChanPeer("c")
		close(a.inbox)
		close(b.inbox)

		peers := make(chan game.Peer, 3)
		peers <- a
		peers <- b
		peers <- c
		close(peers)

		// When: the matchmaker consumes them
		matchmaker.Run(context.Background(), peers)
		matchmaker.Wait()

		// Then: a and b were paired and c stayed pending until the source closed
		assert.Equal(t, []string{"Second", "OtherLeft"}, b.Sent())
		assert.Empty(t, c.Sent())
		assert.Equal(t, 1, c.Closed())
	})

	t.Run("Does not block on running sessions", func(t *testing.T) {
		// Given: four players who never send a move
		matchmaker := newTestMatchmaker(&memorySessions{})
		players := []*chanPeer{newChanPeer("a"), newChanPeer("b"), newChanPeer("c"), newChanPeer("d")}

		peers := make(chan game.Peer)
		done := make(chan struct{})
		go func() {
			matchmaker.Run(context.Background(), peers)
			close(done)
		}()

		// When: they connect one after another
		for _, player := range players {
			peers <- player
		}

		// Then: both sessions are running at the same time
		for _, player := range players {
			require.Eventually(t, func() bool { return len(player.Sent()) == 1 }, time.Second, 5*time.Millisecond)
		}

		close(peers)
		<-done

		for _, player := range players {
			close(player.inbox)
		}
		matchmaker.Wait()

		for _, player := range players {
			assert.Equal(t, 1, player.Closed())
		}
	})

	t.Run("Registry failures do not affect the game", func(t *testing.T) {
		// Given: a registry that always fails
		matchmaker := newTestMatchmaker(&memorySessions{err: errRedisDown})
		a := newChanPeer("a", "0", "0", "0", "0")
		b := newChanPeer("b", "1", "1", "1")

		peers := make(chan game.Peer, 2)
		peers <- a
		peers <- b
		close(peers)

		// When: the session runs
		matchmaker.Run(context.Background(), peers)
		matchmaker.Wait()

		// Then: the result is still delivered
		assert.Equal(t, "Lose", b.Sent()[len(b.Sent())-2])
	})

	t.Run("Shutdown leaves running sessions to finish", func(t *testing.T) {
		// Given: a session in progress
		sessions := &memorySessions{}
		matchmaker := newTestMatchmaker(sessions)
		a, b := newChanPeer("a"), newChanPeer("b")

		peers := make(chan game.Peer, 2)
		peers <- a
		peers <- b

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			matchmaker.Run(ctx, peers)
			close(done)
		}()

		require.Eventually(t, func() bool { return len(b.Sent()) == 1 }, time.Second, 5*time.Millisecond)

		// When: the matchmaker is stopped
		cancel()
		<-done

		// Then: the session keeps running and Wait blocks on it
		assert.Equal(t, 1, matchmaker.Active())
		assert.Equal(t, 0, a.Closed())

		waited := make(chan struct{})
		go func() {
			matchmaker.Wait()
			close(waited)
		}()

		select {
		case <-waited:
			t.Fatal("Wait returned while a session was running")
		case <-time.After(50 * time.Millisecond):
		}

		// When: the current player leaves
		close(a.inbox)
		<-waited

		// Then: both players were released and the record removed
		assert.Equal(t, 0, matchmaker.Active())
		assert.Equal(t, 1, a.Closed())
		assert.Equal(t, 1, b.Closed())
		assert.Equal(t, []string{"Second", "OtherLeft"}, b.Sent())
		require.Equal(t, 1, sessions.Created())
		assert.Equal(t, []string{sessions.created[0].ID}, sessions.Deleted())
	})

	t.Run("Slow registry does not delay the game", func(t *testing.T) {
		// Given: a registry that blocks until released
		sessions := &memorySessions{gate: make(chan struct{})}
		matchmaker := newTestMatchmaker(sessions)
		a, b := newChanPeer("a"), newChanPeer("b")

		peers := make(chan game.Peer, 2)
		peers <- a
		peers <- b
		close(peers)

		// When: the pair is launched
		matchmaker.Run(context.Background(), peers)

		// Then: roles are sent without waiting for the registry
		require.Eventually(t, func() bool { return len(a.Sent()) == 1 && len(b.Sent()) == 1 }, time.Second, 5*time.Millisecond)
		assert.Equal(t, "First", a.Sent()[0])
		assert.Equal(t, "Second", b.Sent()[0])

		// When: the game ends while the record is still being written
		close(a.inbox)
		require.Eventually(t, func() bool { return a.Closed() == 1 }, time.Second, 5*time.Millisecond)

		// Then: the record is not removed before it was written
		assert.Empty(t, sessions.Deleted())

		close(sessions.gate)
		matchmaker.Wait()

		require.Equal(t, 1, sessions.Created())
		assert.Equal(t, []string{sessions.created[0].ID}, sessions.Deleted())
	})
}
