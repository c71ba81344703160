package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
	"github.com/rocketscienceinc/connectfour-backend/internal/game"
)

const (
	bufferSize       = 1024
	handshakeTimeout = 10 * time.Second
)

// Server upgrades incoming requests to websocket peers and hands them to the matchmaker.
type Server struct {
	logger *slog.Logger
	peers  chan<- game.Peer

	subprotocol string
	readTimeout time.Duration
	upgrader    websocket.Upgrader
}

func New(logger *slog.Logger, peers chan<- game.Peer, subprotocol string, readTimeout time.Duration) *Server {
	return &Server{
		logger: logger.With("component", "websocket"),
		peers:  peers,

		subprotocol: subprotocol,
		readTimeout: readTimeout,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: handshakeTimeout,
			ReadBufferSize:   bufferSize,
			WriteBufferSize:  bufferSize,
			Subprotocols:     []string{subprotocol},
			// game clients are served from anywhere
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Handler accepts connections until ctx is cancelled.
func (that *Server) Handler(ctx context.Context) http.HandlerFunc {
	return func(writer http.ResponseWriter, req *http.Request) {
		that.upgradeToWebSocket(ctx, writer, req)
	}
}

func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket", "remote", req.RemoteAddr)

	if !slices.Contains(websocket.Subprotocols(req), that.subprotocol) {
		log.Warn("client rejected", "error", apperror.ErrMissingSubprotocol, "offered", websocket.Subprotocols(req))
		http.Error(writer, apperror.ErrMissingSubprotocol.Error(), http.StatusBadRequest)
		return
	}

	// Upgrade replies to the client itself on failure
	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	peer := NewPeer(conn, that.readTimeout)
	log.Info("client connected", "player", peer.Addr())

	select {
	case that.peers <- peer:
	case <-ctx.Done():
		log.Info("server is shutting down, dropping client", "player", peer.Addr())
		if err = peer.Close(); err != nil {
			log.Warn("failed to close peer", "error", err)
		}
	}
}
