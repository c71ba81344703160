package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/connectfour-backend/internal/config"
	"github.com/rocketscienceinc/connectfour-backend/internal/game"
	"github.com/rocketscienceinc/connectfour-backend/internal/matchmaker"
	"github.com/rocketscienceinc/connectfour-backend/internal/repository"
	"github.com/rocketscienceinc/connectfour-backend/internal/repository/storage"
	"github.com/rocketscienceinc/connectfour-backend/transport/rest"
	"github.com/rocketscienceinc/connectfour-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	sessionRepo := repository.NewSessionRepository(redisStorage.Connection, conf.Redis.SessionTTL)

	// run matchmaker
	peers := make(chan game.Peer)
	mm := matchmaker.New(logger, sessionRepo)
	mmDone := make(chan struct{})
	go func() {
		defer close(mmDone)
		mm.Run(ctx, peers)
	}()

	wsServer := websocket.New(logger, peers, conf.Subprotocol, conf.ReadTimeout)
	router := rest.NewRouter(logger, sessionRepo, wsServer.Handler(ctx))

	log.Info("Starting server", "addr", conf.GetListenAddr(), "subprotocol", conf.Subprotocol)
	err = rest.Start(ctx, conf.GetListenAddr(), router)

	cancel()
	<-mmDone

	// sessions are not cancelled, they release their players and registry records themselves
	if active := mm.Active(); active > 0 {
		log.Info("Waiting for running sessions to finish", "sessions", active)
	}
	mm.Wait()

	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("Application context canceled, shutting down")

	return nil
}
