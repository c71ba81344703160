package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// NewRouter serves the REST endpoints and mounts the game socket on /ws and /.
func NewRouter(logger *slog.Logger, sessions sessionRepo, socket http.Handler) *mux.Router {
	handlers := &sessionHandlers{
		logger:   logger.With("component", "rest"),
		sessions: sessions,
	}

	router := mux.NewRouter()
	router.HandleFunc("/ping", pingHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/sessions", handlers.listSessions).Methods(http.MethodGet)
	router.HandleFunc("/api/sessions/{id}", handlers.getSession).Methods(http.MethodGet)

	router.Handle("/ws", socket)
	router.Handle("/", socket)

	return router
}

// Start serves handler on addr until ctx is cancelled.
func Start(ctx context.Context, addr string, handler http.Handler) error {
	// no read/write timeouts: they would also apply to hijacked game connections
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server stopped: %w", err)
	}

	return nil
}
