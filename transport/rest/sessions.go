package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
)

type sessionRepo interface {
	GetByID(ctx context.Context, id string) (*entity.SessionRecord, error)
	List(ctx context.Context) ([]*entity.SessionRecord, error)
}

type sessionHandlers struct {
	logger   *slog.Logger
	sessions sessionRepo
}

func (that *sessionHandlers) listSessions(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "listSessions")

	records, err := that.sessions.List(r.Context())
	if err != nil {
		log.Error("failed to list sessions", "error", err)
		http.Error(w, "Failed to list sessions", http.StatusInternalServerError)
		return
	}

	that.writeJSON(w, records)
}

func (that *sessionHandlers) getSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	log := that.logger.With("method", "getSession", "sessionID", id)

	record, err := that.sessions.GetByID(r.Context(), id)
	if errors.Is(err, apperror.ErrSessionNotFound) {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	if err != nil {
		log.Error("failed to get session", "error", err)
		http.Error(w, "Failed to get session", http.StatusInternalServerError)
		return
	}

	that.writeJSON(w, record)
}

func (that *sessionHandlers) writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}
