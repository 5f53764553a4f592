package notify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/earnstack/backend/internal/middleware"
	"github.com/earnstack/backend/internal/models"
)

// Reader is what the handler needs from the repository.
type Reader interface {
	ListFor(ctx context.Context, email string) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
}

type Handler struct {
	repo Reader
	log  *slog.Logger
}

func NewHandler(repo Reader, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{repo: repo, log: log}
}

// List handles GET /notifications?email=. The email defaults to the
// authenticated identity when the query parameter is absent.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		if id := middleware.IdentityFromCtx(r.Context()); id != nil {
			email = id.Email
		}
	}
	if email == "" {
		http.Error(w, "email is required", http.StatusBadRequest)
		return
	}
	list, err := h.repo.ListFor(r.Context(), email)
	if err != nil {
		h.log.Error("list notifications", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*models.Notification{}
	}
	writeJSON(w, http.StatusOK, list)
}

// MarkRead handles PATCH /notifications/read/{id}.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid notification id", http.StatusBadRequest)
		return
	}
	if err := h.repo.MarkRead(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			http.Error(w, "notification not found", http.StatusNotFound)
			return
		}
		h.log.Error("mark notification read", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true, "modifiedCount": 1})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
