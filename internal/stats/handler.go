package stats

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/earnstack/backend/internal/models"
)

// topWorkerCount matches the landing-page leaderboard size.
const topWorkerCount = 6

// Source is what the handler needs from the repository.
type Source interface {
	TopWorkers(ctx context.Context, limit int) ([]*models.User, error)
	WorkerStats(ctx context.Context, email string) (*WorkerStats, error)
	BuyerStats(ctx context.Context, email string) (*BuyerStats, error)
	AdminStats(ctx context.Context) (*AdminStats, error)
}

type Handler struct {
	repo Source
	log  *slog.Logger
}

func NewHandler(repo Source, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{repo: repo, log: log}
}

// TopWorkers handles GET /top-workers (public leaderboard).
func (h *Handler) TopWorkers(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.TopWorkers(r.Context(), topWorkerCount)
	if err != nil {
		h.log.Error("top workers", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*models.User{}
	}
	writeJSON(w, http.StatusOK, list)
}

// Worker handles GET /worker-stats/{email}.
func (h *Handler) Worker(w http.ResponseWriter, r *http.Request) {
	s, err := h.repo.WorkerStats(r.Context(), r.PathValue("email"))
	if err != nil {
		h.log.Error("worker stats", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// Buyer handles GET /buyer-stats/{email}.
func (h *Handler) Buyer(w http.ResponseWriter, r *http.Request) {
	s, err := h.repo.BuyerStats(r.Context(), r.PathValue("email"))
	if err != nil {
		h.log.Error("buyer stats", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// Admin handles GET /admin-stats (admin only).
func (h *Handler) Admin(w http.ResponseWriter, r *http.Request) {
	s, err := h.repo.AdminStats(r.Context())
	if err != nil {
		h.log.Error("admin stats", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
