package submissions

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/earnstack/backend/internal/middleware"
	"github.com/earnstack/backend/internal/models"
	"github.com/earnstack/backend/internal/tasks"
)

type submitRequest struct {
	TaskID     string `json:"task_id"`
	WorkerName string `json:"worker_name"`
	Detail     string `json:"submission_detail"`
}

type Handler struct {
	svc Service
	log *slog.Logger
}

func NewHandler(svc Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log}
}

// Submit handles POST /submissions (worker only). The worker identity comes
// from the token; payable amount and buyer come from the stored task.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, `{"message":"Unauthorized access"}`, http.StatusUnauthorized)
		return
	}
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	taskID, err := uuid.Parse(req.TaskID)
	if err != nil {
		http.Error(w, "invalid task_id", http.StatusBadRequest)
		return
	}

	sub, err := h.svc.Submit(r.Context(), SubmitParams{
		TaskID:      taskID,
		WorkerEmail: id.Email,
		WorkerName:  req.WorkerName,
		Detail:      req.Detail,
	})
	if err != nil {
		switch {
		case errors.Is(err, tasks.ErrNotFound):
			http.Error(w, "task not found", http.StatusNotFound)
		case errors.Is(err, tasks.ErrCapacityExhausted):
			writeJSON(w, http.StatusConflict, map[string]any{"error": "task has no open slots"})
		default:
			h.log.Error("submit", "worker", id.Email, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "submissionId": sub.ID.String()})
}

// List handles GET /submissions?email&page&size. Email defaults to the
// authenticated identity.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	email := q.Get("email")
	if email == "" {
		if id := middleware.IdentityFromCtx(r.Context()); id != nil {
			email = id.Email
		}
	}
	if email == "" {
		http.Error(w, "email is required", http.StatusBadRequest)
		return
	}
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))

	list, total, err := h.svc.ListForWorker(r.Context(), email, page, size)
	if err != nil {
		h.log.Error("list submissions", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*models.Submission{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"submissions": list, "totalCount": total})
}

// ListForBuyer handles GET /submissions/buyer?email= (buyer only): the
// pending review queue.
func (h *Handler) ListForBuyer(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, `{"message":"Unauthorized access"}`, http.StatusUnauthorized)
		return
	}
	email := r.URL.Query().Get("email")
	if email == "" {
		email = id.Email
	}
	if email != id.Email && id.Role != models.RoleAdmin {
		http.Error(w, `{"message":"Forbidden access"}`, http.StatusForbidden)
		return
	}
	list, err := h.svc.ListPendingForBuyer(r.Context(), email)
	if err != nil {
		h.log.Error("list buyer submissions", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*models.Submission{}
	}
	writeJSON(w, http.StatusOK, list)
}

// Approve handles PATCH /submissions/approve/{id} (buyer only).
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.svc.Approve)
}

// Reject handles PATCH /submissions/reject/{id} (buyer only).
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.svc.Reject)
}

// review is the shared approve/reject path: only the buyer that owns the
// submission (or an admin) may decide it.
func (h *Handler) review(w http.ResponseWriter, r *http.Request, decide func(ctx context.Context, id uuid.UUID) error) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, `{"message":"Unauthorized access"}`, http.StatusUnauthorized)
		return
	}
	subID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid submission id", http.StatusBadRequest)
		return
	}

	sub, err := h.svc.Get(r.Context(), subID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "submission not found", http.StatusNotFound)
			return
		}
		h.log.Error("get submission", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if sub.BuyerEmail != id.Email && id.Role != models.RoleAdmin {
		http.Error(w, `{"message":"Forbidden access"}`, http.StatusForbidden)
		return
	}

	if err := decide(r.Context(), subID); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			http.Error(w, "submission not found", http.StatusNotFound)
		case errors.Is(err, ErrInvalidState):
			writeJSON(w, http.StatusConflict, map[string]any{"error": "submission is not pending"})
		default:
			h.log.Error("review submission", "submission", subID, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
