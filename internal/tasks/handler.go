package tasks

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/earnstack/backend/internal/middleware"
	"github.com/earnstack/backend/internal/models"
)

// createTaskRequest mirrors the shape the existing client posts: the task
// fields nested under "task" plus a client-computed total. The server
// recomputes the total; the posted one is accepted but never trusted.
type createTaskRequest struct {
	Task struct {
		Title           string     `json:"task_title"`
		Detail          string     `json:"task_detail"`
		ImageURL        string     `json:"task_image_url"`
		BuyerEmail      string     `json:"buyer_email"`
		PayableAmount   int        `json:"payable_amount"`
		RequiredWorkers int        `json:"required_workers"`
		CompletionDate  *time.Time `json:"completion_date"`
	} `json:"task"`
	TotalPayable int `json:"totalPayable"`
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

// Create handles POST /tasks (buyer only). Insufficient funds is a soft
// failure: 200 with an error flag, to preserve the existing client contract.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, `{"message":"Unauthorized access"}`, http.StatusUnauthorized)
		return
	}
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Task.BuyerEmail != "" && req.Task.BuyerEmail != id.Email {
		http.Error(w, `{"message":"Forbidden access"}`, http.StatusForbidden)
		return
	}

	res, err := h.svc.Create(r.Context(), CreateParams{
		BuyerEmail:      id.Email,
		Title:           req.Task.Title,
		Detail:          req.Task.Detail,
		ImageURL:        req.Task.ImageURL,
		PayableAmount:   req.Task.PayableAmount,
		RequiredWorkers: req.Task.RequiredWorkers,
		CompletionDate:  req.Task.CompletionDate,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidTask) {
			http.Error(w, "missing or invalid task fields", http.StatusBadRequest)
			return
		}
		h.log.Error("create task", "buyer", id.Email, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if res.Declined {
		writeJSON(w, http.StatusOK, map[string]any{"error": true, "message": res.Message})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "taskId": res.Task.ID.String()})
}

// ListOpen handles GET /tasks (public): tasks with open slots, newest first.
func (h *Handler) ListOpen(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListOpen(r.Context())
	if err != nil {
		h.log.Error("list open tasks", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*models.Task{}
	}
	writeJSON(w, http.StatusOK, list)
}

// Get handles GET /tasks/{id} (public).
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	taskID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}
	t, err := h.svc.Get(r.Context(), taskID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "task not found", http.StatusNotFound)
			return
		}
		h.log.Error("get task", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// ListAll handles GET /admin/tasks (admin only).
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListAll(r.Context())
	if err != nil {
		h.log.Error("list all tasks", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*models.Task{}
	}
	writeJSON(w, http.StatusOK, list)
}

// Delete handles DELETE /tasks/{id} (admin only).
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	taskID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}
	if err := h.svc.Delete(r.Context(), taskID); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "task not found", http.StatusNotFound)
			return
		}
		h.log.Error("delete task", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true, "deletedCount": 1})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
