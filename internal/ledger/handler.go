package ledger

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/earnstack/backend/internal/models"
)

// Request/response shapes keep the contract existing clients rely on
// (Mongo-style acknowledged/insertedId payloads).

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Image    string `json:"image"`
	Password string `json:"password,omitempty"`
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

// RegisterUser handles POST /users. Registration is idempotent: posting an
// existing email is a no-op answered with the "already exists" payload.
func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Name == "" {
		http.Error(w, "missing required fields", http.StatusBadRequest)
		return
	}
	if req.Role == "" {
		req.Role = models.RoleWorker
	}
	if !models.ValidRole(req.Role) {
		http.Error(w, "invalid role", http.StatusBadRequest)
		return
	}

	var passwordHash string
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			h.log.Error("hash password", "error", err)
			http.Error(w, "registration failed", http.StatusInternalServerError)
			return
		}
		passwordHash = string(hash)
	}

	u, created, err := h.svc.Register(r.Context(), RegisterParams{
		Email:        req.Email,
		Name:         req.Name,
		Role:         req.Role,
		AvatarURL:    req.Image,
		PasswordHash: passwordHash,
	})
	if err != nil {
		h.log.Error("register user", "email", req.Email, "error", err)
		http.Error(w, "registration failed", http.StatusInternalServerError)
		return
	}
	if !created {
		writeJSON(w, http.StatusOK, map[string]any{"message": "User already exists", "insertedId": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true, "insertedId": u.Email})
}

// GetUser handles GET /users/{email}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.GetUser(r.Context(), r.PathValue("email"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		h.log.Error("get user", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// ListUsers handles GET /users (admin only, gated at the route table).
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListUsers(r.Context())
	if err != nil {
		h.log.Error("list users", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// UpdateRole handles PATCH /users/role/{email} (admin only).
func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || !models.ValidRole(body.Role) {
		http.Error(w, "invalid role", http.StatusBadRequest)
		return
	}
	err := h.svc.SetRole(r.Context(), r.PathValue("email"), body.Role)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		h.log.Error("update role", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true, "modifiedCount": 1})
}

// DeleteUser handles DELETE /users/{id} (admin only). Users are keyed by
// email, so the path id is the email address.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	err := h.svc.DeleteUser(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		h.log.Error("delete user", "error", err)
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
