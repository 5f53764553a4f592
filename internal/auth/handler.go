package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

type TokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type Handler struct {
	svc   Service
	users UserSource
	log   *slog.Logger
}

func NewHandler(svc Service, users UserSource, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, users: users, log: log}
}

// Token handles POST /auth/token: signs a bearer token for the posted
// identity. When the registered user has a password hash, the posted
// password must match it.
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Email == "" {
		http.Error(w, "email is required", http.StatusBadRequest)
		return
	}

	if u, err := h.users.GetUser(r.Context(), req.Email); err == nil && u != nil && u.PasswordHash != "" {
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
	}

	token, err := h.svc.IssueToken(r.Context(), req.Email)
	if err != nil {
		h.log.Error("issue token", "email", req.Email, "error", err)
		http.Error(w, "token issuance failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(TokenResponse{Token: token})
}
