package payments

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/earnstack/backend/internal/ledger"
	"github.com/earnstack/backend/internal/middleware"
	"github.com/earnstack/backend/internal/models"
)

type purchaseRequest struct {
	Coin       int     `json:"coin"`
	AmountPaid float64 `json:"amount_paid"`
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

// Purchase handles POST /payments (buyer only): records the payment and
// credits the coins.
func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, `{"message":"Unauthorized access"}`, http.StatusUnauthorized)
		return
	}
	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	p, err := h.svc.Record(r.Context(), id.Email, req.Coin, req.AmountPaid)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidPayment):
			http.Error(w, "invalid payment fields", http.StatusBadRequest)
		case errors.Is(err, ledger.ErrNotFound):
			http.Error(w, "user not found", http.StatusNotFound)
		default:
			h.log.Error("record payment", "buyer", id.Email, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "paymentId": p.ID.String()})
}

// History handles GET /payments?email= (buyer only).
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
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
	list, err := h.svc.ListFor(r.Context(), email)
	if err != nil {
		h.log.Error("list payments", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*models.Payment{}
	}
	writeJSON(w, http.StatusOK, list)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
