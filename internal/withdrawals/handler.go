package withdrawals

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/earnstack/backend/internal/middleware"
	"github.com/earnstack/backend/internal/models"
)

type requestBody struct {
	WorkerName       string  `json:"worker_name"`
	WithdrawalCoin   int     `json:"withdrawal_coin"`
	WithdrawalAmount float64 `json:"withdrawal_amount"`
	PaymentSystem    string  `json:"payment_system"`
	AccountNumber    string  `json:"account_number"`
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

// Request handles POST /withdraw (worker only).
func (h *Handler) Request(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, `{"message":"Unauthorized access"}`, http.StatusUnauthorized)
		return
	}
	var req requestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	wd, err := h.svc.Request(r.Context(), RequestParams{
		WorkerEmail:      id.Email,
		WorkerName:       req.WorkerName,
		WithdrawalCoin:   req.WithdrawalCoin,
		WithdrawalAmount: req.WithdrawalAmount,
		PaymentSystem:    req.PaymentSystem,
		AccountNumber:    req.AccountNumber,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidRequest) {
			http.Error(w, "missing or invalid withdrawal fields", http.StatusBadRequest)
			return
		}
		h.log.Error("request withdrawal", "worker", id.Email, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "withdrawalId": wd.ID.String()})
}

// ListAll handles GET /withdrawals (admin only), newest first.
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListAll(r.Context())
	if err != nil {
		h.log.Error("list withdrawals", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*models.Withdrawal{}
	}
	writeJSON(w, http.StatusOK, list)
}

// ListMine handles GET /withdrawals/worker (worker only).
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFromCtx(r.Context())
	if id == nil {
		http.Error(w, `{"message":"Unauthorized access"}`, http.StatusUnauthorized)
		return
	}
	list, err := h.svc.ListForWorker(r.Context(), id.Email)
	if err != nil {
		h.log.Error("list worker withdrawals", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*models.Withdrawal{}
	}
	writeJSON(w, http.StatusOK, list)
}

// Approve handles PATCH /withdraw/approve/{id} (admin only). An
// insufficient balance answers 200 with an error flag, like task creation.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	wdID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid withdrawal id", http.StatusBadRequest)
		return
	}
	res, err := h.svc.Approve(r.Context(), wdID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			http.Error(w, "withdrawal not found", http.StatusNotFound)
		case errors.Is(err, ErrInvalidState):
			writeJSON(w, http.StatusConflict, map[string]any{"error": "withdrawal is not pending"})
		default:
			h.log.Error("approve withdrawal", "withdrawal", wdID, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}
	if res.Declined {
		writeJSON(w, http.StatusOK, map[string]any{"error": true, "message": res.Message})
		return
	}
	writeJSON(w, http.StatusOK, res.Withdrawal)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
