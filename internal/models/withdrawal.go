package models

import (
	"time"

	"github.com/google/uuid"
)

// Withdrawal status values. There is no rejected state: a request stays
// pending until an admin approves it.
const (
	WithdrawalPending  = "pending"
	WithdrawalApproved = "approved"
)

type Withdrawal struct {
	ID               uuid.UUID `json:"id"`
	WorkerEmail      string    `json:"worker_email"`
	WorkerName       string    `json:"worker_name,omitempty"`
	WithdrawalCoin   int       `json:"withdrawal_coin"`
	WithdrawalAmount float64   `json:"withdrawal_amount"`
	PaymentSystem    string    `json:"payment_system,omitempty"`
	AccountNumber    string    `json:"account_number,omitempty"`
	Status           string    `json:"status"`
	Date             time.Time `json:"withdraw_date"`
}
