package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment records a coin purchase by a buyer. The coin credit is applied by
// the ledger in the same transaction that inserts the record.
type Payment struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	Coin       int       `json:"coin"`
	AmountPaid float64   `json:"amount_paid"`
	CreatedAt  time.Time `json:"created_at"`
}
