package models

import (
	"time"

	"github.com/google/uuid"
)

// Submission status values. pending is the only non-terminal state.
const (
	SubmissionPending  = "pending"
	SubmissionApproved = "approved"
	SubmissionRejected = "rejected"
)

type Submission struct {
	ID            uuid.UUID `json:"id"`
	TaskID        uuid.UUID `json:"task_id"`
	TaskTitle     string    `json:"task_title,omitempty"`
	WorkerEmail   string    `json:"worker_email"`
	WorkerName    string    `json:"worker_name,omitempty"`
	BuyerEmail    string    `json:"buyer_email"`
	Detail        string    `json:"submission_detail,omitempty"`
	PayableAmount int       `json:"payable_amount"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}
