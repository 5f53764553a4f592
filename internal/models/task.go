package models

import (
	"time"

	"github.com/google/uuid"
)

// Task is a funded unit of work posted by a buyer. required_workers counts
// the remaining open slots; the full budget (payable_amount per worker times
// the initial slot count) is debited from the buyer when the task is created.
type Task struct {
	ID              uuid.UUID  `json:"id"`
	BuyerEmail      string     `json:"buyer_email"`
	Title           string     `json:"task_title"`
	Detail          string     `json:"task_detail,omitempty"`
	ImageURL        string     `json:"task_image_url,omitempty"`
	PayableAmount   int        `json:"payable_amount"`
	RequiredWorkers int        `json:"required_workers"`
	CompletionDate  *time.Time `json:"completion_date,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
