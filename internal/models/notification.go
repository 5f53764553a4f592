package models

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID          uuid.UUID `json:"id"`
	ToEmail     string    `json:"toEmail"`
	Message     string    `json:"message"`
	ActionRoute string    `json:"actionRoute"`
	Time        time.Time `json:"time"`
	Unread      bool      `json:"unread"`
}
