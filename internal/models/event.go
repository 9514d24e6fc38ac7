package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Event struct {
	bun.BaseModel `bun:"table:events,alias:e"`

	ID          string    `json:"id" bun:"id,pk"`
	Title       string    `json:"title" bun:"title,notnull"`
	Date        time.Time `json:"date" bun:"date,notnull"`
	Description string    `json:"description" bun:"description"`
	Capacity    int       `json:"capacity" bun:"capacity,notnull"`
	CreatedAt   time.Time `json:"created_at" bun:"created_at,notnull"`

	// Derived from the attendees table, never stored.
	RegisteredCount int `json:"registered_count" bun:"registered_count,scanonly"`
}

type CreateEventRequest struct {
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	Capacity    int       `json:"capacity"`
	Description string    `json:"description,omitempty"`
}
