package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Attendee struct {
	bun.BaseModel `bun:"table:attendees,alias:a"`

	ID        string    `json:"id" bun:"id,pk"`
	EventID   string    `json:"event_id" bun:"event_id,notnull,unique:attendees_event_email"`
	Name      string    `json:"name" bun:"name,notnull"`
	Email     string    `json:"email" bun:"email,notnull,unique:attendees_event_email"`
	CreatedAt time.Time `json:"created_at" bun:"created_at,notnull"`
}

type RegisterRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
