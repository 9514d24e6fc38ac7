// Package db holds the event directory queries. Plain reads and writes; the
// only derived value is registered_count, aggregated from attendees at read
// time so it can never drift from the rows that exist.
package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"ms-registration/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateEvent(ctx context.Context, event *models.Event) error {
	_, err := d.Bun.NewInsert().Model(event).Exec(ctx)
	return err
}

// ListEvents returns all events ordered by date ascending, each carrying its
// current attendee count.
func (d *DB) ListEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := d.Bun.NewSelect().
		Model(&events).
		ColumnExpr("e.*").
		ColumnExpr("count(a.id) AS registered_count").
		Join("LEFT JOIN attendees AS a ON a.event_id = e.id").
		Group("e.id").
		Order("e.date ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (d *DB) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		ColumnExpr("e.*").
		ColumnExpr("count(a.id) AS registered_count").
		Join("LEFT JOIN attendees AS a ON a.event_id = e.id").
		Where("e.id = ?", id).
		Group("e.id").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

// ListAttendees returns the attendees of an event in registration order.
func (d *DB) ListAttendees(ctx context.Context, eventID string) ([]models.Attendee, error) {
	var attendees []models.Attendee
	err := d.Bun.NewSelect().
		Model(&attendees).
		Where("a.event_id = ?", eventID).
		Order("a.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return attendees, nil
}
