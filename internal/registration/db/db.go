// Package db implements the registration admission control against the
// relational store. The capacity check and the attendee insert run inside one
// transaction with the event row locked, so two concurrent registrations for
// the last slot can never both commit.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"ms-registration/internal/models"
)

// Postgres error codes the controller has to recognize.
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

type DB struct {
	Bun *bun.DB

	// LockTimeout bounds how long the transaction may wait for the event row
	// lock on Postgres. Zero leaves the server default in place.
	LockTimeout time.Duration
}

// RegisterAttendee atomically admits one attendee for the event or reports why
// it cannot.
//
// Inside a single transaction it locks the event row (SELECT ... FOR UPDATE on
// Postgres; the SQLite test dialect serializes write transactions on its own),
// checks for a duplicate email, compares the attendee count against capacity
// and inserts the new row. The unique index on (event_id, email) backstops the
// duplicate probe for races the lock does not cover.
//
// Transient store conflicts come back wrapped in models.ErrTransientConflict;
// the service layer owns the retry budget.
func (d *DB) RegisterAttendee(ctx context.Context, eventID, name, email string) (*models.Attendee, error) {
	var attendee *models.Attendee

	err := d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if d.isPostgres() && d.LockTimeout > 0 {
			timeout := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", d.LockTimeout.Milliseconds())
			if _, err := tx.ExecContext(ctx, timeout); err != nil {
				return fmt.Errorf("set lock timeout: %w", err)
			}
		}

		var event models.Event
		q := tx.NewSelect().Model(&event).Where("e.id = ?", eventID)
		if d.isPostgres() {
			q = q.For("UPDATE")
		}
		if err := q.Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return models.ErrEventNotFound
			}
			return err
		}

		// Duplicate check runs before the capacity check, so re-submitting an
		// email against a full event still reports the duplicate.
		exists, err := tx.NewSelect().
			Model((*models.Attendee)(nil)).
			Where("a.event_id = ?", eventID).
			Where("a.email = ?", email).
			Exists(ctx)
		if err != nil {
			return err
		}
		if exists {
			return models.ErrDuplicateRegistration
		}

		count, err := tx.NewSelect().
			Model((*models.Attendee)(nil)).
			Where("a.event_id = ?", eventID).
			Count(ctx)
		if err != nil {
			return err
		}
		if count >= event.Capacity {
			return models.ErrCapacityExceeded
		}

		a := &models.Attendee{
			ID:        uuid.New().String(),
			EventID:   eventID,
			Name:      name,
			Email:     email,
			CreatedAt: time.Now().UTC(),
		}
		if _, err := tx.NewInsert().Model(a).Exec(ctx); err != nil {
			return err
		}

		attendee = a
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}
	return attendee, nil
}

// GetAttendee returns one attendee of an event, or models.ErrEventNotFound if
// either side of the pair is unknown.
func (d *DB) GetAttendee(ctx context.Context, eventID, attendeeID string) (*models.Attendee, error) {
	var attendee models.Attendee
	err := d.Bun.NewSelect().
		Model(&attendee).
		Where("a.id = ?", attendeeID).
		Where("a.event_id = ?", eventID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrEventNotFound
		}
		return nil, err
	}
	return &attendee, nil
}

func (d *DB) isPostgres() bool {
	return d.Bun.Dialect().Name() == dialect.PG
}

// classify maps store-level faults into the closed error taxonomy. Domain
// errors pass through untouched.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, models.ErrEventNotFound),
		errors.Is(err, models.ErrCapacityExceeded),
		errors.Is(err, models.ErrDuplicateRegistration):
		return err
	case isUniqueViolation(err):
		// A concurrent duplicate slipped past the probe and hit the unique
		// index at insert/commit time.
		return models.ErrDuplicateRegistration
	case isTransient(err):
		return fmt.Errorf("%w: %v", models.ErrTransientConflict, err)
	default:
		return err
	}
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isTransient(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		switch pgErr.Field('C') {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return true
		}
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "SQLITE_BUSY")
}
