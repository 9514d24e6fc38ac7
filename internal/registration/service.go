// Package registration implements the admission controller service: it owns
// the conflict-retry budget around the transactional repository and the
// post-commit side effects (event stream, cache invalidation).
package registration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ms-registration/internal/logger"
	"ms-registration/internal/models"
)

type DBLayer interface {
	RegisterAttendee(ctx context.Context, eventID, name, email string) (*models.Attendee, error)
	GetAttendee(ctx context.Context, eventID, attendeeID string) (*models.Attendee, error)
}

type Publisher interface {
	PublishRegistrationCreated(attendee models.Attendee) error
}

type Cache interface {
	InvalidateEventList(ctx context.Context) error
}

const (
	maxAttempts  = 3
	retryBackoff = 50 * time.Millisecond
)

type Service struct {
	DB     DBLayer
	Kafka  Publisher
	Cache  Cache
	Logger *logger.Logger
}

func NewService(db DBLayer, kafka Publisher, cache Cache, log *logger.Logger) *Service {
	return &Service{DB: db, Kafka: kafka, Cache: cache, Logger: log}
}

// Register admits one attendee for the event. Transient store conflicts are
// retried up to maxAttempts with linear backoff before surfacing
// models.ErrUnavailable; every other error kind is terminal.
//
// Capacity and duplicate rejections are expected outcomes, not faults, and are
// logged below error level.
func (s *Service) Register(ctx context.Context, eventID string, req models.RegisterRequest) (*models.Attendee, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if eventID == "" || name == "" || email == "" {
		return nil, models.ErrInvalidInput
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		attendee, err := s.DB.RegisterAttendee(ctx, eventID, name, email)
		if err == nil {
			s.Logger.Info("REGISTRATION", fmt.Sprintf("attendee %s registered for event %s", attendee.ID, eventID))
			s.afterCommit(ctx, *attendee)
			return attendee, nil
		}

		if !errors.Is(err, models.ErrTransientConflict) {
			switch {
			case errors.Is(err, models.ErrCapacityExceeded):
				s.Logger.Info("REGISTRATION", fmt.Sprintf("event %s full, rejected %s", eventID, email))
			case errors.Is(err, models.ErrDuplicateRegistration):
				s.Logger.Info("REGISTRATION", fmt.Sprintf("duplicate registration for event %s by %s", eventID, email))
			case errors.Is(err, models.ErrEventNotFound):
				s.Logger.Warn("REGISTRATION", fmt.Sprintf("registration against unknown event %s", eventID))
			default:
				s.Logger.Error("REGISTRATION", fmt.Sprintf("register failed for event %s: %v", eventID, err))
			}
			return nil, err
		}

		lastErr = err
		s.Logger.Warn("REGISTRATION", fmt.Sprintf("store conflict on event %s (attempt %d/%d): %v", eventID, attempt, maxAttempts, err))

		select {
		case <-ctx.Done():
			return nil, models.ErrUnavailable
		case <-time.After(time.Duration(attempt) * retryBackoff):
		}
	}

	s.Logger.Error("REGISTRATION", fmt.Sprintf("retry budget exhausted for event %s: %v", eventID, lastErr))
	return nil, models.ErrUnavailable
}

// GetAttendee returns a registered attendee, for the pass endpoint.
func (s *Service) GetAttendee(ctx context.Context, eventID, attendeeID string) (*models.Attendee, error) {
	if eventID == "" || attendeeID == "" {
		return nil, models.ErrInvalidInput
	}
	return s.DB.GetAttendee(ctx, eventID, attendeeID)
}

// afterCommit runs the best-effort side effects of a successful admission.
// Neither may influence the admission decision, so failures are only logged.
func (s *Service) afterCommit(ctx context.Context, attendee models.Attendee) {
	if s.Kafka != nil {
		if err := s.Kafka.PublishRegistrationCreated(attendee); err != nil {
			s.Logger.Error("KAFKA", fmt.Sprintf("publish registration %s: %v", attendee.ID, err))
		}
	}
	if s.Cache != nil {
		if err := s.Cache.InvalidateEventList(ctx); err != nil {
			s.Logger.Warn("CACHE", fmt.Sprintf("invalidate event list: %v", err))
		}
	}
}
