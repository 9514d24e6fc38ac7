// Package events implements the event directory: create and list events with
// their derived attendee counts. No concurrency hazards live here; all the
// admission logic is in internal/registration.
package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ms-registration/internal/logger"
	"ms-registration/internal/models"
)

type DBLayer interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	ListEvents(ctx context.Context) ([]models.Event, error)
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	ListAttendees(ctx context.Context, eventID string) ([]models.Attendee, error)
}

type Cache interface {
	GetEventList(ctx context.Context) ([]models.Event, bool)
	SetEventList(ctx context.Context, events []models.Event)
	InvalidateEventList(ctx context.Context) error
}

type Service struct {
	DB     DBLayer
	Cache  Cache
	Logger *logger.Logger
}

func NewService(db DBLayer, cache Cache, log *logger.Logger) *Service {
	return &Service{DB: db, Cache: cache, Logger: log}
}

// CreateEvent validates and persists a new event. Capacity is fixed here for
// the lifetime of the event.
func (s *Service) CreateEvent(ctx context.Context, req models.CreateEventRequest) (*models.Event, error) {
	title := strings.TrimSpace(req.Title)
	if len(title) < 2 {
		return nil, fmt.Errorf("%w: title is required", models.ErrInvalidInput)
	}
	if !req.Date.After(time.Now()) {
		return nil, fmt.Errorf("%w: date must be in the future", models.ErrInvalidInput)
	}
	if req.Capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be a positive integer", models.ErrInvalidInput)
	}

	event := &models.Event{
		ID:          uuid.New().String(),
		Title:       title,
		Date:        req.Date,
		Description: req.Description,
		Capacity:    req.Capacity,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.DB.CreateEvent(ctx, event); err != nil {
		s.Logger.Error("EVENTS", fmt.Sprintf("create event: %v", err))
		return nil, err
	}
	s.Logger.Info("EVENTS", fmt.Sprintf("event %s created (capacity %d)", event.ID, event.Capacity))

	if s.Cache != nil {
		if err := s.Cache.InvalidateEventList(ctx); err != nil {
			s.Logger.Warn("CACHE", fmt.Sprintf("invalidate event list: %v", err))
		}
	}
	return event, nil
}

// ListEvents returns all events ordered by date ascending. Served from the
// redis snapshot when one is fresh; the snapshot is never used for admission
// decisions.
func (s *Service) ListEvents(ctx context.Context) ([]models.Event, error) {
	if s.Cache != nil {
		if cached, ok := s.Cache.GetEventList(ctx); ok {
			return cached, nil
		}
	}

	list, err := s.DB.ListEvents(ctx)
	if err != nil {
		s.Logger.Error("EVENTS", fmt.Sprintf("list events: %v", err))
		return nil, err
	}

	if s.Cache != nil {
		s.Cache.SetEventList(ctx, list)
	}
	return list, nil
}

func (s *Service) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	if id == "" {
		return nil, models.ErrInvalidInput
	}
	return s.DB.GetEvent(ctx, id)
}

// ListAttendees returns the attendees of an event in registration order.
func (s *Service) ListAttendees(ctx context.Context, eventID string) ([]models.Attendee, error) {
	if _, err := s.DB.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.DB.ListAttendees(ctx, eventID)
}
