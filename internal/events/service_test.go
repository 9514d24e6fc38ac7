package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ms-registration/internal/events"
	"ms-registration/internal/logger"
	"ms-registration/internal/models"
)

type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) CreateEvent(ctx context.Context, event *models.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockDBLayer) ListEvents(ctx context.Context) ([]models.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Event), args.Error(1)
}

func (m *MockDBLayer) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockDBLayer) ListAttendees(ctx context.Context, eventID string) ([]models.Attendee, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Attendee), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetEventList(ctx context.Context) ([]models.Event, bool) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).([]models.Event), args.Bool(1)
}

func (m *MockCache) SetEventList(ctx context.Context, list []models.Event) {
	m.Called(ctx, list)
}

func (m *MockCache) InvalidateEventList(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func newService(db *MockDBLayer, c *MockCache) *events.Service {
	return events.NewService(db, c, &logger.Logger{})
}

func validRequest() models.CreateEventRequest {
	return models.CreateEventRequest{
		Title:    "Go Meetup",
		Date:     time.Now().Add(48 * time.Hour),
		Capacity: 50,
	}
}

func TestCreateEvent(t *testing.T) {
	db := new(MockDBLayer)
	c := new(MockCache)

	db.On("CreateEvent", mock.Anything, mock.AnythingOfType("*models.Event")).Return(nil)
	c.On("InvalidateEventList", mock.Anything).Return(nil)

	event, err := newService(db, c).CreateEvent(context.Background(), validRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "Go Meetup", event.Title)
	assert.Equal(t, 50, event.Capacity)

	db.AssertExpectations(t)
	c.AssertExpectations(t)
}

func TestCreateEventValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*models.CreateEventRequest)
	}{
		{"empty title", func(r *models.CreateEventRequest) { r.Title = " " }},
		{"one-letter title", func(r *models.CreateEventRequest) { r.Title = "x" }},
		{"past date", func(r *models.CreateEventRequest) { r.Date = time.Now().Add(-time.Hour) }},
		{"zero capacity", func(r *models.CreateEventRequest) { r.Capacity = 0 }},
		{"negative capacity", func(r *models.CreateEventRequest) { r.Capacity = -3 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := new(MockDBLayer)
			req := validRequest()
			tc.mutate(&req)

			_, err := newService(db, new(MockCache)).CreateEvent(context.Background(), req)
			assert.ErrorIs(t, err, models.ErrInvalidInput)
			db.AssertNotCalled(t, "CreateEvent", mock.Anything, mock.Anything)
		})
	}
}

func TestListEventsCacheHit(t *testing.T) {
	db := new(MockDBLayer)
	c := new(MockCache)

	cached := []models.Event{{ID: "evt-1", Title: "Cached"}}
	c.On("GetEventList", mock.Anything).Return(cached, true)

	list, err := newService(db, c).ListEvents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cached, list)
	db.AssertNotCalled(t, "ListEvents", mock.Anything)
}

func TestListEventsCacheMiss(t *testing.T) {
	db := new(MockDBLayer)
	c := new(MockCache)

	fresh := []models.Event{{ID: "evt-1", Title: "Fresh"}}
	c.On("GetEventList", mock.Anything).Return(nil, false)
	db.On("ListEvents", mock.Anything).Return(fresh, nil)
	c.On("SetEventList", mock.Anything, fresh).Return()

	list, err := newService(db, c).ListEvents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fresh, list)
	c.AssertExpectations(t)
}

func TestListAttendeesUnknownEvent(t *testing.T) {
	db := new(MockDBLayer)
	db.On("GetEvent", mock.Anything, "missing").Return(nil, models.ErrEventNotFound)

	_, err := newService(db, new(MockCache)).ListAttendees(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrEventNotFound)
	db.AssertNotCalled(t, "ListAttendees", mock.Anything, mock.Anything)
}
