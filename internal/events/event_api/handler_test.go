package event_api_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"ms-registration/internal/events"
	events_db "ms-registration/internal/events/db"
	"ms-registration/internal/events/event_api"
	"ms-registration/internal/logger"
	"ms-registration/internal/models"
)

func setupRouter(t *testing.T) (*chi.Mux, *bun.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	require.NoError(t, bunDB.ResetModel(context.Background(),
		(*models.Event)(nil), (*models.Attendee)(nil)))
	t.Cleanup(func() { bunDB.Close() })

	log := &logger.Logger{}
	handler := event_api.NewHandler(events.NewService(&events_db.DB{Bun: bunDB}, nil, log), log)

	r := chi.NewRouter()
	r.Route("/events", func(r chi.Router) {
		r.Post("/", handler.CreateEvent)
		r.Get("/", handler.ListEvents)
		r.Route("/{eventID}", func(r chi.Router) {
			r.Get("/", handler.GetEvent)
			r.Get("/attendees", handler.ListAttendees)
		})
	})
	return r, bunDB
}

func createEvent(r http.Handler, req models.CreateEventRequest) *httptest.ResponseRecorder {
	body, _ := json.Marshal(req)
	httpReq := httptest.NewRequest(http.MethodPost, "/events", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httpReq)
	return rec
}

func TestCreateEventCreated(t *testing.T) {
	r, _ := setupRouter(t)

	rec := createEvent(r, models.CreateEventRequest{
		Title:    "Go Meetup",
		Date:     time.Now().Add(48 * time.Hour),
		Capacity: 25,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var event models.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &event))
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, 25, event.Capacity)
	assert.Equal(t, 0, event.RegisteredCount)
}

func TestCreateEventValidationFailures(t *testing.T) {
	r, _ := setupRouter(t)
	future := time.Now().Add(48 * time.Hour)

	cases := []models.CreateEventRequest{
		{Title: "", Date: future, Capacity: 10},
		{Title: "Go Meetup", Date: time.Now().Add(-time.Hour), Capacity: 10},
		// Zero capacity is rejected here, at creation, never at registration.
		{Title: "Go Meetup", Date: future, Capacity: 0},
	}
	for _, req := range cases {
		assert.Equal(t, http.StatusBadRequest, createEvent(r, req).Code)
	}
}

func TestListEventsWithCounts(t *testing.T) {
	r, bunDB := setupRouter(t)

	rec := createEvent(r, models.CreateEventRequest{
		Title:    "Go Meetup",
		Date:     time.Now().Add(48 * time.Hour),
		Capacity: 25,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	attendee := &models.Attendee{
		ID:        uuid.New().String(),
		EventID:   created.ID,
		Name:      "Ada",
		Email:     "ada@example.com",
		CreatedAt: time.Now().UTC(),
	}
	_, err := bunDB.NewInsert().Model(attendee).Exec(context.Background())
	require.NoError(t, err)

	listReq := httptest.NewRequest(http.MethodGet, "/events", nil)
	listRec := httptest.NewRecorder()
	r.ServeHTTP(listRec, listReq)
	require.Equal(t, http.StatusOK, listRec.Code)

	var list []models.Event
	require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].RegisteredCount)
}

func TestGetEventNotFound(t *testing.T) {
	r, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/events/"+uuid.New().String(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListAttendeesNotFound(t *testing.T) {
	r, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/events/"+uuid.New().String()+"/attendees", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
