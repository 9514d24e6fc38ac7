package event_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-registration/internal/events"
	"ms-registration/internal/logger"
	"ms-registration/internal/models"
)

type Handler struct {
	Service *events.Service
	Logger  *logger.Logger
}

func NewHandler(service *events.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

// CreateEvent handles POST /events.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	event, err := h.Service.CreateEvent(r.Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Logger.Error("API", fmt.Sprintf("CreateEvent: %v", err))
		writeError(w, http.StatusInternalServerError, "could not create event")
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

// ListEvents handles GET /events.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListEvents(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListEvents: %v", err))
		writeError(w, http.StatusInternalServerError, "could not list events")
		return
	}
	if list == nil {
		list = []models.Event{}
	}
	writeJSON(w, http.StatusOK, list)
}

// GetEvent handles GET /events/{eventID}.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.Service.GetEvent(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		if errors.Is(err, models.ErrEventNotFound) || errors.Is(err, models.ErrInvalidInput) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		h.Logger.Error("API", fmt.Sprintf("GetEvent: %v", err))
		writeError(w, http.StatusInternalServerError, "could not load event")
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// ListAttendees handles GET /events/{eventID}/attendees.
func (h *Handler) ListAttendees(w http.ResponseWriter, r *http.Request) {
	attendees, err := h.Service.ListAttendees(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		if errors.Is(err, models.ErrEventNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		h.Logger.Error("API", fmt.Sprintf("ListAttendees: %v", err))
		writeError(w, http.StatusInternalServerError, "could not list attendees")
		return
	}
	if attendees == nil {
		attendees = []models.Attendee{}
	}
	writeJSON(w, http.StatusOK, attendees)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
