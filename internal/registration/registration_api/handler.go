package registration_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"ms-registration/internal/logger"
	"ms-registration/internal/models"
	"ms-registration/internal/passes"
	"ms-registration/internal/registration"
)

type Handler struct {
	Service *registration.Service
	Passes  *passes.Generator
	Logger  *logger.Logger
}

func NewHandler(service *registration.Service, passGen *passes.Generator, log *logger.Logger) *Handler {
	return &Handler{Service: service, Passes: passGen, Logger: log}
}

// Register handles POST /events/{eventID}/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" || !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "name and a valid email are required")
		return
	}

	attendee, err := h.Service.Register(r.Context(), eventID, req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrEventNotFound):
			writeError(w, http.StatusNotFound, "event not found")
		case errors.Is(err, models.ErrCapacityExceeded):
			writeError(w, http.StatusConflict, "event is full")
		case errors.Is(err, models.ErrDuplicateRegistration):
			writeError(w, http.StatusBadRequest, "you are already registered")
		case errors.Is(err, models.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "invalid input")
		case errors.Is(err, models.ErrUnavailable):
			writeError(w, http.StatusServiceUnavailable, "registration temporarily unavailable, please retry")
		default:
			h.Logger.Error("API", fmt.Sprintf("Register: unexpected error: %v", err))
			writeError(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, attendee)
}

// Pass handles GET /events/{eventID}/attendees/{attendeeID}/pass and returns
// the attendee's QR entry pass as a PNG.
func (h *Handler) Pass(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	attendeeID := chi.URLParam(r, "attendeeID")

	attendee, err := h.Service.GetAttendee(r.Context(), eventID, attendeeID)
	if err != nil {
		if errors.Is(err, models.ErrEventNotFound) || errors.Is(err, models.ErrInvalidInput) {
			writeError(w, http.StatusNotFound, "attendee not found")
			return
		}
		h.Logger.Error("API", fmt.Sprintf("Pass: lookup failed: %v", err))
		writeError(w, http.StatusInternalServerError, "could not load attendee")
		return
	}

	png, err := h.Passes.GeneratePass(*attendee)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Pass: generate failed: %v", err))
		writeError(w, http.StatusInternalServerError, "could not generate pass")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
