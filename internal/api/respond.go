package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/hackgods/healthcare-portal/internal/appointment"
	"github.com/hackgods/healthcare-portal/internal/event"
	"github.com/hackgods/healthcare-portal/internal/facility"
	"github.com/hackgods/healthcare-portal/internal/provider"
	"github.com/hackgods/healthcare-portal/internal/upload"
	"github.com/hackgods/healthcare-portal/internal/user"
	"github.com/hackgods/healthcare-portal/internal/validate"
)

// maxJSONBody leaves room for a base64 encoded image.
const maxJSONBody = 8 << 20

type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

type errorMapping struct {
	target error
	status int
	msg    string
}

var errorMappings = []errorMapping{
	{user.ErrEmailTaken, http.StatusBadRequest, "User with this email already exists"},
	{user.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	{user.ErrInvalidTwoFactor, http.StatusUnauthorized, "Invalid two-factor code"},
	{user.ErrCannotDeleteSelf, http.StatusBadRequest, "Cannot delete your own account"},
	{user.ErrUserNotFound, http.StatusNotFound, "User not found"},

	{appointment.ErrAppointmentNotFound, http.StatusNotFound, "Appointment not found"},
	{appointment.ErrForbidden, http.StatusForbidden, "Access denied"},
	{appointment.ErrSlotUnavailable, http.StatusBadRequest, "Selected time slot is not available"},
	{appointment.ErrSlotTaken, http.StatusBadRequest, "Selected time slot is not available"},
	{appointment.ErrSlotBeingBooked, http.StatusConflict, "Slot is currently being booked, please retry shortly"},

	{provider.ErrProviderNotFound, http.StatusNotFound, "Provider not found"},
	{provider.ErrWindowNotFound, http.StatusNotFound, "Availability not found"},
	{facility.ErrFacilityNotFound, http.StatusNotFound, "Facility not found"},

	{event.ErrAlreadyRegistered, http.StatusBadRequest, "Already registered or event not found"},
	{event.ErrEventNotFound, http.StatusNotFound, "Event not found"},
	{event.ErrRegistrationNotFound, http.StatusNotFound, "Registration not found"},

	{upload.ErrTooLarge, http.StatusBadRequest, "Image must be 5MB or smaller"},
	{upload.ErrNotImage, http.StatusBadRequest, "Only image files are allowed"},
	{upload.ErrBadDataURL, http.StatusBadRequest, "Malformed image data"},
}

// writeServiceError maps domain errors to HTTP responses. Anything unmapped
// is logged and reported as a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validate.Error
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Details: verr.Fields})
		return
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			writeError(w, m.status, m.msg)
			return
		}
	}

	zerolog.Ctx(r.Context()).Error().Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("request failed")
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

// decodeJSON reads the request body into dst and writes a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

// pathID parses a positive integer URL parameter and writes a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// queryInt returns the named query parameter as an int, or 0 when absent or
// malformed.
func queryInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}

func queryInt64(r *http.Request, name string) int64 {
	n, _ := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	return n
}
