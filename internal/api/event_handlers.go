package api

import (
	"net/http"

	"github.com/hackgods/healthcare-portal/internal/event"
)

type eventResponse struct {
	Message string       `json:"message,omitempty"`
	Event   *event.Event `json:"event"`
}

type registrationResponse struct {
	Message      string              `json:"message"`
	Registration *event.Registration `json:"registration"`
}

func listEventsHandler(svc EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		events, err := svc.List(r.Context(), event.ListFilter{
			Upcoming: q.Get("upcoming") == "true",
			Type:     event.Type(q.Get("type")),
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"events": events})
	}
}

func getEventHandler(svc EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		e, err := svc.Get(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, eventResponse{Event: e})
	}
}

func registerForEventHandler(svc EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		reg, err := svc.Register(r.Context(), id, identity(r).ID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, registrationResponse{Message: "Successfully registered for event", Registration: reg})
	}
}

func myRegistrationsHandler(svc EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := svc.ListMine(r.Context(), identity(r).ID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"events": events})
	}
}

func adminCreateEventHandler(svc EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in event.Input
		if !decodeJSON(w, r, &in) {
			return
		}
		e, err := svc.Create(r.Context(), in)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, eventResponse{Message: "Event created successfully", Event: e})
	}
}

func adminUpdateEventHandler(svc EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var p event.Patch
		if !decodeJSON(w, r, &p) {
			return
		}
		e, err := svc.Update(r.Context(), id, p)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, eventResponse{Message: "Event updated successfully", Event: e})
	}
}

func adminDeleteEventHandler(svc EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "Event deleted successfully", ID: id})
	}
}

func adminListRegistrationsHandler(svc EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		regs, err := svc.ListRegistrations(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"registrations": regs})
	}
}

func adminSetRegistrationStatusHandler(svc EventService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, ok := pathID(w, r, "eventId")
		if !ok {
			return
		}
		userID, ok := pathID(w, r, "userId")
		if !ok {
			return
		}
		var req struct {
			Status event.RegistrationStatus `json:"status"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		reg, err := svc.SetRegistrationStatus(r.Context(), identity(r).ID, eventID, userID, req.Status)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, registrationResponse{Message: "Registration status updated successfully", Registration: reg})
	}
}
