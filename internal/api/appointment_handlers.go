package api

import (
	"net/http"

	"github.com/hackgods/healthcare-portal/internal/appointment"
)

type appointmentResponse struct {
	Message     string                   `json:"message,omitempty"`
	Appointment *appointment.Appointment `json:"appointment"`
}

func availableSlotsHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slots, err := svc.AvailableSlots(r.Context(), queryInt64(r, "provider_id"), r.URL.Query().Get("date"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"slots": slots})
	}
}

func createAppointmentHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req appointment.CreateInput
		if !decodeJSON(w, r, &req) {
			return
		}

		appt, err := svc.Create(r.Context(), identity(r).ID, req)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, appointmentResponse{Message: "Appointment booked successfully", Appointment: appt})
	}
}

func listAppointmentsHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		appts, err := svc.ListForPatient(r.Context(), identity(r).ID, appointment.ListFilter{
			Status:   appointment.Status(q.Get("status")),
			Upcoming: q.Get("upcoming") == "true",
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"appointments": appts})
	}
}

func getAppointmentHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		appt, err := svc.Get(r.Context(), identity(r), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, appointmentResponse{Appointment: appt})
	}
}

func updateAppointmentHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var p appointment.Patch
		if !decodeJSON(w, r, &p) {
			return
		}
		appt, err := svc.Update(r.Context(), identity(r), id, p)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, appointmentResponse{Message: "Appointment updated successfully", Appointment: appt})
	}
}

func cancelAppointmentHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		appt, err := svc.Cancel(r.Context(), identity(r), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, appointmentResponse{Message: "Appointment cancelled successfully", Appointment: appt})
	}
}

func adminFilterFromQuery(r *http.Request) appointment.AdminFilter {
	q := r.URL.Query()
	return appointment.AdminFilter{
		Status:     appointment.Status(q.Get("status")),
		ProviderID: queryInt64(r, "provider_id"),
		FacilityID: queryInt64(r, "facility_id"),
		DateFrom:   q.Get("date_from"),
		DateTo:     q.Get("date_to"),
		Page:       queryInt(r, "page"),
		Limit:      queryInt(r, "limit"),
	}
}

func adminListAppointmentsHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := svc.AdminList(r.Context(), adminFilterFromQuery(r))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

func adminUpdateAppointmentHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var p appointment.AdminPatch
		if !decodeJSON(w, r, &p) {
			return
		}
		appt, err := svc.AdminUpdate(r.Context(), identity(r), id, p)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, appointmentResponse{Message: "Appointment updated successfully", Appointment: appt})
	}
}
