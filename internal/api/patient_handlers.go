package api

import (
	"net/http"

	"github.com/hackgods/healthcare-portal/internal/vitals"
)

func dashboardHandler(svc DashboardService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := svc.Build(r.Context(), identity(r).ID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, d)
	}
}

func recordVitalsHandler(svc VitalsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in vitals.Input
		if !decodeJSON(w, r, &in) {
			return
		}
		rec, err := svc.Record(r.Context(), identity(r).ID, in)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"message": "Vitals recorded successfully",
			"vital":   rec,
		})
	}
}

func listVitalsHandler(svc VitalsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := svc.List(r.Context(), identity(r).ID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"vitals": recs})
	}
}

// latestVitalsHandler answers {"vital": null} when nothing is recorded yet.
func latestVitalsHandler(svc VitalsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := svc.Latest(r.Context(), identity(r).ID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"vital": rec})
	}
}
