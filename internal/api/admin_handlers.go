package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/hackgods/healthcare-portal/internal/activity"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func adminStatsHandler(svc AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Stats(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func adminLogsHandler(svc AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logs, err := svc.Logs(r.Context(), activity.Filter{
			EventType: r.URL.Query().Get("event_type"),
			Limit:     queryInt(r, "limit"),
			Offset:    queryInt(r, "offset"),
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"logs": logs})
	}
}

// adminExportAppointmentsHandler buffers the workbook so a failure can still
// be reported as JSON.
func adminExportAppointmentsHandler(svc AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := svc.ExportAppointments(r.Context(), adminFilterFromQuery(r), &buf); err != nil {
			writeServiceError(w, r, err)
			return
		}

		name := fmt.Sprintf("appointments-%s.xlsx", time.Now().Format("20060102"))
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
	}
}
