package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"rental-cloud/internal/audit"
	"rental-cloud/internal/auth"
	leasing "rental-cloud/internal/leasing/domain"
	reminderapp "rental-cloud/internal/reminders/application"
)

// RunHandler serves the manual batch trigger. The scheduler covers the
// normal path; this endpoint exists for operations (replays, missed runs).
type RunHandler struct {
	batch       *reminderapp.Batch
	calendar    leasing.Calendar
	auditLogger audit.Logger
}

// NewRunHandler constructs a RunHandler.
func NewRunHandler(batch *reminderapp.Batch, calendar leasing.Calendar, auditLogger audit.Logger) (*RunHandler, error) {
	if batch == nil {
		return nil, errors.New("reminder handler: nil batch")
	}
	if calendar == nil {
		return nil, errors.New("reminder handler: nil calendar")
	}
	return &RunHandler{batch: batch, calendar: calendar, auditLogger: auditLogger}, nil
}

// ServeHTTP handles POST /api/v1/reminders/run.
func (h *RunHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	summary, err := h.batch.Run(r.Context(), h.calendar.Today())
	if err != nil {
		http.Error(w, "reminder run failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(summary)

	if h.auditLogger != nil {
		payload, _ := json.Marshal(summary)
		_ = h.auditLogger.Log(r.Context(), audit.Entry{
			Actor:        auth.UserIDFromContext(r.Context()),
			Role:         string(auth.RoleFromContext(r.Context())),
			Action:       "reminders.run",
			ResourceType: "reminder_batch",
			ResourceID:   summary.RunDate,
			Metadata:     payload,
			IP:           audit.ClientIP(r),
			UserAgent:    r.UserAgent(),
		})
	}
}
