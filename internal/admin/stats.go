package admin

import (
	"context"
	"fmt"

	"github.com/hackgods/healthcare-portal/internal/db"
)

type SystemStats struct {
	TotalPatients        int64 `json:"total_patients"`
	TotalAdmins          int64 `json:"total_admins"`
	TotalProviders       int64 `json:"total_providers"`
	NewUsersThisWeek     int64 `json:"new_users_this_week"`
	AppointmentsThisWeek int64 `json:"appointments_this_week"`
	UpcomingEvents       int64 `json:"upcoming_events"`
}

// AppointmentStats counts by date window and status. ThisWeek covers the
// seven days before today, excluding today.
type AppointmentStats struct {
	Today     int64 `json:"today_count"`
	ThisWeek  int64 `json:"this_week_count"`
	ThisMonth int64 `json:"this_month_count"`
	Scheduled int64 `json:"scheduled_count"`
	Completed int64 `json:"completed_count"`
	Cancelled int64 `json:"cancelled_count"`
}

type Stats struct {
	System       SystemStats      `json:"system"`
	Appointments AppointmentStats `json:"appointments"`
}

type StatsReader interface {
	SystemStats(ctx context.Context) (SystemStats, error)
	AppointmentStats(ctx context.Context) (AppointmentStats, error)
}

type PgStats struct {
	q db.Querier
}

func NewPgStats(q db.Querier) *PgStats {
	return &PgStats{q: q}
}

func (p *PgStats) SystemStats(ctx context.Context) (SystemStats, error) {
	var s SystemStats
	err := p.q.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users WHERE role = 'patient'),
			(SELECT COUNT(*) FROM users WHERE role = 'admin'),
			(SELECT COUNT(*) FROM providers),
			(SELECT COUNT(*) FROM users WHERE created_at >= CURRENT_DATE - 7),
			(SELECT COUNT(*) FROM appointments WHERE appointment_date >= CURRENT_DATE - 7),
			(SELECT COUNT(*) FROM events WHERE event_date >= CURRENT_DATE)
	`).Scan(&s.TotalPatients, &s.TotalAdmins, &s.TotalProviders,
		&s.NewUsersThisWeek, &s.AppointmentsThisWeek, &s.UpcomingEvents)
	if err != nil {
		return SystemStats{}, fmt.Errorf("system stats: %w", err)
	}
	return s, nil
}

func (p *PgStats) AppointmentStats(ctx context.Context) (AppointmentStats, error) {
	var s AppointmentStats
	err := p.q.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE appointment_date = CURRENT_DATE),
			COUNT(*) FILTER (WHERE appointment_date >= CURRENT_DATE - 7 AND appointment_date < CURRENT_DATE),
			COUNT(*) FILTER (WHERE appointment_date >= CURRENT_DATE - 30),
			COUNT(*) FILTER (WHERE status = 'scheduled'),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status = 'cancelled')
		FROM appointments
	`).Scan(&s.Today, &s.ThisWeek, &s.ThisMonth, &s.Scheduled, &s.Completed, &s.Cancelled)
	if err != nil {
		return AppointmentStats{}, fmt.Errorf("appointment stats: %w", err)
	}
	return s, nil
}
