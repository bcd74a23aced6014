// Package admin holds the back-office reads that span several domains:
// dashboard counters, the activity log and spreadsheet exports.
package admin

import (
	"context"
	"fmt"

	"github.com/hackgods/healthcare-portal/internal/activity"
	"github.com/hackgods/healthcare-portal/internal/appointment"
)

type Appointments interface {
	AdminList(ctx context.Context, f appointment.AdminFilter) (appointment.Page, error)
}

type Service struct {
	stats        StatsReader
	appointments Appointments
	logs         activity.Store
}

func NewService(stats StatsReader, appts Appointments, logs activity.Store) *Service {
	return &Service{stats: stats, appointments: appts, logs: logs}
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	sys, err := s.stats.SystemStats(ctx)
	if err != nil {
		return Stats{}, err
	}
	appts, err := s.stats.AppointmentStats(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{System: sys, Appointments: appts}, nil
}

func (s *Service) Logs(ctx context.Context, f activity.Filter) ([]activity.Entry, error) {
	out, err := s.logs.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	return out, nil
}

// allAppointments walks every page of the admin listing for f.
func (s *Service) allAppointments(ctx context.Context, f appointment.AdminFilter) ([]appointment.Appointment, error) {
	f.Limit = appointment.MaxAdminLimit
	var out []appointment.Appointment
	for f.Page = 1; ; f.Page++ {
		page, err := s.appointments.AdminList(ctx, f)
		if err != nil {
			return nil, err
		}
		out = append(out, page.Appointments...)
		if len(page.Appointments) < f.Limit || len(out) >= page.Total {
			return out, nil
		}
	}
}
