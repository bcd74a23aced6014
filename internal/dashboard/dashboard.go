// Package dashboard assembles the patient home screen from the other
// services. The reads are independent and run concurrently.
package dashboard

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/hackgods/healthcare-portal/internal/appointment"
	"github.com/hackgods/healthcare-portal/internal/facility"
	"github.com/hackgods/healthcare-portal/internal/provider"
	"github.com/hackgods/healthcare-portal/internal/user"
	"github.com/hackgods/healthcare-portal/internal/vitals"
)

const recentLimit = 5

type Users interface {
	Get(ctx context.Context, id int64) (*user.User, error)
}

type Appointments interface {
	Next(ctx context.Context, patientID int64) (*appointment.Appointment, error)
	Recent(ctx context.Context, patientID int64, limit int) ([]appointment.Appointment, error)
}

type Facilities interface {
	ListForPatient(ctx context.Context, patientID int64) ([]facility.Facility, error)
}

type Providers interface {
	CareTeam(ctx context.Context, patientID int64) ([]provider.Provider, error)
}

type Vitals interface {
	Latest(ctx context.Context, userID int64) (*vitals.Record, error)
}

type Owner struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type Alert struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type Dashboard struct {
	User               Owner                     `json:"user"`
	NextAppointment    *appointment.Appointment  `json:"nextAppointment"`
	RecentAppointments []appointment.Appointment `json:"recentAppointments"`
	Facilities         []facility.Facility       `json:"facilities"`
	CareTeam           []provider.Provider       `json:"careTeam"`
	Vitals             *vitals.Record            `json:"vitals"`
	Alerts             []Alert                   `json:"alerts"`
}

type Service struct {
	users        Users
	appointments Appointments
	facilities   Facilities
	providers    Providers
	vitals       Vitals
}

func NewService(u Users, a Appointments, f Facilities, p Providers, v Vitals) *Service {
	return &Service{users: u, appointments: a, facilities: f, providers: p, vitals: v}
}

// Build fails as a whole if any read fails.
func (s *Service) Build(ctx context.Context, userID int64) (*Dashboard, error) {
	d := &Dashboard{Alerts: []Alert{}}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		u, err := s.users.Get(ctx, userID)
		if err != nil {
			return err
		}
		d.User = Owner{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
		return nil
	})
	g.Go(func() (err error) {
		d.NextAppointment, err = s.appointments.Next(ctx, userID)
		return err
	})
	g.Go(func() (err error) {
		d.RecentAppointments, err = s.appointments.Recent(ctx, userID, recentLimit)
		return err
	})
	g.Go(func() (err error) {
		d.Facilities, err = s.facilities.ListForPatient(ctx, userID)
		return err
	})
	g.Go(func() (err error) {
		d.CareTeam, err = s.providers.CareTeam(ctx, userID)
		return err
	})
	g.Go(func() (err error) {
		d.Vitals, err = s.vitals.Latest(ctx, userID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build dashboard: %w", err)
	}
	return d, nil
}
