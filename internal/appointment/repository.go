package appointment

import (
	"context"
	"errors"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	// ErrSlotTaken is returned by the store when a write would leave two
	// scheduled appointments on the same provider, date and time.
	ErrSlotTaken = errors.New("slot already has a scheduled appointment")
)

// NewAppointment is the row written on booking.
type NewAppointment struct {
	PatientID  int64
	ProviderID int64
	FacilityID int64
	Date       string
	Time       string
	Reason     string
}

// Repository contains all DB interactions needed by the service.
type Repository interface {
	ProviderExists(ctx context.Context, providerID int64) (bool, error)
	// ScheduledTimes returns HH:MM:SS times of appointments in status scheduled.
	ScheduledTimes(ctx context.Context, providerID int64, date string) ([]string, error)

	Create(ctx context.Context, in NewAppointment) (*Appointment, error)
	GetByID(ctx context.Context, id int64) (*Appointment, error)
	ListByPatient(ctx context.Context, patientID int64, f ListFilter) ([]Appointment, error)
	NextForPatient(ctx context.Context, patientID int64) (*Appointment, error)
	RecentForPatient(ctx context.Context, patientID int64, limit int) ([]Appointment, error)

	Update(ctx context.Context, id int64, p Patch) (*Appointment, error)
	AdminUpdate(ctx context.Context, id int64, p AdminPatch) (*Appointment, error)
	SetStatus(ctx context.Context, id int64, status Status) (*Appointment, error)

	AdminList(ctx context.Context, f AdminFilter) ([]Appointment, int, error)
}
