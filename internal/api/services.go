package api

import (
	"context"
	"io"

	"github.com/hackgods/healthcare-portal/internal/activity"
	"github.com/hackgods/healthcare-portal/internal/admin"
	"github.com/hackgods/healthcare-portal/internal/appointment"
	"github.com/hackgods/healthcare-portal/internal/auth"
	"github.com/hackgods/healthcare-portal/internal/dashboard"
	"github.com/hackgods/healthcare-portal/internal/event"
	"github.com/hackgods/healthcare-portal/internal/facility"
	"github.com/hackgods/healthcare-portal/internal/provider"
	"github.com/hackgods/healthcare-portal/internal/upload"
	"github.com/hackgods/healthcare-portal/internal/user"
	"github.com/hackgods/healthcare-portal/internal/vitals"
)

// The handlers depend on these narrow views of the domain services so they
// can be exercised without a database.

type UserService interface {
	Register(ctx context.Context, in user.RegisterInput) (user.AuthResult, error)
	Login(ctx context.Context, in user.LoginInput) (user.AuthResult, error)
	SetupTwoFactor(ctx context.Context, id auth.Identity) (auth.TOTPSetup, error)
	DisableTwoFactor(ctx context.Context, userID int64) error
	Get(ctx context.Context, id int64) (*user.User, error)
	UpdateMe(ctx context.Context, id int64, p user.Patch) (*user.User, error)
	AdminCreate(ctx context.Context, in user.CreateInput) (*user.User, error)
	AdminUpdate(ctx context.Context, id int64, p user.Patch) (*user.User, error)
	List(ctx context.Context, f user.ListFilter) ([]user.User, error)
	Delete(ctx context.Context, actor auth.Identity, id int64) error
}

type AppointmentService interface {
	Create(ctx context.Context, patientID int64, in appointment.CreateInput) (*appointment.Appointment, error)
	Get(ctx context.Context, caller auth.Identity, id int64) (*appointment.Appointment, error)
	ListForPatient(ctx context.Context, patientID int64, f appointment.ListFilter) ([]appointment.Appointment, error)
	Update(ctx context.Context, caller auth.Identity, id int64, p appointment.Patch) (*appointment.Appointment, error)
	Cancel(ctx context.Context, caller auth.Identity, id int64) (*appointment.Appointment, error)
	AvailableSlots(ctx context.Context, providerID int64, date string) ([]string, error)
	AdminList(ctx context.Context, f appointment.AdminFilter) (appointment.Page, error)
	AdminUpdate(ctx context.Context, admin auth.Identity, id int64, p appointment.AdminPatch) (*appointment.Appointment, error)
}

type ProviderService interface {
	List(ctx context.Context, f provider.ListFilter) ([]provider.Provider, error)
	ListBySpecialty(ctx context.Context, specialty string) ([]provider.Provider, error)
	Get(ctx context.Context, id int64) (*provider.Provider, error)
	Create(ctx context.Context, in provider.Input) (*provider.Provider, error)
	Update(ctx context.Context, id int64, p provider.Patch) (*provider.Provider, error)
	Delete(ctx context.Context, id int64) error
	Windows(ctx context.Context, providerID int64) ([]provider.Window, error)
	CreateWindow(ctx context.Context, providerID int64, in provider.WindowInput) (*provider.Window, error)
	UpdateWindow(ctx context.Context, providerID, id int64, p provider.WindowPatch) (*provider.Window, error)
	DeleteWindow(ctx context.Context, providerID, id int64) error
}

type FacilityService interface {
	List(ctx context.Context) ([]facility.Facility, error)
	Get(ctx context.Context, id int64) (*facility.Facility, error)
	ListForPatient(ctx context.Context, patientID int64) ([]facility.Facility, error)
	Create(ctx context.Context, in facility.Input) (*facility.Facility, error)
	Update(ctx context.Context, id int64, p facility.Patch) (*facility.Facility, error)
	Delete(ctx context.Context, id int64) error
}

type EventService interface {
	List(ctx context.Context, f event.ListFilter) ([]event.Event, error)
	Get(ctx context.Context, id int64) (*event.Event, error)
	Create(ctx context.Context, in event.Input) (*event.Event, error)
	Update(ctx context.Context, id int64, p event.Patch) (*event.Event, error)
	Delete(ctx context.Context, id int64) error
	Register(ctx context.Context, eventID, userID int64) (*event.Registration, error)
	SetRegistrationStatus(ctx context.Context, actorID, eventID, userID int64, status event.RegistrationStatus) (*event.Registration, error)
	ListRegistrations(ctx context.Context, eventID int64) ([]event.Registrant, error)
	ListMine(ctx context.Context, userID int64) ([]event.MyRegistration, error)
}

type VitalsService interface {
	Record(ctx context.Context, userID int64, in vitals.Input) (*vitals.Record, error)
	List(ctx context.Context, userID int64) ([]vitals.Record, error)
	Latest(ctx context.Context, userID int64) (*vitals.Record, error)
}

type DashboardService interface {
	Build(ctx context.Context, userID int64) (*dashboard.Dashboard, error)
}

type AdminService interface {
	Stats(ctx context.Context) (admin.Stats, error)
	Logs(ctx context.Context, f activity.Filter) ([]activity.Entry, error)
	ExportAppointments(ctx context.Context, f appointment.AdminFilter, w io.Writer) error
}

// ImageStore is satisfied by *upload.Store.
type ImageStore interface {
	Write(kind string, ownerID int64, img upload.Image) (string, error)
	Remove(url string) error
}
