package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hackgods/healthcare-portal/internal/activity"
	"github.com/hackgods/healthcare-portal/internal/auth"
	redisclient "github.com/hackgods/healthcare-portal/internal/redis"
	"github.com/hackgods/healthcare-portal/internal/validate"
)

var (
	ErrSlotUnavailable = errors.New("selected time slot is not available")
	ErrSlotBeingBooked = errors.New("slot is currently being booked, please retry")
	ErrForbidden       = errors.New("access denied")
)

type Service struct {
	repo     Repository
	locker   redisclient.Locker
	activity *activity.Recorder
	log      zerolog.Logger
}

// NewService wires the lifecycle manager. A nil locker runs the booking
// check without cross-process serialisation.
func NewService(repo Repository, locker redisclient.Locker, rec *activity.Recorder, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		locker:   locker,
		activity: rec,
		log:      log.With().Str("component", "appointment").Logger(),
	}
}

func (s *Service) withSlot(ctx context.Context, key redisclient.SlotKey, fn func(ctx context.Context) error) error {
	if s.locker == nil {
		return fn(ctx)
	}
	err := s.locker.WithSlotLock(ctx, key, fn)
	if errors.Is(err, redisclient.ErrLockNotAcquired) {
		s.log.Debug().Str("slot", key.String()).Msg("slot lock contended")
		return ErrSlotBeingBooked
	}
	return err
}

var fieldMessages = validate.Messages{
	"provider_id":      "Provider ID is required",
	"facility_id":      "Facility ID is required",
	"appointment_date": "Valid date is required",
	"appointment_time": "Valid time is required",
	"reason":           "Reason is required",
}

func validateCreate(in CreateInput) (string, error) {
	var c validate.Checker
	c.Struct(in, fieldMessages)
	at, _ := validate.TimeOfDay(in.Time)
	return at, c.Err()
}

// Create books a pending appointment for the patient. The availability check
// and the insert run under the slot lock for (provider, date, time).
func (s *Service) Create(ctx context.Context, patientID int64, in CreateInput) (*Appointment, error) {
	at, err := validateCreate(in)
	if err != nil {
		return nil, err
	}

	key := redisclient.SlotKey{ProviderID: in.ProviderID, Date: in.Date, Time: at}
	var created *Appointment

	err = s.withSlot(ctx, key, func(lockCtx context.Context) error {
		free, err := s.slotFree(lockCtx, in.ProviderID, in.Date, at)
		if err != nil {
			return fmt.Errorf("check availability: %w", err)
		}
		if !free {
			return ErrSlotUnavailable
		}

		appt, err := s.repo.Create(lockCtx, NewAppointment{
			PatientID:  patientID,
			ProviderID: in.ProviderID,
			FacilityID: in.FacilityID,
			Date:       in.Date,
			Time:       at,
			Reason:     in.Reason,
		})
		if err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}
		created = appt

		s.activity.Record(lockCtx, activity.AppointmentCreated, activity.SubjectAppointment, appt.ID, patientID, map[string]any{
			"provider_id": in.ProviderID,
			"date":        in.Date,
			"time":        at,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// load checks existence before ownership, so a missing row is always
// ErrAppointmentNotFound and never ErrForbidden.
func (s *Service) load(ctx context.Context, caller auth.Identity, id int64) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load appointment: %w", err)
	}
	if !caller.IsAdmin() && appt.PatientID != caller.ID {
		return nil, ErrForbidden
	}
	return appt, nil
}

func (s *Service) Get(ctx context.Context, caller auth.Identity, id int64) (*Appointment, error) {
	return s.load(ctx, caller, id)
}

func (s *Service) ListForPatient(ctx context.Context, patientID int64, f ListFilter) ([]Appointment, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, validate.Field("status", "Invalid status")
	}
	out, err := s.repo.ListByPatient(ctx, patientID, f)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return out, nil
}

// Next returns the earliest upcoming pending or scheduled appointment, or nil.
func (s *Service) Next(ctx context.Context, patientID int64) (*Appointment, error) {
	a, err := s.repo.NextForPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("next appointment: %w", err)
	}
	return a, nil
}

func (s *Service) Recent(ctx context.Context, patientID int64, limit int) ([]Appointment, error) {
	out, err := s.repo.RecentForPatient(ctx, patientID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent appointments: %w", err)
	}
	return out, nil
}

func validatePatch(p *Patch) error {
	var c validate.Checker
	c.Struct(p, fieldMessages)
	if p.Time != nil {
		if at, ok := validate.TimeOfDay(*p.Time); ok {
			p.Time = &at
		}
	}
	return c.Err()
}

// Update applies a patient's partial change. Moving to a different
// provider, date or time requires the new slot to be available.
func (s *Service) Update(ctx context.Context, caller auth.Identity, id int64, p Patch) (*Appointment, error) {
	current, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if p.Empty() {
		return current, nil
	}
	if err := validatePatch(&p); err != nil {
		return nil, err
	}

	target := redisclient.SlotKey{ProviderID: current.ProviderID, Date: current.Date, Time: current.Time}
	if p.ProviderID != nil {
		target.ProviderID = *p.ProviderID
	}
	if p.Date != nil {
		target.Date = *p.Date
	}
	if p.Time != nil {
		target.Time = *p.Time
	}
	moved := target.ProviderID != current.ProviderID || target.Date != current.Date || target.Time != current.Time

	var updated *Appointment
	apply := func(ctx context.Context) error {
		if moved {
			free, err := s.slotFree(ctx, target.ProviderID, target.Date, target.Time)
			if err != nil {
				return fmt.Errorf("check availability: %w", err)
			}
			if !free {
				return ErrSlotUnavailable
			}
		}
		appt, err := s.repo.Update(ctx, id, p)
		if errors.Is(err, ErrSlotTaken) {
			return ErrSlotUnavailable
		}
		if err != nil {
			return fmt.Errorf("update appointment: %w", err)
		}
		updated = appt
		return nil
	}

	if moved {
		err = s.withSlot(ctx, target, apply)
	} else {
		err = apply(ctx)
	}
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, activity.AppointmentUpdated, activity.SubjectAppointment, id, caller.ID, map[string]any{
		"moved": moved,
	})
	return updated, nil
}

// AdminUpdate sets status and notes without an availability check or a
// transition check. A second scheduled appointment on the same slot is
// rejected by the store and reported as ErrSlotUnavailable.
func (s *Service) AdminUpdate(ctx context.Context, admin auth.Identity, id int64, p AdminPatch) (*Appointment, error) {
	if p.Status != nil && !p.Status.Valid() {
		return nil, validate.Field("status", "Invalid status")
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load appointment: %w", err)
	}
	if p.Empty() {
		return current, nil
	}

	updated, err := s.repo.AdminUpdate(ctx, id, p)
	if errors.Is(err, ErrSlotTaken) {
		return nil, ErrSlotUnavailable
	}
	if err != nil {
		return nil, fmt.Errorf("admin update appointment: %w", err)
	}

	if p.Status != nil && *p.Status != current.Status {
		if !current.Status.CanTransitionTo(*p.Status) {
			s.log.Info().
				Int64("appointment_id", id).
				Str("from", string(current.Status)).
				Str("to", string(*p.Status)).
				Msg("admin status change outside lifecycle")
		}
		s.activity.Record(ctx, activity.AppointmentStatusChanged, activity.SubjectAppointment, id, admin.ID, map[string]any{
			"from": current.Status,
			"to":   *p.Status,
		})
	}
	return updated, nil
}

// Cancel forces status cancelled whatever the current status is.
func (s *Service) Cancel(ctx context.Context, caller auth.Identity, id int64) (*Appointment, error) {
	current, err := s.load(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.SetStatus(ctx, id, StatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("cancel appointment: %w", err)
	}

	s.activity.Record(ctx, activity.AppointmentCancelled, activity.SubjectAppointment, id, caller.ID, map[string]any{
		"from": current.Status,
	})
	return updated, nil
}

func (s *Service) AdminList(ctx context.Context, f AdminFilter) (Page, error) {
	var c validate.Checker
	c.Check(f.Status == "" || f.Status.Valid(), "status", "Invalid status")
	c.Check(f.DateFrom == "" || validate.Date(f.DateFrom), "date_from", "Valid date is required")
	c.Check(f.DateTo == "" || validate.Date(f.DateTo), "date_to", "Valid date is required")
	if err := c.Err(); err != nil {
		return Page{}, err
	}
	f.normalize()

	items, total, err := s.repo.AdminList(ctx, f)
	if err != nil {
		return Page{}, fmt.Errorf("admin list appointments: %w", err)
	}
	return Page{Appointments: items, Total: total, Page: f.Page, Limit: f.Limit}, nil
}
