package event

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hackgods/healthcare-portal/internal/activity"
	"github.com/hackgods/healthcare-portal/internal/validate"
)

type Service struct {
	repo     Repository
	activity *activity.Recorder
	log      zerolog.Logger
}

func NewService(repo Repository, rec *activity.Recorder, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		activity: rec,
		log:      log.With().Str("component", "event").Logger(),
	}
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Event, error) {
	if f.Type != "" && !f.Type.Valid() {
		return nil, validate.Field("type", "Invalid event type")
	}
	out, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Event, error) {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

var fieldMessages = validate.Messages{
	"title":      "Title is required",
	"event_date": "Valid date is required",
	"event_time": "Valid time is required (HH:MM:SS)",
	"event_type": "Invalid event type",
	"capacity":   "Capacity must be non-negative",
}

func (s *Service) Create(ctx context.Context, in Input) (*Event, error) {
	var c validate.Checker
	c.Struct(in, fieldMessages)
	if err := c.Err(); err != nil {
		return nil, err
	}
	in.Time, _ = validate.TimeOfDay(in.Time)

	e, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return e, nil
}

func (s *Service) Update(ctx context.Context, id int64, p Patch) (*Event, error) {
	if p.Empty() {
		return s.Get(ctx, id)
	}

	var c validate.Checker
	c.Struct(p, fieldMessages)
	if err := c.Err(); err != nil {
		return nil, err
	}
	if p.Time != nil {
		at, _ := validate.TimeOfDay(*p.Time)
		p.Time = &at
	}

	e, err := s.repo.Update(ctx, id, p)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return e, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// Register adds a pending registration. Registering twice, or for an event
// that does not exist, yields ErrAlreadyRegistered and writes nothing.
// Capacity is not checked.
func (s *Service) Register(ctx context.Context, eventID, userID int64) (*Registration, error) {
	reg, err := s.repo.Register(ctx, eventID, userID)
	if err != nil {
		return nil, fmt.Errorf("register for event: %w", err)
	}

	s.activity.Record(ctx, activity.EventRegistered, activity.SubjectRegistration, reg.ID, userID, map[string]any{
		"event_id": eventID,
	})
	return reg, nil
}

// SetRegistrationStatus moves a registration to any status; there is no
// transition check.
func (s *Service) SetRegistrationStatus(ctx context.Context, actorID, eventID, userID int64, status RegistrationStatus) (*Registration, error) {
	if !status.Valid() {
		return nil, validate.Field("status", "Invalid status")
	}

	reg, err := s.repo.SetRegistrationStatus(ctx, eventID, userID, status)
	if err != nil {
		return nil, fmt.Errorf("set registration status: %w", err)
	}

	s.activity.Record(ctx, activity.RegistrationStatusSet, activity.SubjectRegistration, reg.ID, actorID, map[string]any{
		"event_id": eventID,
		"user_id":  userID,
		"status":   status,
	})
	return reg, nil
}

func (s *Service) ListRegistrations(ctx context.Context, eventID int64) ([]Registrant, error) {
	out, err := s.repo.ListRegistrations(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return out, nil
}

func (s *Service) ListMine(ctx context.Context, userID int64) ([]MyRegistration, error) {
	out, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list my registrations: %w", err)
	}
	return out, nil
}
