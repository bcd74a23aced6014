package provider

import (
	"context"
	"fmt"

	"github.com/hackgods/healthcare-portal/internal/validate"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Provider, error) {
	out, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	return out, nil
}

func (s *Service) ListBySpecialty(ctx context.Context, specialty string) ([]Provider, error) {
	return s.List(ctx, ListFilter{Specialty: specialty})
}

func (s *Service) Get(ctx context.Context, id int64) (*Provider, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get provider: %w", err)
	}
	return p, nil
}

// CareTeam lists the providers a patient has had appointments with.
func (s *Service) CareTeam(ctx context.Context, patientID int64) ([]Provider, error) {
	out, err := s.repo.ListForPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("care team: %w", err)
	}
	return out, nil
}

var fieldMessages = validate.Messages{
	"first_name": "First name is required",
	"last_name":  "Last name is required",
	"specialty":  "Specialty is required",
	"email":      "Valid email is required",
}

func (s *Service) Create(ctx context.Context, in Input) (*Provider, error) {
	var c validate.Checker
	c.Struct(in, fieldMessages)
	if err := c.Err(); err != nil {
		return nil, err
	}

	p, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, id int64, p Patch) (*Provider, error) {
	if p.Empty() {
		return s.Get(ctx, id)
	}

	var c validate.Checker
	c.Struct(p, fieldMessages)
	if err := c.Err(); err != nil {
		return nil, err
	}
	// an empty photo_url removes the photo
	if p.PhotoURL != nil && *p.PhotoURL == "" {
		p.PhotoURL = nil
		p.ClearPhoto = true
	}

	updated, err := s.repo.Update(ctx, id, p)
	if err != nil {
		return nil, fmt.Errorf("update provider: %w", err)
	}
	return updated, nil
}

// Delete removes the provider and its availability windows. Appointments keep
// their provider_id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete provider: %w", err)
	}
	return nil
}

func (s *Service) Windows(ctx context.Context, providerID int64) ([]Window, error) {
	out, err := s.repo.ListWindows(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("list availability: %w", err)
	}
	return out, nil
}

func checkWindow(in *WindowInput) error {
	var c validate.Checker
	c.Check(validate.Date(in.Date), "available_date", "Valid date is required")
	start, okStart := validate.TimeOfDay(in.StartTime)
	c.Check(okStart, "start_time", "Valid start time is required")
	end, okEnd := validate.TimeOfDay(in.EndTime)
	c.Check(okEnd, "end_time", "Valid end time is required")
	if okStart && okEnd {
		c.Check(start < end, "end_time", "End time must be after start time")
	}
	in.StartTime, in.EndTime = start, end
	return c.Err()
}

func (s *Service) CreateWindow(ctx context.Context, providerID int64, in WindowInput) (*Window, error) {
	if err := checkWindow(&in); err != nil {
		return nil, err
	}
	w, err := s.repo.CreateWindow(ctx, providerID, in)
	if err != nil {
		return nil, fmt.Errorf("create availability: %w", err)
	}
	return w, nil
}

func (s *Service) UpdateWindow(ctx context.Context, providerID, id int64, p WindowPatch) (*Window, error) {
	current, err := s.repo.GetWindow(ctx, providerID, id)
	if err != nil {
		return nil, fmt.Errorf("load availability: %w", err)
	}

	in := WindowInput{Date: current.Date, StartTime: current.StartTime, EndTime: current.EndTime}
	if p.Date != nil {
		in.Date = *p.Date
	}
	if p.StartTime != nil {
		in.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		in.EndTime = *p.EndTime
	}
	if err := checkWindow(&in); err != nil {
		return nil, err
	}

	w, err := s.repo.UpdateWindow(ctx, providerID, id, in)
	if err != nil {
		return nil, fmt.Errorf("update availability: %w", err)
	}
	return w, nil
}

func (s *Service) DeleteWindow(ctx context.Context, providerID, id int64) error {
	if err := s.repo.DeleteWindow(ctx, providerID, id); err != nil {
		return fmt.Errorf("delete availability: %w", err)
	}
	return nil
}
