package appointment

import (
	"context"
	"fmt"

	"github.com/hackgods/healthcare-portal/internal/validate"
)

const (
	dayOpen   = 9 * 60  // 09:00 inclusive
	dayClose  = 17 * 60 // 17:00 exclusive
	slotWidth = 30
)

// SlotGrid returns the fixed half-hour grid of a booking day, ascending.
func SlotGrid() []string {
	slots := make([]string, 0, (dayClose-dayOpen)/slotWidth)
	for m := dayOpen; m < dayClose; m += slotWidth {
		slots = append(slots, fmt.Sprintf("%02d:%02d:00", m/60, m%60))
	}
	return slots
}

// FreeSlots removes every booked time from the grid. Booked times may be
// HH:MM or HH:MM:SS; anything else matches nothing.
func FreeSlots(booked []string) []string {
	taken := make(map[string]struct{}, len(booked))
	for _, b := range booked {
		if t, ok := validate.TimeOfDay(b); ok {
			taken[t] = struct{}{}
		}
	}

	grid := SlotGrid()
	free := grid[:0]
	for _, slot := range grid {
		if _, ok := taken[slot]; !ok {
			free = append(free, slot)
		}
	}
	return free
}

// AvailableSlots lists the bookable times for a provider on a date. An
// unknown provider yields an empty list rather than an error. Slots earlier
// today are not filtered out.
func (s *Service) AvailableSlots(ctx context.Context, providerID int64, date string) ([]string, error) {
	if !validate.Date(date) {
		return nil, validate.Field("date", "Valid date is required")
	}

	exists, err := s.repo.ProviderExists(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("check provider: %w", err)
	}
	if !exists {
		return []string{}, nil
	}

	booked, err := s.repo.ScheduledTimes(ctx, providerID, date)
	if err != nil {
		return nil, fmt.Errorf("load scheduled times: %w", err)
	}
	return FreeSlots(booked), nil
}

func (s *Service) slotFree(ctx context.Context, providerID int64, date, at string) (bool, error) {
	slots, err := s.AvailableSlots(ctx, providerID, date)
	if err != nil {
		return false, err
	}
	for _, slot := range slots {
		if slot == at {
			return true, nil
		}
	}
	return false, nil
}
