package event

import (
	"context"
	"errors"
)

var (
	ErrEventNotFound        = errors.New("event not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	// ErrAlreadyRegistered covers both an existing (event, user) pair and a
	// missing event; callers cannot tell the two apart.
	ErrAlreadyRegistered = errors.New("already registered or event not found")
)

type Repository interface {
	List(ctx context.Context, f ListFilter) ([]Event, error)
	Get(ctx context.Context, id int64) (*Event, error)
	Create(ctx context.Context, in Input) (*Event, error)
	Update(ctx context.Context, id int64, p Patch) (*Event, error)
	Delete(ctx context.Context, id int64) error

	// Register inserts a pending row or returns ErrAlreadyRegistered.
	Register(ctx context.Context, eventID, userID int64) (*Registration, error)
	SetRegistrationStatus(ctx context.Context, eventID, userID int64, status RegistrationStatus) (*Registration, error)
	ListRegistrations(ctx context.Context, eventID int64) ([]Registrant, error)
	ListByUser(ctx context.Context, userID int64) ([]MyRegistration, error)
}
