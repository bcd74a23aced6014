package event

import "time"

type Type string

const (
	TypeClass     Type = "class"
	TypeScreening Type = "screening"
	TypeWebinar   Type = "webinar"
)

func (t Type) Valid() bool {
	return t == TypeClass || t == TypeScreening || t == TypeWebinar
}

type RegistrationStatus string

const (
	RegPending   RegistrationStatus = "pending"
	RegConfirmed RegistrationStatus = "confirmed"
	RegScheduled RegistrationStatus = "scheduled"
	RegCompleted RegistrationStatus = "completed"
	RegCancelled RegistrationStatus = "cancelled"
)

func (s RegistrationStatus) Valid() bool {
	switch s {
	case RegPending, RegConfirmed, RegScheduled, RegCompleted, RegCancelled:
		return true
	}
	return false
}

// Event is a wellness class, screening or webinar. Capacity is informational.
type Event struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Date        string    `json:"event_date"`
	Time        string    `json:"event_time"`
	Type        Type      `json:"event_type"`
	Location    *string   `json:"location"`
	OnlineLink  *string   `json:"online_link"`
	Capacity    *int      `json:"capacity"`
	CreatedAt   time.Time `json:"created_at"`
}

type Registration struct {
	ID           int64              `json:"id"`
	EventID      int64              `json:"event_id"`
	UserID       int64              `json:"user_id"`
	Status       RegistrationStatus `json:"status"`
	RegisteredAt time.Time          `json:"registered_at"`
}

// Registrant is a registration joined with the registering user.
type Registrant struct {
	Registration
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone"`
}

// MyRegistration is an event annotated with the caller's registration.
type MyRegistration struct {
	Event
	RegisteredAt time.Time          `json:"registered_at"`
	Status       RegistrationStatus `json:"status"`
}

type Input struct {
	Title       string  `json:"title" validate:"notblank"`
	Description *string `json:"description"`
	Date        string  `json:"event_date" validate:"datetime=2006-01-02"`
	Time        string  `json:"event_time" validate:"timeofday"`
	Type        Type    `json:"event_type" validate:"oneof=class screening webinar"`
	Location    *string `json:"location"`
	OnlineLink  *string `json:"online_link"`
	Capacity    *int    `json:"capacity" validate:"omitnil,gte=0"`
}

type Patch struct {
	Title       *string `json:"title" validate:"omitnil,notblank"`
	Description *string `json:"description"`
	Date        *string `json:"event_date" validate:"omitnil,datetime=2006-01-02"`
	Time        *string `json:"event_time" validate:"omitnil,timeofday"`
	Type        *Type   `json:"event_type" validate:"omitnil,oneof=class screening webinar"`
	Location    *string `json:"location"`
	OnlineLink  *string `json:"online_link"`
	Capacity    *int    `json:"capacity" validate:"omitnil,gte=0"`
}

func (p Patch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Date == nil && p.Time == nil &&
		p.Type == nil && p.Location == nil && p.OnlineLink == nil && p.Capacity == nil
}

type ListFilter struct {
	Upcoming bool
	Type     Type
}
