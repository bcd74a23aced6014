package appointment

import (
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no-show"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusScheduled, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// CanTransitionTo describes the lifecycle:
// pending -> scheduled -> completed, cancelled from pending or scheduled,
// no-show from scheduled. The admin path does not enforce it.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusScheduled || next == StatusCancelled
	case StatusScheduled:
		return next == StatusCompleted || next == StatusCancelled || next == StatusNoShow
	}
	return false
}

type Appointment struct {
	ID         int64     `json:"id"`
	PatientID  int64     `json:"patient_id"`
	ProviderID int64     `json:"provider_id"`
	FacilityID int64     `json:"facility_id"`
	Date       string    `json:"appointment_date"`
	Time       string    `json:"appointment_time"`
	Reason     string    `json:"reason"`
	Notes      *string   `json:"notes"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Details
}

// Details are the joined display fields. Provider and facility columns are
// null once the referenced row has been deleted.
type Details struct {
	ProviderFirstName *string `json:"provider_first_name"`
	ProviderLastName  *string `json:"provider_last_name"`
	Specialty         *string `json:"specialty"`
	ProviderPhotoURL  *string `json:"provider_photo_url"`
	FacilityName      *string `json:"facility_name"`
	FacilityAddress   *string `json:"facility_address"`
	FacilityPhone     *string `json:"facility_phone"`
	PatientFirstName  *string `json:"patient_first_name,omitempty"`
	PatientLastName   *string `json:"patient_last_name,omitempty"`
	PatientEmail      *string `json:"patient_email,omitempty"`
}

type CreateInput struct {
	ProviderID int64  `json:"provider_id" validate:"gt=0"`
	FacilityID int64  `json:"facility_id" validate:"gt=0"`
	Date       string `json:"appointment_date" validate:"datetime=2006-01-02"`
	Time       string `json:"appointment_time" validate:"timeofday"`
	Reason     string `json:"reason" validate:"notblank"`
}

// Patch lists the fields a patient may change; nil means unchanged.
type Patch struct {
	ProviderID *int64  `json:"provider_id" validate:"omitnil,gt=0"`
	FacilityID *int64  `json:"facility_id" validate:"omitnil,gt=0"`
	Date       *string `json:"appointment_date" validate:"omitnil,datetime=2006-01-02"`
	Time       *string `json:"appointment_time" validate:"omitnil,timeofday"`
	Reason     *string `json:"reason" validate:"omitnil,notblank"`
}

func (p Patch) Empty() bool {
	return p.ProviderID == nil && p.FacilityID == nil && p.Date == nil && p.Time == nil && p.Reason == nil
}

type AdminPatch struct {
	Status *Status `json:"status"`
	Notes  *string `json:"notes"`
}

func (p AdminPatch) Empty() bool {
	return p.Status == nil && p.Notes == nil
}

type ListFilter struct {
	Status   Status
	Upcoming bool
}

type AdminFilter struct {
	Status     Status
	ProviderID int64
	FacilityID int64
	DateFrom   string
	DateTo     string
	Page       int
	Limit      int
}

const (
	DefaultAdminLimit = 50
	MaxAdminLimit     = 500
)

func (f *AdminFilter) normalize() {
	if f.Limit <= 0 {
		f.Limit = DefaultAdminLimit
	}
	if f.Limit > MaxAdminLimit {
		f.Limit = MaxAdminLimit
	}
	if f.Page <= 0 {
		f.Page = 1
	}
}

func (f AdminFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type Page struct {
	Appointments []Appointment `json:"appointments"`
	Total        int           `json:"total"`
	Page         int           `json:"page"`
	Limit        int           `json:"limit"`
}
