package provider

import "time"

type Provider struct {
	ID         int64         `json:"id"`
	FirstName  string        `json:"first_name"`
	LastName   string        `json:"last_name"`
	Specialty  string        `json:"specialty"`
	Bio        *string       `json:"bio"`
	PhotoURL   *string       `json:"photo_url"`
	Email      *string       `json:"email"`
	Phone      *string       `json:"phone"`
	CreatedAt  time.Time     `json:"created_at"`
	Facilities []FacilityRef `json:"facilities,omitempty"`
}

// FacilityRef is a facility the provider practises at.
type FacilityRef struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

type Input struct {
	FirstName string  `json:"first_name" validate:"notblank"`
	LastName  string  `json:"last_name" validate:"notblank"`
	Specialty string  `json:"specialty" validate:"notblank"`
	Bio       *string `json:"bio"`
	PhotoURL  *string `json:"photo_url"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone"`
}

// Patch is a partial provider update. ClearPhoto removes the photo and wins
// over PhotoURL.
type Patch struct {
	FirstName  *string `json:"first_name" validate:"omitnil,notblank"`
	LastName   *string `json:"last_name" validate:"omitnil,notblank"`
	Specialty  *string `json:"specialty" validate:"omitnil,notblank"`
	Bio        *string `json:"bio"`
	PhotoURL   *string `json:"photo_url"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	ClearPhoto bool    `json:"-"`
}

func (p Patch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Specialty == nil && p.Bio == nil &&
		p.PhotoURL == nil && p.Email == nil && p.Phone == nil && !p.ClearPhoto
}

type ListFilter struct {
	Specialty string
	Search    string
}

// Window is an admin-declared availability interval. It is informational and
// does not feed the booking slot grid.
type Window struct {
	ID         int64     `json:"id"`
	ProviderID int64     `json:"provider_id"`
	Date       string    `json:"available_date"`
	StartTime  string    `json:"start_time"`
	EndTime    string    `json:"end_time"`
	CreatedAt  time.Time `json:"created_at"`
}

type WindowInput struct {
	Date      string `json:"available_date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type WindowPatch struct {
	Date      *string `json:"available_date"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
}
