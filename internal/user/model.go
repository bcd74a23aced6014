package user

import "time"

type User struct {
	ID                int64     `json:"id"`
	Email             string    `json:"email"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	Phone             *string   `json:"phone"`
	DateOfBirth       *string   `json:"date_of_birth"`
	Role              string    `json:"role"`
	TwoFactorEnabled  bool      `json:"two_factor_enabled"`
	ProfilePictureURL *string   `json:"profile_picture_url"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	PasswordHash    string  `json:"-"`
	TwoFactorSecret *string `json:"-"`
}

// Summary is the trimmed user returned alongside a token.
type Summary struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

func (u *User) Summary() Summary {
	return Summary{ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName, Role: u.Role}
}

type NewUser struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        *string
	DateOfBirth  *string
	Role         string
}

type RegisterInput struct {
	Email       string  `json:"email" validate:"required,email"`
	Password    string  `json:"password" validate:"min=6"`
	FirstName   string  `json:"first_name" validate:"notblank"`
	LastName    string  `json:"last_name" validate:"notblank"`
	Phone       *string `json:"phone"`
	DateOfBirth *string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
}

type LoginInput struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	TwoFactorCode string `json:"twoFactorCode"`
}

// AuthResult is the outcome of register or login. When RequiresTwoFactor is
// set, User and Token are empty.
type AuthResult struct {
	RequiresTwoFactor bool
	User              Summary
	Token             string
}

// Patch is a partial user update. Role is honoured only on the admin path.
type Patch struct {
	Email             *string `json:"email" validate:"omitnil,email"`
	FirstName         *string `json:"first_name" validate:"omitnil,notblank"`
	LastName          *string `json:"last_name" validate:"omitnil,notblank"`
	Phone             *string `json:"phone"`
	DateOfBirth       *string `json:"date_of_birth" validate:"omitnil,datetime=2006-01-02"`
	Role              *string `json:"role"`
	ProfilePictureURL *string `json:"profile_picture_url"`
}

func (p Patch) Empty() bool {
	return p.Email == nil && p.FirstName == nil && p.LastName == nil && p.Phone == nil &&
		p.DateOfBirth == nil && p.Role == nil && p.ProfilePictureURL == nil
}

type CreateInput struct {
	RegisterInput
	Role string `json:"role"`
}

type ListFilter struct {
	Role   string
	Search string
	Page   int
	Limit  int
}
