package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hackgods/healthcare-portal/internal/auth"
	"github.com/hackgods/healthcare-portal/internal/validate"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidTwoFactor   = errors.New("invalid two-factor code")
	ErrCannotDeleteSelf   = errors.New("cannot delete your own account")
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

type Service struct {
	repo       Repository
	tokens     *auth.Tokens
	totpIssuer string
	now        func() time.Time
	log        zerolog.Logger
}

func NewService(repo Repository, tokens *auth.Tokens, totpIssuer string, log zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		tokens:     tokens,
		totpIssuer: totpIssuer,
		now:        time.Now,
		log:        log.With().Str("component", "user").Logger(),
	}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

var fieldMessages = validate.Messages{
	"email":         "Valid email is required",
	"password":      "Password must be at least 6 characters",
	"first_name":    "First name is required",
	"last_name":     "Last name is required",
	"date_of_birth": "Valid date of birth is required",
}

func checkRegister(c *validate.Checker, in RegisterInput) {
	c.Struct(in, fieldMessages)
}

func (s *Service) create(ctx context.Context, in RegisterInput, role string) (*User, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	dob := in.DateOfBirth
	if dob != nil && *dob == "" {
		dob = nil
	}

	u, err := s.repo.Create(ctx, NewUser{
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Phone:        in.Phone,
		DateOfBirth:  dob,
		Role:         role,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *Service) issue(u *User) (AuthResult, error) {
	token, err := s.tokens.Issue(auth.Identity{ID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}
	return AuthResult{User: u.Summary(), Token: token}, nil
}

// Register creates a patient account and signs it in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	var c validate.Checker
	checkRegister(&c, in)
	if err := c.Err(); err != nil {
		return AuthResult{}, err
	}

	u, err := s.create(ctx, in, auth.RolePatient)
	if err != nil {
		return AuthResult{}, err
	}
	return s.issue(u)
}

// Login checks the password and, when enabled, the TOTP code. Without a code
// for a 2FA account the result only carries RequiresTwoFactor.
func (s *Service) Login(ctx context.Context, in LoginInput) (AuthResult, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(in.Email))
	if errors.Is(err, ErrUserNotFound) {
		return AuthResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return AuthResult{}, fmt.Errorf("load user: %w", err)
	}
	if !auth.CheckPassword(u.PasswordHash, in.Password) {
		return AuthResult{}, ErrInvalidCredentials
	}

	if u.TwoFactorEnabled {
		if in.TwoFactorCode == "" {
			return AuthResult{RequiresTwoFactor: true}, nil
		}
		if u.TwoFactorSecret == nil || !auth.ValidateTOTP(in.TwoFactorCode, *u.TwoFactorSecret, s.now()) {
			return AuthResult{}, ErrInvalidTwoFactor
		}
	}

	return s.issue(u)
}

// SetupTwoFactor generates and stores a fresh secret and enables 2FA.
func (s *Service) SetupTwoFactor(ctx context.Context, id auth.Identity) (auth.TOTPSetup, error) {
	setup, err := auth.GenerateTOTP(s.totpIssuer, id.Email)
	if err != nil {
		return auth.TOTPSetup{}, err
	}
	if err := s.repo.SetTwoFactor(ctx, id.ID, &setup.Secret, true); err != nil {
		return auth.TOTPSetup{}, fmt.Errorf("store two factor secret: %w", err)
	}
	return setup, nil
}

func (s *Service) DisableTwoFactor(ctx context.Context, userID int64) error {
	if err := s.repo.SetTwoFactor(ctx, userID, nil, false); err != nil {
		return fmt.Errorf("disable two factor: %w", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func checkPatch(p *Patch) error {
	var c validate.Checker
	if p.Email != nil {
		e := normalizeEmail(*p.Email)
		p.Email = &e
	}
	c.Struct(p, fieldMessages)
	if p.Role != nil {
		c.Check(auth.ValidRole(*p.Role), "role", "Invalid role")
	}
	return c.Err()
}

func (s *Service) update(ctx context.Context, id int64, p Patch) (*User, error) {
	if p.Empty() {
		return s.Get(ctx, id)
	}
	if err := checkPatch(&p); err != nil {
		return nil, err
	}
	u, err := s.repo.Update(ctx, id, p)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

// UpdateMe is the self-service profile edit; the role cannot change here.
func (s *Service) UpdateMe(ctx context.Context, id int64, p Patch) (*User, error) {
	p.Role = nil
	return s.update(ctx, id, p)
}

// AdminUpdate may change the role. Passwords are never updated here.
func (s *Service) AdminUpdate(ctx context.Context, id int64, p Patch) (*User, error) {
	return s.update(ctx, id, p)
}

func (s *Service) AdminCreate(ctx context.Context, in CreateInput) (*User, error) {
	in.Email = normalizeEmail(in.Email)
	if in.Role == "" {
		in.Role = auth.RolePatient
	}
	var c validate.Checker
	checkRegister(&c, in.RegisterInput)
	c.Check(auth.ValidRole(in.Role), "role", "Invalid role")
	if err := c.Err(); err != nil {
		return nil, err
	}
	return s.create(ctx, in.RegisterInput, in.Role)
}

// EnsureAdmin creates an admin account, or when the email is already taken
// promotes that account to admin and resets its password and name.
func (s *Service) EnsureAdmin(ctx context.Context, in RegisterInput) (*User, error) {
	u, err := s.AdminCreate(ctx, CreateInput{RegisterInput: in, Role: auth.RoleAdmin})
	if !errors.Is(err, ErrEmailTaken) {
		return u, err
	}

	existing, err := s.repo.GetByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return nil, fmt.Errorf("load existing admin: %w", err)
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.SetPasswordHash(ctx, existing.ID, hash); err != nil {
		return nil, fmt.Errorf("reset admin password: %w", err)
	}

	role := auth.RoleAdmin
	first, last := strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName)
	return s.update(ctx, existing.ID, Patch{Role: &role, FirstName: &first, LastName: &last})
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]User, error) {
	if f.Role != "" && !auth.ValidRole(f.Role) {
		return nil, validate.Field("role", "Invalid role")
	}
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	out, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, actor auth.Identity, id int64) error {
	if actor.ID == id {
		return ErrCannotDeleteSelf
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.log.Info().Int64("user_id", id).Int64("actor_id", actor.ID).Msg("user deleted")
	return nil
}
