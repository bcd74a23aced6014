package facility

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hackgods/healthcare-portal/internal/db"
	"github.com/hackgods/healthcare-portal/internal/validate"
)

var ErrFacilityNotFound = errors.New("facility not found")

type Facility struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     *string   `json:"phone"`
	Hours     *string   `json:"hours"`
	CreatedAt time.Time `json:"created_at"`
}

type Input struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Phone   *string `json:"phone"`
	Hours   *string `json:"hours"`
}

type Patch struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Hours   *string `json:"hours"`
}

func (p Patch) Empty() bool {
	return p.Name == nil && p.Address == nil && p.Phone == nil && p.Hours == nil
}

type Repository interface {
	List(ctx context.Context) ([]Facility, error)
	Get(ctx context.Context, id int64) (*Facility, error)
	ListForPatient(ctx context.Context, patientID int64) ([]Facility, error)
	Create(ctx context.Context, in Input) (*Facility, error)
	Update(ctx context.Context, id int64, p Patch) (*Facility, error)
	Delete(ctx context.Context, id int64) error
}

type PgRepository struct {
	q db.Querier
}

func NewPgRepository(q db.Querier) *PgRepository {
	return &PgRepository{q: q}
}

const columns = `f.id, f.name, f.address, f.phone, f.hours, f.created_at`

func scanFacility(row pgx.Row) (*Facility, error) {
	var f Facility
	if err := row.Scan(&f.ID, &f.Name, &f.Address, &f.Phone, &f.Hours, &f.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFacilityNotFound
		}
		return nil, err
	}
	return &f, nil
}

func collect(rows pgx.Rows, err error) ([]Facility, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Facility{}
	for rows.Next() {
		f, err := scanFacility(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

func (r *PgRepository) List(ctx context.Context) ([]Facility, error) {
	return collect(r.q.Query(ctx, `SELECT `+columns+` FROM facilities f ORDER BY f.name`))
}

func (r *PgRepository) Get(ctx context.Context, id int64) (*Facility, error) {
	return scanFacility(r.q.QueryRow(ctx, `SELECT `+columns+` FROM facilities f WHERE f.id = $1`, id))
}

func (r *PgRepository) ListForPatient(ctx context.Context, patientID int64) ([]Facility, error) {
	return collect(r.q.Query(ctx, `
		SELECT DISTINCT `+columns+`
		FROM facilities f
		JOIN appointments a ON a.facility_id = f.id
		WHERE a.patient_id = $1
		ORDER BY f.name
	`, patientID))
}

func (r *PgRepository) Create(ctx context.Context, in Input) (*Facility, error) {
	return scanFacility(r.q.QueryRow(ctx, `
		INSERT INTO facilities AS f (name, address, phone, hours)
		VALUES ($1, $2, $3, $4)
		RETURNING `+columns,
		in.Name, in.Address, in.Phone, in.Hours))
}

func (r *PgRepository) Update(ctx context.Context, id int64, p Patch) (*Facility, error) {
	return scanFacility(r.q.QueryRow(ctx, `
		UPDATE facilities AS f
		SET name    = COALESCE($2, f.name),
		    address = COALESCE($3, f.address),
		    phone   = COALESCE($4, f.phone),
		    hours   = COALESCE($5, f.hours)
		WHERE f.id = $1
		RETURNING `+columns,
		id, p.Name, p.Address, p.Phone, p.Hours))
}

func (r *PgRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM facilities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete facility: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrFacilityNotFound
	}
	return nil
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Facility, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list facilities: %w", err)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Facility, error) {
	f, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get facility: %w", err)
	}
	return f, nil
}

// ListForPatient returns the facilities of the patient's appointments.
func (s *Service) ListForPatient(ctx context.Context, patientID int64) ([]Facility, error) {
	out, err := s.repo.ListForPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("list patient facilities: %w", err)
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, in Input) (*Facility, error) {
	if !validate.NotBlank(in.Name) {
		return nil, validate.Field("name", "Name is required")
	}
	f, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create facility: %w", err)
	}
	return f, nil
}

func (s *Service) Update(ctx context.Context, id int64, p Patch) (*Facility, error) {
	if p.Empty() {
		return s.Get(ctx, id)
	}
	if p.Name != nil && !validate.NotBlank(*p.Name) {
		return nil, validate.Field("name", "Name is required")
	}
	f, err := s.repo.Update(ctx, id, p)
	if err != nil {
		return nil, fmt.Errorf("update facility: %w", err)
	}
	return f, nil
}

// Delete leaves appointment rows that reference the facility in place.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete facility: %w", err)
	}
	return nil
}
