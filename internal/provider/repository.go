package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hackgods/healthcare-portal/internal/db"
)

var (
	ErrProviderNotFound = errors.New("provider not found")
	ErrWindowNotFound   = errors.New("availability window not found")
)

type Repository interface {
	List(ctx context.Context, f ListFilter) ([]Provider, error)
	Get(ctx context.Context, id int64) (*Provider, error)
	ListForPatient(ctx context.Context, patientID int64) ([]Provider, error)
	Create(ctx context.Context, in Input) (*Provider, error)
	Update(ctx context.Context, id int64, p Patch) (*Provider, error)
	Delete(ctx context.Context, id int64) error

	ListWindows(ctx context.Context, providerID int64) ([]Window, error)
	GetWindow(ctx context.Context, providerID, id int64) (*Window, error)
	CreateWindow(ctx context.Context, providerID int64, in WindowInput) (*Window, error)
	UpdateWindow(ctx context.Context, providerID, id int64, in WindowInput) (*Window, error)
	DeleteWindow(ctx context.Context, providerID, id int64) error
}

type PgRepository struct {
	q db.Querier
}

func NewPgRepository(q db.Querier) *PgRepository {
	return &PgRepository{q: q}
}

const providerColumns = `p.id, p.first_name, p.last_name, p.specialty, p.bio, p.photo_url, p.email, p.phone, p.created_at`

func scanProvider(row pgx.Row) (*Provider, error) {
	var p Provider
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Specialty, &p.Bio, &p.PhotoURL, &p.Email, &p.Phone, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProviderNotFound
		}
		return nil, err
	}
	return &p, nil
}

func collectProviders(rows pgx.Rows, err error) ([]Provider, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Provider{}
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

const windowColumns = `id, provider_id, to_char(available_date, 'YYYY-MM-DD'),
	to_char(start_time, 'HH24:MI:SS'), to_char(end_time, 'HH24:MI:SS'), created_at`

func scanWindow(row pgx.Row) (*Window, error) {
	var w Window
	err := row.Scan(&w.ID, &w.ProviderID, &w.Date, &w.StartTime, &w.EndTime, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWindowNotFound
		}
		return nil, err
	}
	return &w, nil
}

func (r *PgRepository) List(ctx context.Context, f ListFilter) ([]Provider, error) {
	search := ""
	if f.Search != "" {
		search = "%" + f.Search + "%"
	}
	return collectProviders(r.q.Query(ctx, `
		SELECT `+providerColumns+`
		FROM providers p
		WHERE ($1 = '' OR p.specialty = $1)
		  AND ($2 = '' OR p.first_name ILIKE $2 OR p.last_name ILIKE $2 OR p.specialty ILIKE $2)
		ORDER BY p.last_name, p.first_name
	`, f.Specialty, search))
}

func (r *PgRepository) Get(ctx context.Context, id int64) (*Provider, error) {
	p, err := scanProvider(r.q.QueryRow(ctx, `SELECT `+providerColumns+` FROM providers p WHERE p.id = $1`, id))
	if err != nil {
		return nil, err
	}

	rows, err := r.q.Query(ctx, `
		SELECT f.id, f.name, f.address
		FROM provider_facilities pf
		JOIN facilities f ON f.id = pf.facility_id
		WHERE pf.provider_id = $1
		ORDER BY f.name
	`, id)
	if err != nil {
		return nil, fmt.Errorf("load provider facilities: %w", err)
	}
	p.Facilities, err = pgx.CollectRows(rows, pgx.RowToStructByPos[FacilityRef])
	if err != nil {
		return nil, fmt.Errorf("load provider facilities: %w", err)
	}
	return p, nil
}

// ListForPatient returns the distinct providers the patient has booked with.
func (r *PgRepository) ListForPatient(ctx context.Context, patientID int64) ([]Provider, error) {
	return collectProviders(r.q.Query(ctx, `
		SELECT DISTINCT `+providerColumns+`
		FROM providers p
		JOIN appointments a ON a.provider_id = p.id
		WHERE a.patient_id = $1
		ORDER BY p.last_name, p.first_name
	`, patientID))
}

func (r *PgRepository) Create(ctx context.Context, in Input) (*Provider, error) {
	return scanProvider(r.q.QueryRow(ctx, `
		INSERT INTO providers AS p (first_name, last_name, specialty, bio, photo_url, email, phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+providerColumns,
		in.FirstName, in.LastName, in.Specialty, in.Bio, in.PhotoURL, in.Email, in.Phone))
}

func (r *PgRepository) Update(ctx context.Context, id int64, p Patch) (*Provider, error) {
	return scanProvider(r.q.QueryRow(ctx, `
		UPDATE providers AS p
		SET first_name = COALESCE($2, p.first_name),
		    last_name  = COALESCE($3, p.last_name),
		    specialty  = COALESCE($4, p.specialty),
		    bio        = COALESCE($5, p.bio),
		    photo_url  = CASE WHEN $9 THEN NULL ELSE COALESCE($6, p.photo_url) END,
		    email      = COALESCE($7, p.email),
		    phone      = COALESCE($8, p.phone)
		WHERE p.id = $1
		RETURNING `+providerColumns,
		id, p.FirstName, p.LastName, p.Specialty, p.Bio, p.PhotoURL, p.Email, p.Phone, p.ClearPhoto))
}

func (r *PgRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM providers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete provider: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProviderNotFound
	}
	return nil
}

func (r *PgRepository) ListWindows(ctx context.Context, providerID int64) ([]Window, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+windowColumns+`
		FROM provider_availability
		WHERE provider_id = $1
		ORDER BY available_date, start_time
	`, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Window{}
	for rows.Next() {
		w, err := scanWindow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

func (r *PgRepository) GetWindow(ctx context.Context, providerID, id int64) (*Window, error) {
	return scanWindow(r.q.QueryRow(ctx, `
		SELECT `+windowColumns+` FROM provider_availability WHERE id = $1 AND provider_id = $2
	`, id, providerID))
}

func (r *PgRepository) CreateWindow(ctx context.Context, providerID int64, in WindowInput) (*Window, error) {
	w, err := scanWindow(r.q.QueryRow(ctx, `
		INSERT INTO provider_availability (provider_id, available_date, start_time, end_time)
		VALUES ($1, $2::date, $3::time, $4::time)
		RETURNING `+windowColumns,
		providerID, in.Date, in.StartTime, in.EndTime))
	if db.IsForeignKeyViolation(err) {
		return nil, ErrProviderNotFound
	}
	return w, err
}

func (r *PgRepository) UpdateWindow(ctx context.Context, providerID, id int64, in WindowInput) (*Window, error) {
	return scanWindow(r.q.QueryRow(ctx, `
		UPDATE provider_availability
		SET available_date = $3::date,
		    start_time     = $4::time,
		    end_time       = $5::time
		WHERE id = $1 AND provider_id = $2
		RETURNING `+windowColumns,
		id, providerID, in.Date, in.StartTime, in.EndTime))
}

func (r *PgRepository) DeleteWindow(ctx context.Context, providerID, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM provider_availability WHERE id = $1 AND provider_id = $2`, id, providerID)
	if err != nil {
		return fmt.Errorf("delete availability window: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrWindowNotFound
	}
	return nil
}
