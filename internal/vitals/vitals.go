package vitals

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hackgods/healthcare-portal/internal/db"
	"github.com/hackgods/healthcare-portal/internal/validate"
)

// ListLimit caps how many records List returns.
const ListLimit = 10

type Record struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	BloodPressure *string   `json:"blood_pressure"`
	HeartRate     *int      `json:"heart_rate"`
	Temperature   *float64  `json:"temperature"`
	Weight        *float64  `json:"weight"`
	Height        *float64  `json:"height"`
	RecordedAt    time.Time `json:"recorded_at"`
}

type Input struct {
	BloodPressure *string  `json:"blood_pressure"`
	HeartRate     *int     `json:"heart_rate"`
	Temperature   *float64 `json:"temperature"`
	Weight        *float64 `json:"weight"`
	Height        *float64 `json:"height"`
}

func (in Input) validate() error {
	var c validate.Checker
	if in.HeartRate != nil {
		c.Check(*in.HeartRate >= 0 && *in.HeartRate <= 300, "heart_rate", "Heart rate must be between 0 and 300")
	}
	if in.Temperature != nil {
		c.Check(*in.Temperature >= 90 && *in.Temperature <= 110, "temperature", "Temperature must be between 90 and 110")
	}
	if in.Weight != nil {
		c.Check(*in.Weight >= 0, "weight", "Weight must be non-negative")
	}
	if in.Height != nil {
		c.Check(*in.Height >= 0, "height", "Height must be non-negative")
	}
	return c.Err()
}

type Repository interface {
	Insert(ctx context.Context, userID int64, in Input) (*Record, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]Record, error)
}

type PgRepository struct {
	q db.Querier
}

func NewPgRepository(q db.Querier) *PgRepository {
	return &PgRepository{q: q}
}

const columns = `id, user_id, blood_pressure, heart_rate, temperature::float8, weight::float8, height::float8, recorded_at`

func scanRecord(row pgx.Row) (*Record, error) {
	var r Record
	if err := row.Scan(&r.ID, &r.UserID, &r.BloodPressure, &r.HeartRate, &r.Temperature, &r.Weight, &r.Height, &r.RecordedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *PgRepository) Insert(ctx context.Context, userID int64, in Input) (*Record, error) {
	return scanRecord(r.q.QueryRow(ctx, `
		INSERT INTO vitals (user_id, blood_pressure, heart_rate, temperature, weight, height)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+columns,
		userID, in.BloodPressure, in.HeartRate, in.Temperature, in.Weight, in.Height))
}

func (r *PgRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]Record, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+columns+`
		FROM vitals
		WHERE user_id = $1
		ORDER BY recorded_at DESC, id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record appends a vitals snapshot. Records are never updated.
func (s *Service) Record(ctx context.Context, userID int64, in Input) (*Record, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.BloodPressure != nil && *in.BloodPressure == "" {
		in.BloodPressure = nil
	}
	rec, err := s.repo.Insert(ctx, userID, in)
	if err != nil {
		return nil, fmt.Errorf("record vitals: %w", err)
	}
	return rec, nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]Record, error) {
	out, err := s.repo.ListByUser(ctx, userID, ListLimit)
	if err != nil {
		return nil, fmt.Errorf("list vitals: %w", err)
	}
	return out, nil
}

// Latest returns nil when the user has no records.
func (s *Service) Latest(ctx context.Context, userID int64) (*Record, error) {
	out, err := s.repo.ListByUser(ctx, userID, 1)
	if err != nil {
		return nil, fmt.Errorf("latest vitals: %w", err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}
