package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hackgods/healthcare-portal/internal/db"
)

const scheduledSlotConstraint = "appointments_scheduled_slot_key"

type PgRepository struct {
	q db.Querier
}

func NewPgRepository(q db.Querier) *PgRepository {
	return &PgRepository{q: q}
}

const selectAppointment = `
	SELECT a.id, a.patient_id, a.provider_id, a.facility_id,
	       to_char(a.appointment_date, 'YYYY-MM-DD'), to_char(a.appointment_time, 'HH24:MI:SS'),
	       a.reason, a.notes, a.status, a.created_at, a.updated_at,
	       p.first_name, p.last_name, p.specialty, p.photo_url,
	       f.name, f.address, f.phone,
	       u.first_name, u.last_name, u.email
	FROM appointments a
	LEFT JOIN providers p ON p.id = a.provider_id
	LEFT JOIN facilities f ON f.id = a.facility_id
	LEFT JOIN users u ON u.id = a.patient_id`

// Helpers

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.ProviderID,
		&a.FacilityID,
		&a.Date,
		&a.Time,
		&a.Reason,
		&a.Notes,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
		&a.ProviderFirstName,
		&a.ProviderLastName,
		&a.Specialty,
		&a.ProviderPhotoURL,
		&a.FacilityName,
		&a.FacilityAddress,
		&a.FacilityPhone,
		&a.PatientFirstName,
		&a.PatientLastName,
		&a.PatientEmail,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &a, nil
}

func collectAppointments(rows pgx.Rows) ([]Appointment, error) {
	defer rows.Close()

	out := []Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// mapWriteErr turns a violation of the scheduled-slot index into ErrSlotTaken.
func mapWriteErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrAppointmentNotFound
	}
	if db.IsUniqueViolation(err, scheduledSlotConstraint) {
		return ErrSlotTaken
	}
	return err
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullIfZero(n int64) *int64 {
	if n == 0 {
		return nil
	}
	return &n
}

// Interface methods

func (r *PgRepository) ProviderExists(ctx context.Context, providerID int64) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM providers WHERE id = $1)`, providerID).Scan(&exists)
	return exists, err
}

func (r *PgRepository) ScheduledTimes(ctx context.Context, providerID int64, date string) ([]string, error) {
	rows, err := r.q.Query(ctx, `
		SELECT to_char(appointment_time, 'HH24:MI:SS')
		FROM appointments
		WHERE provider_id = $1
		  AND appointment_date = $2::date
		  AND status = 'scheduled'
		ORDER BY appointment_time
	`, providerID, date)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (r *PgRepository) Create(ctx context.Context, in NewAppointment) (*Appointment, error) {
	var id int64
	err := r.q.QueryRow(ctx, `
		INSERT INTO appointments (patient_id, provider_id, facility_id, appointment_date, appointment_time, reason, status)
		VALUES ($1, $2, $3, $4::date, $5::time, $6, 'pending')
		RETURNING id
	`, in.PatientID, in.ProviderID, in.FacilityID, in.Date, in.Time, in.Reason).Scan(&id)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	return r.GetByID(ctx, id)
}

func (r *PgRepository) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	row := r.q.QueryRow(ctx, selectAppointment+` WHERE a.id = $1`, id)
	return scanAppointment(row)
}

func (r *PgRepository) ListByPatient(ctx context.Context, patientID int64, f ListFilter) ([]Appointment, error) {
	rows, err := r.q.Query(ctx, selectAppointment+`
		WHERE a.patient_id = $1
		  AND ($2 = '' OR a.status = $2)
		  AND (NOT $3 OR a.appointment_date >= CURRENT_DATE)
		ORDER BY a.appointment_date DESC, a.appointment_time DESC
	`, patientID, string(f.Status), f.Upcoming)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

// NextForPatient returns nil when nothing pending or scheduled lies ahead.
func (r *PgRepository) NextForPatient(ctx context.Context, patientID int64) (*Appointment, error) {
	row := r.q.QueryRow(ctx, selectAppointment+`
		WHERE a.patient_id = $1
		  AND a.status IN ('pending', 'scheduled')
		  AND a.appointment_date >= CURRENT_DATE
		ORDER BY a.appointment_date ASC, a.appointment_time ASC
		LIMIT 1
	`, patientID)
	a, err := scanAppointment(row)
	if errors.Is(err, ErrAppointmentNotFound) {
		return nil, nil
	}
	return a, err
}

func (r *PgRepository) RecentForPatient(ctx context.Context, patientID int64, limit int) ([]Appointment, error) {
	rows, err := r.q.Query(ctx, selectAppointment+`
		WHERE a.patient_id = $1
		ORDER BY a.appointment_date DESC, a.appointment_time DESC
		LIMIT $2
	`, patientID, limit)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *PgRepository) Update(ctx context.Context, id int64, p Patch) (*Appointment, error) {
	var got int64
	err := r.q.QueryRow(ctx, `
		UPDATE appointments
		SET provider_id      = COALESCE($2, provider_id),
		    facility_id      = COALESCE($3, facility_id),
		    appointment_date = COALESCE($4::date, appointment_date),
		    appointment_time = COALESCE($5::time, appointment_time),
		    reason           = COALESCE($6, reason),
		    updated_at       = now()
		WHERE id = $1
		RETURNING id
	`, id, p.ProviderID, p.FacilityID, p.Date, p.Time, p.Reason).Scan(&got)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	return r.GetByID(ctx, got)
}

func (r *PgRepository) AdminUpdate(ctx context.Context, id int64, p AdminPatch) (*Appointment, error) {
	var status *string
	if p.Status != nil {
		s := string(*p.Status)
		status = &s
	}

	var got int64
	err := r.q.QueryRow(ctx, `
		UPDATE appointments
		SET status     = COALESCE($2, status),
		    notes      = COALESCE($3, notes),
		    updated_at = now()
		WHERE id = $1
		RETURNING id
	`, id, status, p.Notes).Scan(&got)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	return r.GetByID(ctx, got)
}

func (r *PgRepository) SetStatus(ctx context.Context, id int64, status Status) (*Appointment, error) {
	var got int64
	err := r.q.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		RETURNING id
	`, id, string(status)).Scan(&got)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	return r.GetByID(ctx, got)
}

const adminWhere = `
	WHERE ($1::text IS NULL OR a.status = $1)
	  AND ($2::bigint IS NULL OR a.provider_id = $2)
	  AND ($3::bigint IS NULL OR a.facility_id = $3)
	  AND ($4::date IS NULL OR a.appointment_date >= $4::date)
	  AND ($5::date IS NULL OR a.appointment_date <= $5::date)`

func (r *PgRepository) AdminList(ctx context.Context, f AdminFilter) ([]Appointment, int, error) {
	args := []any{
		nullIfEmpty(string(f.Status)),
		nullIfZero(f.ProviderID),
		nullIfZero(f.FacilityID),
		nullIfEmpty(f.DateFrom),
		nullIfEmpty(f.DateTo),
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM appointments a`+adminWhere, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count appointments: %w", err)
	}

	rows, err := r.q.Query(ctx, selectAppointment+adminWhere+`
		ORDER BY a.appointment_date DESC, a.appointment_time DESC
		LIMIT $6 OFFSET $7
	`, append(args, f.Limit, f.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list appointments: %w", err)
	}
	out, err := collectAppointments(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
