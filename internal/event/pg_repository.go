package event

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hackgods/healthcare-portal/internal/db"
)

type PgRepository struct {
	q db.Querier
}

func NewPgRepository(q db.Querier) *PgRepository {
	return &PgRepository{q: q}
}

const eventColumns = `
	e.id, e.title, e.description,
	to_char(e.event_date, 'YYYY-MM-DD'), to_char(e.event_time, 'HH24:MI:SS'),
	e.event_type, e.location, e.online_link, e.capacity, e.created_at`

func eventFields(e *Event) []any {
	return []any{
		&e.ID, &e.Title, &e.Description,
		&e.Date, &e.Time,
		&e.Type, &e.Location, &e.OnlineLink, &e.Capacity, &e.CreatedAt,
	}
}

func scanEvent(row pgx.Row) (*Event, error) {
	var e Event
	if err := row.Scan(eventFields(&e)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &e, nil
}

func scanRegistration(row pgx.Row, notFound error) (*Registration, error) {
	var r Registration
	if err := row.Scan(&r.ID, &r.EventID, &r.UserID, &r.Status, &r.RegisteredAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound
		}
		return nil, err
	}
	return &r, nil
}

func (r *PgRepository) List(ctx context.Context, f ListFilter) ([]Event, error) {
	rows, err := r.q.Query(ctx, `SELECT `+eventColumns+`
		FROM events e
		WHERE (NOT $1 OR e.event_date >= CURRENT_DATE)
		  AND ($2 = '' OR e.event_type = $2)
		ORDER BY e.event_date ASC, e.event_time ASC
	`, f.Upcoming, string(f.Type))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (r *PgRepository) Get(ctx context.Context, id int64) (*Event, error) {
	return scanEvent(r.q.QueryRow(ctx, `SELECT `+eventColumns+` FROM events e WHERE e.id = $1`, id))
}

func (r *PgRepository) Create(ctx context.Context, in Input) (*Event, error) {
	var id int64
	err := r.q.QueryRow(ctx, `
		INSERT INTO events (title, description, event_date, event_time, event_type, location, online_link, capacity)
		VALUES ($1, $2, $3::date, $4::time, $5, $6, $7, $8)
		RETURNING id
	`, in.Title, in.Description, in.Date, in.Time, string(in.Type), in.Location, in.OnlineLink, in.Capacity).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *PgRepository) Update(ctx context.Context, id int64, p Patch) (*Event, error) {
	var typ *string
	if p.Type != nil {
		s := string(*p.Type)
		typ = &s
	}

	var got int64
	err := r.q.QueryRow(ctx, `
		UPDATE events
		SET title       = COALESCE($2, title),
		    description = COALESCE($3, description),
		    event_date  = COALESCE($4::date, event_date),
		    event_time  = COALESCE($5::time, event_time),
		    event_type  = COALESCE($6, event_type),
		    location    = COALESCE($7, location),
		    online_link = COALESCE($8, online_link),
		    capacity    = COALESCE($9, capacity)
		WHERE id = $1
		RETURNING id
	`, id, p.Title, p.Description, p.Date, p.Time, typ, p.Location, p.OnlineLink, p.Capacity).Scan(&got)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return r.Get(ctx, got)
}

func (r *PgRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

// Register relies on the (event_id, user_id) unique key; a conflict or a
// missing event both return no row.
func (r *PgRepository) Register(ctx context.Context, eventID, userID int64) (*Registration, error) {
	row := r.q.QueryRow(ctx, `
		INSERT INTO event_registrations (event_id, user_id, status)
		SELECT $1, $2, 'pending'
		WHERE EXISTS (SELECT 1 FROM events WHERE id = $1)
		ON CONFLICT (event_id, user_id) DO NOTHING
		RETURNING id, event_id, user_id, status, registered_at
	`, eventID, userID)
	return scanRegistration(row, ErrAlreadyRegistered)
}

func (r *PgRepository) SetRegistrationStatus(ctx context.Context, eventID, userID int64, status RegistrationStatus) (*Registration, error) {
	row := r.q.QueryRow(ctx, `
		UPDATE event_registrations
		SET status = $3
		WHERE event_id = $1 AND user_id = $2
		RETURNING id, event_id, user_id, status, registered_at
	`, eventID, userID, string(status))
	return scanRegistration(row, ErrRegistrationNotFound)
}

func (r *PgRepository) ListRegistrations(ctx context.Context, eventID int64) ([]Registrant, error) {
	rows, err := r.q.Query(ctx, `
		SELECT er.id, er.event_id, er.user_id, er.status, er.registered_at,
		       u.first_name, u.last_name, u.email, u.phone
		FROM event_registrations er
		JOIN users u ON u.id = er.user_id
		WHERE er.event_id = $1
		ORDER BY er.registered_at DESC, er.id DESC
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Registrant{}
	for rows.Next() {
		var rg Registrant
		if err := rows.Scan(&rg.ID, &rg.EventID, &rg.UserID, &rg.Status, &rg.RegisteredAt,
			&rg.FirstName, &rg.LastName, &rg.Email, &rg.Phone); err != nil {
			return nil, err
		}
		out = append(out, rg)
	}
	return out, rows.Err()
}

func (r *PgRepository) ListByUser(ctx context.Context, userID int64) ([]MyRegistration, error) {
	rows, err := r.q.Query(ctx, `SELECT `+eventColumns+`, er.registered_at, er.status
		FROM events e
		JOIN event_registrations er ON er.event_id = e.id
		WHERE er.user_id = $1
		ORDER BY e.event_date ASC, e.event_time ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []MyRegistration{}
	for rows.Next() {
		var m MyRegistration
		dest := append(eventFields(&m.Event), &m.RegisteredAt, &m.Status)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
