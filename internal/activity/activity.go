package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hackgods/healthcare-portal/internal/db"
)

const (
	AppointmentCreated       = "APPOINTMENT_CREATED"
	AppointmentUpdated       = "APPOINTMENT_UPDATED"
	AppointmentStatusChanged = "APPOINTMENT_STATUS_CHANGED"
	AppointmentCancelled     = "APPOINTMENT_CANCELLED"
	EventRegistered          = "EVENT_REGISTERED"
	RegistrationStatusSet    = "EVENT_REGISTRATION_STATUS_CHANGED"
)

const (
	SubjectAppointment  = "appointment"
	SubjectRegistration = "event_registration"
)

type Entry struct {
	ID          int64           `json:"id"`
	EventType   string          `json:"event_type"`
	SubjectKind string          `json:"subject_kind"`
	SubjectID   int64           `json:"subject_id"`
	ActorID     *int64          `json:"actor_id"`
	Payload     json.RawMessage `json:"payload"`
	CreatedAt   time.Time       `json:"created_at"`
}

type Store interface {
	Insert(ctx context.Context, e Entry) error
	List(ctx context.Context, f Filter) ([]Entry, error)
}

type Filter struct {
	EventType string
	Limit     int
	Offset    int
}

type PgStore struct {
	q db.Querier
}

func NewPgStore(q db.Querier) *PgStore {
	return &PgStore{q: q}
}

func (s *PgStore) Insert(ctx context.Context, e Entry) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO activity_logs (event_type, subject_kind, subject_id, actor_id, payload)
		VALUES ($1, $2, $3, $4, $5)
	`, e.EventType, e.SubjectKind, e.SubjectID, e.ActorID, []byte(e.Payload))
	if err != nil {
		return fmt.Errorf("insert activity log: %w", err)
	}
	return nil
}

func (s *PgStore) List(ctx context.Context, f Filter) ([]Entry, error) {
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}
	rows, err := s.q.Query(ctx, `
		SELECT id, event_type, subject_kind, subject_id, actor_id, payload, created_at
		FROM activity_logs
		WHERE ($1 = '' OR event_type = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, f.EventType, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list activity logs: %w", err)
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var e Entry
		var payload []byte
		if err := rows.Scan(&e.ID, &e.EventType, &e.SubjectKind, &e.SubjectID, &e.ActorID, &payload, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Payload = payload
		out = append(out, e)
	}
	return out, rows.Err()
}

// Recorder writes activity entries as a side effect. Failures are logged and
// never surface to the caller.
type Recorder struct {
	store Store
	log   zerolog.Logger
}

func NewRecorder(store Store, log zerolog.Logger) *Recorder {
	return &Recorder{store: store, log: log}
}

func (r *Recorder) Record(ctx context.Context, eventType, kind string, subjectID, actorID int64, payload map[string]any) {
	if r == nil || r.store == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		r.log.Error().Err(err).Str("event_type", eventType).Msg("marshal activity payload")
		data = nil
	}

	e := Entry{
		EventType:   eventType,
		SubjectKind: kind,
		SubjectID:   subjectID,
		Payload:     data,
	}
	if actorID != 0 {
		e.ActorID = &actorID
	}

	if err := r.store.Insert(ctx, e); err != nil {
		r.log.Error().Err(err).
			Str("event_type", eventType).
			Str("subject_kind", kind).
			Int64("subject_id", subjectID).
			Msg("failed to record activity")
	}
}
