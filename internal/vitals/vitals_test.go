package vitals

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/healthcare-portal/internal/validate"
)

type memRepo struct {
	rows []Record
}

func (m *memRepo) Insert(_ context.Context, userID int64, in Input) (*Record, error) {
	rec := Record{
		ID:            int64(len(m.rows) + 1),
		UserID:        userID,
		BloodPressure: in.BloodPressure,
		HeartRate:     in.HeartRate,
		Temperature:   in.Temperature,
		RecordedAt:    time.Now().Add(time.Duration(len(m.rows)) * time.Second),
	}
	m.rows = append(m.rows, rec)
	return &rec, nil
}

func (m *memRepo) ListByUser(_ context.Context, userID int64, limit int) ([]Record, error) {
	out := []Record{}
	for i := len(m.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if m.rows[i].UserID == userID {
			out = append(out, m.rows[i])
		}
	}
	return out, nil
}

func ptr[T any](v T) *T { return &v }

func TestRecord_Validation(t *testing.T) {
	svc := NewService(&memRepo{})

	cases := []struct {
		name  string
		in    Input
		field string
	}{
		{"heart rate high", Input{HeartRate: ptr(301)}, "heart_rate"},
		{"heart rate negative", Input{HeartRate: ptr(-1)}, "heart_rate"},
		{"temperature low", Input{Temperature: ptr(89.9)}, "temperature"},
		{"temperature high", Input{Temperature: ptr(110.1)}, "temperature"},
		{"weight", Input{Weight: ptr(-3.0)}, "weight"},
		{"height", Input{Height: ptr(-0.5)}, "height"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Record(context.Background(), 1, tc.in)
			var verr *validate.Error
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields, tc.field)
		})
	}

	_, err := svc.Record(context.Background(), 1, Input{HeartRate: ptr(0), Temperature: ptr(98.6), Weight: ptr(0.0)})
	assert.NoError(t, err)
}

func TestListAndLatest(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	latest, err := svc.Latest(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, latest)

	for i := 0; i < 12; i++ {
		_, err := svc.Record(ctx, 1, Input{HeartRate: ptr(60 + i)})
		require.NoError(t, err)
	}
	_, err = svc.Record(ctx, 2, Input{HeartRate: ptr(99)})
	require.NoError(t, err)

	list, err := svc.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, ListLimit)
	assert.Equal(t, 71, *list[0].HeartRate)

	latest, err = svc.Latest(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 71, *latest.HeartRate)
}
