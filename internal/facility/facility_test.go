package facility

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/healthcare-portal/internal/validate"
)

type memRepo struct {
	rows   map[int64]*Facility
	nextID int64
}

func (r *memRepo) List(context.Context) ([]Facility, error) {
	out := []Facility{}
	for _, f := range r.rows {
		out = append(out, *f)
	}
	return out, nil
}

func (r *memRepo) Get(_ context.Context, id int64) (*Facility, error) {
	f, ok := r.rows[id]
	if !ok {
		return nil, ErrFacilityNotFound
	}
	cp := *f
	return &cp, nil
}

func (r *memRepo) ListForPatient(context.Context, int64) ([]Facility, error) { return []Facility{}, nil }

func (r *memRepo) Create(_ context.Context, in Input) (*Facility, error) {
	r.nextID++
	f := &Facility{ID: r.nextID, Name: in.Name, Address: in.Address}
	r.rows[f.ID] = f
	cp := *f
	return &cp, nil
}

func (r *memRepo) Update(_ context.Context, id int64, p Patch) (*Facility, error) {
	f, ok := r.rows[id]
	if !ok {
		return nil, ErrFacilityNotFound
	}
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Hours != nil {
		f.Hours = p.Hours
	}
	cp := *f
	return &cp, nil
}

func (r *memRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.rows[id]; !ok {
		return ErrFacilityNotFound
	}
	delete(r.rows, id)
	return nil
}

func TestFacilityService(t *testing.T) {
	svc := NewService(&memRepo{rows: map[int64]*Facility{}})
	ctx := context.Background()

	_, err := svc.Create(ctx, Input{Name: " "})
	var verr *validate.Error
	require.True(t, errors.As(err, &verr))

	f, err := svc.Create(ctx, Input{Name: "Downtown Clinic", Address: "1 Main St"})
	require.NoError(t, err)

	hours := "Mon-Fri 8-6"
	got, err := svc.Update(ctx, f.ID, Patch{Hours: &hours})
	require.NoError(t, err)
	require.NotNil(t, got.Hours)
	assert.Equal(t, hours, *got.Hours)

	same, err := svc.Update(ctx, f.ID, Patch{})
	require.NoError(t, err)
	assert.Equal(t, "Downtown Clinic", same.Name)

	require.NoError(t, svc.Delete(ctx, f.ID))
	_, err = svc.Get(ctx, f.ID)
	assert.ErrorIs(t, err, ErrFacilityNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, f.ID), ErrFacilityNotFound)
}
