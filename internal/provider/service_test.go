package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/healthcare-portal/internal/validate"
)

type memRepo struct {
	providers map[int64]*Provider
	windows   map[int64]*Window
	nextID    int64
	lastPatch Patch
}

func newMemRepo() *memRepo {
	return &memRepo{providers: map[int64]*Provider{}, windows: map[int64]*Window{}}
}

func (r *memRepo) List(_ context.Context, f ListFilter) ([]Provider, error) {
	out := []Provider{}
	for _, p := range r.providers {
		if f.Specialty == "" || p.Specialty == f.Specialty {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memRepo) Get(_ context.Context, id int64) (*Provider, error) {
	p, ok := r.providers[id]
	if !ok {
		return nil, ErrProviderNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memRepo) ListForPatient(context.Context, int64) ([]Provider, error) { return nil, nil }

func (r *memRepo) Create(_ context.Context, in Input) (*Provider, error) {
	r.nextID++
	p := &Provider{ID: r.nextID, FirstName: in.FirstName, LastName: in.LastName, Specialty: in.Specialty, PhotoURL: in.PhotoURL}
	r.providers[p.ID] = p
	cp := *p
	return &cp, nil
}

func (r *memRepo) Update(_ context.Context, id int64, patch Patch) (*Provider, error) {
	r.lastPatch = patch
	p, ok := r.providers[id]
	if !ok {
		return nil, ErrProviderNotFound
	}
	if patch.FirstName != nil {
		p.FirstName = *patch.FirstName
	}
	if patch.PhotoURL != nil {
		p.PhotoURL = patch.PhotoURL
	}
	if patch.ClearPhoto {
		p.PhotoURL = nil
	}
	cp := *p
	return &cp, nil
}

func (r *memRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.providers[id]; !ok {
		return ErrProviderNotFound
	}
	delete(r.providers, id)
	for wid, w := range r.windows {
		if w.ProviderID == id {
			delete(r.windows, wid)
		}
	}
	return nil
}

func (r *memRepo) ListWindows(_ context.Context, providerID int64) ([]Window, error) {
	out := []Window{}
	for _, w := range r.windows {
		if w.ProviderID == providerID {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (r *memRepo) GetWindow(_ context.Context, providerID, id int64) (*Window, error) {
	w, ok := r.windows[id]
	if !ok || w.ProviderID != providerID {
		return nil, ErrWindowNotFound
	}
	cp := *w
	return &cp, nil
}

func (r *memRepo) CreateWindow(_ context.Context, providerID int64, in WindowInput) (*Window, error) {
	if _, ok := r.providers[providerID]; !ok {
		return nil, ErrProviderNotFound
	}
	r.nextID++
	w := &Window{ID: r.nextID, ProviderID: providerID, Date: in.Date, StartTime: in.StartTime, EndTime: in.EndTime}
	r.windows[w.ID] = w
	cp := *w
	return &cp, nil
}

func (r *memRepo) UpdateWindow(_ context.Context, providerID, id int64, in WindowInput) (*Window, error) {
	w, ok := r.windows[id]
	if !ok || w.ProviderID != providerID {
		return nil, ErrWindowNotFound
	}
	w.Date, w.StartTime, w.EndTime = in.Date, in.StartTime, in.EndTime
	cp := *w
	return &cp, nil
}

func (r *memRepo) DeleteWindow(_ context.Context, providerID, id int64) error {
	w, ok := r.windows[id]
	if !ok || w.ProviderID != providerID {
		return ErrWindowNotFound
	}
	delete(r.windows, id)
	return nil
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(newMemRepo())
	bad := "not-an-email"

	_, err := svc.Create(context.Background(), Input{FirstName: "Ann", Email: &bad})

	var verr *validate.Error
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "last_name")
	assert.Contains(t, verr.Fields, "specialty")
	assert.Contains(t, verr.Fields, "email")
	assert.NotContains(t, verr.Fields, "first_name")
}

func TestUpdate_EmptyPhotoClears(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	ctx := context.Background()
	photo := "/uploads/provider-photos/a.png"
	p, err := svc.Create(ctx, Input{FirstName: "Ann", LastName: "Lee", Specialty: "Cardiology", PhotoURL: &photo})
	require.NoError(t, err)

	empty := ""
	got, err := svc.Update(ctx, p.ID, Patch{PhotoURL: &empty})
	require.NoError(t, err)
	assert.Nil(t, got.PhotoURL)
	assert.True(t, repo.lastPatch.ClearPhoto)
	assert.Nil(t, repo.lastPatch.PhotoURL)
}

func TestUpdate_EmptyPatchReturnsCurrent(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	p, err := svc.Create(context.Background(), Input{FirstName: "Ann", LastName: "Lee", Specialty: "Cardiology"})
	require.NoError(t, err)

	got, err := svc.Update(context.Background(), p.ID, Patch{})
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.FirstName)

	_, err = svc.Update(context.Background(), 999, Patch{})
	assert.ErrorIs(t, err, ErrProviderNotFound)
}

func TestWindows(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	ctx := context.Background()
	p, err := svc.Create(ctx, Input{FirstName: "Ann", LastName: "Lee", Specialty: "Cardiology"})
	require.NoError(t, err)

	w, err := svc.CreateWindow(ctx, p.ID, WindowInput{Date: "2024-06-01", StartTime: "09:00", EndTime: "12:00"})
	require.NoError(t, err)
	assert.Equal(t, "09:00:00", w.StartTime)
	assert.Equal(t, "12:00:00", w.EndTime)

	_, err = svc.CreateWindow(ctx, p.ID, WindowInput{Date: "2024-06-01", StartTime: "12:00", EndTime: "09:00"})
	var verr *validate.Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "End time must be after start time", verr.Fields["end_time"])

	_, err = svc.CreateWindow(ctx, 999, WindowInput{Date: "2024-06-01", StartTime: "09:00", EndTime: "10:00"})
	assert.ErrorIs(t, err, ErrProviderNotFound)

	// patch is merged with the stored window before the ordering check
	early := "08:00"
	_, err = svc.UpdateWindow(ctx, p.ID, w.ID, WindowPatch{EndTime: &early})
	assert.True(t, errors.As(err, &verr))

	later := "13:00"
	got, err := svc.UpdateWindow(ctx, p.ID, w.ID, WindowPatch{EndTime: &later})
	require.NoError(t, err)
	assert.Equal(t, "13:00:00", got.EndTime)
	assert.Equal(t, "09:00:00", got.StartTime)

	_, err = svc.UpdateWindow(ctx, p.ID+100, w.ID, WindowPatch{EndTime: &later})
	assert.ErrorIs(t, err, ErrWindowNotFound)

	require.NoError(t, svc.Delete(ctx, p.ID))
	windows, err := svc.Windows(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, windows, "windows cascade with the provider")
}
