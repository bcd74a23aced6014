package event

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/healthcare-portal/internal/validate"
)

type regKey struct{ event, user int64 }

type memRepo struct {
	mu     sync.Mutex
	events map[int64]*Event
	regs   map[regKey]*Registration
	nextID int64
}

func newMemRepo() *memRepo {
	return &memRepo{events: map[int64]*Event{}, regs: map[regKey]*Registration{}}
}

func (r *memRepo) List(_ context.Context, f ListFilter) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Event{}
	for _, e := range r.events {
		if f.Type == "" || e.Type == f.Type {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date+out[i].Time < out[j].Date+out[j].Time })
	return out, nil
}

func (r *memRepo) Get(_ context.Context, id int64) (*Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, ErrEventNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *memRepo) Create(_ context.Context, in Input) (*Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	e := &Event{ID: r.nextID, Title: in.Title, Date: in.Date, Time: in.Time, Type: in.Type, Capacity: in.Capacity, CreatedAt: time.Now()}
	r.events[e.ID] = e
	cp := *e
	return &cp, nil
}

func (r *memRepo) Update(_ context.Context, id int64, p Patch) (*Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, ErrEventNotFound
	}
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Time != nil {
		e.Time = *p.Time
	}
	if p.Capacity != nil {
		e.Capacity = p.Capacity
	}
	cp := *e
	return &cp, nil
}

func (r *memRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return ErrEventNotFound
	}
	delete(r.events, id)
	for k := range r.regs {
		if k.event == id {
			delete(r.regs, k)
		}
	}
	return nil
}

func (r *memRepo) Register(_ context.Context, eventID, userID int64) (*Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := regKey{eventID, userID}
	if _, ok := r.events[eventID]; !ok {
		return nil, ErrAlreadyRegistered
	}
	if _, ok := r.regs[k]; ok {
		return nil, ErrAlreadyRegistered
	}
	r.nextID++
	reg := &Registration{ID: r.nextID, EventID: eventID, UserID: userID, Status: RegPending, RegisteredAt: time.Now()}
	r.regs[k] = reg
	cp := *reg
	return &cp, nil
}

func (r *memRepo) SetRegistrationStatus(_ context.Context, eventID, userID int64, status RegistrationStatus) (*Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.regs[regKey{eventID, userID}]
	if !ok {
		return nil, ErrRegistrationNotFound
	}
	reg.Status = status
	cp := *reg
	return &cp, nil
}

func (r *memRepo) ListRegistrations(_ context.Context, eventID int64) ([]Registrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Registrant{}
	for k, reg := range r.regs {
		if k.event == eventID {
			out = append(out, Registrant{Registration: *reg})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *memRepo) ListByUser(_ context.Context, userID int64) ([]MyRegistration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []MyRegistration{}
	for k, reg := range r.regs {
		if k.user == userID {
			out = append(out, MyRegistration{Event: *r.events[k.event], RegisteredAt: reg.RegisteredAt, Status: reg.Status})
		}
	}
	return out, nil
}

func (r *memRepo) regCount(eventID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for k := range r.regs {
		if k.event == eventID {
			n++
		}
	}
	return n
}

func newService(t *testing.T) (*Service, *memRepo) {
	t.Helper()
	repo := newMemRepo()
	return NewService(repo, nil, zerolog.Nop()), repo
}

func mustCreate(t *testing.T, svc *Service, capacity int) *Event {
	t.Helper()
	e, err := svc.Create(context.Background(), Input{
		Title: "Yoga", Date: "2024-07-01", Time: "18:00", Type: TypeClass, Capacity: &capacity,
	})
	require.NoError(t, err)
	return e
}

func TestRegister_Twice(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()
	e := mustCreate(t, svc, 10)

	reg, err := svc.Register(ctx, e.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, RegPending, reg.Status)

	_, err = svc.Register(ctx, e.ID, 1)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
	assert.Equal(t, 1, repo.regCount(e.ID))
}

func TestRegister_MissingEventLooksLikeDuplicate(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Register(context.Background(), 404, 1)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestRegister_CapacityNotEnforced(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()
	e := mustCreate(t, svc, 1)

	for uid := int64(1); uid <= 3; uid++ {
		_, err := svc.Register(ctx, e.ID, uid)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, repo.regCount(e.ID))
}

func TestMyRegistrations_AfterAdminCancel(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	e := mustCreate(t, svc, 5)

	_, err := svc.Register(ctx, e.ID, 42)
	require.NoError(t, err)

	reg, err := svc.SetRegistrationStatus(ctx, 1, e.ID, 42, RegCancelled)
	require.NoError(t, err)
	assert.Equal(t, RegCancelled, reg.Status)

	mine, err := svc.ListMine(ctx, 42)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, e.ID, mine[0].ID)
	assert.Equal(t, RegCancelled, mine[0].Status)
}

func TestSetRegistrationStatus_AnyToAny(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	e := mustCreate(t, svc, 5)
	_, err := svc.Register(ctx, e.ID, 7)
	require.NoError(t, err)

	for _, st := range []RegistrationStatus{RegCompleted, RegPending, RegCancelled, RegConfirmed, RegScheduled} {
		reg, err := svc.SetRegistrationStatus(ctx, 1, e.ID, 7, st)
		require.NoError(t, err)
		assert.Equal(t, st, reg.Status)
	}

	_, err = svc.SetRegistrationStatus(ctx, 1, e.ID, 7, "lost")
	var verr *validate.Error
	assert.True(t, errors.As(err, &verr))

	_, err = svc.SetRegistrationStatus(ctx, 1, e.ID, 8, RegConfirmed)
	assert.ErrorIs(t, err, ErrRegistrationNotFound)
}

func TestListRegistrations_MostRecentFirst(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	e := mustCreate(t, svc, 5)
	for uid := int64(1); uid <= 3; uid++ {
		_, err := svc.Register(ctx, e.ID, uid)
		require.NoError(t, err)
	}

	regs, err := svc.ListRegistrations(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, regs, 3)
	assert.Equal(t, int64(3), regs[0].UserID)
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Create(context.Background(), Input{Date: "tomorrow", Time: "6pm", Type: "party"})

	var verr *validate.Error
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "title")
	assert.Contains(t, verr.Fields, "event_date")
	assert.Contains(t, verr.Fields, "event_time")
	assert.Contains(t, verr.Fields, "event_type")
}

func TestCreate_NormalisesTime(t *testing.T) {
	svc, _ := newService(t)
	e := mustCreate(t, svc, 3)
	assert.Equal(t, "18:00:00", e.Time)
}

func TestUpdateAndDelete(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	e := mustCreate(t, svc, 3)

	same, err := svc.Update(ctx, e.ID, Patch{})
	require.NoError(t, err)
	assert.Equal(t, e.Title, same.Title)

	title := "Pilates"
	updated, err := svc.Update(ctx, e.ID, Patch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Pilates", updated.Title)

	require.NoError(t, svc.Delete(ctx, e.ID))
	_, err = svc.Get(ctx, e.ID)
	assert.ErrorIs(t, err, ErrEventNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, e.ID), ErrEventNotFound)
}

func TestList_InvalidType(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.List(context.Background(), ListFilter{Type: "party"})
	var verr *validate.Error
	assert.True(t, errors.As(err, &verr))
}
