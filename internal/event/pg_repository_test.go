package event

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/healthcare-portal/internal/db/dbtest"
)

func newEvent(t *testing.T, repo *PgRepository) *Event {
	t.Helper()
	capacity := 20
	e, err := repo.Create(context.Background(), Input{
		Title:    "Blood Pressure Screening",
		Date:     "2030-03-01",
		Time:     "10:00",
		Type:     TypeScreening,
		Capacity: &capacity,
	})
	require.NoError(t, err)
	return e
}

func TestPgRepository_RegisterOnce(t *testing.T) {
	pool := dbtest.Pool(t)
	repo := NewPgRepository(pool)
	ctx := context.Background()

	e := newEvent(t, repo)
	uid := dbtest.User(t, pool, "pat@example.com")

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok, dup int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Register(ctx, e.ID, uid)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if assert.ErrorIs(t, err, ErrAlreadyRegistered) {
				dup++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, ok)
	assert.Equal(t, 7, dup)

	var rows int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT count(*) FROM event_registrations WHERE event_id = $1 AND user_id = $2`, e.ID, uid).Scan(&rows))
	assert.Equal(t, 1, rows)

	regs, err := repo.ListRegistrations(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, regs, 1)
	assert.Equal(t, RegPending, regs[0].Status)
}

func TestPgRepository_RegisterMissingEvent(t *testing.T) {
	pool := dbtest.Pool(t)
	repo := NewPgRepository(pool)
	uid := dbtest.User(t, pool, "pat@example.com")

	_, err := repo.Register(context.Background(), 9999, uid)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestPgRepository_SetRegistrationStatus(t *testing.T) {
	pool := dbtest.Pool(t)
	repo := NewPgRepository(pool)
	ctx := context.Background()

	e := newEvent(t, repo)
	uid := dbtest.User(t, pool, "pat@example.com")
	_, err := repo.Register(ctx, e.ID, uid)
	require.NoError(t, err)

	reg, err := repo.SetRegistrationStatus(ctx, e.ID, uid, RegConfirmed)
	require.NoError(t, err)
	assert.Equal(t, RegConfirmed, reg.Status)

	_, err = repo.SetRegistrationStatus(ctx, e.ID, uid+1, RegConfirmed)
	assert.ErrorIs(t, err, ErrRegistrationNotFound)
}

func TestPgRepository_UpdateKeepsUnsetFields(t *testing.T) {
	pool := dbtest.Pool(t)
	repo := NewPgRepository(pool)
	ctx := context.Background()

	e := newEvent(t, repo)
	title := "Cholesterol Check"
	got, err := repo.Update(ctx, e.ID, Patch{Title: &title})
	require.NoError(t, err)

	assert.Equal(t, title, got.Title)
	assert.Equal(t, e.Date, got.Date)
	assert.Equal(t, e.Time, got.Time)
	assert.Equal(t, TypeScreening, got.Type)
	require.NotNil(t, got.Capacity)
	assert.Equal(t, 20, *got.Capacity)

	_, err = repo.Update(ctx, e.ID+1, Patch{Title: &title})
	assert.ErrorIs(t, err, ErrEventNotFound)
}
