// Package dbtest gives repository tests a migrated, empty Postgres database.
// Tests are skipped unless TEST_DATABASE_URL points at a disposable database.
package dbtest

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/healthcare-portal/internal/db"
)

const EnvURL = "TEST_DATABASE_URL"

// lockKey serialises test packages that share the database, since go test
// runs packages in parallel.
const lockKey = 7_201_115

const truncateAll = `
	TRUNCATE activity_logs, vitals, event_registrations, events, appointments,
	         provider_availability, provider_facilities, providers, facilities, users
	RESTART IDENTITY CASCADE`

// Pool connects, applies the embedded migrations and empties every table.
// The pool is closed when the test ends.
func Pool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv(EnvURL)
	if dsn == "" {
		t.Skipf("%s not set", EnvURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn, 4, 1)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	conn, err := pool.Acquire(ctx)
	require.NoError(t, err)
	_, err = conn.Exec(context.Background(), `SELECT pg_advisory_lock($1)`, lockKey)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, lockKey)
		conn.Release()
	})

	_, err = db.NewMigrator(pool).Up(ctx)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, truncateAll)
	require.NoError(t, err)
	return pool
}

// User inserts a patient and returns its id.
func User(t *testing.T, pool *pgxpool.Pool, email string) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(), `
		INSERT INTO users (email, password_hash, first_name, last_name)
		VALUES ($1, 'x', 'Test', 'Patient')
		RETURNING id
	`, email).Scan(&id)
	require.NoError(t, err)
	return id
}

// Provider inserts a provider and returns its id.
func Provider(t *testing.T, pool *pgxpool.Pool) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(), `
		INSERT INTO providers (first_name, last_name, specialty)
		VALUES ('Ada', 'Lane', 'Cardiology')
		RETURNING id
	`).Scan(&id)
	require.NoError(t, err)
	return id
}

// Facility inserts a facility and returns its id.
func Facility(t *testing.T, pool *pgxpool.Pool) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(), `
		INSERT INTO facilities (name, address) VALUES ('North Clinic', '1 Main St')
		RETURNING id
	`).Scan(&id)
	require.NoError(t, err)
	return id
}
