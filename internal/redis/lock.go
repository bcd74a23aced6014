package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var ErrLockNotAcquired = errors.New("slot lock not acquired")

// SlotKey identifies one bookable (provider, date, time) tuple.
type SlotKey struct {
	ProviderID int64
	Date       string
	Time       string
}

func (k SlotKey) String() string {
	return fmt.Sprintf("lock:slot:%d:%s:%s", k.ProviderID, k.Date, k.Time)
}

// Locker guards the availability check and the write that depends on it.
type Locker interface {
	WithSlotLock(ctx context.Context, slot SlotKey, fn func(ctx context.Context) error) error
}

const retryInterval = 25 * time.Millisecond

// SlotLocker holds one Redis key per slot, owned by a random token.
type SlotLocker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	log    zerolog.Logger
}

// NewRedisSlotLocker returns a locker that fails fast when the slot is held.
// Use WithWait to poll for a while instead.
func NewRedisSlotLocker(client *redis.Client, ttl time.Duration) *SlotLocker {
	return &SlotLocker{client: client, ttl: ttl, log: zerolog.Nop()}
}

// WithWait makes acquisition retry for up to d before giving up.
func (l *SlotLocker) WithWait(d time.Duration) *SlotLocker {
	l.wait = d
	return l
}

func (l *SlotLocker) WithLogger(log zerolog.Logger) *SlotLocker {
	l.log = log
	return l
}

// WithSlotLock runs fn while holding the slot key. fn's context expires with
// the lock so work cannot outlive its ownership.
func (l *SlotLocker) WithSlotLock(ctx context.Context, slot SlotKey, fn func(ctx context.Context) error) error {
	key := slot.String()
	token := uuid.NewString()

	if err := l.acquire(ctx, key, token); err != nil {
		return err
	}

	defer func() {
		// a cancelled request must still free the key
		relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		if err := l.release(relCtx, key, token); err != nil {
			l.log.Warn().Err(err).Str("key", key).Msg("slot lock release failed")
		}
	}()

	held, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(held)
}

func (l *SlotLocker) acquire(ctx context.Context, key, token string) error {
	deadline := time.Now().Add(l.wait)
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return fmt.Errorf("acquire slot lock: %w", err)
		}
		if ok {
			return nil
		}
		if !time.Now().Before(deadline) {
			return ErrLockNotAcquired
		}

		t := time.NewTimer(retryInterval)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

func (l *SlotLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release slot lock: %w", err)
	}
	return nil
}
