package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrLockWaitExpired means the practitioner lock could not be acquired
	// within the wait budget. Callers treat it as a transient failure.
	ErrLockWaitExpired = errors.New("practitioner lock wait expired")
)

// Locker serializes concurrent portal bookings for the same practitioner.
// Contention is per practitioner, never global.
type Locker interface {
	WithPractitionerLock(ctx context.Context, practitionerID uuid.UUID, fn func(ctx context.Context) error) error
}

type redisPractitionerLocker struct {
	client   *redis.Client
	ttl      time.Duration
	wait     time.Duration
	pollStep time.Duration
}

// NewPractitionerLocker creates a locker keyed per practitioner. Acquisition
// blocks up to wait, polling SetNX, so contending portal requests queue
// rather than fail fast.
func NewPractitionerLocker(client *redis.Client, ttl, wait time.Duration) Locker {
	return &redisPractitionerLocker{
		client:   client,
		ttl:      ttl,
		wait:     wait,
		pollStep: 25 * time.Millisecond,
	}
}

func (l *redisPractitionerLocker) WithPractitionerLock(ctx context.Context, practitionerID uuid.UUID, fn func(ctx context.Context) error) error {
	key := fmt.Sprintf("lock:practitioner:%s", practitionerID.String())
	token := uuid.NewString()

	deadline := time.Now().Add(l.wait)
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return fmt.Errorf("acquire practitioner lock: %w", err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return ErrLockWaitExpired
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.pollStep):
		}
	}

	defer func() {
		_ = l.release(context.WithoutCancel(ctx), key, token)
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

// unlockScript releases only if the token still matches, so an expired lock
// taken over by another caller is never deleted from under them.
var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *redisPractitionerLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release practitioner lock: %w", err)
	}
	return nil
}
