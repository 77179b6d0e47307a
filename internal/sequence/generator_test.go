package sequence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCounterStore struct {
	mu     sync.Mutex
	values map[string]int64
}

func newMemCounterStore() *memCounterStore {
	return &memCounterStore{values: make(map[string]int64)}
}

func (m *memCounterStore) Increment(_ context.Context, scope, periodKey string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := scope + "/" + periodKey
	m.values[key]++
	return m.values[key], nil
}

func fixedYear(year int) func() time.Time {
	return func() time.Time {
		return time.Date(year, time.June, 15, 12, 0, 0, 0, time.UTC)
	}
}

func TestNextFormats(t *testing.T) {
	gen := NewGenerator(newMemCounterStore())
	gen.now = fixedYear(2026)

	ctx := context.Background()

	code, err := gen.Next(ctx, ScopeOwner)
	require.NoError(t, err)
	assert.Equal(t, "O-000001", code)

	code, err = gen.Next(ctx, ScopePet)
	require.NoError(t, err)
	assert.Equal(t, "P-000001", code)

	code, err = gen.Next(ctx, ScopeInvoice)
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-000001", code)

	code, err = gen.Next(ctx, ScopeMedicalRecord)
	require.NoError(t, err)
	assert.Equal(t, "MR-2026-000001", code)

	// Scopes count independently.
	code, err = gen.Next(ctx, ScopeOwner)
	require.NoError(t, err)
	assert.Equal(t, "O-000002", code)
}

func TestNextYearScopedCountersResetPerYear(t *testing.T) {
	store := newMemCounterStore()
	gen := NewGenerator(store)

	ctx := context.Background()

	gen.now = fixedYear(2026)
	code, err := gen.Next(ctx, ScopeInvoice)
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-000001", code)

	// A new year keys a fresh counter row; numbering restarts.
	gen.now = fixedYear(2027)
	code, err = gen.Next(ctx, ScopeInvoice)
	require.NoError(t, err)
	assert.Equal(t, "INV-2027-000001", code)

	gen.now = fixedYear(2026)
	code, err = gen.Next(ctx, ScopeInvoice)
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-000002", code)
}

func TestNextUnknownScope(t *testing.T) {
	gen := NewGenerator(newMemCounterStore())

	_, err := gen.Next(context.Background(), Scope("bogus"))
	assert.ErrorIs(t, err, ErrUnknownScope)
}

func TestNextConcurrentUniqueness(t *testing.T) {
	gen := NewGenerator(newMemCounterStore())
	gen.now = fixedYear(2026)

	const n = 200
	codes := make(chan string, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			code, err := gen.Next(context.Background(), ScopeOwner)
			assert.NoError(t, err)
			codes <- code
		}()
	}
	wg.Wait()
	close(codes)

	seen := make(map[string]bool, n)
	for code := range codes {
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
	assert.Len(t, seen, n)
}
