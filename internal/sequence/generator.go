// Package sequence issues unique, monotonically-increasing, human-readable
// codes (owner codes, pet codes, invoice numbers, record codes) under
// concurrent callers. Gaps are acceptable; duplicates are not.
package sequence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
)

type Scope string

const (
	ScopeOwner         Scope = "owner"
	ScopePet           Scope = "pet"
	ScopeInvoice       Scope = "invoice"
	ScopeMedicalRecord Scope = "medicalRecord"
)

var ErrUnknownScope = errors.New("unknown sequence scope")

type format struct {
	prefix     string
	pad        int
	yearScoped bool
}

var formats = map[Scope]format{
	ScopeOwner:         {prefix: "O", pad: 6},
	ScopePet:           {prefix: "P", pad: 6},
	ScopeInvoice:       {prefix: "INV", pad: 6, yearScoped: true},
	ScopeMedicalRecord: {prefix: "MR", pad: 6, yearScoped: true},
}

// CounterStore performs the atomic increment-and-return for one counter row.
// It must execute as a single storage-layer operation, never a read-then-
// write pair, and independently of any caller transaction.
type CounterStore interface {
	Increment(ctx context.Context, scope, periodKey string) (int64, error)
}

type Generator struct {
	counters CounterStore
	now      func() time.Time
}

func NewGenerator(counters CounterStore) *Generator {
	return &Generator{counters: counters, now: time.Now}
}

// Next returns the next code for the scope. Two calls never return the same
// value, even under unbounded concurrent callers.
func (g *Generator) Next(ctx context.Context, scope Scope) (string, error) {
	f, ok := formats[scope]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownScope, scope)
	}

	periodKey := ""
	if f.yearScoped {
		periodKey = strconv.Itoa(g.now().Year())
	}

	n, err := g.counters.Increment(ctx, string(scope), periodKey)
	if err != nil {
		return "", fmt.Errorf("increment %s counter: %w", scope, err)
	}

	if f.yearScoped {
		return fmt.Sprintf("%s-%s-%0*d", f.prefix, periodKey, f.pad, n), nil
	}
	return fmt.Sprintf("%s-%0*d", f.prefix, f.pad, n), nil
}
