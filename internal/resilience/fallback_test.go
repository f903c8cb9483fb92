package resilience

import (
	"errors"
	"testing"
	"time"
)

// countingBackend counts invocations so tests can assert call routing.
type countingBackend struct {
	name  string
	err   error
	calls int
}

func TestFallbackGroup_PrimaryHealthy(t *testing.T) {
	primary := &countingBackend{name: "primary"}
	secondary := &countingBackend{name: "secondary"}

	g := NewFallbackGroup(primary, "primary", FallbackConfig{})
	g.AddFallback("secondary", secondary)

	err := g.Execute(func(b *countingBackend) error {
		b.calls++
		return b.err
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if primary.calls != 1 || secondary.calls != 0 {
		t.Fatalf("calls = primary %d, secondary %d; want 1, 0", primary.calls, secondary.calls)
	}
}

func TestFallbackGroup_FailsOverInOrder(t *testing.T) {
	primary := &countingBackend{name: "primary", err: errBackend}
	secondary := &countingBackend{name: "secondary"}

	g := NewFallbackGroup(primary, "primary", FallbackConfig{})
	g.AddFallback("secondary", secondary)

	err := g.Execute(func(b *countingBackend) error {
		b.calls++
		return b.err
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if primary.calls != 1 || secondary.calls != 1 {
		t.Fatalf("calls = primary %d, secondary %d; want 1, 1", primary.calls, secondary.calls)
	}
}

func TestFallbackGroup_AllFail(t *testing.T) {
	primary := &countingBackend{name: "primary", err: errBackend}

	g := NewFallbackGroup(primary, "primary", FallbackConfig{})

	err := g.Execute(func(b *countingBackend) error {
		b.calls++
		return b.err
	})
	if !errors.Is(err, ErrAllFailed) {
		t.Fatalf("err = %v, want ErrAllFailed", err)
	}
	// The last backend error stays in the chain for errors.Is inspection.
	if !errors.Is(err, errBackend) {
		t.Fatalf("err = %v, want errBackend in the chain", err)
	}
}

func TestFallbackGroup_OpenBreakerSkipsBackend(t *testing.T) {
	primary := &countingBackend{name: "primary", err: errBackend}
	secondary := &countingBackend{name: "secondary"}

	g := NewFallbackGroup(primary, "primary", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 2, ResetTimeout: time.Hour},
	})
	g.AddFallback("secondary", secondary)

	run := func(b *countingBackend) error {
		b.calls++
		return b.err
	}
	for range 3 {
		if err := g.Execute(run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// Primary's breaker tripped on the second failure; the third round must
	// not touch it.
	if primary.calls != 2 {
		t.Fatalf("primary calls = %d, want 2", primary.calls)
	}
	if secondary.calls != 3 {
		t.Fatalf("secondary calls = %d, want 3", secondary.calls)
	}
}

func TestExecuteWithResult_ReturnsFirstHealthyValue(t *testing.T) {
	primary := &countingBackend{name: "primary", err: errBackend}
	secondary := &countingBackend{name: "secondary"}

	g := NewFallbackGroup(primary, "primary", FallbackConfig{})
	g.AddFallback("secondary", secondary)

	out, err := ExecuteWithResult(g, func(b *countingBackend) (string, error) {
		return b.name, b.err
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "secondary" {
		t.Fatalf("out = %q, want 'secondary'", out)
	}
}

func TestExecuteWithResult_AllFail(t *testing.T) {
	primary := &countingBackend{name: "primary", err: errBackend}

	g := NewFallbackGroup(primary, "primary", FallbackConfig{})

	_, err := ExecuteWithResult(g, func(b *countingBackend) (string, error) {
		return "", b.err
	})
	if !errors.Is(err, ErrAllFailed) {
		t.Fatalf("err = %v, want ErrAllFailed", err)
	}
}
