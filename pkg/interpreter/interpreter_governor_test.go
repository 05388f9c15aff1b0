package interpreter

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"grizzly/interpreter-go/pkg/runtime"
)

func loopConfig(limit int) Config {
	cfg := DefaultConfig()
	cfg.MaxLoopIterations = limit
	return cfg
}

func TestLoopGovernor(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		trips bool
	}{
		{"at limit", "for i in range(5):\n        x = i", false},
		{"one past limit", "for i in range(6):\n        x = i", true},
		{"cumulative across loops", "for i in range(3):\n        x = i\n    for j in [1, 2, 3]:\n        x = j", true},
		{"nested loops", "for i in range(2):\n        for j in range(2):\n            x = j", false},
		{"huge range stops early", "for i in range(1000000000000):\n        x = i", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			source := "def transform(INPUT):\n    x = 0\n    " + tc.body + "\n    return {\"x\": x}\n"
			_, _, err := runWith(t, loopConfig(5), source, nil)
			if !tc.trips {
				if err != nil {
					t.Fatalf("run: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrLoopLimit) {
				t.Fatalf("expected loop limit, got %v", err)
			}
			var execErr *ExecutionError
			if !errors.As(err, &execErr) || !execErr.Governor() {
				t.Fatalf("expected governor error, got %v", err)
			}
		})
	}
}

func TestLoopCounterIsPerRun(t *testing.T) {
	interp := New(loopConfig(5))
	program := mustParse(t, "def transform(INPUT):\n    for i in range(5):\n        x = i\n    return {}\n")
	for j := 0; j < 3; j++ {
		if _, err := interp.Run(context.Background(), program, runtime.NewMapping()); err != nil {
			t.Fatalf("run: %v", err)
		}
	}
}

func TestRecursionGovernor(t *testing.T) {
	source := `def down(n):
    if n == 0:
        return 0
    return down(n - 1)

def transform(INPUT):
    return {"v": down(INPUT.n)}
`
	cfg := DefaultConfig()
	cfg.MaxRecursionDepth = 3
	if _, _, err := runWith(t, cfg, source, record("n", 1)); err != nil {
		t.Fatalf("depth 3 should pass: %v", err)
	}
	_, _, err := runWith(t, cfg, source, record("n", 2))
	if !errors.Is(err, ErrRecursionLimit) {
		t.Fatalf("expected recursion limit, got %v", err)
	}
	execErr := expectExecError(t, err, "would exceed depth 3")
	if len(execErr.Trace) != 3 {
		t.Fatalf("expected three active frames, got %v", execErr.Trace)
	}
}

func TestUnboundedRecursionStops(t *testing.T) {
	source := "def f(n):\n    return f(n + 1)\n\ndef transform(INPUT):\n    return {\"v\": f(0)}\n"
	_, _, err := runWith(t, DefaultConfig(), source, nil)
	if !errors.Is(err, ErrRecursionLimit) {
		t.Fatalf("expected recursion limit, got %v", err)
	}
}

func TestTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timeout = 20 * time.Millisecond
	cfg.MaxLoopIterations = math.MaxInt
	source := "def transform(INPUT):\n    for i in range(1000000000000):\n        x = i\n    return {}\n"
	started := time.Now()
	_, _, err := runWith(t, cfg, source, nil)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if elapsed := time.Since(started); elapsed > 5*time.Second {
		t.Fatalf("timeout took %s to fire", elapsed)
	}
}

func TestDeadlineCheckedAfterEntryReturns(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timeout = 10 * time.Millisecond
	cfg.Now = func() time.Time {
		time.Sleep(50 * time.Millisecond)
		return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	}
	_, _, err := runWith(t, cfg, "def transform(INPUT):\n    return {\"t\": now()}\n", nil)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestSingleExpressionSizeBounds(t *testing.T) {
	cases := map[string]string{
		`Decimal("1.0000001") ** 3000000`: "Decimal power would exceed",
		`Decimal("2") ** -400000`:         "Decimal power would exceed",
		`"1".zfill(100000000)`:            "zfill() width 100000000 exceeds",
		`"ab" * 6000000`:                  "repeated string would exceed",
		`[0] * 20000000`:                  "repeated list would exceed",
	}
	for expr, want := range cases {
		t.Run(expr, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Timeout = 2 * time.Second
			started := time.Now()
			_, _, err := runWith(t, cfg, "def transform(INPUT):\n    return {\"v\": "+expr+"}\n", nil)
			expectExecError(t, err, want)
			if elapsed := time.Since(started); elapsed > time.Second {
				t.Fatalf("rejecting %s took %s", expr, elapsed)
			}
		})
	}
}

func TestUnitDecimalPowersAreNotBounded(t *testing.T) {
	expectRepr(t, "Decimal('1')", evalExpr(t, `Decimal("1") ** 2000000000`))
	expectRepr(t, "Decimal('-1')", evalExpr(t, `Decimal("-1") ** 2000000001`))
	expectRepr(t, "Decimal('0')", evalExpr(t, `Decimal("0") ** 2000000000`))
	expectRepr(t, "Decimal('1.21')", evalExpr(t, `Decimal("1.1") ** 2`))
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	program := mustParse(t, "def transform(INPUT):\n    return {}\n")
	_, err := New(DefaultConfig()).Run(ctx, program, runtime.NewMapping())
	if !errors.Is(err, ErrCanceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestGovernorTripIsLogged(t *testing.T) {
	var buf bytes.Buffer
	cfg := loopConfig(2)
	cfg.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	source := "def transform(INPUT):\n    for i in range(3):\n        x = i\n    return {}\n"
	if _, _, err := runWith(t, cfg, source, nil); err == nil {
		t.Fatalf("expected governor error")
	}
	logged := buf.String()
	for _, want := range []string{"run started", "run stopped by governor", "level=WARN", "entry=transform", "null_mode=strict"} {
		if !strings.Contains(logged, want) {
			t.Fatalf("log missing %q:\n%s", want, logged)
		}
	}
}

func TestConfigDefaults(t *testing.T) {
	got := New(Config{}).Config()
	if got.MaxLoopIterations != DefaultMaxLoopIterations || got.MaxRecursionDepth != DefaultMaxRecursionDepth {
		t.Fatalf("limits not defaulted: %+v", got)
	}
	if got.Timeout != DefaultTimeout || got.EntryFunction != DefaultEntryFunction {
		t.Fatalf("timeout or entry not defaulted: %+v", got)
	}
	if got.Logger == nil || got.Now == nil || got.MaxCollectionSize <= 0 {
		t.Fatalf("logger, clock or collection cap not defaulted: %+v", got)
	}
	if got.TrackAccess {
		t.Fatalf("zero config should leave tracking off")
	}
}
