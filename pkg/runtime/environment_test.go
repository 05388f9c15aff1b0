package runtime

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

func TestEnvironmentScoping(t *testing.T) {
	root := NewEnvironment(NullStrict, nil)
	root.Set(InputName, NewMapping())
	root.Set("x", NewInteger(1))

	child := root.CreateChild()
	if !child.Has("x") {
		t.Fatalf("child should see parent binding")
	}
	child.Set("x", NewInteger(2))
	if v, _ := root.Get("x"); v != NewInteger(1) {
		t.Fatalf("child assignment leaked into parent: %#v", v)
	}
	if v, _ := child.Get("x"); v != NewInteger(2) {
		t.Fatalf("child binding not visible: %#v", v)
	}
	if _, err := child.Get("missing"); err == nil || !strings.Contains(err.Error(), "undefined variable 'missing'") {
		t.Fatalf("expected undefined variable error, got %v", err)
	}
	if diff := cmp.Diff([]string{InputName, "x"}, child.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestEnvironmentSharesRunSettings(t *testing.T) {
	tracker := NewAccessTracker()
	root := NewEnvironment(NullSafe, tracker)
	child := root.CreateChild().CreateChild()
	if child.NullMode() != NullSafe {
		t.Fatalf("expected safe mode, got %s", child.NullMode())
	}
	child.Record(AccessEvent{Path: "INPUT.a", Kind: AccessSuccess, Line: 2})
	if tracker.Len() != 1 {
		t.Fatalf("expected child record to reach the root tracker")
	}
}

func TestSilentModeDisablesTracking(t *testing.T) {
	tracker := NewAccessTracker()
	env := NewEnvironment(NullSilent, tracker)
	if env.Tracker() != nil {
		t.Fatalf("silent mode must not expose a tracker")
	}
	env.Record(AccessEvent{Path: "INPUT.a", Kind: AccessBrokenPath})
	if tracker.Len() != 0 {
		t.Fatalf("silent mode recorded %d events", tracker.Len())
	}
}

func TestParseNullMode(t *testing.T) {
	for text, want := range map[string]NullMode{"": NullStrict, "STRICT": NullStrict, "safe": NullSafe, " silent ": NullSilent} {
		got, err := ParseNullMode(text)
		if err != nil || got != want {
			t.Fatalf("ParseNullMode(%q) = %s, %v", text, got, err)
		}
	}
	var mode NullMode
	if err := mode.Set("lenient"); err == nil {
		t.Fatalf("expected unknown mode to fail")
	}
}

func TestTrackerReport(t *testing.T) {
	tracker := NewAccessTracker()
	tracker.Record(AccessEvent{Path: "INPUT.name", Kind: AccessSuccess, Line: 2})
	tracker.Record(AccessEvent{Path: "INPUT.a", Kind: AccessBrokenPath, Safe: true, Line: 3})
	tracker.Record(AccessEvent{Path: "items[5]", Kind: AccessIndexOutOfBounds, Line: 4})

	if got := len(tracker.Failures()); got != 2 {
		t.Fatalf("expected 2 failures, got %d", got)
	}
	report := tracker.Report()
	for _, want := range []string{
		"3 accesses, 2 failures",
		"INPUT.name",
		"broken_path (safe)",
		"index_out_of_bounds",
	} {
		if !strings.Contains(report, want) {
			t.Fatalf("report missing %q:\n%s", want, report)
		}
	}
	tracker.Reset()
	if tracker.Len() != 0 {
		t.Fatalf("expected reset tracker to be empty")
	}
}

type hostOrder struct {
	ID       int             `json:"id"`
	Customer string          `json:"customer"`
	Total    decimal.Decimal `json:"total"`
	Placed   time.Time       `json:"placed"`
	Notes    *string         `json:"notes"`
	Tags     []string        `json:"tags,omitempty"`
	Internal string          `json:"-"`
	secret   string
}

func TestFromGoStruct(t *testing.T) {
	placed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	v, err := FromGo(hostOrder{ID: 7, Customer: "Ann", Total: decimal.RequireFromString("9.90"), Placed: placed, Internal: "x", secret: "y"})
	if err != nil {
		t.Fatalf("FromGo: %v", err)
	}
	m, ok := v.(*MappingValue)
	if !ok {
		t.Fatalf("expected mapping, got %T", v)
	}
	if diff := cmp.Diff([]string{"id", "customer", "total", "placed", "notes"}, m.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if got := AsString(v); got != `{'id': 7, 'customer': 'Ann', 'total': Decimal('9.90'), 'placed': datetime('2024-01-02T03:04:05Z'), 'notes': None}` {
		t.Fatalf("unexpected rendering %s", got)
	}
}

func TestFromGoRoundTrip(t *testing.T) {
	in := map[string]any{
		"b": []any{int64(1), 2.5, "x", nil, true},
		"a": map[string]any{"nested": "yes"},
	}
	v, err := FromGo(in)
	if err != nil {
		t.Fatalf("FromGo: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, v.(*MappingValue).Keys()); diff != "" {
		t.Fatalf("expected sorted keys (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(in, ToGo(v)); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
	if _, err := FromGo(map[int]string{1: "x"}); err == nil {
		t.Fatalf("expected non-string keys to fail")
	}
}
