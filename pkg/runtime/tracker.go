package runtime

import (
	"fmt"
	"strings"
)

// AccessKind classifies the outcome of one path access.
type AccessKind int

const (
	AccessSuccess AccessKind = iota
	AccessBrokenPath
	AccessKeyNotFound
	AccessIndexOutOfBounds
)

func (k AccessKind) String() string {
	switch k {
	case AccessSuccess:
		return "success"
	case AccessBrokenPath:
		return "broken_path"
	case AccessKeyNotFound:
		return "key_not_found"
	case AccessIndexOutOfBounds:
		return "index_out_of_bounds"
	default:
		return fmt.Sprintf("access_kind_%d", int(k))
	}
}

func (k AccessKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Failed reports whether the kind is anything but success.
func (k AccessKind) Failed() bool { return k != AccessSuccess }

// AccessEvent is one entry of the access log.
type AccessEvent struct {
	Path string     `json:"path"`
	Kind AccessKind `json:"kind"`
	Safe bool       `json:"safe"`
	Line int        `json:"line"`
}

func (e AccessEvent) String() string {
	safe := ""
	if e.Safe {
		safe = " (safe)"
	}
	return fmt.Sprintf("line %d: %s %s%s", e.Line, e.Path, e.Kind, safe)
}

// AccessTracker is the ordered access log of one run. It is not safe for
// concurrent use; give every run its own tracker.
type AccessTracker struct {
	events []AccessEvent
}

func NewAccessTracker() *AccessTracker {
	return &AccessTracker{}
}

func (t *AccessTracker) Record(event AccessEvent) {
	t.events = append(t.events, event)
}

// Events returns a copy of the log in recording order.
func (t *AccessTracker) Events() []AccessEvent {
	if t == nil {
		return nil
	}
	out := make([]AccessEvent, len(t.events))
	copy(out, t.events)
	return out
}

// Failures returns the non-success events in recording order.
func (t *AccessTracker) Failures() []AccessEvent {
	if t == nil {
		return nil
	}
	var out []AccessEvent
	for _, ev := range t.events {
		if ev.Kind.Failed() {
			out = append(out, ev)
		}
	}
	return out
}

func (t *AccessTracker) Len() int {
	if t == nil {
		return 0
	}
	return len(t.events)
}

func (t *AccessTracker) Reset() {
	t.events = nil
}

// Report renders the log as a validation report, one access per line.
func (t *AccessTracker) Report() string {
	var b strings.Builder
	failures := len(t.Failures())
	fmt.Fprintf(&b, "access report: %d accesses, %d failures\n", t.Len(), failures)
	if t == nil {
		return b.String()
	}
	width := 0
	for _, ev := range t.events {
		width = max(width, len(ev.Path))
	}
	for _, ev := range t.events {
		marker := "ok "
		if ev.Kind.Failed() {
			marker = "ERR"
		}
		safe := ""
		if ev.Safe {
			safe = " (safe)"
		}
		fmt.Fprintf(&b, "  %s line %-4d %-*s  %s%s\n", marker, ev.Line, width, ev.Path, ev.Kind, safe)
	}
	return b.String()
}
