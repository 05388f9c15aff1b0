package runtime

import (
	"fmt"
	"strings"
)

// NullMode decides what a failed path access does.
type NullMode int

const (
	// NullStrict raises on failed accesses unless the safe operator was used.
	NullStrict NullMode = iota
	// NullSafe never raises; every access is recorded.
	NullSafe
	// NullSilent never raises and records nothing.
	NullSilent
)

func (m NullMode) String() string {
	switch m {
	case NullStrict:
		return "strict"
	case NullSafe:
		return "safe"
	case NullSilent:
		return "silent"
	default:
		return fmt.Sprintf("null_mode_%d", int(m))
	}
}

// ParseNullMode accepts strict, safe or silent, case-insensitively. The empty
// string means strict.
func ParseNullMode(text string) (NullMode, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "", "strict":
		return NullStrict, nil
	case "safe":
		return NullSafe, nil
	case "silent":
		return NullSilent, nil
	default:
		return NullStrict, fmt.Errorf("unknown null mode %q (expected strict, safe or silent)", text)
	}
}

// Set implements pflag.Value.
func (m *NullMode) Set(text string) error {
	mode, err := ParseNullMode(text)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// Type implements pflag.Value.
func (m *NullMode) Type() string { return "mode" }

func (m NullMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *NullMode) UnmarshalText(text []byte) error { return m.Set(string(text)) }
