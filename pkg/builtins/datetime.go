package builtins

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // zone names resolve the same on every host

	"grizzly/interpreter-go/pkg/runtime"
)

func registerDateTime(r *Registry) {
	r.addFunction("now", 0, 1, builtinNow)
	r.addFunction("parseDate", 2, 3, builtinParseDate)
	r.addFunction("formatDate", 2, 2, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		t, err := argTime("formatDate", args, 0)
		if err != nil {
			return nil, err
		}
		pattern, err := argString("formatDate", args, 1)
		if err != nil {
			return nil, err
		}
		return formatTime(t, pattern)
	})
	r.addFunction("addDays", 2, 2, shiftCalendar("addDays", 0, 0, 1))
	r.addFunction("addMonths", 2, 2, shiftCalendar("addMonths", 0, 1, 0))
	r.addFunction("addYears", 2, 2, shiftCalendar("addYears", 1, 0, 0))
	r.addFunction("addHours", 2, 2, shiftClock("addHours", time.Hour))
	r.addFunction("addMinutes", 2, 2, shiftClock("addMinutes", time.Minute))
	r.addFunction("addSeconds", 2, 2, shiftClock("addSeconds", time.Second))
	r.addFunction("daysBetween", 2, 2, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		from, err := argTime("daysBetween", args, 0)
		if err != nil {
			return nil, err
		}
		to, err := argTime("daysBetween", args, 1)
		if err != nil {
			return nil, err
		}
		return runtime.NewInteger(int64(to.Sub(from) / (24 * time.Hour))), nil
	})

	methods := []struct {
		name string
		get  func(time.Time) int
	}{
		{"year", time.Time.Year},
		{"month", func(t time.Time) int { return int(t.Month()) }},
		{"day", time.Time.Day},
		{"hour", time.Time.Hour},
		{"minute", time.Time.Minute},
		{"second", time.Time.Second},
		// Monday is 0.
		{"weekday", func(t time.Time) int { return (int(t.Weekday()) + 6) % 7 }},
	}
	for _, m := range methods {
		get := m.get
		r.addMethod(runtime.KindDateTime, m.name, 0, 0, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
			return runtime.NewInteger(int64(get(args[0].(runtime.DateTimeValue).Val))), nil
		})
	}
	r.addMethod(runtime.KindDateTime, "format", 1, 1, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		pattern, err := argString("format", args, 1)
		if err != nil {
			return nil, err
		}
		return formatTime(args[0].(runtime.DateTimeValue).Val, pattern)
	})
	r.addMethod(runtime.KindDateTime, "isoformat", 0, 0, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		return runtime.NewString(runtime.FormatDateTime(args[0].(runtime.DateTimeValue).Val)), nil
	})
}

func builtinNow(ctx *CallContext, args []runtime.Value) (runtime.Value, error) {
	now := ctx.now()
	if len(args) == 0 {
		return runtime.NewDateTime(now.UTC()), nil
	}
	zone, err := argString("now", args, 0)
	if err != nil {
		return nil, err
	}
	loc, err := loadZone(zone)
	if err != nil {
		return nil, err
	}
	return runtime.NewDateTime(now.In(loc)), nil
}

func builtinParseDate(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
	text, err := argString("parseDate", args, 0)
	if err != nil {
		return nil, err
	}
	pattern, err := argString("parseDate", args, 1)
	if err != nil {
		return nil, err
	}
	loc := time.UTC
	if len(args) == 3 {
		zone, err := argString("parseDate", args, 2)
		if err != nil {
			return nil, err
		}
		if loc, err = loadZone(zone); err != nil {
			return nil, err
		}
	}
	layout, err := TranslatePattern(pattern)
	if err != nil {
		return nil, err
	}
	t, err := time.ParseInLocation(layout, text, loc)
	if err != nil {
		return nil, fmt.Errorf("parseDate(): %q does not match pattern %q", text, pattern)
	}
	return runtime.NewDateTime(t), nil
}

func formatTime(t time.Time, pattern string) (runtime.Value, error) {
	layout, err := TranslatePattern(pattern)
	if err != nil {
		return nil, err
	}
	return runtime.NewString(t.Format(layout)), nil
}

func loadZone(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q", name)
	}
	return loc, nil
}

// argTime accepts a datetime or an ISO-8601 string.
func argTime(fn string, args []runtime.Value, pos int) (time.Time, error) {
	switch v := args[pos].(type) {
	case runtime.DateTimeValue:
		return v.Val, nil
	case runtime.StringValue:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", time.DateOnly} {
			if t, err := time.Parse(layout, v.Val); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("%s(): %q is not an ISO-8601 date-time", fn, v.Val)
	}
	return time.Time{}, typeError(fn, pos, "datetime", args[pos])
}

// shiftCalendar adds years, months or days. Month and year shifts clamp to
// the last day of the target month instead of overflowing into the next.
func shiftCalendar(fn string, years, months, days int) NativeFunc {
	return func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		t, err := argTime(fn, args, 0)
		if err != nil {
			return nil, err
		}
		n, err := argInt(fn, args, 1)
		if err != nil {
			return nil, err
		}
		if days != 0 {
			return runtime.NewDateTime(t.AddDate(0, 0, n*days)), nil
		}
		year, month, day := t.Date()
		target := time.Date(year+n*years, month+time.Month(n*months), 1, 0, 0, 0, 0, t.Location())
		last := time.Date(target.Year(), target.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
		day = min(day, last)
		hour, minute, sec := t.Clock()
		return runtime.NewDateTime(time.Date(target.Year(), target.Month(), day, hour, minute, sec, t.Nanosecond(), t.Location())), nil
	}
}

func shiftClock(fn string, unit time.Duration) NativeFunc {
	return func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		t, err := argTime(fn, args, 0)
		if err != nil {
			return nil, err
		}
		n, err := argInt(fn, args, 1)
		if err != nil {
			return nil, err
		}
		return runtime.NewDateTime(t.Add(time.Duration(n) * unit)), nil
	}
}

// TranslatePattern converts a letter-based date pattern (yyyy-MM-dd HH:mm)
// into a Go reference layout. Text in single quotes is literal and '' is a
// quote.
func TranslatePattern(pattern string) (string, error) {
	var b strings.Builder
	runes := []rune(pattern)
	for i := 0; i < len(runes); {
		c := runes[i]
		if c == '\'' {
			lit, next, err := quotedLiteral(runes, i)
			if err != nil {
				return "", fmt.Errorf("date pattern %q: %w", pattern, err)
			}
			b.WriteString(lit)
			i = next
			continue
		}
		if !isPatternLetter(c) {
			if c >= '0' && c <= '9' {
				return "", fmt.Errorf("date pattern %q: digits are not allowed in literal text", pattern)
			}
			b.WriteRune(c)
			i++
			continue
		}
		n := 1
		for i+n < len(runes) && runes[i+n] == c {
			n++
		}
		layout, err := patternField(c, n, b.String())
		if err != nil {
			return "", fmt.Errorf("date pattern %q: %w", pattern, err)
		}
		b.WriteString(layout)
		i += n
	}
	return b.String(), nil
}

// quotedLiteral reads a quoted run starting at runes[start]. It rejects text
// that a Go layout would read as a field.
func quotedLiteral(runes []rune, start int) (string, int, error) {
	if start+1 < len(runes) && runes[start+1] == '\'' {
		return "'", start + 2, nil
	}
	var lit strings.Builder
	i := start + 1
	for {
		if i >= len(runes) {
			return "", 0, fmt.Errorf("unterminated quote")
		}
		if runes[i] == '\'' {
			if i+1 < len(runes) && runes[i+1] == '\'' {
				lit.WriteRune('\'')
				i += 2
				continue
			}
			i++
			break
		}
		lit.WriteRune(runes[i])
		i++
	}
	text := lit.String()
	for _, token := range layoutTokens {
		if strings.Contains(text, token) {
			return "", 0, fmt.Errorf("literal %q contains layout element %q", text, token)
		}
	}
	if strings.ContainsAny(text, "0123456789") {
		return "", 0, fmt.Errorf("digits are not allowed in literal text")
	}
	return text, i, nil
}

var layoutTokens = []string{"Jan", "Mon", "MST", "PM", "pm", "Z07"}

func isPatternLetter(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func patternField(letter rune, n int, sofar string) (string, error) {
	switch letter {
	case 'y':
		if n == 2 {
			return "06", nil
		}
		return "2006", nil
	case 'M':
		switch n {
		case 1:
			return "1", nil
		case 2:
			return "01", nil
		case 3:
			return "Jan", nil
		default:
			return "January", nil
		}
	case 'd':
		if n == 1 {
			if strings.HasSuffix(sofar, "_") {
				return "", fmt.Errorf("'d' after '_' is ambiguous, use 'dd'")
			}
			return "2", nil
		}
		return "02", nil
	case 'H':
		return "15", nil
	case 'h':
		if n == 1 {
			return "3", nil
		}
		return "03", nil
	case 'm':
		if n == 1 {
			return "4", nil
		}
		return "04", nil
	case 's':
		if n == 1 {
			return "5", nil
		}
		return "05", nil
	case 'S':
		if !strings.HasSuffix(sofar, ".") && !strings.HasSuffix(sofar, ",") {
			return "", fmt.Errorf("fractional seconds must follow '.' or ','")
		}
		return strings.Repeat("0", n), nil
	case 'a':
		return "PM", nil
	case 'E':
		if n >= 4 {
			return "Monday", nil
		}
		return "Mon", nil
	case 'X':
		switch n {
		case 1:
			return "Z07", nil
		case 2:
			return "Z0700", nil
		default:
			return "Z07:00", nil
		}
	case 'Z':
		return "-0700", nil
	case 'z':
		return "MST", nil
	}
	return "", fmt.Errorf("unsupported pattern letter '%c'", letter)
}
