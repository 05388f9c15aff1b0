package builtins

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"grizzly/interpreter-go/pkg/runtime"
)

func receiverString(args []runtime.Value) string {
	return args[0].(runtime.StringValue).Val
}

func stringResult(s string) (runtime.Value, error) { return runtime.NewString(s), nil }

func registerStringMethods(r *Registry) {
	add := func(name string, minArgs, maxArgs int, impl NativeFunc) {
		r.addMethod(runtime.KindString, name, minArgs, maxArgs, impl)
	}
	add("upper", 0, 0, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		return stringResult(strings.ToUpper(receiverString(args)))
	})
	add("lower", 0, 0, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		return stringResult(strings.ToLower(receiverString(args)))
	})
	add("strip", 0, 1, trimmer("strip", strings.TrimSpace, strings.Trim))
	add("lstrip", 0, 1, trimmer("lstrip", func(s string) string { return strings.TrimLeftFunc(s, unicode.IsSpace) }, strings.TrimLeft))
	add("rstrip", 0, 1, trimmer("rstrip", func(s string) string { return strings.TrimRightFunc(s, unicode.IsSpace) }, strings.TrimRight))
	add("split", 0, 2, stringSplit)
	add("join", 1, 1, stringJoin)
	add("replace", 2, 3, stringReplace)
	add("startswith", 1, 1, affixTest("startswith", strings.HasPrefix))
	add("endswith", 1, 1, affixTest("endswith", strings.HasSuffix))
	add("find", 1, 1, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		sub, err := argString("find", args, 1)
		if err != nil {
			return nil, err
		}
		s := receiverString(args)
		idx := strings.Index(s, sub)
		if idx < 0 {
			return runtime.NewInteger(-1), nil
		}
		return runtime.NewInteger(int64(utf8.RuneCountInString(s[:idx]))), nil
	})
	add("count", 1, 1, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		sub, err := argString("count", args, 1)
		if err != nil {
			return nil, err
		}
		return runtime.NewInteger(int64(strings.Count(receiverString(args), sub))), nil
	})
	add("contains", 1, 1, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		sub, err := argString("contains", args, 1)
		if err != nil {
			return nil, err
		}
		return runtime.NewBool(strings.Contains(receiverString(args), sub)), nil
	})
	add("isdigit", 0, 0, classTest(unicode.IsDigit))
	add("isalpha", 0, 0, classTest(unicode.IsLetter))
	add("isspace", 0, 0, classTest(unicode.IsSpace))
	add("title", 0, 0, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		return stringResult(titleCase(receiverString(args)))
	})
	add("capitalize", 0, 0, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		s := receiverString(args)
		if s == "" {
			return stringResult(s)
		}
		first, size := utf8.DecodeRuneInString(s)
		return stringResult(string(unicode.ToUpper(first)) + strings.ToLower(s[size:]))
	})
	add("zfill", 1, 1, stringZfill)
}

func trimmer(name string, spaces func(string) string, cutset func(string, string) string) NativeFunc {
	return func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		s := receiverString(args)
		if len(args) == 1 || runtime.IsNull(args[1]) {
			return stringResult(spaces(s))
		}
		chars, err := argString(name, args, 1)
		if err != nil {
			return nil, err
		}
		return stringResult(cutset(s, chars))
	}
}

// stringSplit follows str.split: no separator splits on whitespace runs and
// drops empty fields; maxsplit < 0 means no limit.
func stringSplit(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
	s := receiverString(args)
	maxSplit := -1
	if len(args) == 3 {
		var err error
		if maxSplit, err = argInt("split", args, 2); err != nil {
			return nil, err
		}
	}
	var parts []string
	if len(args) == 1 || runtime.IsNull(args[1]) {
		parts = strings.Fields(s)
		if maxSplit >= 0 && len(parts) > maxSplit+1 {
			parts = splitFieldsN(s, maxSplit)
		}
	} else {
		sep, err := argString("split", args, 1)
		if err != nil {
			return nil, err
		}
		if sep == "" {
			return nil, fmt.Errorf("split(): empty separator")
		}
		n := -1
		if maxSplit >= 0 {
			n = maxSplit + 1
		}
		parts = strings.SplitN(s, sep, n)
	}
	out := make([]runtime.Value, len(parts))
	for i, p := range parts {
		out[i] = runtime.NewString(p)
	}
	return runtime.NewList(out...), nil
}

// splitFieldsN splits on whitespace at most n times; the remainder keeps its
// inner spacing.
func splitFieldsN(s string, n int) []string {
	var parts []string
	rest := strings.TrimLeftFunc(s, unicode.IsSpace)
	for len(parts) < n && rest != "" {
		end := strings.IndexFunc(rest, unicode.IsSpace)
		if end < 0 {
			break
		}
		parts = append(parts, rest[:end])
		rest = strings.TrimLeftFunc(rest[end:], unicode.IsSpace)
	}
	if rest != "" {
		parts = append(parts, rest)
	}
	return parts
}

func stringJoin(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
	items, err := runtime.Iterate(args[1])
	if err != nil {
		return nil, fmt.Errorf("join(): %w", err)
	}
	parts := make([]string, len(items))
	for i, item := range items {
		s, ok := item.(runtime.StringValue)
		if !ok {
			return nil, fmt.Errorf("join(): sequence item %d: expected str, %s found", i, runtime.TypeName(item))
		}
		parts[i] = s.Val
	}
	return stringResult(strings.Join(parts, receiverString(args)))
}

func stringReplace(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
	old, err := argString("replace", args, 1)
	if err != nil {
		return nil, err
	}
	repl, err := argString("replace", args, 2)
	if err != nil {
		return nil, err
	}
	n := -1
	if len(args) == 4 {
		if n, err = argInt("replace", args, 3); err != nil {
			return nil, err
		}
	}
	return stringResult(strings.Replace(receiverString(args), old, repl, n))
}

// affixTest accepts one affix or a list of alternatives.
func affixTest(name string, test func(string, string) bool) NativeFunc {
	return func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		s := receiverString(args)
		switch affix := args[1].(type) {
		case runtime.StringValue:
			return runtime.NewBool(test(s, affix.Val)), nil
		case *runtime.ListValue:
			for i, el := range affix.Elements {
				candidate, ok := el.(runtime.StringValue)
				if !ok {
					return nil, fmt.Errorf("%s(): item %d must be str, not %s", name, i, runtime.TypeName(el))
				}
				if test(s, candidate.Val) {
					return runtime.True, nil
				}
			}
			return runtime.False, nil
		}
		return nil, typeError(name, 0, "str or a list of str", args[1])
	}
}

func classTest(class func(rune) bool) NativeFunc {
	return func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		s := receiverString(args)
		if s == "" {
			return runtime.False, nil
		}
		for _, r := range s {
			if !class(r) {
				return runtime.False, nil
			}
		}
		return runtime.True, nil
	}
}

func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if prevLetter {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(unicode.ToUpper(r))
		}
		prevLetter = unicode.IsLetter(r)
	}
	return b.String()
}

func stringZfill(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
	width, err := argInt("zfill", args, 1)
	if err != nil {
		return nil, err
	}
	if width > runtime.MaxSequenceSize {
		return nil, fmt.Errorf("zfill() width %d exceeds %d", width, runtime.MaxSequenceSize)
	}
	s := receiverString(args)
	pad := width - utf8.RuneCountInString(s)
	if pad <= 0 {
		return stringResult(s)
	}
	sign := ""
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		sign, s = s[:1], s[1:]
	}
	return stringResult(sign + strings.Repeat("0", pad) + s)
}
