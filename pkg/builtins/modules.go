package builtins

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"grizzly/interpreter-go/pkg/runtime"
)

var (
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
	minInt64 = decimal.NewFromInt(math.MinInt64)
)

func registerModules(r *Registry) {
	r.addModule(newRegexModule())
	r.addModule(newMathModule())
}

func newModule(name string) *Module {
	return &Module{Name: name, Functions: make(map[string]NativeFunction), Constants: make(map[string]runtime.Value)}
}

func (m *Module) add(name string, minArgs, maxArgs int, impl NativeFunc) {
	m.Functions[name] = NativeFunction{Name: m.Name + "." + name, MinArgs: minArgs, MaxArgs: maxArgs, Impl: impl}
}

// patternCache holds compiled expressions for the life of the process.
// Patterns are program literals in practice, so the set stays small.
var patternCache sync.Map

func compilePattern(fn, pattern string) (*regexp.Regexp, error) {
	if re, ok := patternCache.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%s(): invalid pattern %q: %w", fn, pattern, err)
	}
	patternCache.Store(pattern, re)
	return re, nil
}

func newRegexModule() *Module {
	m := newModule("re")
	m.add("match", 2, 2, regexMatcher("re.match", `\A(?:%s)`))
	m.add("search", 2, 2, regexMatcher("re.search", `%s`))
	m.add("fullmatch", 2, 2, regexMatcher("re.fullmatch", `\A(?:%s)\z`))
	m.add("findall", 2, 2, regexFindAll)
	m.add("sub", 3, 4, regexSub)
	m.add("split", 2, 3, regexSplit)
	m.add("escape", 1, 1, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		s, err := argString("re.escape", args, 0)
		if err != nil {
			return nil, err
		}
		return runtime.NewString(regexp.QuoteMeta(s)), nil
	})
	return m
}

func regexArgs(fn string, args []runtime.Value, textPos int) (string, string, error) {
	pattern, err := argString(fn, args, 0)
	if err != nil {
		return "", "", err
	}
	text, err := argString(fn, args, textPos)
	if err != nil {
		return "", "", err
	}
	return pattern, text, nil
}

// regexMatcher returns [whole, group1, ...] for a match, None otherwise.
// Groups that did not participate are None.
func regexMatcher(fn, wrap string) NativeFunc {
	return func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		pattern, text, err := regexArgs(fn, args, 1)
		if err != nil {
			return nil, err
		}
		re, err := compilePattern(fn, fmt.Sprintf(wrap, pattern))
		if err != nil {
			return nil, err
		}
		loc := re.FindStringSubmatchIndex(text)
		if loc == nil {
			return runtime.Null, nil
		}
		return runtime.NewList(submatches(text, loc)...), nil
	}
}

func submatches(text string, loc []int) []runtime.Value {
	out := make([]runtime.Value, len(loc)/2)
	for i := range out {
		start, end := loc[2*i], loc[2*i+1]
		if start < 0 {
			out[i] = runtime.Null
			continue
		}
		out[i] = runtime.NewString(text[start:end])
	}
	return out
}

// regexFindAll mirrors re.findall: whole matches without groups, the group
// with one, and a list of groups with several.
func regexFindAll(ctx *CallContext, args []runtime.Value) (runtime.Value, error) {
	pattern, text, err := regexArgs("re.findall", args, 1)
	if err != nil {
		return nil, err
	}
	re, err := compilePattern("re.findall", pattern)
	if err != nil {
		return nil, err
	}
	matches := re.FindAllStringSubmatchIndex(text, ctx.maxItems()+1)
	if err := checkSize("re.findall", ctx, uint64(len(matches))); err != nil {
		return nil, err
	}
	out := make([]runtime.Value, len(matches))
	for i, loc := range matches {
		groups := submatches(text, loc)
		switch re.NumSubexp() {
		case 0:
			out[i] = groups[0]
		case 1:
			out[i] = emptyIfNull(groups[1])
		default:
			row := make([]runtime.Value, len(groups)-1)
			for j, g := range groups[1:] {
				row[j] = emptyIfNull(g)
			}
			out[i] = runtime.NewList(row...)
		}
	}
	return runtime.NewList(out...), nil
}

func emptyIfNull(v runtime.Value) runtime.Value {
	if runtime.IsNull(v) {
		return runtime.NewString("")
	}
	return v
}

// regexSub replaces matches. Backreferences are written \1 or \g<name>.
func regexSub(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
	pattern, err := argString("re.sub", args, 0)
	if err != nil {
		return nil, err
	}
	repl, err := argString("re.sub", args, 1)
	if err != nil {
		return nil, err
	}
	text, err := argString("re.sub", args, 2)
	if err != nil {
		return nil, err
	}
	count := 0
	if len(args) == 4 {
		if count, err = argInt("re.sub", args, 3); err != nil {
			return nil, err
		}
	}
	re, err := compilePattern("re.sub", pattern)
	if err != nil {
		return nil, err
	}
	template := translateReplacement(repl)
	var b strings.Builder
	last, n := 0, 0
	for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
		if count > 0 && n == count {
			break
		}
		b.WriteString(text[last:loc[0]])
		b.Write(re.ExpandString(nil, template, text, loc))
		last = loc[1]
		n++
	}
	b.WriteString(text[last:])
	return runtime.NewString(b.String()), nil
}

// translateReplacement rewrites \N and \g<name> into ${N} and ${name}, and
// escapes literal dollars.
func translateReplacement(repl string) string {
	var b strings.Builder
	for i := 0; i < len(repl); i++ {
		c := repl[i]
		switch {
		case c == '$':
			b.WriteString("$$")
		case c == '\\' && i+1 < len(repl) && repl[i+1] >= '0' && repl[i+1] <= '9':
			j := i + 1
			for j < len(repl) && repl[j] >= '0' && repl[j] <= '9' {
				j++
			}
			b.WriteString("${" + repl[i+1:j] + "}")
			i = j - 1
		case c == '\\' && strings.HasPrefix(repl[i+1:], "g<"):
			end := strings.IndexByte(repl[i:], '>')
			if end < 0 {
				b.WriteByte(c)
				continue
			}
			b.WriteString("${" + repl[i+3:i+end] + "}")
			i += end
		case c == '\\' && i+1 < len(repl) && repl[i+1] == '\\':
			b.WriteByte('\\')
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func regexSplit(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
	pattern, text, err := regexArgs("re.split", args, 1)
	if err != nil {
		return nil, err
	}
	n := -1
	if len(args) == 3 {
		maxSplit, err := argInt("re.split", args, 2)
		if err != nil {
			return nil, err
		}
		if maxSplit > 0 {
			n = maxSplit + 1
		}
	}
	re, err := compilePattern("re.split", pattern)
	if err != nil {
		return nil, err
	}
	parts := re.Split(text, n)
	out := make([]runtime.Value, len(parts))
	for i, p := range parts {
		out[i] = runtime.NewString(p)
	}
	return runtime.NewList(out...), nil
}

func newMathModule() *Module {
	m := newModule("math")
	m.Constants["pi"] = runtime.NewFloat(math.Pi)
	m.Constants["e"] = runtime.NewFloat(math.E)
	m.add("floor", 1, 1, rounder("math.floor", math.Floor))
	m.add("ceil", 1, 1, rounder("math.ceil", math.Ceil))
	m.add("sqrt", 1, 1, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		x, err := argFloat("math.sqrt", args, 0)
		if err != nil {
			return nil, err
		}
		if x < 0 {
			return nil, fmt.Errorf("math.sqrt(): math domain error")
		}
		return runtime.NewFloat(math.Sqrt(x)), nil
	})
	m.add("pow", 2, 2, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		x, err := argFloat("math.pow", args, 0)
		if err != nil {
			return nil, err
		}
		y, err := argFloat("math.pow", args, 1)
		if err != nil {
			return nil, err
		}
		return floatResult("math.pow", math.Pow(x, y))
	})
	m.add("log", 1, 2, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		x, err := argFloat("math.log", args, 0)
		if err != nil {
			return nil, err
		}
		if x <= 0 {
			return nil, fmt.Errorf("math.log(): math domain error")
		}
		if len(args) == 1 {
			return runtime.NewFloat(math.Log(x)), nil
		}
		base, err := argFloat("math.log", args, 1)
		if err != nil {
			return nil, err
		}
		if base <= 0 || base == 1 {
			return nil, fmt.Errorf("math.log(): math domain error")
		}
		return runtime.NewFloat(math.Log(x) / math.Log(base)), nil
	})
	m.add("exp", 1, 1, func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		x, err := argFloat("math.exp", args, 0)
		if err != nil {
			return nil, err
		}
		return floatResult("math.exp", math.Exp(x))
	})
	return m
}

func argFloat(fn string, args []runtime.Value, pos int) (float64, error) {
	if !runtime.IsNumeric(args[pos]) {
		return 0, typeError(fn, pos, "a number", args[pos])
	}
	return runtime.ToFloat(args[pos])
}

func floatResult(fn string, f float64) (runtime.Value, error) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, fmt.Errorf("%s(): math range error", fn)
	}
	return runtime.NewFloat(f), nil
}

// rounder maps floor and ceil onto int results. Decimals are rounded exactly.
func rounder(fn string, op func(float64) float64) NativeFunc {
	return func(_ *CallContext, args []runtime.Value) (runtime.Value, error) {
		switch v := args[0].(type) {
		case runtime.IntegerValue:
			return v, nil
		case runtime.DecimalValue:
			d := v.Val.Floor()
			if fn == "math.ceil" {
				d = v.Val.Ceil()
			}
			if d.GreaterThan(maxInt64) || d.LessThan(minInt64) {
				return nil, fmt.Errorf("%s(): result out of integer range", fn)
			}
			return runtime.NewInteger(d.IntPart()), nil
		}
		x, err := argFloat(fn, args, 0)
		if err != nil {
			return nil, err
		}
		n, err := runtime.ToLong(runtime.NewFloat(op(x)))
		if err != nil {
			return nil, fmt.Errorf("%s(): %w", fn, err)
		}
		return runtime.NewInteger(n), nil
	}
}
