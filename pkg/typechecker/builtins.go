package typechecker

import "grizzly/interpreter-go/pkg/runtime"

// Result kinds of builtins whose return type does not depend on their
// arguments. Anything missing here is Unknown.
var functionResults = map[string]runtime.Kind{
	"len":         runtime.KindInteger,
	"str":         runtime.KindString,
	"int":         runtime.KindInteger,
	"float":       runtime.KindFloat,
	"bool":        runtime.KindBool,
	"isinstance":  runtime.KindBool,
	"hasattr":     runtime.KindBool,
	"any":         runtime.KindBool,
	"all":         runtime.KindBool,
	"now":         runtime.KindDateTime,
	"parseDate":   runtime.KindDateTime,
	"formatDate":  runtime.KindString,
	"addDays":     runtime.KindDateTime,
	"addMonths":   runtime.KindDateTime,
	"addYears":    runtime.KindDateTime,
	"addHours":    runtime.KindDateTime,
	"addMinutes":  runtime.KindDateTime,
	"addSeconds":  runtime.KindDateTime,
	"daysBetween": runtime.KindInteger,
	"Decimal":     runtime.KindDecimal,
	"sorted":      runtime.KindList,
	"list":        runtime.KindList,
	"dict":        runtime.KindMapping,
	"mapping":     runtime.KindMapping,
}

var stringMethodResults = map[string]runtime.Kind{
	"upper":      runtime.KindString,
	"lower":      runtime.KindString,
	"strip":      runtime.KindString,
	"lstrip":     runtime.KindString,
	"rstrip":     runtime.KindString,
	"title":      runtime.KindString,
	"capitalize": runtime.KindString,
	"zfill":      runtime.KindString,
	"replace":    runtime.KindString,
	"join":       runtime.KindString,
	"split":      runtime.KindList,
	"startswith": runtime.KindBool,
	"endswith":   runtime.KindBool,
	"contains":   runtime.KindBool,
	"isdigit":    runtime.KindBool,
	"isalpha":    runtime.KindBool,
	"isspace":    runtime.KindBool,
	"find":       runtime.KindInteger,
	"count":      runtime.KindInteger,
}

func methodResult(kind runtime.Kind, method string) Type {
	if kind != runtime.KindString {
		return Unknown
	}
	if k, ok := stringMethodResults[method]; ok {
		return kindType(k)
	}
	return Unknown
}

func functionResult(name string) Type {
	if k, ok := functionResults[name]; ok {
		return kindType(k)
	}
	return Unknown
}
