package interpreter

import (
	"testing"
)

func TestModuleImports(t *testing.T) {
	source := `import re
import math
import re as regex
from math import floor, sqrt

def transform(INPUT):
    return {
        "digits": re.match("[0-9]+", INPUT.code)[0],
        "swapped": regex.sub("a", "b", "banana"),
        "floor": floor(2.7),
        "root": sqrt(16),
        "pi": math.pi > 3.14 and math.pi < 3.15,
        "ceil": math.ceil(1.2),
    }
`
	out := mustRun(t, source, record("code", "42abc"))
	expectRepr(t, "{'digits': '42', 'swapped': 'bbnbnb', 'floor': 2, 'root': 4.0, 'pi': True, 'ceil': 2}", out)
}

func TestImportsAreVisibleInEveryFunction(t *testing.T) {
	source := `from math import floor
import re

def helper(s):
    return re.fullmatch("[a-z]+", s) is not None

def transform(INPUT):
    return {"ok": helper("abc"), "bad": helper("ab1"), "f": floor(-0.5)}
`
	out := mustRun(t, source, nil)
	expectRepr(t, "{'ok': True, 'bad': False, 'f': -1}", out)
}

func TestVariableShadowsModule(t *testing.T) {
	source := `import re

def transform(INPUT):
    re = {"x": 1}
    return {"v": re.x}
`
	out := mustRun(t, source, nil)
	expectRepr(t, "{'v': 1}", out)
}

func TestImportErrors(t *testing.T) {
	cases := []struct {
		name, source, want string
	}{
		{"unknown module", "import nope\n\ndef transform(INPUT):\n    return {}\n", "no module named 'nope'"},
		{"misspelled module", "import maths\n\ndef transform(INPUT):\n    return {}\n", "no module named 'maths' (did you mean 'math'?)"},
		{"unknown name", "from math import flor\n\ndef transform(INPUT):\n    return {}\n", "cannot import name 'flor' from 'math' (did you mean 'floor'?)"},
		{"module as value", "import re\n\ndef transform(INPUT):\n    x = re\n    return {}\n", "module 're' cannot be used as a value"},
		{"function as attribute", "import math\n\ndef transform(INPUT):\n    return {\"v\": math.floor}\n", "'math.floor' is a function; call it as math.floor(...)"},
		{"unknown module function", "import math\n\ndef transform(INPUT):\n    return {\"v\": math.flooor(1)}\n", "module 'math' has no function 'flooor' (did you mean 'floor'?)"},
		{"not imported", "def transform(INPUT):\n    return {\"v\": re.match(\"a\", \"a\")}\n", "undefined variable 're'"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expectExecError(t, runErr(t, tc.source, nil), tc.want)
		})
	}
}

func TestImportLineIsReported(t *testing.T) {
	execErr := expectExecError(t, runErr(t, "import re\nimport nope\n\ndef transform(INPUT):\n    return {}\n", nil), "no module named")
	if execErr.Line != 2 {
		t.Fatalf("expected line 2, got %d", execErr.Line)
	}
}
