package driver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/shopspring/decimal"

	"grizzly/interpreter-go/pkg/codec"
	"grizzly/interpreter-go/pkg/runtime"
)

// SchemaValidator checks records against a JSON Schema. Schemas may be
// written in JSON or YAML.
type SchemaValidator struct {
	path   string
	schema *jsonschema.Schema
}

// SchemaError lists every violation, one per instance location.
type SchemaError struct {
	Schema     string
	Violations []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema %s: %s", filepath.Base(e.Schema), strings.Join(e.Violations, "; "))
}

// NewSchemaValidator compiles the schema at path. Remote $ref is refused.
func NewSchemaValidator(path string) (*SchemaValidator, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	if format, ok := codec.FormatFromPath(abs); ok && format != codec.JSON {
		doc, err := codec.Decode(format, data)
		if err != nil {
			return nil, fmt.Errorf("schema %s: %w", abs, err)
		}
		if data, err = codec.Encode(codec.JSON, doc); err != nil {
			return nil, fmt.Errorf("schema %s: %w", abs, err)
		}
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true
	compiler.LoadURL = func(url string) (io.ReadCloser, error) {
		return nil, fmt.Errorf("remote $ref not allowed: %s", url)
	}
	url := "file://" + filepath.ToSlash(abs)
	if err := compiler.AddResource(url, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("schema %s: %w", abs, err)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", abs, err)
	}
	return &SchemaValidator{path: abs, schema: schema}, nil
}

// Validate returns a *SchemaError when v does not conform.
func (s *SchemaValidator) Validate(v runtime.Value) error {
	err := s.schema.Validate(jsonValue(runtime.ToGo(v)))
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return fmt.Errorf("schema %s: %w", s.path, err)
	}
	var violations []string
	collectViolations(verr, &violations)
	sort.Strings(violations)
	return &SchemaError{Schema: s.path, Violations: violations}
}

func collectViolations(verr *jsonschema.ValidationError, out *[]string) {
	if len(verr.Causes) == 0 {
		loc := verr.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		*out = append(*out, loc+": "+verr.Message)
		return
	}
	for _, cause := range verr.Causes {
		collectViolations(cause, out)
	}
}

// jsonValue maps host data onto the types the validator understands.
// Integers and decimals become json.Number so they keep their precision.
func jsonValue(v any) any {
	switch val := v.(type) {
	case int64:
		return json.Number(fmt.Sprint(val))
	case decimal.Decimal:
		return json.Number(val.String())
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case []any:
		for i, el := range val {
			val[i] = jsonValue(el)
		}
		return val
	case map[string]any:
		for k, el := range val {
			val[k] = jsonValue(el)
		}
		return val
	}
	return v
}
