package driver_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"grizzly/interpreter-go/pkg/codec"
	"grizzly/interpreter-go/pkg/driver"
)

const orderSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["id", "total"],
  "properties": {
    "id": {"type": "integer", "minimum": 1},
    "total": {"type": "number"},
    "placed": {"type": "string", "format": "date-time"},
    "tags": {"type": "array", "items": {"type": "string"}}
  },
  "additionalProperties": false
}`

func TestSchemaValidator(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "order.json"), orderSchema)
	v, err := driver.NewSchemaValidator(path)
	require.NoError(t, err)

	good, err := codec.DecodeMapping(codec.YAML, []byte("id: 7\ntotal: 19.90\nplaced: 2024-02-29T12:00:00Z\ntags: [a, b]\n"))
	require.NoError(t, err)
	require.NoError(t, v.Validate(good))

	bad, err := codec.DecodeMapping(codec.JSON, []byte(`{"id": 0, "tags": ["a", 2], "extra": true}`))
	require.NoError(t, err)
	err = v.Validate(bad)
	var serr *driver.SchemaError
	require.True(t, errors.As(err, &serr), "got %v", err)
	require.GreaterOrEqual(t, len(serr.Violations), 4)
	require.Contains(t, err.Error(), "schema order.json:")
	require.Contains(t, err.Error(), "/id:")
	require.Contains(t, err.Error(), "/tags/1:")
	require.Contains(t, err.Error(), "total")
	require.Contains(t, err.Error(), "extra")
}

func TestSchemaValidatorReadsYAML(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "schema.yaml"), `
type: object
required: [name]
properties:
  name: {type: string, minLength: 2}
`)
	v, err := driver.NewSchemaValidator(path)
	require.NoError(t, err)

	ok, err := codec.DecodeMapping(codec.JSON, []byte(`{"name": "Ann"}`))
	require.NoError(t, err)
	require.NoError(t, v.Validate(ok))

	short, err := codec.DecodeMapping(codec.JSON, []byte(`{"name": "A"}`))
	require.NoError(t, err)
	require.ErrorContains(t, v.Validate(short), "/name:")
}

func TestSchemaValidatorRejectsBadSchemas(t *testing.T) {
	dir := t.TempDir()
	_, err := driver.NewSchemaValidator(filepath.Join(dir, "absent.json"))
	require.Error(t, err)

	_, err = driver.NewSchemaValidator(writeFile(t, filepath.Join(dir, "broken.json"), `{"type": 12}`))
	require.Error(t, err)

	_, err = driver.NewSchemaValidator(writeFile(t, filepath.Join(dir, "remote.json"),
		`{"$ref": "https://example.com/other.json"}`))
	require.Error(t, err, "remote refs are refused")
}
