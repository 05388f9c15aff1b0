package driver_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"grizzly/interpreter-go/pkg/codec"
	"grizzly/interpreter-go/pkg/driver"
	"grizzly/interpreter-go/pkg/interpreter"
	"grizzly/interpreter-go/pkg/runtime"
)

func writeFile(t *testing.T, path, contents string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(strings.TrimSpace(contents)+"\n"), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, driver.ConfigFileName), `
name: orders
entry: scripts/main.grz
function: reshape
input_format: yml
output_format: json
schema: schemas/out.json
null_mode: safe
track_access: false
limits:
  max_loop_iterations: 500
  max_recursion_depth: 20
  timeout: 750ms
scripts:
  clean: scripts/clean.grz
  Enrich:
    path: enrich.grz
    git: ../shared
    rev: v1.2.0
    function: enrich
`)

	cfg, err := driver.LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "orders", cfg.Name)
	require.Equal(t, "reshape", cfg.Function)
	require.Equal(t, codec.YAML, cfg.InputFormat)
	require.Equal(t, codec.JSON, cfg.OutputFormat)
	require.Equal(t, runtime.NullSafe, cfg.NullMode)
	require.False(t, cfg.TrackAccess)
	require.Equal(t, 750*time.Millisecond, cfg.Limits.Timeout)
	require.Equal(t, filepath.Join(dir, "scripts", "main.grz"), cfg.Resolve(cfg.Entry))
	require.Equal(t, []string{"clean", "Enrich"}, cfg.ScriptOrder)

	clean, ok := cfg.Script("clean")
	require.True(t, ok)
	require.Equal(t, "scripts/clean.grz", clean.Path)
	enrich, ok := cfg.Script("enrich")
	require.True(t, ok, "lookup ignores case")
	require.Equal(t, "v1.2.0", enrich.Rev)
	_, ok = cfg.Script("missing")
	require.False(t, ok)

	ic := cfg.InterpreterConfig()
	require.Equal(t, 500, ic.MaxLoopIterations)
	require.Equal(t, 20, ic.MaxRecursionDepth)
	require.Equal(t, 750*time.Millisecond, ic.Timeout)
	require.Equal(t, "reshape", ic.EntryFunction)
	require.Equal(t, runtime.NullSafe, ic.NullMode)
	require.False(t, ic.TrackAccess)
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), driver.ConfigFileName), `
name: minimal
limits:
  timeout: 2
`)
	cfg, err := driver.LoadConfig(path)
	require.NoError(t, err)
	require.True(t, cfg.TrackAccess)
	require.Equal(t, runtime.NullStrict, cfg.NullMode)
	require.Equal(t, 2*time.Second, cfg.Limits.Timeout)

	ic := cfg.InterpreterConfig()
	defaults := interpreter.DefaultConfig()
	require.Equal(t, defaults.MaxLoopIterations, ic.MaxLoopIterations)
	require.Equal(t, defaults.EntryFunction, ic.EntryFunction)
	require.True(t, ic.TrackAccess)

	var nilConfig *driver.Config
	require.Equal(t, defaults, nilConfig.InterpreterConfig())
}

func TestLoadConfigValidation(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), driver.ConfigFileName), `
function: "not valid"
null_mode: loose
output_format: xml
limits:
  max_loop_iterations: -1
scripts:
  good: a.grz
  "9bad": b.grz
  pinned:
    path: c.grz
    rev: abc123
  remote:
    path: /abs/d.grz
    git: https://example.com/repo.git
`)
	_, err := driver.LoadConfig(path)
	var verr *driver.ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	require.Equal(t, []string{
		`unknown null mode "loose" (expected strict, safe or silent)`,
		`output_format: unknown format "xml" (expected one of json, yaml, cbor, toml, msgpack)`,
		`function "not valid" is not a valid identifier`,
		"limits.max_loop_iterations must not be negative",
		"scripts.9bad: name must start with a letter or underscore",
		"scripts.pinned: rev requires git",
		"scripts.remote: path inside a git repository must be relative",
	}, verr.Issues)
	require.True(t, strings.HasPrefix(err.Error(), "config validation failed:\n- "))
}

func TestLoadConfigRejectsUnknownKeysAndEmptyFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := driver.LoadConfig(writeFile(t, filepath.Join(dir, "unknown.yml"), "nmae: typo"))
	require.ErrorContains(t, err, "field nmae not found")

	empty := filepath.Join(dir, "empty.yml")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = driver.LoadConfig(empty)
	require.ErrorContains(t, err, "is empty")

	_, err = driver.LoadConfig(filepath.Join(dir, "absent.yml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestFindConfigWalksUp(t *testing.T) {
	root := t.TempDir()
	want := writeFile(t, filepath.Join(root, driver.ConfigFileName), "name: root")
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	got, err := driver.FindConfig(nested)
	require.NoError(t, err)
	require.Equal(t, want, got)

	_, err = driver.FindConfig(t.TempDir())
	if err != nil {
		require.ErrorIs(t, err, driver.ErrConfigNotFound)
	}
}
