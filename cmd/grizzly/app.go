package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"grizzly/interpreter-go/pkg/ast"
	"grizzly/interpreter-go/pkg/cache"
	"grizzly/interpreter-go/pkg/codec"
	"grizzly/interpreter-go/pkg/driver"
	"grizzly/interpreter-go/pkg/interpreter"
	"grizzly/interpreter-go/pkg/parser"
	"grizzly/interpreter-go/pkg/runtime"
)

const (
	exitFailure = 1
	exitParse   = 2
	exitSchema  = 3
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath        string
	logLevel          string
	logFormat         string
	nullMode          runtime.NullMode
	maxLoopIterations int
	maxRecursionDepth int
	timeout           time.Duration
	noTrack           bool
}

func (o *globalOptions) register(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&o.configPath, "config", "", "project file (default: nearest "+driver.ConfigFileName+")")
	flags.StringVar(&o.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	flags.StringVar(&o.logFormat, "log-format", "text", "log format: text or json")
	flags.Var(&o.nullMode, "null-mode", "null handling: strict, safe or silent")
	flags.IntVar(&o.maxLoopIterations, "max-loop-iterations", 0, "loop iterations allowed per run")
	flags.IntVar(&o.maxRecursionDepth, "max-recursion-depth", 0, "nested user function calls allowed")
	flags.DurationVar(&o.timeout, "timeout", 0, "wall-clock limit per run")
	flags.BoolVar(&o.noTrack, "no-track", false, "do not record path accesses")
}

// app carries what one invocation needs across subcommands.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	opts   globalOptions
	logger *slog.Logger
	config *driver.Config
	cache  *cache.Cache
	interp interpreter.Config
}

func (a *app) setup(cmd *cobra.Command) error {
	a.logger = newLogger(a.opts.logLevel, a.opts.logFormat, a.stderr)

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	a.config = cfg
	if cfg != nil {
		a.logger.Debug("config loaded", "path", cfg.Path, "name", cfg.Name)
	}

	ic := cfg.InterpreterConfig()
	flags := cmd.Flags()
	if flags.Changed("null-mode") {
		ic.NullMode = a.opts.nullMode
	}
	if flags.Changed("max-loop-iterations") {
		ic.MaxLoopIterations = a.opts.maxLoopIterations
	}
	if flags.Changed("max-recursion-depth") {
		ic.MaxRecursionDepth = a.opts.maxRecursionDepth
	}
	if flags.Changed("timeout") {
		ic.Timeout = a.opts.timeout
	}
	if a.opts.noTrack {
		ic.TrackAccess = false
	}
	ic.Logger = a.logger
	a.interp = ic

	a.cache = cache.New(cache.WithLogger(a.logger))
	return nil
}

func (a *app) close() {
	if a.cache != nil {
		a.cache.Close()
	}
}

// loadConfig honours --config, then looks upward from the working directory.
// Running without a project file is fine.
func (a *app) loadConfig() (*driver.Config, error) {
	if a.opts.configPath != "" {
		return driver.LoadConfig(a.opts.configPath)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	path, err := driver.FindConfig(wd)
	if errors.Is(err, driver.ErrConfigNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return driver.LoadConfig(path)
}

// script is a compiled program plus the settings that travel with it.
type script struct {
	name     string
	path     string
	program  *ast.Program
	function string
	schema   string
}

type gitOptions struct {
	repo string
	rev  string
}

func (g *gitOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&g.repo, "git-repo", "", "read SCRIPT from this git repository")
	cmd.Flags().StringVar(&g.rev, "git-rev", "", "git revision to read SCRIPT at (default HEAD)")
}

// loadScript resolves a script argument: a path inside --git-repo, a file on
// disk, a script named in the project file, or the project entry when arg
// is empty.
func (a *app) loadScript(ctx context.Context, arg string, git gitOptions) (*script, error) {
	if git.repo != "" {
		if arg == "" {
			return nil, errors.New("--git-repo needs a SCRIPT path inside the repository")
		}
		src, err := driver.LoadGitSource(ctx, driver.GitSource{Repo: git.repo, Revision: git.rev, Path: arg})
		if err != nil {
			return nil, err
		}
		a.logger.Debug("script read from git", "repo", git.repo, "path", arg, "commit", src.Commit)
		program, err := a.cache.Compile(src.Source)
		if err != nil {
			return nil, err
		}
		return a.withDefaults(&script{name: arg, path: arg, program: program}), nil
	}

	if arg == "" {
		if a.config == nil || a.config.Entry == "" {
			return nil, errors.New("no SCRIPT given and no entry in " + driver.ConfigFileName)
		}
		arg = a.config.Resolve(a.config.Entry)
	}

	if _, err := os.Stat(arg); err != nil {
		if spec, ok := a.config.Script(arg); ok {
			return a.loadNamedScript(ctx, spec)
		}
	}
	program, err := a.cache.Load(arg)
	if err != nil {
		return nil, err
	}
	return a.withDefaults(&script{name: arg, path: arg, program: program}), nil
}

func (a *app) loadNamedScript(ctx context.Context, spec *driver.ScriptSpec) (*script, error) {
	var (
		program *ast.Program
		err     error
		path    = a.config.Resolve(spec.Path)
	)
	if spec.Git == "" {
		program, err = a.cache.Load(path)
	} else {
		var src string
		if src, err = a.config.LoadScriptSource(ctx, spec); err == nil {
			program, err = a.cache.Compile(src)
		}
	}
	if err != nil {
		return nil, err
	}
	s := &script{
		name:     spec.Name,
		path:     path,
		program:  program,
		function: spec.Function,
		schema:   a.config.Resolve(spec.Schema),
	}
	return a.withDefaults(s), nil
}

func (a *app) withDefaults(s *script) *script {
	if s.schema == "" && a.config != nil {
		s.schema = a.config.Resolve(a.config.Schema)
	}
	return s
}

// interpreterFor builds an interpreter for s; a script's own entry function
// wins over the project one.
func (a *app) interpreterFor(s *script) *interpreter.Interpreter {
	cfg := a.interp
	if s.function != "" {
		cfg.EntryFunction = s.function
	}
	return interpreter.New(cfg)
}

// pickFormat returns the first of: an explicit flag, the file extension, the
// project default, JSON.
func pickFormat(cmd *cobra.Command, flag string, explicit codec.Format, path string, fallback codec.Format) codec.Format {
	if cmd.Flags().Changed(flag) {
		return explicit
	}
	if path != "" && path != "-" {
		if f, ok := codec.FormatFromPath(path); ok {
			return f
		}
	}
	if fallback != "" {
		return fallback
	}
	return codec.JSON
}

func (a *app) projectFormat(output bool) codec.Format {
	if a.config == nil {
		return ""
	}
	if output {
		return a.config.OutputFormat
	}
	return a.config.InputFormat
}

func (a *app) readInput(path string, format codec.Format) (*runtime.MappingValue, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(a.stdin)
		path = "stdin"
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	input, err := codec.DecodeMapping(format, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return input, nil
}

func (a *app) validate(s *script, out runtime.Value) error {
	if s.schema == "" {
		return nil
	}
	validator, err := driver.NewSchemaValidator(s.schema)
	if err != nil {
		return err
	}
	return validator.Validate(out)
}

func exitCode(err error) int {
	var parseErr *parser.ParseError
	var schemaErr *driver.SchemaError
	switch {
	case errors.As(err, &parseErr):
		return exitParse
	case errors.As(err, &schemaErr):
		return exitSchema
	default:
		return exitFailure
	}
}

func newLogger(levelStr, formatStr string, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(levelStr) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: level}
	if formatStr == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
