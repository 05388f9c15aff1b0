// Package driver loads project configuration, scripts and schemas for hosts
// such as the grizzly CLI.
package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"grizzly/interpreter-go/pkg/codec"
	"grizzly/interpreter-go/pkg/interpreter"
	"grizzly/interpreter-go/pkg/runtime"
)

// ConfigFileName is the project file FindConfig looks for.
const ConfigFileName = "grizzly.yml"

var ErrConfigNotFound = errors.New("config: no " + ConfigFileName + " found")

// Config is the parsed contents of grizzly.yml. Relative paths are resolved
// against the directory holding the file.
type Config struct {
	Path         string
	Name         string
	Entry        string
	Function     string
	InputFormat  codec.Format
	OutputFormat codec.Format
	Schema       string
	NullMode     runtime.NullMode
	TrackAccess  bool
	Limits       Limits
	Scripts      map[string]*ScriptSpec
	ScriptOrder  []string
}

// Limits are the governor settings; zero values mean the interpreter
// defaults.
type Limits struct {
	MaxLoopIterations int
	MaxRecursionDepth int
	Timeout           time.Duration
}

// ScriptSpec is a named script. A script comes from Path on disk, or from
// Path inside Git at Rev.
type ScriptSpec struct {
	Name     string
	Path     string
	Function string
	Schema   string
	Git      string
	Rev      string
}

// ValidationError aggregates configuration problems.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("config validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// LoadConfig parses and validates a grizzly.yml file. Unknown keys are
// errors.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw configFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("config: %s is empty", absPath)
		}
		return nil, fmt.Errorf("config: parse %s: %w", absPath, err)
	}

	cfg, issues := raw.toConfig(absPath)
	issues = append(issues, cfg.validate()...)
	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	return cfg, nil
}

// FindConfig walks up from dir to the filesystem root looking for
// grizzly.yml.
func FindConfig(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(abs, ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", ErrConfigNotFound
		}
		abs = parent
	}
}

// Dir is the directory holding the config file.
func (c *Config) Dir() string {
	return filepath.Dir(c.Path)
}

// Resolve makes a config-relative path absolute. Empty stays empty.
func (c *Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// InterpreterConfig maps the file onto interpreter settings.
func (c *Config) InterpreterConfig() interpreter.Config {
	cfg := interpreter.DefaultConfig()
	if c == nil {
		return cfg
	}
	if c.Limits.MaxLoopIterations > 0 {
		cfg.MaxLoopIterations = c.Limits.MaxLoopIterations
	}
	if c.Limits.MaxRecursionDepth > 0 {
		cfg.MaxRecursionDepth = c.Limits.MaxRecursionDepth
	}
	if c.Limits.Timeout > 0 {
		cfg.Timeout = c.Limits.Timeout
	}
	if c.Function != "" {
		cfg.EntryFunction = c.Function
	}
	cfg.NullMode = c.NullMode
	cfg.TrackAccess = c.TrackAccess
	return cfg
}

// Script looks up a named script, case-insensitively.
func (c *Config) Script(name string) (*ScriptSpec, bool) {
	if c == nil {
		return nil, false
	}
	name = strings.TrimSpace(name)
	if spec, ok := c.Scripts[name]; ok {
		return spec, true
	}
	for _, key := range c.ScriptOrder {
		if strings.EqualFold(key, name) {
			return c.Scripts[key], true
		}
	}
	return nil, false
}

var scriptNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)
var functionNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func (c *Config) validate() []string {
	var issues []string
	if c.Function != "" && !functionNamePattern.MatchString(c.Function) {
		issues = append(issues, fmt.Sprintf("function %q is not a valid identifier", c.Function))
	}
	if c.Limits.MaxLoopIterations < 0 {
		issues = append(issues, "limits.max_loop_iterations must not be negative")
	}
	if c.Limits.MaxRecursionDepth < 0 {
		issues = append(issues, "limits.max_recursion_depth must not be negative")
	}
	if c.Limits.Timeout < 0 {
		issues = append(issues, "limits.timeout must not be negative")
	}
	for _, name := range c.ScriptOrder {
		spec := c.Scripts[name]
		if !scriptNamePattern.MatchString(name) {
			issues = append(issues, fmt.Sprintf("scripts.%s: name must start with a letter or underscore", name))
		}
		if spec.Path == "" {
			issues = append(issues, fmt.Sprintf("scripts.%s: path must be provided", name))
		}
		if spec.Rev != "" && spec.Git == "" {
			issues = append(issues, fmt.Sprintf("scripts.%s: rev requires git", name))
		}
		if spec.Git != "" && filepath.IsAbs(spec.Path) {
			issues = append(issues, fmt.Sprintf("scripts.%s: path inside a git repository must be relative", name))
		}
		if spec.Function != "" && !functionNamePattern.MatchString(spec.Function) {
			issues = append(issues, fmt.Sprintf("scripts.%s: function %q is not a valid identifier", name, spec.Function))
		}
	}
	return issues
}

type configFile struct {
	Name         string     `yaml:"name"`
	Entry        string     `yaml:"entry"`
	Function     string     `yaml:"function"`
	InputFormat  string     `yaml:"input_format"`
	OutputFormat string     `yaml:"output_format"`
	Schema       string     `yaml:"schema"`
	NullMode     string     `yaml:"null_mode"`
	TrackAccess  *bool      `yaml:"track_access"`
	Limits       limitsYAML `yaml:"limits"`
	Scripts      scriptMap  `yaml:"scripts"`
}

type limitsYAML struct {
	MaxLoopIterations int          `yaml:"max_loop_iterations"`
	MaxRecursionDepth int          `yaml:"max_recursion_depth"`
	Timeout           yamlDuration `yaml:"timeout"`
}

// yamlDuration accepts Go duration strings ("750ms", "5s") or a bare number
// of seconds.
type yamlDuration time.Duration

func (d *yamlDuration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", value.Line)
	}
	text := strings.TrimSpace(value.Value)
	if value.ShortTag() == "!!int" || value.ShortTag() == "!!float" {
		var secs float64
		if err := value.Decode(&secs); err != nil {
			return err
		}
		*d = yamlDuration(time.Duration(secs * float64(time.Second)))
		return nil
	}
	parsed, err := time.ParseDuration(text)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = yamlDuration(parsed)
	return nil
}

type scriptYAML struct {
	Path     string `yaml:"path"`
	Function string `yaml:"function"`
	Schema   string `yaml:"schema"`
	Git      string `yaml:"git"`
	Rev      string `yaml:"rev"`
}

type scriptMapEntry struct {
	name string
	spec *scriptYAML
}

// scriptMap keeps scripts in file order. A bare string value is shorthand
// for {path: value}.
type scriptMap struct {
	items []scriptMapEntry
}

func (sm *scriptMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == 0 || (value.Kind == yaml.ScalarNode && value.ShortTag() == "!!null") {
		sm.items = nil
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("config: scripts must be a mapping")
	}
	items := make([]scriptMapEntry, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		keyNode, valueNode := value.Content[i], value.Content[i+1]
		var key string
		if err := keyNode.Decode(&key); err != nil {
			return err
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("config: scripts must not use empty keys")
		}
		entry := new(scriptYAML)
		if valueNode.Kind == yaml.ScalarNode {
			entry.Path = valueNode.Value
		} else if err := valueNode.Decode(entry); err != nil {
			return fmt.Errorf("config: script %q: %w", key, err)
		}
		items = append(items, scriptMapEntry{name: key, spec: entry})
	}
	sm.items = items
	return nil
}

func (cf configFile) toConfig(path string) (*Config, []string) {
	var issues []string
	cfg := &Config{
		Path:        path,
		Name:        strings.TrimSpace(cf.Name),
		Entry:       strings.TrimSpace(cf.Entry),
		Function:    strings.TrimSpace(cf.Function),
		Schema:      strings.TrimSpace(cf.Schema),
		TrackAccess: true,
		Limits: Limits{
			MaxLoopIterations: cf.Limits.MaxLoopIterations,
			MaxRecursionDepth: cf.Limits.MaxRecursionDepth,
			Timeout:           time.Duration(cf.Limits.Timeout),
		},
		Scripts:     make(map[string]*ScriptSpec, len(cf.Scripts.items)),
		ScriptOrder: make([]string, 0, len(cf.Scripts.items)),
	}
	if cf.TrackAccess != nil {
		cfg.TrackAccess = *cf.TrackAccess
	}
	mode, err := runtime.ParseNullMode(cf.NullMode)
	if err != nil {
		issues = append(issues, err.Error())
	}
	cfg.NullMode = mode
	if cfg.InputFormat, err = optionalFormat(cf.InputFormat); err != nil {
		issues = append(issues, "input_format: "+err.Error())
	}
	if cfg.OutputFormat, err = optionalFormat(cf.OutputFormat); err != nil {
		issues = append(issues, "output_format: "+err.Error())
	}
	for _, item := range cf.Scripts.items {
		if _, dup := cfg.Scripts[item.name]; dup {
			issues = append(issues, fmt.Sprintf("scripts.%s: defined more than once", item.name))
			continue
		}
		cfg.Scripts[item.name] = &ScriptSpec{
			Name:     item.name,
			Path:     strings.TrimSpace(item.spec.Path),
			Function: strings.TrimSpace(item.spec.Function),
			Schema:   strings.TrimSpace(item.spec.Schema),
			Git:      strings.TrimSpace(item.spec.Git),
			Rev:      strings.TrimSpace(item.spec.Rev),
		}
		cfg.ScriptOrder = append(cfg.ScriptOrder, item.name)
	}
	return cfg, issues
}

func optionalFormat(text string) (codec.Format, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	return codec.ParseFormat(text)
}
