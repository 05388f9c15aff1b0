// Package cache keeps parsed programs so hosts that run the same script many
// times parse it once.
package cache

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/singleflight"

	"grizzly/interpreter-go/pkg/ast"
	"grizzly/interpreter-go/pkg/parser"
)

// ErrClosed is returned by operations on a closed cache.
var ErrClosed = errors.New("cache closed")

// CompileFunc turns source into a program.
type CompileFunc func(source string) (*ast.Program, error)

type Option func(*Cache)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

// WithCompiler replaces parser.ParseSource.
func WithCompiler(fn CompileFunc) Option {
	return func(c *Cache) { c.compile = fn }
}

// Cache maps source digests and file paths to parsed programs. Programs are
// never mutated after parsing, so one instance is shared by every caller.
type Cache struct {
	compile CompileFunc
	logger  *slog.Logger
	group   singleflight.Group

	mu       sync.RWMutex
	programs map[string]*ast.Program
	paths    map[string]string // absolute path -> source key
	watcher  *fsnotify.Watcher
	watched  map[string]struct{}
	changes  chan string
	done     chan struct{}
	looping  bool
	closed   bool
}

func New(opts ...Option) *Cache {
	c := &Cache{
		compile:  parser.ParseSource,
		programs: make(map[string]*ast.Program),
		paths:    make(map[string]string),
		watched:  make(map[string]struct{}),
		changes:  make(chan string, 16),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c
}

// Key is the hex blake2b-256 digest of source.
func Key(source string) string {
	sum := blake2b.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

// Compile returns the program for source, parsing it at most once even under
// concurrent calls. Parse failures are not cached.
func (c *Cache) Compile(source string) (*ast.Program, error) {
	key := Key(source)
	c.mu.RLock()
	program, ok := c.programs[key]
	closed := c.closed
	c.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}
	if ok {
		return program, nil
	}
	v, err, shared := c.group.Do(key, func() (any, error) {
		program, err := c.compile(source)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.programs[key] = program
		c.mu.Unlock()
		return program, nil
	})
	if err != nil {
		return nil, err
	}
	c.logger.Debug("program compiled", "key", key[:12], "shared", shared)
	return v.(*ast.Program), nil
}

// Load reads and compiles the file at path. The entry stays until the file
// is invalidated, either explicitly or by Watch.
func (c *Cache) Load(path string) (*ast.Program, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	c.mu.RLock()
	key, ok := c.paths[abs]
	var program *ast.Program
	if ok {
		program, ok = c.programs[key]
	}
	c.mu.RUnlock()
	if ok {
		return program, nil
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	program, err = c.Compile(string(data))

	// The path is tracked even when it does not parse, so Watch reports the
	// edit that fixes it.
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	c.paths[abs] = Key(string(data))
	if werr := c.watchLocked(abs); werr != nil {
		c.logger.Warn("cannot watch script directory", "path", abs, "error", werr)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return program, nil
}

// Invalidate forgets the program loaded from path.
func (c *Cache) Invalidate(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateLocked(abs)
}

func (c *Cache) invalidateLocked(abs string) bool {
	key, ok := c.paths[abs]
	if !ok {
		return false
	}
	delete(c.paths, abs)
	stillUsed := false
	for _, other := range c.paths {
		if other == key {
			stillUsed = true
			break
		}
	}
	if !stillUsed {
		delete(c.programs, key)
	}
	return true
}

// Len is the number of distinct compiled programs held.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.programs)
}

// Changes delivers the path of every loaded file that Watch invalidated.
// The channel is closed by Close.
func (c *Cache) Changes() <-chan string {
	return c.changes
}

// Watch invalidates loaded files when they change on disk, until ctx is done
// or the cache is closed. It returns once the watcher is running.
func (c *Cache) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		watcher.Close()
		return ErrClosed
	}
	if c.watcher != nil {
		c.mu.Unlock()
		watcher.Close()
		return errors.New("cache is already watching")
	}
	c.watcher = watcher
	c.looping = true
	for abs := range c.paths {
		if err := c.watchLocked(abs); err != nil {
			c.logger.Warn("cannot watch script directory", "path", abs, "error", err)
		}
	}
	c.mu.Unlock()

	go c.watchLoop(ctx, watcher)
	return nil
}

// watchLocked watches the directory holding abs. Directories survive editors
// that save by rename.
func (c *Cache) watchLocked(abs string) error {
	if c.watcher == nil {
		return nil
	}
	dir := filepath.Dir(abs)
	if _, ok := c.watched[dir]; ok {
		return nil
	}
	if err := c.watcher.Add(dir); err != nil {
		return err
	}
	c.watched[dir] = struct{}{}
	return nil
}

func (c *Cache) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer c.stopWatching(watcher)
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			abs := filepath.Clean(event.Name)
			c.mu.Lock()
			invalidated := !c.closed && c.invalidateLocked(abs)
			c.mu.Unlock()
			if !invalidated {
				continue
			}
			c.logger.Info("script changed", "path", abs, "op", event.Op.String())
			select {
			case c.changes <- abs:
			case <-ctx.Done():
				return
			case <-c.done:
				return
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			c.logger.Warn("watch error", "error", err)
		}
	}
}

// stopWatching runs when the watch loop exits. The loop owns the Changes
// channel while it runs, so it closes it if Close came first.
func (c *Cache) stopWatching(watcher *fsnotify.Watcher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.watcher == watcher {
		c.watcher = nil
		c.watched = make(map[string]struct{})
	}
	watcher.Close()
	c.looping = false
	if c.closed {
		close(c.changes)
	}
}

// Close stops watching and closes the Changes channel.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.done)
	if !c.looping {
		close(c.changes)
	}
	return nil
}
