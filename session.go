/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package dynascript

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/suparena/dynascript/config"
	"github.com/suparena/dynascript/datastore"
	"github.com/suparena/dynascript/datastore/ddb"
	"github.com/suparena/dynascript/engine"
	"github.com/suparena/dynascript/pending"
	"github.com/suparena/dynascript/resultset"
	"github.com/suparena/dynascript/scripting"
	"github.com/suparena/dynascript/storagemodels"
	"github.com/suparena/dynascript/uibridge"
)

// Session wires the query engine, the UI bridge and the scripting host
// around one table store. It owns the current result set.
type Session struct {
	engine *engine.Engine
	bridge *uibridge.Bridge
	host   *scripting.Host
	logger *slog.Logger

	current atomic.Pointer[resultset.ResultSet]

	mu        sync.RWMutex
	listeners []func(*resultset.ResultSet)
	closeOnce sync.Once
}

type sessionOptions struct {
	logger       *slog.Logger
	queryOptions []storagemodels.QueryOption
	scriptDirs   []fs.FS
	execLimit    time.Duration
	permissions  scripting.Permissions
}

// Option configures a Session.
type Option func(*sessionOptions)

// WithLogger sets the logger shared by every component of the session.
func WithLogger(logger *slog.Logger) Option {
	return func(o *sessionOptions) {
		o.logger = logger
	}
}

// WithQueryOptions tunes the query engine.
func WithQueryOptions(opts ...storagemodels.QueryOption) Option {
	return func(o *sessionOptions) {
		o.queryOptions = append(o.queryOptions, opts...)
	}
}

// WithScriptDirs sets the directories scripts are loaded from.
func WithScriptDirs(dirs ...fs.FS) Option {
	return func(o *sessionOptions) {
		o.scriptDirs = append(o.scriptDirs, dirs...)
	}
}

// WithExecLimit bounds every synchronous run of script code.
func WithExecLimit(d time.Duration) Option {
	return func(o *sessionOptions) {
		o.execLimit = d
	}
}

// WithPermissions grants scripts the dynascript/os capabilities in p.
func WithPermissions(p scripting.Permissions) Option {
	return func(o *sessionOptions) {
		o.permissions = p
	}
}

// NewSession starts a session against store. UI requests are shown on sink.
func NewSession(store datastore.TableStore, sink uibridge.Sink, opts ...Option) *Session {
	o := sessionOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Session{logger: o.logger}
	s.engine = engine.New(store,
		engine.WithLogger(o.logger),
		engine.WithQueryOptions(o.queryOptions...),
	)
	s.bridge = uibridge.New(sink, uibridge.WithLogger(o.logger))
	s.host = scripting.New(s, s.bridge,
		scripting.WithLogger(o.logger),
		scripting.WithLookupDirs(o.scriptDirs...),
		scripting.WithExecLimit(o.execLimit),
		scripting.WithPermissions(o.permissions),
	)
	return s
}

// Open connects to DynamoDB as described by cfg, starts a session and loads
// the configured startup scripts.
func Open(ctx context.Context, cfg config.Config, sink uibridge.Sink, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}

	store, err := ddb.NewStoreFromConfig(ctx, cfg.ClientConfig(), ddb.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create table store: %w", err)
	}

	dirs := make([]fs.FS, 0, len(cfg.Scripts.Dirs))
	for _, dir := range cfg.Scripts.Dirs {
		dirs = append(dirs, os.DirFS(dir))
	}

	s := NewSession(store, sink,
		WithLogger(logger),
		WithQueryOptions(cfg.QueryOptions()...),
		WithScriptDirs(dirs...),
		WithExecLimit(cfg.Scripts.ExecLimit),
		WithPermissions(scripting.Permissions{
			AllowShellCommands: cfg.Scripts.AllowShellCommands,
			AllowEnv:           cfg.Scripts.AllowEnv,
		}),
	)
	if err := s.LoadScripts(ctx, cfg.Scripts.Load...); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Query runs expression against the table named in opts.
func (s *Session) Query(ctx context.Context, expression string, opts engine.Options) *pending.Op[*resultset.ResultSet] {
	return s.engine.Query(ctx, expression, opts)
}

// Persist writes the modified rows of rs back to the store.
func (s *Session) Persist(ctx context.Context, rs *resultset.ResultSet) *pending.Op[int] {
	return s.engine.Persist(ctx, rs)
}

// ListTables lists the tables visible to the session's credentials.
func (s *Session) ListTables(ctx context.Context) *pending.Op[[]string] {
	return s.engine.ListTables(ctx)
}

// CurrentResultSet returns the result set the UI is showing, or nil.
func (s *Session) CurrentResultSet() *resultset.ResultSet {
	return s.current.Load()
}

// SetCurrentResultSet replaces the current result set and notifies the
// listeners registered with OnResultSetChanged.
func (s *Session) SetCurrentResultSet(rs *resultset.ResultSet) {
	s.current.Store(rs)

	s.mu.RLock()
	listeners := slices.Clone(s.listeners)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(rs)
	}
}

// OnResultSetChanged registers fn to be called with every new current
// result set. fn runs on the script goroutine and must not block.
func (s *Session) OnResultSetChanged(fn func(*resultset.ResultSet)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// LoadScripts loads the named scripts from the session's script directories.
func (s *Session) LoadScripts(ctx context.Context, names ...string) error {
	return s.host.LoadScripts(ctx, names...)
}

// Commands returns the registered command names.
func (s *Session) Commands() []string {
	return s.host.Commands()
}

// Invoke runs a registered command.
func (s *Session) Invoke(ctx context.Context, name string) *pending.Op[struct{}] {
	return s.host.Invoke(ctx, name)
}

// Run invokes the command called name and waits for it to settle.
func (s *Session) Run(ctx context.Context, name string) error {
	_, err := s.host.Invoke(ctx, name).Wait(ctx)
	return err
}

// UI returns the session's UI bridge.
func (s *Session) UI() *uibridge.Bridge {
	return s.bridge
}

// Close stops the scripting host, the UI bridge and the query engine, in
// that order.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.host.Close()
		s.bridge.Close()
		s.engine.Close()
		s.logger.Debug("session closed")
	})
}

var _ scripting.Session = (*Session)(nil)
