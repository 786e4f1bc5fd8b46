/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/suparena/dynascript/datastore"
	dserrors "github.com/suparena/dynascript/errors"
	"github.com/suparena/dynascript/pending"
	"github.com/suparena/dynascript/queryexpr"
	"github.com/suparena/dynascript/resultset"
	"github.com/suparena/dynascript/storagemodels"
	"golang.org/x/sync/semaphore"
)

// Engine runs query expressions against a table store. Every call returns a
// pending operation immediately and does its remote work on a worker
// goroutine bounded by the Workers option.
type Engine struct {
	store  datastore.TableStore
	opts   storagemodels.QueryOptions
	logger *slog.Logger
	sem    *semaphore.Weighted

	authErr atomic.Pointer[error]

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine logger
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithQueryOptions applies storagemodels query options
func WithQueryOptions(opts ...storagemodels.QueryOption) Option {
	return func(e *Engine) {
		for _, opt := range opts {
			opt(&e.opts)
		}
	}
}

// New creates an Engine on top of store.
func New(store datastore.TableStore, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		opts:   storagemodels.DefaultQueryOptions(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.opts.Workers < 1 {
		e.opts.Workers = 1
	}
	e.sem = semaphore.NewWeighted(int64(e.opts.Workers))
	e.baseCtx, e.cancel = context.WithCancel(context.Background())
	return e
}

// Close cancels in-flight work and waits for the workers to finish.
func (e *Engine) Close() {
	e.cancel()
	e.wg.Wait()
}

// ReadOnly reports whether write-back is refused.
func (e *Engine) ReadOnly() bool {
	return e.opts.ReadOnly
}

// Query evaluates expression against the table named in opts. Failures,
// including a malformed expression or a missing table option, are delivered
// through the returned operation.
func (e *Engine) Query(ctx context.Context, expression string, opts Options) *pending.Op[*resultset.ResultSet] {
	op := pending.New[*resultset.ResultSet]()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		ctx, cancel := e.workerContext(ctx)
		defer cancel()

		rs, err := e.query(ctx, expression, opts)
		if err != nil {
			e.logger.Debug("query failed", "op", op.ID(), "table", opts.Table, "expression", expression, "error", err)
		}
		op.Settle(rs, err)
	}()

	return op
}

func (e *Engine) query(ctx context.Context, expression string, opts Options) (*resultset.ResultSet, error) {
	if opts.Table == "" {
		return nil, dserrors.NewMissingOptionError("table")
	}

	expr, err := queryexpr.Parse(expression)
	if err != nil {
		return nil, err
	}

	args, err := opts.attributeArgs()
	if err != nil {
		return nil, dserrors.NewExpressionError(expression, err)
	}

	if err := e.checkAuth(); err != nil {
		return nil, err
	}

	if err := e.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer e.sem.Release(1)

	var table *resultset.Table
	err = e.withRetry(ctx, "describe "+opts.Table, func(ctx context.Context) error {
		var err error
		table, err = e.store.DescribeTable(ctx, opts.Table)
		return err
	})
	if err != nil {
		return nil, err
	}

	plan, err := expr.Compile(table, args)
	if err != nil {
		return nil, err
	}

	items, err := e.fetchAll(ctx, plan)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("query complete", "table", table.Name, "operation", plan.Operation(),
		"index", plan.IndexName(), "items", len(items))
	return resultset.New(table, expression, items), nil
}

// fetchAll pages through the plan until the store has no more pages or
// MaxItems is reached.
func (e *Engine) fetchAll(ctx context.Context, plan *queryexpr.Plan) ([]resultset.Item, error) {
	params := plan.Params()
	if e.opts.PageSize > 0 {
		params.Limit = &e.opts.PageSize
	}

	var items []resultset.Item
	for pageNumber := 1; ; pageNumber++ {
		var page storagemodels.Page
		operation := fmt.Sprintf("%s %s page %d", plan.Operation(), params.TableName, pageNumber)
		err := e.withRetry(ctx, operation, func(ctx context.Context) error {
			var err error
			page, err = datastore.FetchPage(ctx, e.store, params)
			return err
		})
		if err != nil {
			return nil, err
		}

		items = append(items, page.Items...)
		if e.opts.MaxItems > 0 && len(items) >= e.opts.MaxItems {
			return items[:e.opts.MaxItems], nil
		}
		if len(page.LastEvaluatedKey) == 0 {
			return items, nil
		}
		params = params.WithStartKey(page.LastEvaluatedKey)
	}
}

// ListTables returns the table names visible to the session.
func (e *Engine) ListTables(ctx context.Context) *pending.Op[[]string] {
	op := pending.New[[]string]()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		ctx, cancel := e.workerContext(ctx)
		defer cancel()

		if err := e.checkAuth(); err != nil {
			op.Reject(err)
			return
		}

		var names []string
		err := e.withRetry(ctx, "list tables", func(ctx context.Context) error {
			var err error
			names, err = e.store.ListTables(ctx)
			return err
		})
		op.Settle(names, err)
	}()

	return op
}

// workerContext derives the context a worker runs under. It is cancelled
// with ctx or when the engine closes.
func (e *Engine) workerContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(e.baseCtx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (e *Engine) markAuthFailed(err error) {
	if e.authErr.CompareAndSwap(nil, &err) {
		e.logger.Error("authentication failed, remote calls disabled for this session", "error", err)
	}
}

// checkAuth fails once any call has been rejected for authentication.
func (e *Engine) checkAuth() error {
	if p := e.authErr.Load(); p != nil {
		return *p
	}
	return nil
}
