/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package engine

import (
	"context"
	"fmt"

	dserrors "github.com/suparena/dynascript/errors"
	"github.com/suparena/dynascript/pending"
	"github.com/suparena/dynascript/resultset"
)

// Persist writes the modified rows of rs back to its table and resolves
// with the number of rows written. Rows are written in order; on failure
// the rows already written stay persisted.
func (e *Engine) Persist(ctx context.Context, rs *resultset.ResultSet) *pending.Op[int] {
	op := pending.New[int]()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		ctx, cancel := e.workerContext(ctx)
		defer cancel()

		n, err := e.persist(ctx, rs)
		op.Settle(n, err)
	}()

	return op
}

func (e *Engine) persist(ctx context.Context, rs *resultset.ResultSet) (int, error) {
	if e.opts.ReadOnly {
		return 0, fmt.Errorf("persist %s: %w", rs.Table().Name, dserrors.ErrReadOnly)
	}
	if err := e.checkAuth(); err != nil {
		return 0, err
	}

	if err := e.sem.Acquire(ctx, 1); err != nil {
		return 0, err
	}
	defer e.sem.Release(1)

	table := rs.Table()
	written := 0
	for _, row := range rs.ModifiedRows() {
		snap := row.Snapshot()
		for _, key := range table.KeyNames() {
			if _, ok := snap.Item[key]; !ok {
				return written, dserrors.NewTypeMismatchError(key, "key attribute", "missing")
			}
		}

		err := e.withRetry(ctx, "put "+table.Name, func(ctx context.Context) error {
			return e.store.PutItem(ctx, table.Name, snap.Item)
		})
		if err != nil {
			return written, err
		}
		row.MarkPersisted(snap)
		written++
	}

	e.logger.Debug("persisted result set", "table", table.Name, "rows", written)
	return written, nil
}
