/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides an in-memory implementation of datastore.TableStore for testing
package mock

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suparena/dynascript/errors"
	"github.com/suparena/dynascript/resultset"
	"github.com/suparena/dynascript/storagemodels"
)

// Hang makes a page call block until its context is done.
var Hang = hangError{}

type hangError struct{}

func (hangError) Error() string { return "hang until context is done" }

type mockTable struct {
	table *resultset.Table
	items []resultset.Item
}

// Calls counts the remote calls a Store has served.
type Calls struct {
	Describe int64
	Page     int64
	Put      int64
	List     int64
}

// Total returns the number of remote calls of every kind.
func (c Calls) Total() int64 {
	return c.Describe + c.Page + c.Put + c.List
}

// Store is an in-memory table store. Items are returned in insertion order.
type Store struct {
	mu            sync.RWMutex
	tables        map[string]*mockTable
	pageSize      int
	pageErrors    []error
	describeError error
	putError      error

	describeCalls atomic.Int64
	pageCalls     atomic.Int64
	putCalls      atomic.Int64
	listCalls     atomic.Int64
}

// New creates an empty Store
func New() *Store {
	return &Store{tables: make(map[string]*mockTable)}
}

// WithTable adds a table holding a copy of items
func (m *Store) WithTable(table *resultset.Table, items ...resultset.Item) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	mt := &mockTable{table: table}
	for _, it := range items {
		mt.items = append(mt.items, it.Clone())
	}
	m.tables[table.Name] = mt
	return m
}

// WithPageSize limits the number of items evaluated per page
func (m *Store) WithPageSize(n int) *Store {
	m.pageSize = n
	return m
}

// WithPageErrors makes the next page calls fail with errs, in order. A nil
// entry lets that call through and Hang blocks it until its context is done.
func (m *Store) WithPageErrors(errs ...error) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pageErrors = append(m.pageErrors, errs...)
	return m
}

// WithDescribeError makes DescribeTable return err
func (m *Store) WithDescribeError(err error) *Store {
	m.describeError = err
	return m
}

// WithPutError makes PutItem return err
func (m *Store) WithPutError(err error) *Store {
	m.putError = err
	return m
}

// Calls returns a snapshot of the call counters
func (m *Store) Calls() Calls {
	return Calls{
		Describe: m.describeCalls.Load(),
		Page:     m.pageCalls.Load(),
		Put:      m.putCalls.Load(),
		List:     m.listCalls.Load(),
	}
}

// Items returns a copy of the items of a table
func (m *Store) Items(table string) []resultset.Item {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mt, ok := m.tables[table]
	if !ok {
		return nil
	}
	items := make([]resultset.Item, len(mt.items))
	for i, it := range mt.items {
		items[i] = it.Clone()
	}
	return items
}

// DescribeTable returns the descriptor of a table
func (m *Store) DescribeTable(ctx context.Context, name string) (*resultset.Table, error) {
	m.describeCalls.Add(1)
	if m.describeError != nil {
		return nil, m.describeError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	mt, ok := m.tables[name]
	if !ok {
		return nil, errors.NewTableNotFoundError(name, nil)
	}
	return mt.table, nil
}

// QueryPage returns one page of matching items
func (m *Store) QueryPage(ctx context.Context, params *storagemodels.QueryParams) (storagemodels.Page, error) {
	return m.page(ctx, params)
}

// ScanPage returns one page of matching items
func (m *Store) ScanPage(ctx context.Context, params *storagemodels.QueryParams) (storagemodels.Page, error) {
	return m.page(ctx, params)
}

func (m *Store) page(ctx context.Context, params *storagemodels.QueryParams) (storagemodels.Page, error) {
	m.pageCalls.Add(1)

	if err := m.nextPageError(); err != nil {
		if err == Hang {
			<-ctx.Done()
			return storagemodels.Page{}, ctx.Err()
		}
		return storagemodels.Page{}, err
	}
	if err := ctx.Err(); err != nil {
		return storagemodels.Page{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	mt, ok := m.tables[params.TableName]
	if !ok {
		return storagemodels.Page{}, errors.NewTableNotFoundError(params.TableName, nil)
	}

	start := 0
	if params.ExclusiveStartKey != nil {
		start = mt.indexOf(params.ExclusiveStartKey) + 1
	}

	limit := len(mt.items) - start
	if params.Limit != nil && int(aws.ToInt32(params.Limit)) < limit {
		limit = int(aws.ToInt32(params.Limit))
	}
	if m.pageSize > 0 && m.pageSize < limit {
		limit = m.pageSize
	}

	var page storagemodels.Page
	end := start + limit
	for _, it := range mt.items[start:end] {
		if params.Match != nil {
			matched, err := params.Match(it)
			if err != nil {
				return storagemodels.Page{}, err
			}
			if !matched {
				continue
			}
		}
		page.Items = append(page.Items, it.Clone())
	}
	if end < len(mt.items) {
		page.LastEvaluatedKey = mt.items[end-1].KeyValue(mt.table)
	}
	return page, nil
}

func (m *Store) nextPageError() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.pageErrors) == 0 {
		return nil
	}
	err := m.pageErrors[0]
	m.pageErrors = m.pageErrors[1:]
	return err
}

// PutItem stores an item, replacing an item with the same key in place
func (m *Store) PutItem(ctx context.Context, table string, item resultset.Item) error {
	m.putCalls.Add(1)
	if m.putError != nil {
		return m.putError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	mt, ok := m.tables[table]
	if !ok {
		return errors.NewTableNotFoundError(table, nil)
	}

	if idx := mt.indexOf(item.KeyValue(mt.table)); idx >= 0 {
		mt.items[idx] = item.Clone()
		return nil
	}
	mt.items = append(mt.items, item.Clone())
	return nil
}

// ListTables returns the table names in sorted order
func (m *Store) ListTables(ctx context.Context) ([]string, error) {
	m.listCalls.Add(1)

	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.tables))
	for name := range m.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (mt *mockTable) indexOf(key map[string]types.AttributeValue) int {
	for i, it := range mt.items {
		if sameKey(mt.table, it.KeyValue(mt.table), key) {
			return i
		}
	}
	return -1
}

func sameKey(table *resultset.Table, a, b map[string]types.AttributeValue) bool {
	for _, name := range table.KeyNames() {
		av, aok := a[name]
		bv, bok := b[name]
		if aok != bok {
			return false
		}
		if aok && !sameScalar(av, bv) {
			return false
		}
	}
	return true
}

func sameScalar(a, b types.AttributeValue) bool {
	switch av := a.(type) {
	case *types.AttributeValueMemberS:
		bv, ok := b.(*types.AttributeValueMemberS)
		return ok && av.Value == bv.Value
	case *types.AttributeValueMemberN:
		bv, ok := b.(*types.AttributeValueMemberN)
		return ok && av.Value == bv.Value
	case *types.AttributeValueMemberB:
		bv, ok := b.(*types.AttributeValueMemberB)
		return ok && string(av.Value) == string(bv.Value)
	}
	return false
}
