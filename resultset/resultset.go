/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package resultset

import (
	"sync"
	"time"

	"github.com/go-openapi/strfmt"
)

// ResultSet is the ordered output of one query against one table.
type ResultSet struct {
	mu         sync.RWMutex
	table      *Table
	expression string
	rows       []*Row
	fetchedAt  strfmt.DateTime
}

// New builds a result set from items fetched from the store. Every row is
// considered persisted.
func New(table *Table, expression string, items []Item) *ResultSet {
	rs := &ResultSet{
		table:      table,
		expression: expression,
		rows:       make([]*Row, 0, len(items)),
		fetchedAt:  strfmt.DateTime(time.Now().UTC()),
	}
	for _, item := range items {
		rs.rows = append(rs.rows, newRow(table, item, true))
	}
	return rs
}

// Table returns the originating table descriptor. Callers must not modify it.
func (rs *ResultSet) Table() *Table {
	return rs.table
}

// Expression returns the query expression that produced the result set.
func (rs *ResultSet) Expression() string {
	return rs.expression
}

// FetchedAt returns when the rows were read from the store.
func (rs *ResultSet) FetchedAt() strfmt.DateTime {
	return rs.fetchedAt
}

// Len returns the number of rows.
func (rs *ResultSet) Len() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return len(rs.rows)
}

// Row returns the row at idx, or nil when idx is out of range.
func (rs *ResultSet) Row(idx int) *Row {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	if idx < 0 || idx >= len(rs.rows) {
		return nil
	}
	return rs.rows[idx]
}

// Rows returns the rows in store order.
func (rs *ResultSet) Rows() []*Row {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	rows := make([]*Row, len(rs.rows))
	copy(rows, rs.rows)
	return rows
}

// AppendItem adds a new row that does not exist in the store yet. The row is
// marked modified so that a write-back picks it up.
func (rs *ResultSet) AppendItem(item Item) *Row {
	row := newRow(rs.table, item.Clone(), false)
	row.modified = true

	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.rows = append(rs.rows, row)
	return row
}

// ModifiedRows returns the rows with staged changes, in store order.
func (rs *ResultSet) ModifiedRows() []*Row {
	var modified []*Row
	for _, row := range rs.Rows() {
		if row.Modified() {
			modified = append(modified, row)
		}
	}
	return modified
}

// Clone returns a detached copy of the result set. Rows of the copy are
// snapshots; writes to either side are not visible in the other.
func (rs *ResultSet) Clone() *ResultSet {
	rows := rs.Rows()

	c := &ResultSet{
		table:      rs.table,
		expression: rs.expression,
		rows:       make([]*Row, len(rows)),
		fetchedAt:  rs.fetchedAt,
	}
	for i, row := range rows {
		c.rows[i] = row.Clone()
	}
	return c
}
