/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package resultset

import (
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suparena/dynascript/errors"
)

// Row wraps one Item plus the metadata needed to write it back.
type Row struct {
	mu          sync.RWMutex
	table       *Table
	item        Item
	originalKey map[string]types.AttributeValue
	modified    bool
	persisted   bool

	// version counts staged writes.
	version uint64
}

// Snapshot is a copy of a row's item taken for write-back, with the row
// version it was taken at.
type Snapshot struct {
	Item    Item
	Version uint64
}

func newRow(table *Table, item Item, persisted bool) *Row {
	if item == nil {
		item = Item{}
	}
	return &Row{
		table:       table,
		item:        item,
		originalKey: item.KeyValue(table),
		persisted:   persisted,
	}
}

// Get returns a copy of the value of attr.
func (r *Row) Get(attr string) (types.AttributeValue, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.item[attr]
	if !ok {
		return nil, false
	}
	return CloneValue(v), true
}

// Item returns a deep copy of the row's item.
func (r *Row) Item() Item {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.item.Clone()
}

// Attributes returns the sorted attribute names of the row's item.
func (r *Row) Attributes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.item.Attributes()
}

// Has reports whether the row's item holds attr.
func (r *Row) Has(attr string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.item[attr]
	return ok
}

// Set writes attr. The write either fully applies and marks the row modified,
// or fails and leaves the previous value in place.
func (r *Row) Set(attr string, value types.AttributeValue) error {
	if value == nil {
		return errors.NewTypeMismatchError(attr, "attribute value", "nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkKeyWrite(attr, value); err != nil {
		return err
	}

	r.item[attr] = CloneValue(value)
	r.modified = true
	r.version++
	return nil
}

// Delete removes a non-key attribute and marks the row modified.
func (r *Row) Delete(attr string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.table.IsKey(attr) {
		return errors.NewReadOnlyKeyError(attr)
	}
	if _, ok := r.item[attr]; !ok {
		return nil
	}
	delete(r.item, attr)
	r.modified = true
	r.version++
	return nil
}

func (r *Row) checkKeyWrite(attr string, value types.AttributeValue) error {
	if !r.table.IsKey(attr) {
		return nil
	}
	if r.persisted {
		return errors.NewReadOnlyKeyError(attr)
	}

	got := TypeName(value)
	if want, ok := r.table.KeyType(attr); ok {
		if string(want) != got {
			return errors.NewTypeMismatchError(attr, string(want), got)
		}
		return nil
	}

	// Undeclared key types still have to be scalar.
	switch got {
	case "S", "N", "B":
		return nil
	}
	return errors.NewTypeMismatchError(attr, "S, N or B", got)
}

// Modified reports whether the row has staged changes.
func (r *Row) Modified() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.modified
}

// Persisted reports whether the row has an identity in the remote store.
func (r *Row) Persisted() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.persisted
}

// OriginalKey returns the key the row had when it was created or last persisted.
func (r *Row) OriginalKey() map[string]types.AttributeValue {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := make(map[string]types.AttributeValue, len(r.originalKey))
	for k, v := range r.originalKey {
		key[k] = CloneValue(v)
	}
	return key
}

// Snapshot copies the row's item for write-back.
func (r *Row) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Snapshot{Item: r.item.Clone(), Version: r.version}
}

// MarkPersisted records that snap was written back. Changes staged after
// snap was taken keep the row modified.
func (r *Row) MarkPersisted(snap Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.persisted = true
	r.originalKey = snap.Item.KeyValue(r.table)
	if r.version == snap.Version {
		r.modified = false
	}
}

// Clone returns a detached snapshot of the row. Changes to either copy are
// not visible in the other.
func (r *Row) Clone() *Row {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c := &Row{
		table:     r.table,
		item:      r.item.Clone(),
		modified:  r.modified,
		persisted: r.persisted,
		version:   r.version,
	}
	c.originalKey = make(map[string]types.AttributeValue, len(r.originalKey))
	for k, v := range r.originalKey {
		c.originalKey[k] = CloneValue(v)
	}
	return c
}

// Table returns the descriptor of the table the row belongs to.
func (r *Row) Table() *Table {
	return r.table
}
