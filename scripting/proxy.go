/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package scripting

import (
	"slices"

	"github.com/dop251/goja"

	"github.com/suparena/dynascript/resultset"
)

var (
	resultSetKeys = []string{"table", "rows", "expression", "fetchedAt"}
	rowKeys       = []string{"item", "modified", "persisted"}
)

// resultSetValue returns the script view of rs, or null when rs is nil.
func (h *Host) resultSetValue(rs *resultset.ResultSet) goja.Value {
	if rs == nil {
		return goja.Null()
	}
	return h.vm.NewDynamicObject(&resultSetObject{h: h, rs: rs})
}

func (h *Host) rowValue(row *resultset.Row) goja.Value {
	if row == nil {
		return goja.Undefined()
	}
	return h.vm.NewDynamicObject(&rowObject{h: h, row: row})
}

func (h *Host) tableValue(t *resultset.Table) goja.Value {
	obj := h.vm.NewObject()
	_ = obj.Set("name", t.Name)
	_ = obj.Set("partitionKey", t.Keys.PartitionKey)
	if t.Keys.SortKey != "" {
		_ = obj.Set("sortKey", t.Keys.SortKey)
	}

	indexes := make([]any, len(t.GSIs))
	for i, gsi := range t.GSIs {
		indexes[i] = gsi.Name
	}
	_ = obj.Set("indexes", indexes)
	return obj
}

// resultSetObject is the script view of a result set. Its fields are read
// only; rows are mutated through their items.
type resultSetObject struct {
	h  *Host
	rs *resultset.ResultSet
}

func (o *resultSetObject) Get(key string) goja.Value {
	vm := o.h.vm
	switch key {
	case "table":
		return o.h.tableValue(o.rs.Table())
	case "rows":
		return vm.NewDynamicArray(&rowsArray{h: o.h, rs: o.rs})
	case "expression":
		return vm.ToValue(o.rs.Expression())
	case "fetchedAt":
		return vm.ToValue(o.rs.FetchedAt().String())
	case "clone":
		return vm.ToValue(func(goja.FunctionCall) goja.Value {
			return o.h.resultSetValue(o.rs.Clone())
		})
	}
	return goja.Undefined()
}

func (o *resultSetObject) Set(string, goja.Value) bool { return false }

func (o *resultSetObject) Has(key string) bool {
	return key == "clone" || slices.Contains(resultSetKeys, key)
}

func (o *resultSetObject) Delete(string) bool { return false }

func (o *resultSetObject) Keys() []string { return resultSetKeys }

// rowsArray is the read-only rows collection of a result set.
type rowsArray struct {
	h  *Host
	rs *resultset.ResultSet
}

func (a *rowsArray) Len() int { return a.rs.Len() }

func (a *rowsArray) Get(idx int) goja.Value {
	return a.h.rowValue(a.rs.Row(idx))
}

func (a *rowsArray) Set(int, goja.Value) bool { return false }

func (a *rowsArray) SetLen(int) bool { return false }

type rowObject struct {
	h   *Host
	row *resultset.Row
}

func (o *rowObject) Get(key string) goja.Value {
	vm := o.h.vm
	switch key {
	case "item":
		return vm.NewDynamicObject(&itemObject{h: o.h, row: o.row})
	case "modified":
		return vm.ToValue(o.row.Modified())
	case "persisted":
		return vm.ToValue(o.row.Persisted())
	case "clone":
		return vm.ToValue(func(goja.FunctionCall) goja.Value {
			return o.h.rowValue(o.row.Clone())
		})
	}
	return goja.Undefined()
}

func (o *rowObject) Set(string, goja.Value) bool { return false }

func (o *rowObject) Has(key string) bool {
	return key == "clone" || slices.Contains(rowKeys, key)
}

func (o *rowObject) Delete(string) bool { return false }

func (o *rowObject) Keys() []string { return rowKeys }

// itemObject exposes a row's attributes. Writes go straight to the row; a
// rejected write keeps the previous value and is recorded against the
// running command.
type itemObject struct {
	h   *Host
	row *resultset.Row
}

func (o *itemObject) Get(key string) goja.Value {
	av, ok := o.row.Get(key)
	if !ok {
		return goja.Undefined()
	}
	return o.h.attributeValue(av)
}

func (o *itemObject) Set(key string, val goja.Value) bool {
	if val == nil || goja.IsUndefined(val) {
		return o.Delete(key)
	}

	av, err := o.h.fromValue(key, val)
	if err == nil {
		err = o.row.Set(key, av)
	}
	if err != nil {
		o.h.recordError(err)
	}
	return true
}

func (o *itemObject) Has(key string) bool {
	return o.row.Has(key)
}

func (o *itemObject) Delete(key string) bool {
	if err := o.row.Delete(key); err != nil {
		o.h.recordError(err)
	}
	return true
}

func (o *itemObject) Keys() []string {
	return o.row.Attributes()
}
