package ovsdb

import "github.com/cuemby/ovncontroller/pkg/model"

// RowDelta is one row's change for the current iteration (spec.md §3
// "Tracked input delta").
type RowDelta[R any] struct {
	Row            R
	Tag            model.RowTag
	ColumnsUpdated map[string]bool
}

// IsColumnUpdated reports whether the named column changed in this delta.
func (d RowDelta[R]) IsColumnUpdated(column string) bool {
	return d.ColumnsUpdated[column]
}

// KeyFunc extracts an index key from a row. Returning ("", false) omits the
// row from the index (e.g. an optional column that is unset).
type KeyFunc[R any] func(R) (key string, ok bool)

// Index is a named secondary lookup over a table, created once before the
// first iteration and stable for the daemon's lifetime (spec.md §3
// "Index"). It is rebuilt in place whenever the owning Table refreshes.
type Index[R any] struct {
	name string
	key  KeyFunc[R]
	byKey map[string][]R
}

// NewIndex creates an index keyed by key, not yet populated.
func NewIndex[R any](name string, key KeyFunc[R]) *Index[R] {
	return &Index[R]{name: name, key: key, byKey: make(map[string][]R)}
}

// Name returns the index's registered name.
func (idx *Index[R]) Name() string { return idx.name }

// Lookup returns the first row matching key, if any.
func (idx *Index[R]) Lookup(key string) (R, bool) {
	rows := idx.byKey[key]
	if len(rows) == 0 {
		var zero R
		return zero, false
	}
	return rows[0], true
}

// LookupAll returns every row matching key.
func (idx *Index[R]) LookupAll(key string) []R {
	return idx.byKey[key]
}

func (idx *Index[R]) rebuild(rows []R) {
	idx.byKey = make(map[string][]R, len(rows))
	for _, r := range rows {
		key, ok := idx.key(r)
		if !ok {
			continue
		}
		idx.byKey[key] = append(idx.byKey[key], r)
	}
}

// Table is the in-memory view of one database table: the current snapshot,
// this iteration's tracked delta, and any named secondary indexes
// registered at construction (spec.md §4.2).
type Table[R any] struct {
	name     string
	snapshot []R
	tracked  []RowDelta[R]
	indexes  map[string]*Index[R]
}

// NewTable creates an empty table with the given named indexes.
func NewTable[R any](name string, indexes ...*Index[R]) *Table[R] {
	t := &Table[R]{name: name, indexes: make(map[string]*Index[R], len(indexes))}
	for _, idx := range indexes {
		t.indexes[idx.Name()] = idx
	}
	return t
}

// Name returns the table's name.
func (t *Table[R]) Name() string { return t.name }

// Snapshot returns every row currently known.
func (t *Table[R]) Snapshot() []R { return t.snapshot }

// Tracked returns this iteration's row deltas.
func (t *Table[R]) Tracked() []RowDelta[R] { return t.tracked }

// Index returns the named index, or nil if it was not registered.
func (t *Table[R]) Index(name string) *Index[R] { return t.indexes[name] }

// Replace installs a fresh snapshot and delta (called by the adapter's
// Refresh on every iteration) and rebuilds every registered index.
func (t *Table[R]) Replace(snapshot []R, delta []RowDelta[R]) {
	t.snapshot = snapshot
	t.tracked = delta
	for _, idx := range t.indexes {
		idx.rebuild(snapshot)
	}
}

// ClearTracked drops this iteration's delta, per the engine's ClearTracked
// hook (spec.md §4.1 "Init-run").
func (t *Table[R]) ClearTracked() { t.tracked = nil }
