package migration

// Table maps source identifiers to destination identifiers for one entity
// kind. Tables live for a single run: they are built while that kind is
// reconciled and read by dependent passes (the product pass reads the brand
// and category tables). There is no removal and no cross-run persistence;
// re-runs rebuild tables from live destination state, which is what keeps
// them honest.
type Table struct {
	m map[int64]int64
}

// NewTable returns an empty mapping table.
func NewTable() *Table {
	return &Table{m: make(map[int64]int64)}
}

// Put records the destination identifier resolved for a source identifier.
// Re-putting the same source identifier overwrites; that only happens when a
// pass re-resolves the same entity, which yields the same value.
func (t *Table) Put(sourceID, destID int64) {
	t.m[sourceID] = destID
}

// Get returns the destination identifier for a source identifier.
func (t *Table) Get(sourceID int64) (int64, bool) {
	id, ok := t.m[sourceID]
	return id, ok
}

// Len returns the number of resolved mappings.
func (t *Table) Len() int {
	return len(t.m)
}
