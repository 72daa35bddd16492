package monitor

// Clause is one disjunct of a table's condition expression, e.g. "datapath
// ∈ {local-datapaths}" becomes Clause{Column: "datapath", Values: [...]}
// (spec.md §4.3).
type Clause struct {
	Column string
	Values []string
}

// TableConditions is the condition expression submitted for one table: the
// union (OR) of its clauses. MonitorAll overrides the clause list entirely
// and requests every row, used during startup mode (spec.md §4.3 "Startup
// mode").
type TableConditions struct {
	MonitorAll bool
	Clauses    []Clause
}

// Conditions is the full set of per-table condition expressions submitted
// to the southbound client in one monitor-condition update.
type Conditions map[string]TableConditions

// Equal reports whether two condition sets are identical, used by Manager
// to decide whether a recompute actually changed anything worth
// resubmitting.
func (c Conditions) Equal(other Conditions) bool {
	if len(c) != len(other) {
		return false
	}
	for table, tc := range c {
		otc, ok := other[table]
		if !ok || tc.MonitorAll != otc.MonitorAll || len(tc.Clauses) != len(otc.Clauses) {
			return false
		}
		for i, cl := range tc.Clauses {
			ocl := otc.Clauses[i]
			if cl.Column != ocl.Column || len(cl.Values) != len(ocl.Values) {
				return false
			}
			for j, v := range cl.Values {
				if ocl.Values[j] != v {
					return false
				}
			}
		}
	}
	return true
}
