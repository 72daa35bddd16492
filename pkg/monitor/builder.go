package monitor

// Builder accumulates per-table clauses across several call sites during
// one recompute (runtime-data, ct-zone, route nodes each contribute
// clauses for the tables they care about) and finalizes them into a single
// Conditions value. This mirrors a "goto out: accumulate-then-finalize"
// shape: callers only ever add clauses, never see a half-built result
// (spec.md §4.3, design note on accumulate-then-finalize builders).
type Builder struct {
	monitorAll bool
	tables     map[string]*TableConditions
	order      []string
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{tables: make(map[string]*TableConditions)}
}

// MonitorAll marks every table added to the builder as fully monitored,
// overriding any clauses added before or after; a table never added does
// not appear in the built Conditions. Used for the ovn-monitor-all
// external-ids override (spec.md §4.3, §6).
func (b *Builder) MonitorAll() *Builder {
	b.monitorAll = true
	return b
}

// Table marks a single table as fully monitored regardless of other
// clauses, used for the gateway port-binding / advertised-route /
// chassis-private startup-mode tables (spec.md §4.3 "Startup mode").
func (b *Builder) Table(name string) *Builder {
	b.entry(name).MonitorAll = true
	return b
}

// Clause adds one disjunct to table's condition expression.
func (b *Builder) Clause(table, column string, values ...string) *Builder {
	if len(values) == 0 {
		return b
	}
	e := b.entry(table)
	if e.MonitorAll {
		return b
	}
	e.Clauses = append(e.Clauses, Clause{Column: column, Values: values})
	return b
}

func (b *Builder) entry(table string) *TableConditions {
	e, ok := b.tables[table]
	if !ok {
		e = &TableConditions{}
		b.tables[table] = e
		b.order = append(b.order, table)
	}
	return e
}

// Build finalizes the accumulated clauses into a Conditions value.
func (b *Builder) Build() Conditions {
	out := make(Conditions, len(b.tables))
	for _, name := range b.order {
		e := *b.tables[name]
		if b.monitorAll {
			e = TableConditions{MonitorAll: true}
		}
		out[name] = e
	}
	return out
}
