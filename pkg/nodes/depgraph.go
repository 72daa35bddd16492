package nodes

import "github.com/cuemby/ovncontroller/pkg/model"

// DepGraph maps a chassis template variable to the set of objects (address
// sets, port groups, load balancers) whose materialization references it,
// so a template-variable update republishes only its dependents instead of
// every object of that kind (spec.md §4.9).
type DepGraph struct {
	byVariable map[string]map[model.UUID]bool
	byObject   map[model.UUID]map[string]bool
}

// NewDepGraph creates an empty dependency graph.
func NewDepGraph() *DepGraph {
	return &DepGraph{
		byVariable: make(map[string]map[model.UUID]bool),
		byObject:   make(map[model.UUID]map[string]bool),
	}
}

// AddDependency records that object's materialization reads variable.
func (g *DepGraph) AddDependency(variable string, object model.UUID) {
	if g.byVariable[variable] == nil {
		g.byVariable[variable] = make(map[model.UUID]bool)
	}
	g.byVariable[variable][object] = true
	if g.byObject[object] == nil {
		g.byObject[object] = make(map[string]bool)
	}
	g.byObject[object][variable] = true
}

// RemoveObject forgets every dependency object has, called when object is
// deleted or about to be fully re-evaluated.
func (g *DepGraph) RemoveObject(object model.UUID) {
	for variable := range g.byObject[object] {
		delete(g.byVariable[variable], object)
	}
	delete(g.byObject, object)
}

// Affected returns every object depending on variable.
func (g *DepGraph) Affected(variable string) []model.UUID {
	out := make([]model.UUID, 0, len(g.byVariable[variable]))
	for obj := range g.byVariable[variable] {
		out = append(out, obj)
	}
	return out
}
