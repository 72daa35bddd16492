package nodes

import (
	"context"

	"github.com/cuemby/ovncontroller/pkg/engine"
	"github.com/cuemby/ovncontroller/pkg/model"
	"github.com/cuemby/ovncontroller/pkg/ovsdb"
)

// AddrSetNodeName is this node's registered engine.Node name.
const AddrSetNodeName = "address_set"

// AddrSetNode materializes address sets into the form the lflow translator
// consumes (address-set UUID -> address list, in row order). Deps is keyed
// by chassis template variable so the chassis_template_var handler
// re-materializes only the sets that depend on a changed variable, but
// materialize substitutes no template variables and records no
// dependencies, so that handler finds no dependents.
type AddrSetNode struct {
	AddressSets  *ovsdb.Table[model.AddressSet]
	TemplateVars *ovsdb.Table[model.ChassisTemplateVar]
	Chassis      func() string
	Deps         *DepGraph

	materialized map[model.UUID][]string
}

func (n *AddrSetNode) Name() string { return AddrSetNodeName }

func (n *AddrSetNode) Flags() engine.Flags { return 0 }

func (n *AddrSetNode) Initialize(ctx context.Context) error {
	n.materialized = make(map[model.UUID][]string)
	if n.Deps == nil {
		n.Deps = NewDepGraph()
	}
	return nil
}

func (n *AddrSetNode) Handlers() map[string]engine.InputHandler {
	return map[string]engine.InputHandler{
		"sb/address_set": func(ctx context.Context, b *engine.Borrow, delta any) (engine.HandlerOutcome, error) {
			deltas, ok := delta.([]ovsdb.RowDelta[model.AddressSet])
			if !ok {
				return engine.HandlerUnhandled, nil
			}
			for _, d := range deltas {
				if d.Tag == model.RowDeleted {
					delete(n.materialized, d.Row.UUID)
					n.Deps.RemoveObject(d.Row.UUID)
					continue
				}
				n.materialize(d.Row)
			}
			return engine.HandlerUpdated, nil
		},
		"chassis_template_var": func(ctx context.Context, b *engine.Borrow, delta any) (engine.HandlerOutcome, error) {
			deltas, ok := delta.([]ovsdb.RowDelta[model.ChassisTemplateVar])
			if !ok {
				return engine.HandlerUnhandled, nil
			}
			byUUID := make(map[model.UUID]model.AddressSet)
			for _, as := range n.AddressSets.Snapshot() {
				byUUID[as.UUID] = as
			}
			for _, d := range deltas {
				for _, variable := range keysOf(d.Row.Variable) {
					for _, obj := range n.Deps.Affected(variable) {
						if as, ok := byUUID[obj]; ok {
							n.materialize(as)
						}
					}
				}
			}
			return engine.HandlerUpdated, nil
		},
	}
}

func keysOf(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func (n *AddrSetNode) materialize(as model.AddressSet) {
	n.Deps.RemoveObject(as.UUID)
	// Addresses are copied as-is: no template variable is substituted and
	// nothing is recorded in Deps.
	n.materialized[as.UUID] = append([]string(nil), as.Addresses...)
}

func (n *AddrSetNode) Run(ctx context.Context, b *engine.Borrow) (bool, error) {
	n.materialized = make(map[model.UUID][]string)
	for _, as := range n.AddressSets.Snapshot() {
		n.materialize(as)
	}
	return true, nil
}

func (n *AddrSetNode) Delta() any { return nil }

func (n *AddrSetNode) ClearTracked() {}

func (n *AddrSetNode) Cleanup() {}

func (n *AddrSetNode) Validity() engine.Validity { return engine.Valid }

// Addresses returns the materialized address list of the address set whose
// UUID is id.
func (n *AddrSetNode) Addresses(id model.UUID) []string { return n.materialized[id] }
