package translate

import "github.com/cuemby/ovncontroller/pkg/model"

// StubLogicalFlowTranslator is a placeholder LogicalFlowTranslator that
// emits no entries. Logical-to-OpenFlow match/action compilation is out of
// scope (spec.md §1 Non-goals); a real deployment plugs in the actual
// compiler here. This stub exists only so cmd/ovncontroller has a
// concrete, constructible value to wire lflow output against.
type StubLogicalFlowTranslator struct{}

func (StubLogicalFlowTranslator) TranslateLogicalFlow(lf model.LogicalFlow, localDatapaths []model.UUID) ([]FlowEntry, error) {
	return nil, nil
}

// StubPhysicalFlowTranslator is the physical-pipeline equivalent of
// StubLogicalFlowTranslator, for the same reason.
type StubPhysicalFlowTranslator struct{}

func (StubPhysicalFlowTranslator) TranslatePhysicalFlow(pb model.PortBinding, localChassis model.UUID) ([]FlowEntry, error) {
	return nil, nil
}
