package integrate

import (
	"fmt"

	"github.com/matzehuels/itemshuffle/pkg/logic"
)

// StructuralError reports a node graph that cannot be reduced to item
// requirements. It always indicates a bug in the world description, never a
// runtime condition, and names the offending node.
type StructuralError struct {
	Node   logic.NodeID
	Name   string
	Kind   logic.Kind
	Phase  Phase
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("integrate: %s phase: %s %q: %s", e.Phase, e.Kind, e.Name, e.Reason)
}

func (s *system) structural(id logic.NodeID, phase Phase, format string, args ...any) *StructuralError {
	return &StructuralError{
		Node:   id,
		Name:   s.g.Name(id),
		Kind:   s.g.Kind(id),
		Phase:  phase,
		Reason: fmt.Sprintf(format, args...),
	}
}
