// Package posting drives the document lifecycle: numbering, cost
// confirmation, posting and cancellation.
package posting

import (
	"ledgerpost/internal/core/apperror"
	"ledgerpost/internal/core/entity"
)

// State is the derived lifecycle state of a document.
type State string

const (
	// StateDraft: saved without a business number, freely editable
	StateDraft State = "DRAFT"

	// StateNumbered: business number allocated, still editable
	StateNumbered State = "NUMBERED"

	// StateCostConfirmed: costing finalized, document immutable
	StateCostConfirmed State = "COST_CONFIRMED"

	// StatePosted: journal and stock effects are permanent
	StatePosted State = "POSTED"

	// StateCancelled: withdrawn before confirmation, number retained
	StateCancelled State = "CANCELLED"
)

// StateOf derives the unambiguous lifecycle state from stored flags.
// Precedence: cancelled > posted > cost-confirmed > numbered > draft.
func StateOf(f entity.StateFlags) State {
	switch {
	case f.Cancelled:
		return StateCancelled
	case f.Posted:
		return StatePosted
	case f.CostConfirmed:
		return StateCostConfirmed
	case f.Numbered:
		return StateNumbered
	default:
		return StateDraft
	}
}

// transitions is the allowed state graph.
var transitions = map[State][]State{
	StateDraft:         {StateNumbered, StateCancelled},
	StateNumbered:      {StateCostConfirmed, StatePosted, StateCancelled},
	StateCostConfirmed: {StatePosted},
	StatePosted:        {},
	StateCancelled:     {StateNumbered},
}

// CanTransition reports whether from -> to is a legal lifecycle move.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Lifecycle is the minimal view of a document the guards need.
type Lifecycle interface {
	Flags() entity.StateFlags
}

// GuardTransition returns the canonical error for an illegal move.
// Specific conflicts get their dedicated codes so callers can
// distinguish a repeat from a genuinely invalid request.
func GuardTransition(doc Lifecycle, docID string, to State) error {
	from := StateOf(doc.Flags())
	if CanTransition(from, to) {
		return nil
	}

	switch {
	case from == StatePosted && to == StatePosted:
		return apperror.NewDuplicatePosting(docID)
	case from == StatePosted:
		return apperror.NewAlreadyPosted(docID)
	case from == StateCostConfirmed:
		return apperror.NewAlreadyConfirmed(docID)
	case from == StateCancelled:
		return apperror.NewDocumentCancelled(docID)
	default:
		return apperror.NewInvalidTransition(string(from), string(to))
	}
}
