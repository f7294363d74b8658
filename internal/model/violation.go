package model

import "time"

// ViolationType names a condition that prevents safe autonomous progression.
// The taxonomy is fixed and exhaustive; each value doubles as the skip-reason
// constant in the job record.
type ViolationType string

const (
	// ViolationUnresolvedField: no configured key matched the field.
	ViolationUnresolvedField ViolationType = "unresolved_field"
	// ViolationLowConfidence: a pattern matched but below the confidence floor.
	ViolationLowConfidence ViolationType = "low_confidence_match"
	// ViolationUnexpectedState: the state machine has no defined next move.
	ViolationUnexpectedState ViolationType = "unexpected_state"
	// ViolationProgressionDisabled: the Next/Review/Submit control cannot be used.
	ViolationProgressionDisabled ViolationType = "progression_disabled"
	// ViolationInputRejected: the surface reported a validation failure after fill.
	ViolationInputRejected ViolationType = "input_rejected"
	// ViolationEmptyForm: the modal rendered with no recognizable form elements.
	ViolationEmptyForm ViolationType = "no_form_elements"
	// ViolationSurfaceNotDetected: the apply surface (button or modal) never appeared.
	ViolationSurfaceNotDetected ViolationType = "surface_not_detected"
	// ViolationAlreadyApplied: the job was applied to before this run.
	ViolationAlreadyApplied ViolationType = "already_applied"
)

// AllViolationTypes returns the fixed taxonomy in declaration order.
func AllViolationTypes() []ViolationType {
	return []ViolationType{
		ViolationUnresolvedField,
		ViolationLowConfidence,
		ViolationUnexpectedState,
		ViolationProgressionDisabled,
		ViolationInputRejected,
		ViolationEmptyForm,
		ViolationSurfaceNotDetected,
		ViolationAlreadyApplied,
	}
}

// ViolationEvent is raised by the orchestrator whenever a step cannot
// proceed, and consumed exactly once by the violation gate.
type ViolationEvent struct {
	Type    ViolationType `json:"violation_type"`
	Message string        `json:"message"`
	Elapsed time.Duration `json:"elapsed"`
}
