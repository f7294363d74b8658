package model

// State is the orchestrator's position in one job's lifecycle. A job starts
// at StateJobPage, advances strictly forward, and never leaves a terminal
// state.
type State string

const (
	StateJobPage   State = "JOB_PAGE"
	StateModalWait State = "MODAL_WAIT"
	StateTextField State = "TEXT_FIELD_STEP"
	StateRadio     State = "RADIO_STEP"
	StateSelect    State = "SELECT_STEP"
	StateForm      State = "FORM_STEP"
	StateReview    State = "REVIEW_STEP"
	StateSubmitted State = "SUBMITTED"
)

// stepStates are the per-pass working states reachable from MODAL_WAIT and
// from each other. A multi-step form cycles through them once per form page.
var stepStates = []State{StateRadio, StateSelect, StateTextField, StateForm, StateReview}

// transitions is the forward-transition table. Terminal outcomes are
// reachable from every non-terminal state and are not listed here; see
// Terminal.
var transitions = map[State][]State{
	StateJobPage:   {StateModalWait},
	StateModalWait: stepStates,
	StateRadio:     append([]State{StateSubmitted}, stepStates...),
	StateSelect:    append([]State{StateSubmitted}, stepStates...),
	StateTextField: append([]State{StateSubmitted}, stepStates...),
	StateForm:      append([]State{StateSubmitted}, stepStates...),
	StateReview:    append([]State{StateSubmitted}, stepStates...),
	StateSubmitted: nil,
}

// CanTransition reports whether moving from one working state to another is
// legal. Self-transitions are allowed within step states (re-perception of
// the same form page).
func CanTransition(from, to State) bool {
	if from == to {
		for _, s := range stepStates {
			if s == from {
				return true
			}
		}
		return false
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether s is a state with no outgoing transitions.
func (s State) Terminal() bool {
	return s == StateSubmitted
}
