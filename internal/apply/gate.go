// Package apply holds the decision core for one job attempt: the
// orchestrator state machine, the violation gate, and the unresolved-field
// debug buffer. Everything stateful about the outside world stays behind
// session.Surface.
package apply

import (
	"go.uber.org/zap"

	"github.com/partypancake8/linkedin-is-lame/internal/model"
)

// Action is the gate's decision. The gate never produces anything except a
// skip; the type exists so the contract is explicit at call sites.
type Action string

// ActionSkip is the only action the gate emits.
const ActionSkip Action = "SKIP"

// Prompter is the operator channel used in interactive mode.
type Prompter interface {
	// Acknowledge shows a violation and blocks until the operator confirms.
	Acknowledge(ev model.ViolationEvent) error
	// ConfirmSubmit asks whether to send the final submission.
	ConfirmSubmit(job model.Job) (bool, error)
}

// Gate is the single decision point that converts a detected problem into a
// skip. No other code path decides skip versus continue.
type Gate struct {
	interactive bool
	prompter    Prompter
}

// NewGate builds a gate. The prompter may be nil when interactive is false.
func NewGate(interactive bool, prompter Prompter) *Gate {
	return &Gate{interactive: interactive, prompter: prompter}
}

// Handle routes a violation to its uniform outcome. The return contract is
// identical in both modes; interactive mode merely blocks on operator
// acknowledgment first. Already-applied is the one violation that never
// pauses, since it is a precondition and not a rule-authoring concern.
func (g *Gate) Handle(ev model.ViolationEvent) (Action, model.ViolationType) {
	zap.L().Info("gate: violation",
		zap.String("type", string(ev.Type)),
		zap.String("message", ev.Message),
		zap.Duration("elapsed", ev.Elapsed))

	if g.interactive && g.prompter != nil && ev.Type != model.ViolationAlreadyApplied {
		if err := g.prompter.Acknowledge(ev); err != nil {
			zap.L().Warn("gate: operator acknowledgment failed", zap.Error(err))
		}
	}
	return ActionSkip, ev.Type
}
