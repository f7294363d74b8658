package apply

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/partypancake8/linkedin-is-lame/internal/answers"
	"github.com/partypancake8/linkedin-is-lame/internal/model"
	"github.com/partypancake8/linkedin-is-lame/internal/resolve"
	"github.com/partypancake8/linkedin-is-lame/internal/session"
)

const defaultMaxFormSteps = 10

// Options are the mode flags consumed by the orchestrator and the gate.
// Interactive and TestMode are mutually exclusive; config validation
// enforces that before an Orchestrator is built.
type Options struct {
	TestMode        bool
	Interactive     bool
	DebugUnresolved bool
	ResumePath      string
	MaxFormSteps    int
}

// Orchestrator drives one job at a time through the application state
// machine. It is reusable across jobs; all per-job state lives in the run.
type Orchestrator struct {
	surface  session.Surface
	tables   answers.Tables
	gate     *Gate
	prompter Prompter
	sink     DebugSink
	opts     Options
}

// New builds an orchestrator. sink may be nil when debug output is disabled;
// prompter may be nil outside interactive mode.
func New(surface session.Surface, tables answers.Tables, gate *Gate, prompter Prompter, sink DebugSink, opts Options) *Orchestrator {
	if opts.MaxFormSteps <= 0 {
		opts.MaxFormSteps = defaultMaxFormSteps
	}
	return &Orchestrator{
		surface:  surface,
		tables:   tables,
		gate:     gate,
		prompter: prompter,
		sink:     sink,
		opts:     opts,
	}
}

// run is the mutable state of a single job attempt.
type run struct {
	o     *Orchestrator
	job   model.Job
	start time.Time
	state model.State
	debug *DebugBuffer
	rec   model.JobRecord

	resolved   int
	unresolved int
	floorHit   bool
}

// Run executes one job end to end and returns its record. Every exit path
// is terminal: the record always carries a result, the state at exit, and
// the resolution counts, and the debug buffer flushes exactly once.
func (o *Orchestrator) Run(ctx context.Context, job model.Job) model.JobRecord {
	r := &run{
		o:     o,
		job:   job,
		start: time.Now(),
		state: model.StateJobPage,
		debug: NewDebugBuffer(o.opts.DebugUnresolved),
		rec: model.JobRecord{
			ID:        uuid.NewString(),
			Timestamp: time.Now().UTC(),
			JobID:     job.ID,
			JobURL:    job.URL,
		},
	}

	zap.L().Info("apply: job started", zap.String("job_id", job.ID), zap.String("url", job.URL))
	r.execute(ctx)

	r.rec.ElapsedSeconds = time.Since(r.start).Seconds()
	r.rec.FieldsResolved = r.resolved
	r.rec.FieldsUnresolved = r.unresolved
	r.rec.ConfidenceFloorHit = r.floorHit
	if err := r.debug.Flush(ctx, o.sink, r.rec.StateAtExit, r.rec.SkipReason); err != nil {
		zap.L().Warn("apply: debug flush failed", zap.Error(err))
	}

	zap.L().Info("apply: job finished",
		zap.String("job_id", job.ID),
		zap.String("result", string(r.rec.Result)),
		zap.String("state_at_exit", string(r.rec.StateAtExit)),
		zap.Float64("elapsed_seconds", r.rec.ElapsedSeconds))
	return r.rec
}

func (r *run) execute(ctx context.Context) {
	if !r.openJobPage(ctx) {
		return
	}
	r.formLoop(ctx)
}

// openJobPage covers JOB_PAGE and MODAL_WAIT: navigation, the one-time
// already-applied check, activating the apply control, and waiting for the
// modal.
func (r *run) openJobPage(ctx context.Context) bool {
	if err := r.o.surface.Open(ctx, r.job.URL); err != nil {
		r.fail(err, "open job page")
		return false
	}

	applied, err := r.o.surface.AlreadyApplied(ctx)
	if err != nil {
		r.fail(err, "check applied state")
		return false
	}
	if applied {
		r.violate(model.ViolationAlreadyApplied, "job was applied to before this run")
		return false
	}

	ok, err := r.o.surface.ActivateApply(ctx)
	if err != nil {
		r.fail(err, "activate apply control")
		return false
	}
	if !ok {
		r.violate(model.ViolationSurfaceNotDetected, "apply control not present on job page")
		return false
	}

	if !r.to(model.StateModalWait) {
		return false
	}
	ok, err = r.o.surface.WaitModal(ctx)
	if err != nil {
		r.fail(err, "wait for modal")
		return false
	}
	if !ok {
		r.violate(model.ViolationSurfaceNotDetected, "application modal did not render")
		return false
	}
	return true
}

// formLoop walks the multi-step form. Each iteration perceives one form
// page, runs the fixed pass order, then activates exactly one progression
// control. The iteration bound guarantees termination.
func (r *run) formLoop(ctx context.Context) {
	for iter := 0; iter < r.o.opts.MaxFormSteps; iter++ {
		if ctx.Err() != nil {
			r.cancel()
			return
		}

		view, err := r.o.surface.Snapshot(ctx)
		if err != nil {
			r.fail(err, "perceive form page")
			return
		}
		if view.Submitted {
			r.succeed()
			return
		}
		if len(view.Fields) == 0 && !view.HasNext && !view.HasReview && !view.HasSubmit {
			r.violate(model.ViolationEmptyForm, "modal rendered with no recognizable form elements")
			return
		}

		if !r.resumePass(ctx, view) ||
			!r.radioPass(ctx, view) ||
			!r.checkboxPass(ctx, view) ||
			!r.selectPass(ctx, view) ||
			!r.textPass(ctx, view) {
			return
		}
		if !r.progress(ctx, view) {
			return
		}
	}
	r.violate(model.ViolationUnexpectedState, "form iteration bound exceeded without reaching submission")
}

func (r *run) resumePass(ctx context.Context, view session.StepView) bool {
	if r.o.opts.ResumePath == "" {
		return true
	}
	for _, f := range view.Fields {
		if f.Kind != model.FieldFile {
			continue
		}
		if err := r.o.surface.UploadResume(ctx, r.o.opts.ResumePath); err != nil {
			r.fail(err, "upload resume")
			return false
		}
		zap.L().Debug("apply: resume attached", zap.String("path", r.o.opts.ResumePath))
		break
	}
	return true
}

func (r *run) radioPass(ctx context.Context, view session.StepView) bool {
	for _, f := range view.Fields {
		if f.Kind != model.FieldRadio {
			continue
		}
		if !r.to(model.StateRadio) {
			return false
		}
		res := resolve.Radio(f.LabelText, f.OptionCount(), r.o.tables)
		r.logResolution(f, res)
		if !res.Resolved() {
			r.noteUnresolved(f, model.ClassUnknown, resolve.RadioTier(res.MatchedKey), res)
			r.violate(violationFor(res), "radio group unresolved: "+f.LabelText)
			return false
		}
		if err := r.o.surface.SelectRadio(ctx, f, res.Value.(bool)); err != nil {
			r.violate(model.ViolationInputRejected, "radio selection rejected: "+err.Error())
			return false
		}
		r.resolved++
	}
	return true
}

func (r *run) checkboxPass(ctx context.Context, view session.StepView) bool {
	for _, f := range view.Fields {
		if f.Kind != model.FieldCheckbox || !resolve.IsConsentLabel(f.LabelText) {
			continue
		}
		if err := r.o.surface.TickCheckbox(ctx, f); err != nil {
			r.violate(model.ViolationInputRejected, "consent checkbox rejected: "+err.Error())
			return false
		}
		r.resolved++
	}
	return true
}

func (r *run) selectPass(ctx context.Context, view session.StepView) bool {
	for _, f := range view.Fields {
		if f.Kind != model.FieldSelect {
			continue
		}
		if !r.to(model.StateSelect) {
			return false
		}
		res := resolve.Select(f.LabelText, f.Options, r.o.tables)
		r.logResolution(f, res)
		if !res.Resolved() {
			r.noteUnresolved(f, model.ClassUnknown, model.Tier1, res)
			r.violate(violationFor(res), "dropdown unresolved: "+f.LabelText)
			return false
		}
		if err := r.o.surface.SelectOption(ctx, f, res.Value.(int)); err != nil {
			r.violate(model.ViolationInputRejected, "option selection rejected: "+err.Error())
			return false
		}
		r.resolved++
	}
	return true
}

func (r *run) textPass(ctx context.Context, view session.StepView) bool {
	for _, f := range view.Fields {
		if f.Kind != model.FieldText {
			continue
		}
		if strings.TrimSpace(f.CurrentValue) != "" {
			continue
		}
		if !r.to(model.StateTextField) {
			return false
		}
		class := resolve.Classify(f.LabelText, f.InputType)
		res := resolve.Text(f.LabelText, class, r.o.tables)
		r.logResolution(f, res)
		if !res.Resolved() {
			r.noteUnresolved(f, class, model.Tier1, res)
			r.violate(violationFor(res), "text field unresolved: "+f.LabelText)
			return false
		}
		msg, err := r.o.surface.FillText(ctx, f, res.Value.(string))
		if err != nil {
			r.fail(err, "fill text field")
			return false
		}
		if msg != "" {
			r.violate(model.ViolationInputRejected, "input rejected for "+f.LabelText+": "+msg)
			return false
		}
		r.resolved++
	}
	return true
}

// progress activates exactly one progression control for the current page.
// It reports false when the run is over (terminal result set or violation).
func (r *run) progress(ctx context.Context, view session.StepView) bool {
	switch {
	case view.HasSubmit:
		if !r.to(model.StateReview) {
			return false
		}
		return r.submit(ctx)

	case view.HasReview:
		if !r.to(model.StateForm) {
			return false
		}
		ok, err := r.o.surface.ClickReview(ctx)
		if err != nil {
			r.fail(err, "activate review control")
			return false
		}
		if !ok {
			r.violate(model.ViolationProgressionDisabled, "review control cannot be activated")
			return false
		}
		return true

	case view.HasNext:
		if !r.to(model.StateForm) {
			return false
		}
		if !view.NextEnabled {
			r.violate(model.ViolationProgressionDisabled, "next control is disabled")
			return false
		}
		ok, err := r.o.surface.ClickNext(ctx)
		if err != nil {
			r.fail(err, "activate next control")
			return false
		}
		if !ok {
			r.violate(model.ViolationProgressionDisabled, "next control cannot be activated")
			return false
		}
		return true

	default:
		r.violate(model.ViolationUnexpectedState, "form page exposes no progression control")
		return false
	}
}

func (r *run) submit(ctx context.Context) bool {
	if ctx.Err() != nil {
		r.cancel()
		return false
	}
	if r.o.opts.TestMode {
		r.rec.Result = model.OutcomeTestSuccess
		r.rec.StateAtExit = r.state
		zap.L().Info("apply: test mode, stopping before submission", zap.String("job_id", r.job.ID))
		return false
	}
	if r.o.opts.Interactive && r.o.prompter != nil {
		confirmed, err := r.o.prompter.ConfirmSubmit(r.job)
		if err != nil {
			r.fail(err, "confirm submission")
			return false
		}
		if !confirmed {
			r.cancel()
			return false
		}
	}

	ok, err := r.o.surface.Submit(ctx)
	if err != nil {
		r.fail(err, "submit application")
		return false
	}
	if !ok {
		r.violate(model.ViolationUnexpectedState, "submission was not confirmed by the surface")
		return false
	}
	r.succeed()
	return false
}

// to performs a checked state transition. An illegal move is a structural
// bug, not a skippable condition, so it maps to FAILED.
func (r *run) to(next model.State) bool {
	if r.state == next {
		return true
	}
	if !model.CanTransition(r.state, next) {
		r.rec.Result = model.OutcomeFailed
		r.rec.StateAtExit = r.state
		zap.L().Error("apply: illegal state transition",
			zap.String("from", string(r.state)), zap.String("to", string(next)))
		return false
	}
	r.state = next
	return true
}

func (r *run) succeed() {
	if r.to(model.StateSubmitted) {
		r.rec.Result = model.OutcomeSuccess
		r.rec.StateAtExit = model.StateSubmitted
	}
}

// violate raises exactly one violation, routes it through the gate, and ends
// the run as skipped.
func (r *run) violate(vtype model.ViolationType, msg string) {
	ev := model.ViolationEvent{Type: vtype, Message: msg, Elapsed: time.Since(r.start)}
	_, reason := r.o.gate.Handle(ev)
	r.rec.SkipReason = reason
	r.rec.StateAtExit = r.state
	if vtype == model.ViolationAlreadyApplied {
		r.rec.Result = model.OutcomeSkippedAlreadyDone
	} else {
		r.rec.Result = model.OutcomeSkipped
	}
}

func (r *run) fail(err error, during string) {
	r.rec.Result = model.OutcomeFailed
	r.rec.StateAtExit = r.state
	zap.L().Error("apply: structural failure",
		zap.String("job_id", r.job.ID),
		zap.String("during", during),
		zap.String("state", string(r.state)),
		zap.Error(err))
}

func (r *run) cancel() {
	r.rec.Result = model.OutcomeCancelled
	r.rec.StateAtExit = r.state
	zap.L().Info("apply: cancelled", zap.String("job_id", r.job.ID), zap.String("state", string(r.state)))
}

// noteUnresolved counts the miss and buffers one debug record for it.
func (r *run) noteUnresolved(f model.FieldDescriptor, class model.Classification, tier model.Tier, res model.ResolutionResult) {
	r.unresolved++
	if res.Confidence != model.ConfidenceNone {
		r.floorHit = true
	}
	base := strings.TrimSuffix(res.MatchedKey, model.NotInAssertionsSuffix)
	r.debug.Add(model.DebugRecord{
		Timestamp:      time.Now().UTC(),
		JobID:          r.job.ID,
		JobURL:         r.job.URL,
		FieldType:      f.Kind,
		QuestionText:   f.LabelText,
		Options:        f.Options,
		Classification: class,
		Tier:           tier,
		Eligible:       r.o.tables.Eligible(base, tier),
		Confidence:     res.Confidence,
		MatchedKey:     res.MatchedKey,
	})
}

func (r *run) logResolution(f model.FieldDescriptor, res model.ResolutionResult) {
	zap.L().Debug("resolve: field",
		zap.String("kind", string(f.Kind)),
		zap.String("question", f.LabelText),
		zap.String("matched_key", res.MatchedKey),
		zap.String("confidence", string(res.Confidence)))
}

// violationFor maps a failed resolution to its violation kind. A matched
// pattern below the confidence floor is distinguishable from no match at
// all; the floor flag on the record tracks the former.
func violationFor(res model.ResolutionResult) model.ViolationType {
	if res.Confidence == model.ConfidenceNone {
		return model.ViolationUnresolvedField
	}
	return model.ViolationLowConfidence
}
