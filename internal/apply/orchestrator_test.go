package apply

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partypancake8/linkedin-is-lame/internal/answers"
	"github.com/partypancake8/linkedin-is-lame/internal/model"
	"github.com/partypancake8/linkedin-is-lame/internal/session"
)

const testJobURL = "https://example.com/jobs/view/123"

func testTables() answers.Tables {
	return answers.New(map[string]any{
		"authorized_to_work":   true,
		"requires_sponsorship": false,
		"applicant_email":      "ada@example.com",
		"years_experience":     3,
		"language_proficiency": "Native or bilingual",
	}, map[string]bool{
		"assume_commute_ok": true,
	})
}

// twoStepScript is the happy path: one question page, then the review page.
func twoStepScript() session.Script {
	return session.Script{
		SubmitConfirms: true,
		Steps: []session.StepView{
			{
				Fields: []model.FieldDescriptor{
					{Kind: model.FieldRadio, LabelText: "Are you authorized to work in the US?", Options: []string{"Yes", "No"}},
					{Kind: model.FieldText, LabelText: "Email address", InputType: "email"},
				},
				HasNext:     true,
				NextEnabled: true,
			},
			{HasSubmit: true},
		},
	}
}

func newTestOrchestrator(script session.Script, opts Options, prompter Prompter, sink DebugSink) (*Orchestrator, *session.Fixture) {
	fixture := session.NewFixture(script)
	gate := NewGate(opts.Interactive, prompter)
	return New(fixture, testTables(), gate, prompter, sink, opts), fixture
}

func TestRunSuccess(t *testing.T) {
	orch, fixture := newTestOrchestrator(twoStepScript(), Options{}, nil, nil)

	rec := orch.Run(context.Background(), model.JobFromURL(testJobURL))

	assert.Equal(t, model.OutcomeSuccess, rec.Result)
	assert.Equal(t, model.StateSubmitted, rec.StateAtExit)
	assert.Equal(t, "123", rec.JobID)
	assert.Equal(t, 2, rec.FieldsResolved)
	assert.Equal(t, 0, rec.FieldsUnresolved)
	assert.False(t, rec.ConfidenceFloorHit)
	assert.Empty(t, rec.SkipReason)

	assert.Equal(t, testJobURL, fixture.OpenedURL)
	assert.Equal(t, true, fixture.RadioChoices["Are you authorized to work in the US?"])
	assert.Equal(t, "ada@example.com", fixture.TypedValues["Email address"])
	assert.Equal(t, 1, fixture.SubmitCount)
}

func TestRunTestModeStopsBeforeSubmit(t *testing.T) {
	orch, fixture := newTestOrchestrator(twoStepScript(), Options{TestMode: true}, nil, nil)

	rec := orch.Run(context.Background(), model.JobFromURL(testJobURL))

	assert.Equal(t, model.OutcomeTestSuccess, rec.Result)
	assert.Equal(t, model.StateReview, rec.StateAtExit)
	assert.Equal(t, 0, fixture.SubmitCount)
}

func TestRunAlreadyAppliedShortCircuits(t *testing.T) {
	script := twoStepScript()
	script.AlreadyApplied = true

	prompter := &stubPrompter{}
	orch, fixture := newTestOrchestrator(script, Options{Interactive: true}, prompter, nil)

	rec := orch.Run(context.Background(), model.JobFromURL(testJobURL))

	assert.Equal(t, model.OutcomeSkippedAlreadyDone, rec.Result)
	assert.Equal(t, model.ViolationAlreadyApplied, rec.SkipReason)
	assert.Equal(t, model.StateJobPage, rec.StateAtExit)
	// Never pauses, never opens the modal.
	assert.Empty(t, prompter.acks)
	assert.Equal(t, 0, fixture.SubmitCount)
}

func TestRunApplyControlMissing(t *testing.T) {
	script := twoStepScript()
	script.ApplyMissing = true
	orch, _ := newTestOrchestrator(script, Options{}, nil, nil)

	rec := orch.Run(context.Background(), model.JobFromURL(testJobURL))

	assert.Equal(t, model.OutcomeSkipped, rec.Result)
	assert.Equal(t, model.ViolationSurfaceNotDetected, rec.SkipReason)
	assert.Equal(t, model.StateJobPage, rec.StateAtExit)
}

func TestRunModalNeverRenders(t *testing.T) {
	script := twoStepScript()
	script.ModalMissing = true
	orch, _ := newTestOrchestrator(script, Options{}, nil, nil)

	rec := orch.Run(context.Background(), model.JobFromURL(testJobURL))

	assert.Equal(t, model.OutcomeSkipped, rec.Result)
	assert.Equal(t, model.ViolationSurfaceNotDetected, rec.SkipReason)
	assert.Equal(t, model.StateModalWait, rec.StateAtExit)
}

func TestRunEmptyFormPage(t *testing.T) {
	script := session.Script{Steps: []session.StepView{{}}}
	orch, _ := newTestOrchestrator(script, Options{}, nil, nil)

	rec := orch.Run(context.Background(), model.JobFromURL(testJobURL))

	assert.Equal(t, model.OutcomeSkipped, rec.Result)
	assert.Equal(t, model.ViolationEmptyForm, rec.SkipReason)
}

func TestRunUnresolvedTextFieldSkips(t *testing.T) {
	script := session.Script{
		Steps: []session.StepView{
			{
				Fields: []model.FieldDescriptor{
					{Kind: model.FieldText, LabelText: "Describe your favorite dinosaur", InputType: "text"},
				},
				HasNext:     true,
				NextEnabled: true,
			},
		},
	}
	sink := &memSink{}
	orch, fixture := newTestOrchestrator(script, Options{DebugUnresolved: true}, nil, sink)

	rec := orch.Run(context.Background(), model.JobFromURL(testJobURL))

	assert.Equal(t, model.OutcomeSkipped, rec.Result)
	assert.Equal(t, model.ViolationUnresolvedField, rec.SkipReason)
	assert.Equal(t, model.StateTextField, rec.StateAtExit)
	assert.Equal(t, 1, rec.FieldsUnresolved)
	assert.Empty(t, fixture.TypedValues)

	// The debug buffer flushed exactly once, stamped with the terminal
	// state and reason.
	require.Len(t, sink.batches, 1)
	require.Len(t, sink.batches[0], 1)
	debug := sink.batches[0][0]
	assert.Equal(t, "Describe your favorite dinosaur", debug.QuestionText)
	assert.Equal(t, model.StateTextField, debug.StateAtExit)
	assert.Equal(t, model.ViolationUnresolvedField, debug.SkipReason)
	assert.Equal(t, model.ConfidenceNone, debug.Confidence)
	assert.Equal(t, "unmatched", debug.MatchedKey)
}

func TestRunMultiOptionRadioHitsConfidenceFloor(t *testing.T) {
	script := session.Script{
		Steps: []session.StepView{
			{
				Fields: []model.FieldDescriptor{
					{Kind: model.FieldRadio, LabelText: "Race/ethnicity", Options: []string{"A", "B", "C", "D"}},
				},
				HasNext:     true,
				NextEnabled: true,
			},
		},
	}
	orch, _ := newTestOrchestrator(script, Options{}, nil, nil)

	rec := orch.Run(context.Background(), model.JobFromURL(testJobURL))

	assert.Equal(t, model.OutcomeSkipped, rec.Result)
	assert.Equal(t, model.ViolationLowConfidence, rec.SkipReason)
	assert.Equal(t, model.StateRadio, rec.StateAtExit)
	assert.True(t, rec.ConfidenceFloorHit)
}

func TestRunTier2AbsentAssertion(t *testing.T) {
	script := session.Script{
		Steps: []session.StepView{
			{
				Fields: []model.FieldDescriptor{
					{Kind: model.FieldRadio, LabelText: "Are you comfortable working in a hybrid setting?", Options: []string{"Yes", "No"}},
				},
				HasNext:     true,
				NextEnabled: true,
			},
		},
	}
	sink := &memSink{}
	orch, _ := newTestOrchestrator(script, Options{DebugUnresolved: true}, nil, sink)

	rec := orch.Run(context.Background(), model.JobFromURL(testJobURL))

	assert.Equal(t, model.ViolationLowConfidence, rec.SkipReason)
	assert.True(t, rec.ConfidenceFloorHit)
	require.Len(t, sink.batches, 1)
	debug := sink.batches[0][0]
	assert.Equal(t, "assume_hybrid_ok_not_in_user_assertions", debug.MatchedKey)
	assert.Equal(t, model.Tier2, debug.Tier)
	assert.False(t, debug.Eligible)
}

func TestRunInputRejected(t *testing.T) {
	script := twoStepScript()
	script.ValidationErrors = map[string]string{"Email address": "Enter a valid answer"}
	orch, _ := newTestOrchestrator(script, Options{}, nil, nil)

	rec := orch.Run(context.Background(), model.JobFromURL(testJobURL))

	assert.Equal(t, model.OutcomeSkipped, rec.Result)
	assert.Equal(t, model.ViolationInputRejected, rec.SkipReason)
	assert.Equal(t, model.StateTextField, rec.StateAtExit)
}

func TestRunRadioSelectionRejected(t *testing.T) {
	script := twoStepScript()
	script.RejectRadios = []string{"Are you authorized to work in the US?"}
	orch, _ := newTestOrchestrator(script, Options{}, nil, nil)

	rec := orch.Run(context.Background(), model.JobFromURL(testJobURL))

	assert.Equal(t, model.OutcomeSkipped, rec.Result)
	assert.Equal(t, model.ViolationInputRejected, rec.SkipReason)
}

func TestRunNextDisabled(t *testing.T) {
	script := session.Script{
		Steps: []session.StepView{
			{
				Fields: []model.FieldDescriptor{
					{Kind: model.FieldText, LabelText: "Email address", InputType: "email"},
				},
				HasNext:     true,
				NextEnabled: false,
			},
		},
	}
	orch, _ := newTestOrchestrator(script, Options{}, nil, nil)

	rec := orch.Run(context.Background(), model.JobFromURL(testJobURL))

	assert.Equal(t, model.OutcomeSkipped, rec.Result)
	assert.Equal(t, model.ViolationProgressionDisabled, rec.SkipReason)
	assert.Equal(t, model.StateForm, rec.StateAtExit)
}

func TestRunIterationBound(t *testing.T) {
	// A single page that keeps accepting Next but never progresses.
	script := session.Script{
		Steps: []session.StepView{
			{
				Fields: []model.FieldDescriptor{
					{Kind: model.FieldText, LabelText: "Email address", InputType: "email", CurrentValue: "ada@example.com"},
				},
				HasNext:     true,
				NextEnabled: true,
			},
		},
	}
	orch, _ := newTestOrchestrator(script, Options{MaxFormSteps: 3}, nil, nil)

	rec := orch.Run(context.Background(), model.JobFromURL(testJobURL))

	assert.Equal(t, model.OutcomeSkipped, rec.Result)
	assert.Equal(t, model.ViolationUnexpectedState, rec.SkipReason)
}

func TestRunPrefilledTextLeftAlone(t *testing.T) {
	script := twoStepScript()
	script.Steps[0].Fields[1].CurrentValue = "already@example.com"
	orch, fixture := newTestOrchestrator(script, Options{}, nil, nil)

	rec := orch.Run(context.Background(), model.JobFromURL(testJobURL))

	assert.Equal(t, model.OutcomeSuccess, rec.Result)
	assert.NotContains(t, fixture.TypedValues, "Email address")
}

func TestRunConsentCheckboxOnly(t *testing.T) {
	script := session.Script{
		SubmitConfirms: true,
		Steps: []session.StepView{
			{
				Fields: []model.FieldDescriptor{
					{Kind: model.FieldCheckbox, LabelText: "I agree to the terms of service"},
					{Kind: model.FieldCheckbox, LabelText: "Follow this company"},
				},
				HasNext:     true,
				NextEnabled: true,
			},
			{HasSubmit: true},
		},
	}
	orch, fixture := newTestOrchestrator(script, Options{}, nil, nil)

	rec := orch.Run(context.Background(), model.JobFromURL(testJobURL))

	assert.Equal(t, model.OutcomeSuccess, rec.Result)
	assert.Equal(t, []string{"I agree to the terms of service"}, fixture.TickedBoxes)
}

func TestRunResumeUploaded(t *testing.T) {
	script := twoStepScript()
	script.Steps[0].Fields = append(script.Steps[0].Fields,
		model.FieldDescriptor{Kind: model.FieldFile, LabelText: "Resume"})
	orch, fixture := newTestOrchestrator(script, Options{ResumePath: "/tmp/resume.pdf"}, nil, nil)

	rec := orch.Run(context.Background(), model.JobFromURL(testJobURL))

	assert.Equal(t, model.OutcomeSuccess, rec.Result)
	assert.Equal(t, "/tmp/resume.pdf", fixture.UploadedPath)
}

func TestRunInteractiveConfirmsSubmit(t *testing.T) {
	prompter := &stubPrompter{confirm: true}
	orch, fixture := newTestOrchestrator(twoStepScript(), Options{Interactive: true}, prompter, nil)

	rec := orch.Run(context.Background(), model.JobFromURL(testJobURL))

	assert.Equal(t, model.OutcomeSuccess, rec.Result)
	assert.Equal(t, 1, fixture.SubmitCount)
}

func TestRunInteractiveDeclineCancels(t *testing.T) {
	prompter := &stubPrompter{confirm: false}
	orch, fixture := newTestOrchestrator(twoStepScript(), Options{Interactive: true}, prompter, nil)

	rec := orch.Run(context.Background(), model.JobFromURL(testJobURL))

	assert.Equal(t, model.OutcomeCancelled, rec.Result)
	assert.Equal(t, model.StateReview, rec.StateAtExit)
	assert.Equal(t, 0, fixture.SubmitCount)
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	orch, fixture := newTestOrchestrator(twoStepScript(), Options{}, nil, nil)
	rec := orch.Run(ctx, model.JobFromURL(testJobURL))

	assert.Equal(t, model.OutcomeCancelled, rec.Result)
	assert.Equal(t, 0, fixture.SubmitCount)
}

func TestRunStructuralFailure(t *testing.T) {
	script := twoStepScript()
	script.OpenError = "browser crashed"
	orch, _ := newTestOrchestrator(script, Options{}, nil, nil)

	rec := orch.Run(context.Background(), model.JobFromURL(testJobURL))

	assert.Equal(t, model.OutcomeFailed, rec.Result)
	assert.Equal(t, model.StateJobPage, rec.StateAtExit)
	assert.Empty(t, rec.SkipReason)
}

func TestRunSubmitNotConfirmed(t *testing.T) {
	script := twoStepScript()
	script.SubmitConfirms = false
	orch, _ := newTestOrchestrator(script, Options{}, nil, nil)

	rec := orch.Run(context.Background(), model.JobFromURL(testJobURL))

	assert.Equal(t, model.OutcomeSkipped, rec.Result)
	assert.Equal(t, model.ViolationUnexpectedState, rec.SkipReason)
	assert.Equal(t, model.StateReview, rec.StateAtExit)
}

func TestRunDebugNotFlushedWithoutFlag(t *testing.T) {
	script := session.Script{
		Steps: []session.StepView{
			{
				Fields: []model.FieldDescriptor{
					{Kind: model.FieldText, LabelText: "Describe your favorite dinosaur", InputType: "text"},
				},
				HasNext:     true,
				NextEnabled: true,
			},
		},
	}
	sink := &memSink{}
	orch, _ := newTestOrchestrator(script, Options{DebugUnresolved: false}, nil, sink)

	rec := orch.Run(context.Background(), model.JobFromURL(testJobURL))
	assert.Equal(t, model.OutcomeSkipped, rec.Result)
	assert.Empty(t, sink.batches)
}
