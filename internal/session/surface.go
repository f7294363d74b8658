// Package session is the narrow contract between the decision core and the
// stateful browser surface. The core consumes Surface; it never touches the
// DOM, timers, or keyboard directly. Two implementations exist: a go-rod
// Chromium backend for live runs and a scripted fixture backend for offline
// runs and tests.
package session

import (
	"context"

	"github.com/partypancake8/linkedin-is-lame/internal/model"
)

// StepView is one perception pass over the current form page: the detected
// fields plus the progression controls visible right now. Views are
// snapshots; the core re-perceives instead of holding on to one.
type StepView struct {
	Fields      []model.FieldDescriptor `yaml:"fields"`
	HasNext     bool                    `yaml:"has_next"`
	NextEnabled bool                    `yaml:"next_enabled"`
	HasReview   bool                    `yaml:"has_review"`
	HasSubmit   bool                    `yaml:"has_submit"`
	Submitted   bool                    `yaml:"submitted"`
}

// Surface is everything the orchestrator may ask of the application surface.
// All blocking calls take a context and are bounded by the implementation's
// timeouts; a timeout surfaces as a normal error, never a hang.
type Surface interface {
	// Open navigates to the job page.
	Open(ctx context.Context, url string) error
	// AlreadyApplied reports whether this job was applied to before.
	AlreadyApplied(ctx context.Context) (bool, error)
	// ActivateApply finds and activates the apply control. False means the
	// control is not present on the page.
	ActivateApply(ctx context.Context) (bool, error)
	// WaitModal blocks until the application modal renders or times out.
	WaitModal(ctx context.Context) (bool, error)
	// Snapshot perceives the current form page.
	Snapshot(ctx context.Context) (StepView, error)
	// UploadResume attaches the resume file to the first file input.
	UploadResume(ctx context.Context, path string) error
	// SelectRadio picks the yes (first) or no (second) option of a binary
	// group and verifies the selection took effect.
	SelectRadio(ctx context.Context, field model.FieldDescriptor, yes bool) error
	// TickCheckbox checks a consent checkbox.
	TickCheckbox(ctx context.Context, field model.FieldDescriptor) error
	// SelectOption picks a dropdown option by index and verifies it.
	SelectOption(ctx context.Context, field model.FieldDescriptor, index int) error
	// FillText types a value and re-perceives for an inline validation
	// message. A non-empty message means the surface rejected the input.
	FillText(ctx context.Context, field model.FieldDescriptor, value string) (string, error)
	// ClickNext activates the Next control. False means it was disabled.
	ClickNext(ctx context.Context) (bool, error)
	// ClickReview activates the Review control. False means it was disabled.
	ClickReview(ctx context.Context) (bool, error)
	// Submit activates the final submit control and reports whether the
	// surface confirmed the submission.
	Submit(ctx context.Context) (bool, error)
	// Close releases the surface.
	Close() error
}
