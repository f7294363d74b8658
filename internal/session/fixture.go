package session

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/partypancake8/linkedin-is-lame/internal/model"
)

// Script describes a whole job interaction for the fixture surface: the
// page-level facts plus the sequence of form pages the modal will show.
type Script struct {
	AlreadyApplied bool   `yaml:"already_applied"`
	ApplyMissing   bool   `yaml:"apply_missing"`
	ModalMissing   bool   `yaml:"modal_missing"`
	SubmitConfirms bool   `yaml:"submit_confirms"`
	OpenError      string `yaml:"open_error"`

	// Steps is consumed in order; ClickNext and ClickReview advance it.
	Steps []StepView `yaml:"steps"`

	// ValidationErrors rejects fills by label: typing into a listed label
	// reports the mapped message.
	ValidationErrors map[string]string `yaml:"validation_errors"`

	// RejectRadios lists radio group labels whose selection fails.
	RejectRadios []string `yaml:"reject_radios"`
}

// LoadScript reads a fixture script from a YAML file.
func LoadScript(path string) (Script, error) {
	var script Script
	data, err := os.ReadFile(path)
	if err != nil {
		return script, eris.Wrapf(err, "read fixture %s", path)
	}
	if err := yaml.Unmarshal(data, &script); err != nil {
		return script, eris.Wrapf(err, "parse fixture %s", path)
	}
	return script, nil
}

// Fixture replays a Script through the Surface contract and records every
// action taken against it, so tests can assert on what the core decided.
type Fixture struct {
	script Script
	step   int
	opened bool

	// recorded actions
	OpenedURL     string
	TypedValues   map[string]string
	RadioChoices  map[string]bool
	SelectedIndex map[string]int
	TickedBoxes   []string
	UploadedPath  string
	SubmitCount   int
	Closed        bool
}

// NewFixture builds a fixture surface over a script.
func NewFixture(script Script) *Fixture {
	return &Fixture{
		script:        script,
		TypedValues:   make(map[string]string),
		RadioChoices:  make(map[string]bool),
		SelectedIndex: make(map[string]int),
	}
}

func (f *Fixture) Open(ctx context.Context, url string) error {
	if f.script.OpenError != "" {
		return eris.New(f.script.OpenError)
	}
	f.opened = true
	f.OpenedURL = url
	f.step = 0
	return nil
}

func (f *Fixture) AlreadyApplied(ctx context.Context) (bool, error) {
	return f.script.AlreadyApplied, nil
}

func (f *Fixture) ActivateApply(ctx context.Context) (bool, error) {
	return !f.script.ApplyMissing, nil
}

func (f *Fixture) WaitModal(ctx context.Context) (bool, error) {
	return !f.script.ModalMissing, nil
}

func (f *Fixture) Snapshot(ctx context.Context) (StepView, error) {
	if f.step >= len(f.script.Steps) {
		if f.SubmitCount > 0 && f.script.SubmitConfirms {
			return StepView{Submitted: true}, nil
		}
		return StepView{}, eris.New("fixture has no more steps")
	}
	return f.script.Steps[f.step], nil
}

func (f *Fixture) UploadResume(ctx context.Context, path string) error {
	f.UploadedPath = path
	return nil
}

func (f *Fixture) SelectRadio(ctx context.Context, field model.FieldDescriptor, yes bool) error {
	for _, label := range f.script.RejectRadios {
		if label == field.LabelText {
			return eris.Errorf("radio selection for %q did not take effect", label)
		}
	}
	f.RadioChoices[field.LabelText] = yes
	return nil
}

func (f *Fixture) TickCheckbox(ctx context.Context, field model.FieldDescriptor) error {
	f.TickedBoxes = append(f.TickedBoxes, field.LabelText)
	return nil
}

func (f *Fixture) SelectOption(ctx context.Context, field model.FieldDescriptor, index int) error {
	if index < 0 || index >= len(field.Options) {
		return eris.Errorf("option index %d out of range for %q", index, field.LabelText)
	}
	f.SelectedIndex[field.LabelText] = index
	return nil
}

func (f *Fixture) FillText(ctx context.Context, field model.FieldDescriptor, value string) (string, error) {
	f.TypedValues[field.LabelText] = value
	if msg, ok := f.script.ValidationErrors[field.LabelText]; ok {
		return msg, nil
	}
	return "", nil
}

func (f *Fixture) advance() bool {
	if f.step+1 >= len(f.script.Steps) {
		return false
	}
	f.step++
	return true
}

func (f *Fixture) ClickNext(ctx context.Context) (bool, error) {
	view := f.script.Steps[f.step]
	if !view.HasNext || !view.NextEnabled {
		return false, nil
	}
	f.advance()
	return true, nil
}

func (f *Fixture) ClickReview(ctx context.Context) (bool, error) {
	view := f.script.Steps[f.step]
	if !view.HasReview {
		return false, nil
	}
	f.advance()
	return true, nil
}

func (f *Fixture) Submit(ctx context.Context) (bool, error) {
	view := f.script.Steps[f.step]
	if !view.HasSubmit {
		return false, nil
	}
	f.SubmitCount++
	return f.script.SubmitConfirms, nil
}

func (f *Fixture) Close() error {
	f.Closed = true
	return nil
}
