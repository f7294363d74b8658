package session

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/partypancake8/linkedin-is-lame/internal/model"
)

// RodConfig holds the Chromium launch and timing knobs.
type RodConfig struct {
	Headless     bool
	UserDataDir  string
	Bin          string
	NavTimeout   time.Duration
	ModalTimeout time.Duration
}

const (
	dialogSelector       = `div[role="dialog"]`
	applyButtonSelector  = `button.jobs-apply-button`
	appliedFeedbackSel   = `.artdeco-inline-feedback__message`
	inlineErrorSelector  = `.artdeco-inline-feedback--error .artdeco-inline-feedback__message`
	nextButtonSelector   = `button[aria-label="Continue to next step"]`
	reviewButtonSelector = `button[aria-label="Review your application"]`
	submitButtonSelector = `button[aria-label="Submit application"]`
)

var (
	appliedRE = regexp.MustCompile(`(?i)applied`)
	sentRE    = regexp.MustCompile(`(?i)application (was )?sent`)
)

// textInputSelector matches every free-text control the modal renders.
const textInputSelector = `input[type="text"], input[type="number"], input[type="email"], input[type="tel"], input[type="url"], textarea`

// Rod drives a real Chromium via go-rod. One Rod handles one page at a time;
// the batch loop reuses it across jobs.
type Rod struct {
	cfg      RodConfig
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page

	// element handles from the most recent Snapshot, keyed by label text
	inputs    map[string]*rod.Element
	fieldsets map[string]*rod.Element
}

// NewRod returns an unconnected surface. The browser launches lazily on the
// first Open so that offline commands never pay the startup cost.
func NewRod(cfg RodConfig) *Rod {
	if cfg.NavTimeout <= 0 {
		cfg.NavTimeout = 30 * time.Second
	}
	if cfg.ModalTimeout <= 0 {
		cfg.ModalTimeout = 10 * time.Second
	}
	return &Rod{
		cfg:       cfg,
		inputs:    make(map[string]*rod.Element),
		fieldsets: make(map[string]*rod.Element),
	}
}

func (s *Rod) start(ctx context.Context) error {
	if s.browser != nil {
		return nil
	}

	l := launcher.New().Headless(s.cfg.Headless)
	if s.cfg.Bin != "" {
		l = l.Bin(s.cfg.Bin)
	}
	if s.cfg.UserDataDir != "" {
		l = l.UserDataDir(s.cfg.UserDataDir)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return eris.Wrap(err, "launch chromium")
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return eris.Wrap(err, "connect to chromium")
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		return eris.Wrap(err, "open page")
	}

	s.launcher = l
	s.browser = browser
	s.page = page
	zap.L().Debug("session: browser started",
		zap.Bool("headless", s.cfg.Headless),
		zap.String("user_data_dir", s.cfg.UserDataDir))
	return nil
}

// Open navigates to the job page and waits for it to load. Flaky loads are
// retried with backoff before the failure is reported.
func (s *Rod) Open(ctx context.Context, url string) error {
	if err := s.start(ctx); err != nil {
		return err
	}
	return retryNav(ctx, defaultNavRetry(), "open job page", func(ctx context.Context) error {
		page := s.page.Context(ctx).Timeout(s.cfg.NavTimeout)
		if err := page.Navigate(url); err != nil {
			return eris.Wrapf(err, "navigate to %s", url)
		}
		if err := page.WaitLoad(); err != nil {
			return eris.Wrap(err, "wait for page load")
		}
		return nil
	})
}

// AlreadyApplied checks the job page for the applied feedback banner.
func (s *Rod) AlreadyApplied(ctx context.Context) (bool, error) {
	page := s.page.Context(ctx)
	has, el, err := page.Has(appliedFeedbackSel)
	if err != nil {
		return false, eris.Wrap(err, "probe applied banner")
	}
	if !has {
		return false, nil
	}
	text, err := el.Text()
	if err != nil {
		return false, eris.Wrap(err, "read applied banner")
	}
	return appliedRE.MatchString(text), nil
}

// ActivateApply clicks the apply button on the job page.
func (s *Rod) ActivateApply(ctx context.Context) (bool, error) {
	page := s.page.Context(ctx)
	has, el, err := page.Has(applyButtonSelector)
	if err != nil {
		return false, eris.Wrap(err, "probe apply button")
	}
	if !has {
		return false, nil
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return false, eris.Wrap(err, "click apply button")
	}
	return true, nil
}

// WaitModal blocks until the application modal renders.
func (s *Rod) WaitModal(ctx context.Context) (bool, error) {
	page := s.page.Context(ctx).Timeout(s.cfg.ModalTimeout)
	if _, err := page.Element(dialogSelector); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return false, nil
		}
		return false, eris.Wrap(err, "wait for modal")
	}
	return true, nil
}

func (s *Rod) dialog(ctx context.Context) (*rod.Element, error) {
	page := s.page.Context(ctx)
	has, el, err := page.Has(dialogSelector)
	if err != nil {
		return nil, eris.Wrap(err, "locate modal")
	}
	if !has {
		return nil, eris.New("modal is gone")
	}
	return el, nil
}

// Snapshot perceives the current modal page: radio groups, dropdowns, text
// inputs, checkboxes, file inputs, and the progression controls.
func (s *Rod) Snapshot(ctx context.Context) (StepView, error) {
	var view StepView

	page := s.page.Context(ctx)
	if has, _, err := page.HasR("h2", sentRE.String()); err == nil && has {
		view.Submitted = true
		return view, nil
	}

	dialog, err := s.dialog(ctx)
	if err != nil {
		return view, err
	}
	s.inputs = make(map[string]*rod.Element)
	s.fieldsets = make(map[string]*rod.Element)

	if err := s.perceiveRadios(dialog, &view); err != nil {
		return view, err
	}
	if err := s.perceiveSelects(dialog, &view); err != nil {
		return view, err
	}
	if err := s.perceiveTextInputs(dialog, &view); err != nil {
		return view, err
	}
	if err := s.perceiveCheckboxes(dialog, &view); err != nil {
		return view, err
	}
	if err := s.perceiveFileInputs(dialog, &view); err != nil {
		return view, err
	}
	if err := s.perceiveControls(dialog, &view); err != nil {
		return view, err
	}
	return view, nil
}

func (s *Rod) perceiveRadios(dialog *rod.Element, view *StepView) error {
	fieldsets, err := dialog.Elements("fieldset")
	if err != nil {
		return eris.Wrap(err, "query fieldsets")
	}
	for _, fs := range fieldsets {
		radios, err := fs.Elements(`input[type="radio"]`)
		if err != nil || len(radios) == 0 {
			continue
		}
		legend, err := fs.Element("legend")
		if err != nil {
			continue
		}
		label, err := legend.Text()
		if err != nil {
			continue
		}
		label = strings.TrimSpace(label)

		labels, err := fs.Elements("label")
		if err != nil {
			return eris.Wrap(err, "query radio labels")
		}
		options := make([]string, 0, len(labels))
		for _, l := range labels {
			text, err := l.Text()
			if err != nil {
				continue
			}
			options = append(options, strings.TrimSpace(text))
		}

		s.fieldsets[label] = fs
		view.Fields = append(view.Fields, model.FieldDescriptor{
			Kind:      model.FieldRadio,
			LabelText: label,
			Options:   options,
		})
	}
	return nil
}

func (s *Rod) perceiveSelects(dialog *rod.Element, view *StepView) error {
	selects, err := dialog.Elements("select")
	if err != nil {
		return eris.Wrap(err, "query selects")
	}
	for _, sel := range selects {
		label, err := s.labelFor(dialog, sel)
		if err != nil || label == "" {
			continue
		}
		optionEls, err := sel.Elements("option")
		if err != nil {
			return eris.Wrap(err, "query options")
		}
		options := make([]string, 0, len(optionEls))
		for _, o := range optionEls {
			text, err := o.Text()
			if err != nil {
				continue
			}
			text = strings.TrimSpace(text)
			if text == "" || strings.HasPrefix(strings.ToLower(text), "select an option") {
				continue
			}
			options = append(options, text)
		}

		current := ""
		if v, err := sel.Property("value"); err == nil {
			current = v.Str()
		}
		s.inputs[label] = sel
		view.Fields = append(view.Fields, model.FieldDescriptor{
			Kind:         model.FieldSelect,
			LabelText:    label,
			Options:      options,
			CurrentValue: current,
		})
	}
	return nil
}

func (s *Rod) perceiveTextInputs(dialog *rod.Element, view *StepView) error {
	els, err := dialog.Elements(textInputSelector)
	if err != nil {
		return eris.Wrap(err, "query text inputs")
	}
	for _, el := range els {
		label, err := s.labelFor(dialog, el)
		if err != nil || label == "" {
			continue
		}
		inputType := "text"
		if t, err := el.Attribute("type"); err == nil && t != nil {
			inputType = *t
		} else if tag, err := el.Property("tagName"); err == nil && strings.EqualFold(tag.Str(), "textarea") {
			inputType = "textarea"
		}
		current := ""
		if v, err := el.Property("value"); err == nil {
			current = v.Str()
		}
		s.inputs[label] = el
		view.Fields = append(view.Fields, model.FieldDescriptor{
			Kind:         model.FieldText,
			LabelText:    label,
			InputType:    inputType,
			CurrentValue: current,
		})
	}
	return nil
}

func (s *Rod) perceiveCheckboxes(dialog *rod.Element, view *StepView) error {
	els, err := dialog.Elements(`input[type="checkbox"]`)
	if err != nil {
		return eris.Wrap(err, "query checkboxes")
	}
	for _, el := range els {
		label, err := s.labelFor(dialog, el)
		if err != nil || label == "" {
			continue
		}
		checked := "false"
		if v, err := el.Property("checked"); err == nil && v.Bool() {
			checked = "true"
		}
		s.inputs[label] = el
		view.Fields = append(view.Fields, model.FieldDescriptor{
			Kind:         model.FieldCheckbox,
			LabelText:    label,
			CurrentValue: checked,
		})
	}
	return nil
}

func (s *Rod) perceiveFileInputs(dialog *rod.Element, view *StepView) error {
	els, err := dialog.Elements(`input[type="file"]`)
	if err != nil {
		return eris.Wrap(err, "query file inputs")
	}
	for _, el := range els {
		label, _ := s.labelFor(dialog, el)
		if label == "" {
			label = "Resume"
		}
		s.inputs[label] = el
		view.Fields = append(view.Fields, model.FieldDescriptor{
			Kind:      model.FieldFile,
			LabelText: label,
		})
	}
	return nil
}

func (s *Rod) perceiveControls(dialog *rod.Element, view *StepView) error {
	probe := func(selector string) (present, enabled bool, err error) {
		has, el, err := dialog.Has(selector)
		if err != nil || !has {
			return false, false, err
		}
		disabled := false
		if v, err := el.Property("disabled"); err == nil {
			disabled = v.Bool()
		}
		return true, !disabled, nil
	}

	var err error
	if view.HasNext, view.NextEnabled, err = probe(nextButtonSelector); err != nil {
		return eris.Wrap(err, "probe next button")
	}
	if view.HasReview, _, err = probe(reviewButtonSelector); err != nil {
		return eris.Wrap(err, "probe review button")
	}
	if view.HasSubmit, _, err = probe(submitButtonSelector); err != nil {
		return eris.Wrap(err, "probe submit button")
	}
	return nil
}

// labelFor resolves the visible label for an input, preferring a label[for]
// that points at the element's id, falling back to aria-label.
func (s *Rod) labelFor(dialog *rod.Element, el *rod.Element) (string, error) {
	if id, err := el.Attribute("id"); err == nil && id != nil && *id != "" {
		has, labelEl, err := dialog.Has(`label[for="` + *id + `"]`)
		if err == nil && has {
			text, err := labelEl.Text()
			if err == nil {
				return strings.TrimSpace(text), nil
			}
		}
	}
	if aria, err := el.Attribute("aria-label"); err == nil && aria != nil {
		return strings.TrimSpace(*aria), nil
	}
	return "", nil
}

// UploadResume attaches the resume to the first file input on the page.
func (s *Rod) UploadResume(ctx context.Context, path string) error {
	dialog, err := s.dialog(ctx)
	if err != nil {
		return err
	}
	el, err := dialog.Element(`input[type="file"]`)
	if err != nil {
		return eris.Wrap(err, "locate file input")
	}
	if err := el.SetFiles([]string{path}); err != nil {
		return eris.Wrapf(err, "attach %s", path)
	}
	return nil
}

// SelectRadio clicks the first (yes) or second (no) option of the binary
// group and verifies the input reports checked afterwards.
func (s *Rod) SelectRadio(ctx context.Context, field model.FieldDescriptor, yes bool) error {
	fs, ok := s.fieldsets[field.LabelText]
	if !ok {
		return eris.Errorf("radio group %q not in last snapshot", field.LabelText)
	}
	radios, err := fs.Elements(`input[type="radio"]`)
	if err != nil {
		return eris.Wrap(err, "query radio inputs")
	}
	if len(radios) != 2 {
		return eris.Errorf("radio group %q has %d inputs", field.LabelText, len(radios))
	}
	idx := 0
	if !yes {
		idx = 1
	}
	labels, err := fs.Elements("label")
	if err == nil && len(labels) == 2 {
		// the input is often visually hidden; the label takes the click
		if err := labels[idx].Click(proto.InputMouseButtonLeft, 1); err != nil {
			return eris.Wrap(err, "click radio label")
		}
	} else if err := radios[idx].Click(proto.InputMouseButtonLeft, 1); err != nil {
		return eris.Wrap(err, "click radio input")
	}

	checked, err := radios[idx].Property("checked")
	if err != nil {
		return eris.Wrap(err, "verify radio selection")
	}
	if !checked.Bool() {
		return eris.Errorf("radio selection for %q did not take effect", field.LabelText)
	}
	return nil
}

// TickCheckbox checks a consent checkbox if it is not already checked.
func (s *Rod) TickCheckbox(ctx context.Context, field model.FieldDescriptor) error {
	el, ok := s.inputs[field.LabelText]
	if !ok {
		return eris.Errorf("checkbox %q not in last snapshot", field.LabelText)
	}
	if v, err := el.Property("checked"); err == nil && v.Bool() {
		return nil
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return eris.Wrap(err, "click checkbox")
	}
	checked, err := el.Property("checked")
	if err != nil {
		return eris.Wrap(err, "verify checkbox")
	}
	if !checked.Bool() {
		return eris.Errorf("checkbox %q did not check", field.LabelText)
	}
	return nil
}

// SelectOption picks a dropdown option by its index into the field's visible
// options and verifies the selection.
func (s *Rod) SelectOption(ctx context.Context, field model.FieldDescriptor, index int) error {
	el, ok := s.inputs[field.LabelText]
	if !ok {
		return eris.Errorf("select %q not in last snapshot", field.LabelText)
	}
	if index < 0 || index >= len(field.Options) {
		return eris.Errorf("option index %d out of range for %q", index, field.LabelText)
	}
	want := field.Options[index]
	if err := el.Select([]string{want}, true, rod.SelectorTypeText); err != nil {
		return eris.Wrapf(err, "select option %q", want)
	}
	return nil
}

// FillText replaces the input's content with value, then re-perceives the
// modal for an inline validation message tied to the field.
func (s *Rod) FillText(ctx context.Context, field model.FieldDescriptor, value string) (string, error) {
	el, ok := s.inputs[field.LabelText]
	if !ok {
		return "", eris.Errorf("input %q not in last snapshot", field.LabelText)
	}
	if err := el.SelectAllText(); err != nil {
		return "", eris.Wrap(err, "select existing text")
	}
	if err := el.Input(value); err != nil {
		return "", eris.Wrap(err, "type value")
	}

	dialog, err := s.dialog(ctx)
	if err != nil {
		return "", err
	}
	has, msgEl, err := dialog.Has(inlineErrorSelector)
	if err != nil {
		return "", eris.Wrap(err, "probe validation message")
	}
	if !has {
		return "", nil
	}
	msg, err := msgEl.Text()
	if err != nil {
		return "", eris.Wrap(err, "read validation message")
	}
	return strings.TrimSpace(msg), nil
}

func (s *Rod) clickControl(ctx context.Context, selector, name string) (bool, error) {
	dialog, err := s.dialog(ctx)
	if err != nil {
		return false, err
	}
	has, el, err := dialog.Has(selector)
	if err != nil {
		return false, eris.Wrapf(err, "probe %s button", name)
	}
	if !has {
		return false, nil
	}
	if v, err := el.Property("disabled"); err == nil && v.Bool() {
		return false, nil
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return false, eris.Wrapf(err, "click %s button", name)
	}
	return true, nil
}

// ClickNext activates the Next control.
func (s *Rod) ClickNext(ctx context.Context) (bool, error) {
	return s.clickControl(ctx, nextButtonSelector, "next")
}

// ClickReview activates the Review control.
func (s *Rod) ClickReview(ctx context.Context) (bool, error) {
	return s.clickControl(ctx, reviewButtonSelector, "review")
}

// Submit activates the final submit control and waits for the sent
// confirmation.
func (s *Rod) Submit(ctx context.Context) (bool, error) {
	ok, err := s.clickControl(ctx, submitButtonSelector, "submit")
	if err != nil || !ok {
		return false, err
	}
	page := s.page.Context(ctx).Timeout(s.cfg.ModalTimeout)
	if _, err := page.ElementR("h2", sentRE.String()); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return false, nil
		}
		return false, eris.Wrap(err, "wait for sent confirmation")
	}
	return true, nil
}

// Close tears down the browser.
func (s *Rod) Close() error {
	if s.browser == nil {
		return nil
	}
	err := s.browser.Close()
	s.browser = nil
	s.page = nil
	if s.launcher != nil {
		s.launcher.Cleanup()
		s.launcher = nil
	}
	return err
}
