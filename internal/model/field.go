package model

// FieldKind identifies the control type of a detected form field.
type FieldKind string

// Field kinds produced by perception.
const (
	FieldText     FieldKind = "text"
	FieldRadio    FieldKind = "radio"
	FieldSelect   FieldKind = "select"
	FieldCheckbox FieldKind = "checkbox"
	FieldFile     FieldKind = "file"
)

// FieldDescriptor is a read-only snapshot of one detected form control,
// produced by perception once per pass and discarded after the pass that
// consumes it. The core never mutates a descriptor.
type FieldDescriptor struct {
	Kind         FieldKind `json:"kind" yaml:"kind"`
	LabelText    string    `json:"label_text" yaml:"label_text"`
	InputType    string    `json:"input_type,omitempty" yaml:"input_type,omitempty"`
	Options      []string  `json:"options,omitempty" yaml:"options,omitempty"`
	CurrentValue string    `json:"current_value,omitempty" yaml:"current_value,omitempty"`
}

// OptionCount returns the number of options on the control. Text fields
// always report zero.
func (f FieldDescriptor) OptionCount() int {
	return len(f.Options)
}
