// Package answers holds the permissioned configuration the resolvers draw
// from: a Tier-1 bank of always-safe static answers and a disjoint Tier-2
// table of explicit user assertions. Both tables are loaded once at startup
// and injected into resolvers at call time; nothing in this package is
// global or mutable after load.
package answers

import (
	"fmt"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Tables is the immutable pair of configuration tables consumed by the
// resolvers and the eligibility gate. The zero value behaves like two empty
// tables: every lookup misses, so every field degrades to skip.
type Tables struct {
	tier1      map[string]any
	assertions map[string]bool
}

// New builds Tables from already-parsed maps. The maps are copied, so
// callers cannot mutate the tables afterwards.
func New(tier1 map[string]any, assertions map[string]bool) Tables {
	t := Tables{
		tier1:      make(map[string]any, len(tier1)),
		assertions: make(map[string]bool, len(assertions)),
	}
	for k, v := range tier1 {
		t.tier1[k] = v
	}
	for k, v := range assertions {
		t.assertions[k] = v
	}
	return t
}

type answersFile struct {
	Tier1      map[string]any  `yaml:"tier1"`
	Assertions map[string]bool `yaml:"user_assertions"`
}

// Load reads the answers file. The Tier-2 section may be absent entirely;
// that is a supported configuration meaning "no user assertions", and every
// Tier-2 field degrades to skip.
func Load(path string) (Tables, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, eris.Wrap(err, "answers: read file")
	}

	var file answersFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return Tables{}, eris.Wrap(err, "answers: parse yaml")
	}

	for key, value := range file.Tier1 {
		switch value.(type) {
		case string, bool, int, int64, float64:
		default:
			return Tables{}, eris.Errorf("answers: tier1 key %q has unsupported type %T", key, value)
		}
	}

	return New(file.Tier1, file.Assertions), nil
}

// Tier1String returns the Tier-1 value for key rendered as a string, for
// typing into text fields and matching dropdown options.
func (t Tables) Tier1String(key string) (string, bool) {
	v, ok := t.tier1[key]
	if !ok {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return val, true
	case bool:
		if val {
			return "Yes", true
		}
		return "No", true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	default:
		return fmt.Sprint(val), true
	}
}

// Tier1Bool returns the Tier-1 value for key if it is present and boolean.
func (t Tables) Tier1Bool(key string) (bool, bool) {
	v, ok := t.tier1[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Assertion returns the Tier-2 value for key. The second return is false
// when the key is absent from the user-assertions table, which deterministically
// means the field may not be automated.
func (t Tables) Assertion(key string) (bool, bool) {
	v, ok := t.assertions[key]
	return v, ok
}

// WithoutAssertion returns a copy of the tables with one Tier-2 key removed.
// Used by tests to verify the tier-isolation invariant; production code never
// mutates tables.
func (t Tables) WithoutAssertion(key string) Tables {
	out := New(t.tier1, t.assertions)
	delete(out.assertions, key)
	return out
}

// Tier1Keys returns the Tier-1 key set, for the answers inspection command.
func (t Tables) Tier1Keys() map[string]any {
	out := make(map[string]any, len(t.tier1))
	for k, v := range t.tier1 {
		out[k] = v
	}
	return out
}

// AssertionKeys returns the Tier-2 table, for the answers inspection command.
func (t Tables) AssertionKeys() map[string]bool {
	out := make(map[string]bool, len(t.assertions))
	for k, v := range t.assertions {
		out[k] = v
	}
	return out
}
