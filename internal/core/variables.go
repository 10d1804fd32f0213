package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/FabianRolfMatthiasNoll/hjortron/internal/libretro"
)

var (
	ErrNoChoices     = errors.New("core: variable has no choices")
	ErrUnknownOption = errors.New("core: unknown core option")
	ErrInvalidChoice = errors.New("core: value is not a valid choice")
)

// Variable is one core option registered through SET_VARIABLES.
type Variable struct {
	Key         string
	Description string
	Choices     []string

	current  int
	cchoices [][]byte // NUL terminated choices; pointers stay valid while registered
}

// Value returns the selected choice.
func (v *Variable) Value() string { return v.Choices[v.current] }

// Default returns the first choice.
func (v *Variable) Default() string { return v.Choices[0] }

func (v *Variable) cvalue() *byte { return &v.cchoices[v.current][0] }

// ParseDefinition splits "Description; first|second|..." into the
// description and the choices. The first choice is the default.
func ParseDefinition(def string) (desc string, choices []string, err error) {
	rest := def
	if i := strings.Index(def, "; "); i >= 0 {
		desc, rest = def[:i], def[i+2:]
	}
	if !strings.Contains(rest, "|") {
		return "", nil, fmt.Errorf("%w: %q", ErrNoChoices, def)
	}
	for _, c := range strings.Split(rest, "|") {
		if c != "" {
			choices = append(choices, c)
		}
	}
	if len(choices) == 0 {
		return "", nil, fmt.Errorf("%w: %q", ErrNoChoices, def)
	}
	return desc, choices, nil
}

// Variables holds a session's core options. Overrides from the
// configuration replace defaults when they name a valid choice.
type Variables struct {
	order     []string
	byKey     map[string]*Variable
	overrides map[string]string
	updated   bool
}

func NewVariables(overrides map[string]string) *Variables {
	return &Variables{byKey: map[string]*Variable{}, overrides: overrides}
}

// Register adds or replaces the option key.
func (vs *Variables) Register(key, def string) error {
	desc, choices, err := ParseDefinition(def)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	v := &Variable{Key: key, Description: desc, Choices: choices}
	for _, c := range choices {
		v.cchoices = append(v.cchoices, libretro.CString(c))
	}
	if o, ok := vs.overrides[strings.ToLower(key)]; ok {
		if i := v.index(o); i >= 0 {
			v.current = i
		}
	}
	if _, exists := vs.byKey[key]; !exists {
		vs.order = append(vs.order, key)
	}
	vs.byKey[key] = v
	vs.updated = true
	return nil
}

func (v *Variable) index(choice string) int {
	for i, c := range v.Choices {
		if c == choice {
			return i
		}
	}
	return -1
}

// Get returns the option key.
func (vs *Variables) Get(key string) (*Variable, bool) {
	v, ok := vs.byKey[key]
	return v, ok
}

// Set selects value for key and flags the update for the core.
func (vs *Variables) Set(key, value string) error {
	v, ok := vs.byKey[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownOption, key)
	}
	i := v.index(value)
	if i < 0 {
		return fmt.Errorf("%w: %s=%q", ErrInvalidChoice, key, value)
	}
	if i != v.current {
		v.current = i
		vs.updated = true
	}
	return nil
}

// TakeUpdated reports whether any option changed since the last call.
func (vs *Variables) TakeUpdated() bool {
	u := vs.updated
	vs.updated = false
	return u
}

// List returns the options in registration order.
func (vs *Variables) List() []*Variable {
	out := make([]*Variable, 0, len(vs.order))
	for _, k := range vs.order {
		out = append(out, vs.byKey[k])
	}
	return out
}

func (vs *Variables) Len() int { return len(vs.order) }
