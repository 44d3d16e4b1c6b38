package scope

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scope is the reuse boundary of a driver handle. Scopes are totally ordered
// from narrowest to widest: Method < Class < Suite < Execution.
type Scope int

const (
	// Unspecified means no scope was declared; callers fall back to a default.
	Unspecified Scope = iota
	Method
	Class
	Suite
	Execution
)

var names = map[Scope]string{
	Unspecified: "",
	Method:      "METHOD",
	Class:       "CLASS",
	Suite:       "SUITE",
	Execution:   "EXECUTION",
}

// All lists the declarable scopes from narrowest to widest.
var All = []Scope{Method, Class, Suite, Execution}

func (s Scope) String() string {
	if name, ok := names[s]; ok {
		if name == "" {
			return "UNSPECIFIED"
		}
		return name
	}
	return fmt.Sprintf("Scope(%d)", int(s))
}

// Valid reports whether s is one of the four declarable scopes.
func (s Scope) Valid() bool {
	return s >= Method && s <= Execution
}

// ThreadBound reports whether handles of this scope live in the worker-bound store.
func (s Scope) ThreadBound() bool {
	return s == Method || s == Class
}

// Narrower reports whether s ends before other does.
func (s Scope) Narrower(other Scope) bool {
	return s < other
}

// Or returns s, or fallback when s is Unspecified.
func (s Scope) Or(fallback Scope) Scope {
	if s == Unspecified {
		return fallback
	}
	return s
}

// Parse converts a scope name (case insensitive) into a Scope. An empty string
// parses to Unspecified.
func Parse(name string) (Scope, error) {
	normalized := strings.ToUpper(strings.TrimSpace(name))
	if normalized == "" {
		return Unspecified, nil
	}
	for s, n := range names {
		if n != "" && n == normalized {
			return s, nil
		}
	}
	return Unspecified, fmt.Errorf("unknown scope %q (expected one of METHOD, CLASS, SUITE, EXECUTION)", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Scope) MarshalText() ([]byte, error) {
	if s == Unspecified {
		return []byte{}, nil
	}
	if !s.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid scope %d", int(s))
	}
	return []byte(names[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Scope) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Scope) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("line %d: scope must be a string: %w", value.Line, err)
	}
	parsed, err := Parse(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*s = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (s Scope) MarshalYAML() (interface{}, error) {
	text, err := s.MarshalText()
	if err != nil {
		return nil, err
	}
	return string(text), nil
}
