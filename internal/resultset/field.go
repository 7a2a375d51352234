package resultset

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// Kind describes how a field's values compare.
type Kind int

const (
	// KindText values compare case-insensitively with locale-aware collation.
	KindText Kind = iota
	// KindNumeric values compare by magnitude.
	KindNumeric
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumeric:
		return "numeric"
	default:
		return "unknown"
	}
}

// Value is a single field value extracted from a record.
// A value that is not Present compares as the empty string.
type Value struct {
	Kind    Kind
	Num     float64
	Str     string
	Present bool
}

// Text returns a present textual value.
func Text(s string) Value {
	return Value{Kind: KindText, Str: s, Present: true}
}

// OptionalText returns a textual value that is missing when s is empty.
func OptionalText(s string) Value {
	return Value{Kind: KindText, Str: s, Present: s != ""}
}

// Number returns a present numeric value.
func Number(n float64) Value {
	return Value{Kind: KindNumeric, Num: n, Present: true}
}

// Missing returns an absent value of the given kind.
func Missing(kind Kind) Value {
	return Value{Kind: kind}
}

// String returns the display form of the value. Missing values render as "".
func (v Value) String() string {
	if !v.Present {
		return ""
	}
	if v.Kind == KindNumeric {
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	}
	return v.Str
}

// Field declares one named, comparable column of a record type.
type Field[R any] struct {
	Name string
	Kind Kind
	Get  func(R) Value
}

// TextField declares an always-present textual field.
func TextField[R any](name string, get func(R) string) Field[R] {
	return Field[R]{Name: name, Kind: KindText, Get: func(r R) Value { return Text(get(r)) }}
}

// OptionalTextField declares a textual field where the empty string means missing.
func OptionalTextField[R any](name string, get func(R) string) Field[R] {
	return Field[R]{Name: name, Kind: KindText, Get: func(r R) Value { return OptionalText(get(r)) }}
}

// NumericField declares an always-present numeric field.
func NumericField[R any](name string, get func(R) float64) Field[R] {
	return Field[R]{Name: name, Kind: KindNumeric, Get: func(r R) Value { return Number(get(r)) }}
}

// Schema errors.
var (
	ErrDuplicateField  = errors.New("duplicate field name")
	ErrUnknownIdentity = errors.New("identity field not declared")
	ErrIdentityKind    = errors.New("identity field must be textual")
	ErrNilAccessor     = errors.New("field accessor is nil")
)

// Schema is the fixed set of fields of a record type, one of which is the identity key.
type Schema[R any] struct {
	fields   []Field[R]
	byName   map[string]int
	identity string
}

// NewSchema validates and builds a schema. The identity field must be declared and textual.
func NewSchema[R any](identity string, fields ...Field[R]) (*Schema[R], error) {
	s := &Schema[R]{
		fields:   make([]Field[R], 0, len(fields)),
		byName:   make(map[string]int, len(fields)),
		identity: identity,
	}
	for _, f := range fields {
		if f.Get == nil {
			return nil, fmt.Errorf("%w: %q", ErrNilAccessor, f.Name)
		}
		if _, dup := s.byName[f.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateField, f.Name)
		}
		s.byName[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}

	idx, ok := s.byName[identity]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIdentity, identity)
	}
	if s.fields[idx].Kind != KindText {
		return nil, fmt.Errorf("%w: %q", ErrIdentityKind, identity)
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on error. Intended for package-level schemas.
func MustSchema[R any](identity string, fields ...Field[R]) *Schema[R] {
	s, err := NewSchema(identity, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Field looks up a field by name.
func (s *Schema[R]) Field(name string) (Field[R], bool) {
	idx, ok := s.byName[name]
	if !ok {
		return Field[R]{}, false
	}
	return s.fields[idx], true
}

// HasField reports whether name is a declared field.
func (s *Schema[R]) HasField(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// FieldNames returns the declared field names in declaration order.
func (s *Schema[R]) FieldNames() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// SortedFieldNames returns the declared field names in lexical order.
func (s *Schema[R]) SortedFieldNames() []string {
	names := s.FieldNames()
	sort.Strings(names)
	return names
}

// Identity returns the name of the identity field.
func (s *Schema[R]) Identity() string {
	return s.identity
}

// IdentityOf returns the identity key of a record.
func (s *Schema[R]) IdentityOf(r R) string {
	return s.fields[s.byName[s.identity]].Get(r).String()
}

// textFields returns the textual fields; filter matching only looks at these.
func (s *Schema[R]) textFields() []Field[R] {
	out := make([]Field[R], 0, len(s.fields))
	for _, f := range s.fields {
		if f.Kind == KindText {
			out = append(out, f)
		}
	}
	return out
}
