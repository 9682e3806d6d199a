// Package record maps remote records to and from XML element trees.
//
// A Schema declares the ordered field list of a record type together with
// the type tags used to coerce element text and the fields left out of
// serialization. Records are plain field maps checked against their schema;
// nothing is discovered through reflection.
package record

import (
	"regexp"
	"strings"
)

// Schema describes one record type.
type Schema struct {
	name      string
	base      *Schema
	fields    []string
	types     map[string]string
	coercions map[string]CoerceFunc
	nested    map[string]nesting
	excluded  map[string]struct{}
	registry  *Registry
}

type nesting struct {
	schema *Schema
	many   bool
}

// Declare creates a schema named name with the given fields. Field order is
// kept; a repeated name keeps its first position.
func Declare(name string, fields ...string) *Schema {
	s := newSchema(name)
	s.fields = appendUnique(nil, fields...)
	return s
}

func newSchema(name string) *Schema {
	return &Schema{
		name:      name,
		types:     map[string]string{},
		coercions: map[string]CoerceFunc{},
		nested:    map[string]nesting{},
		excluded:  map[string]struct{}{},
	}
}

// Extend returns a schema that wraps s and appends fields after the base
// fields. Later changes to s (types, exclusions) remain visible through the
// extension; s itself is never modified.
func (s *Schema) Extend(fields ...string) *Schema {
	ext := newSchema(s.name)
	ext.base = s
	for _, f := range fields {
		if !s.Has(f) {
			ext.fields = appendUnique(ext.fields, f)
		}
	}
	return ext
}

// Name returns the declared type name.
func (s *Schema) Name() string { return s.name }

// Fields returns all declared fields in order, base fields first.
func (s *Schema) Fields() []string {
	var out []string
	if s.base != nil {
		out = s.base.Fields()
	}
	return append(out, s.fields...)
}

// Has reports whether field is declared.
func (s *Schema) Has(field string) bool {
	for _, f := range s.fields {
		if f == field {
			return true
		}
	}
	return s.base != nil && s.base.Has(field)
}

// SetType maps field to a type tag of the registry.
func (s *Schema) SetType(field, tag string) *Schema {
	s.types[field] = tag
	return s
}

// Type returns the type tag mapped to field.
func (s *Schema) Type(field string) (string, bool) {
	if tag, ok := s.types[field]; ok {
		return tag, true
	}
	if s.base != nil {
		return s.base.Type(field)
	}
	return "", false
}

// Coerce registers a coercion used only for field of this schema. It takes
// precedence over the field's type tag.
func (s *Schema) Coerce(field string, fn CoerceFunc) *Schema {
	s.coercions[field] = fn
	return s
}

func (s *Schema) coercion(field string) (CoerceFunc, bool) {
	return s.coercionIn(field, s.Registry())
}

// coercionIn resolves field through the schema chain. Type tags always use
// reg, the registry of the outermost schema.
func (s *Schema) coercionIn(field string, reg *Registry) (CoerceFunc, bool) {
	if fn, ok := s.coercions[field]; ok {
		return fn, true
	}
	if tag, ok := s.types[field]; ok {
		return reg.Lookup(tag)
	}
	if s.base != nil {
		return s.base.coercionIn(field, reg)
	}
	return nil, false
}

// HasOne declares field as holding a single nested record of child.
func (s *Schema) HasOne(field string, child *Schema) *Schema {
	s.nested[field] = nesting{schema: child}
	return s
}

// HasMany declares field as holding a list of records of child.
func (s *Schema) HasMany(field string, child *Schema) *Schema {
	s.nested[field] = nesting{schema: child, many: true}
	return s
}

func (s *Schema) nestedSchema(field string) (nesting, bool) {
	if n, ok := s.nested[field]; ok {
		return n, true
	}
	if s.base != nil {
		return s.base.nestedSchema(field)
	}
	return nesting{}, false
}

// Exclude leaves fields out of serialization. It may be called at any time
// before the schema is serialized; fields stay readable and writable on
// records.
func (s *Schema) Exclude(fields ...string) *Schema {
	for _, f := range fields {
		s.excluded[f] = struct{}{}
	}
	return s
}

// Excluded reports whether field is left out of serialization.
func (s *Schema) Excluded(field string) bool {
	if _, ok := s.excluded[field]; ok {
		return true
	}
	return s.base != nil && s.base.Excluded(field)
}

// IncludedFields returns the declared fields minus the excluded ones, in
// declared order. It is computed on every call.
func (s *Schema) IncludedFields() []string {
	var out []string
	for _, f := range s.Fields() {
		if !s.Excluded(f) {
			out = append(out, f)
		}
	}
	return out
}

// UseRegistry makes the schema resolve type tags against r instead of
// Default.
func (s *Schema) UseRegistry(r *Registry) *Schema {
	s.registry = r
	return s
}

// Registry returns the coercion registry in effect for the schema.
func (s *Schema) Registry() *Registry {
	if s.registry != nil {
		return s.registry
	}
	if s.base != nil {
		return s.base.Registry()
	}
	return Default
}

var camelBoundary = regexp.MustCompile(`([a-z])([A-Z])`)

// ElemName is the root element name of the record type: the schema name
// with an underscore between each lower-to-upper case boundary, lowercased.
func (s *Schema) ElemName() string {
	return strings.ToLower(camelBoundary.ReplaceAllString(s.name, "${1}_${2}"))
}

func appendUnique(dst []string, fields ...string) []string {
	for _, f := range fields {
		dup := false
		for _, have := range dst {
			if have == f {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, f)
		}
	}
	return dst
}
