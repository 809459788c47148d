// Package schema maps domain entities to and from record-store fields.
//
// Each entity has one declarative table of fields. A field can be bound to a
// different external key and value transform per schema version, because the
// store's columns were renamed and retyped over time without migrating old
// rows. The version of a row is read from its discriminator column. Writes
// always target the current version. Raw external field names appear only in
// this package.
package schema

import (
	"fmt"
	"reflect"
	"time"

	"storeroom_backend/platform/apperr"
	"storeroom_backend/platform/recordstore"
	"storeroom_backend/platform/recordstore/formula"
)

// Version identifies a generation of the external column layout.
type Version int

const (
	VersionLegacy  Version = 1
	VersionCurrent Version = 2
)

// VersionKey is the discriminator column. Rows without it are legacy rows.
const VersionKey = "Schema Version"

// Binding ties a field to one external column.
type Binding struct {
	Key      string
	Codec    Codec
	ReadOnly bool
}

// Field describes one domain attribute.
type Field[E any] struct {
	Name     string
	Required bool
	Fallback any
	Get      func(*E) any
	Set      func(*E, any)
	Bindings map[Version]Binding
}

// In binds the field to a writable column in version v.
func (f Field[E]) In(v Version, key string, c Codec) Field[E] {
	return f.bind(v, Binding{Key: key, Codec: c})
}

// Computed binds the field to a column the store derives itself.
// It is read but never written.
func (f Field[E]) Computed(v Version, key string, c Codec) Field[E] {
	return f.bind(v, Binding{Key: key, Codec: c, ReadOnly: true})
}

// Both binds the same column in every version.
func (f Field[E]) Both(key string, c Codec) Field[E] {
	return f.In(VersionLegacy, key, c).In(VersionCurrent, key, c)
}

// Require marks the field as mandatory on create.
func (f Field[E]) Require() Field[E] {
	f.Required = true
	return f
}

// Default sets the value used when a row has no value for the field.
func (f Field[E]) Default(v any) Field[E] {
	f.Fallback = v
	return f
}

func (f Field[E]) bind(v Version, b Binding) Field[E] {
	bindings := make(map[Version]Binding, len(f.Bindings)+1)
	for k, existing := range f.Bindings {
		bindings[k] = existing
	}
	bindings[v] = b
	f.Bindings = bindings
	return f
}

// Schema is the descriptor table for one entity type.
type Schema[E any] struct {
	Table        string
	fields       []Field[E]
	byName       map[string]int
	id           func(*E) *string
	created      func(*E) *time.Time
	afterDecode  func(*E)
	beforeEncode func(*E)
}

// New builds a schema. Field names must be unique.
func New[E any](table string, id func(*E) *string, created func(*E) *time.Time, fields ...Field[E]) *Schema[E] {
	s := &Schema[E]{
		Table:   table,
		fields:  fields,
		byName:  make(map[string]int, len(fields)),
		id:      id,
		created: created,
	}
	for i, f := range fields {
		if _, dup := s.byName[f.Name]; dup {
			panic(fmt.Sprintf("schema %s: duplicate field %q", table, f.Name))
		}
		s.byName[f.Name] = i
	}
	return s
}

// WithHooks sets functions run after decoding and before encoding an entity.
func (s *Schema[E]) WithHooks(afterDecode, beforeEncode func(*E)) *Schema[E] {
	s.afterDecode = afterDecode
	s.beforeEncode = beforeEncode
	return s
}

// ID returns the record ID of e.
func (s *Schema[E]) ID(e *E) string {
	return *s.id(e)
}

// HasField reports whether name is a declared field.
func (s *Schema[E]) HasField(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// Value returns the domain value of field name on e.
func (s *Schema[E]) Value(e *E, name string) (any, bool) {
	idx, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	return s.fields[idx].Get(e), true
}

// Copy sets the named fields of dst to their values in src.
func (s *Schema[E]) Copy(dst, src *E, names ...string) error {
	for _, name := range names {
		idx, ok := s.byName[name]
		if !ok {
			return apperr.Configuration(fmt.Sprintf("%s has no field %q", s.Table, name))
		}
		f := s.fields[idx]
		f.Set(dst, f.Get(src))
	}
	return nil
}

// VersionOf reads the discriminator from raw fields.
func VersionOf(fields map[string]any) Version {
	switch v := fields[VersionKey].(type) {
	case float64:
		if v >= float64(VersionCurrent) {
			return VersionCurrent
		}
	case int:
		if v >= int(VersionCurrent) {
			return VersionCurrent
		}
	case string:
		if v == "2" {
			return VersionCurrent
		}
	}
	return VersionLegacy
}

// ToExternal encodes e for a write in the current version.
//
// With no field names the whole entity is encoded, computed columns are left
// out and the discriminator is set. With field names only those fields are
// encoded, and naming a computed or unknown field is a configuration error.
func (s *Schema[E]) ToExternal(e *E, fields ...string) (map[string]any, error) {
	return s.encode(VersionCurrent, e, fields)
}

func (s *Schema[E]) encode(v Version, e *E, names []string) (map[string]any, error) {
	if s.beforeEncode != nil {
		prepared := *e
		s.beforeEncode(&prepared)
		e = &prepared
	}

	out := make(map[string]any)
	if len(names) == 0 {
		for _, f := range s.fields {
			b, ok := f.Bindings[v]
			if !ok || b.ReadOnly {
				continue
			}
			if err := s.put(out, f, b, e); err != nil {
				return nil, err
			}
		}
		out[VersionKey] = int(v)
		return out, nil
	}

	for _, name := range names {
		idx, ok := s.byName[name]
		if !ok {
			return nil, apperr.Configuration(fmt.Sprintf("%s has no field %q", s.Table, name))
		}
		f := s.fields[idx]
		b, ok := f.Bindings[v]
		if !ok {
			return nil, apperr.Configuration(fmt.Sprintf("%s.%s is not part of schema version %d", s.Table, name, v))
		}
		if b.ReadOnly {
			return nil, apperr.Configuration(fmt.Sprintf("%s.%s maps to computed column %q and cannot be written", s.Table, name, b.Key))
		}
		if err := s.put(out, f, b, e); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Schema[E]) put(out map[string]any, f Field[E], b Binding, e *E) error {
	encoded, err := b.Codec.Encode(f.Get(e))
	if err != nil {
		return apperr.InvalidFields("invalid value", []apperr.FieldError{{Field: f.Name, Message: err.Error()}})
	}
	out[b.Key] = encoded
	return nil
}

// FromExternal decodes a stored record using the version it declares.
func (s *Schema[E]) FromExternal(rec recordstore.Record) (*E, Version, error) {
	v := VersionOf(rec.Fields)
	e := new(E)
	*s.id(e) = rec.ID
	*s.created(e) = rec.CreatedTime

	for _, f := range s.fields {
		var (
			value   any
			present bool
		)
		if b, ok := f.Bindings[v]; ok {
			if raw, has := rec.Fields[b.Key]; has && raw != nil {
				decoded, err := b.Codec.Decode(raw)
				if err != nil {
					return nil, v, apperr.Wrap(apperr.KindInternal,
						fmt.Sprintf("%s record %s has an unreadable %q", s.Table, rec.ID, b.Key), err)
				}
				value, present = decoded, true
			}
		}
		if !present && f.Fallback != nil {
			value, present = f.Fallback, true
		}
		if present {
			f.Set(e, value)
		}
	}

	if s.afterDecode != nil {
		s.afterDecode(e)
	}
	return e, v, nil
}

// ValidateRequired lists required fields that hold a zero value.
func (s *Schema[E]) ValidateRequired(e *E) []apperr.FieldError {
	var missing []apperr.FieldError
	for _, f := range s.fields {
		if f.Required && isZero(f.Get(e)) {
			missing = append(missing, apperr.FieldError{Field: f.Name, Message: "is required"})
		}
	}
	return missing
}

// Match builds a filter on a domain field that finds rows of every version.
func (s *Schema[E]) Match(name string, value any) (formula.Expr, error) {
	idx, ok := s.byName[name]
	if !ok {
		return nil, apperr.Configuration(fmt.Sprintf("%s has no field %q", s.Table, name))
	}
	f := s.fields[idx]

	var (
		exprs []formula.Expr
		seen  = map[string]bool{}
	)
	for _, v := range []Version{VersionCurrent, VersionLegacy} {
		b, ok := f.Bindings[v]
		if !ok {
			continue
		}
		expr, err := b.Codec.Match(b.Key, value)
		if err != nil {
			return nil, apperr.Configuration(fmt.Sprintf("cannot filter %s.%s: %v", s.Table, name, err))
		}
		if rendered := expr.String(); !seen[rendered] {
			seen[rendered] = true
			exprs = append(exprs, expr)
		}
	}
	if len(exprs) == 0 {
		return nil, apperr.Configuration(fmt.Sprintf("%s.%s has no stored column", s.Table, name))
	}
	return formula.Or(exprs...), nil
}

func isZero(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Map {
		return rv.Len() == 0
	}
	return rv.IsZero()
}
