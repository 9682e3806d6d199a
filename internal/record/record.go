package record

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrUnknownField is returned when a field is not declared by the schema.
var ErrUnknownField = errors.New("unknown field")

// Record is one instance of a schema: a map from field name to value.
// Values are scalars, *Record or []*Record. Unset fields are absent.
type Record struct {
	schema *Schema
	values map[string]any
}

// New returns an empty record of schema s.
func New(s *Schema) *Record {
	return &Record{schema: s, values: map[string]any{}}
}

// Schema returns the record's schema.
func (r *Record) Schema() *Schema { return r.schema }

// Get returns the value of field, or nil when unset or undeclared.
func (r *Record) Get(field string) any {
	return r.values[field]
}

// Set assigns value to a declared field. A nil value unsets the field.
func (r *Record) Set(field string, value any) error {
	if !r.schema.Has(field) {
		return fmt.Errorf("%w %q on %s", ErrUnknownField, field, r.schema.Name())
	}
	if value == nil {
		delete(r.values, field)
		return nil
	}
	r.values[field] = value
	return nil
}

// Has reports whether field holds a value.
func (r *Record) Has(field string) bool {
	_, ok := r.values[field]
	return ok
}

// String returns field as a string, or "" when unset.
func (r *Record) String(field string) string {
	switch v := r.values[field].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		s, err := FormatValue(v)
		if err != nil {
			return ""
		}
		return s
	}
}

// Int returns field as an int, or 0 when unset or not numeric.
func (r *Record) Int(field string) int {
	switch v := r.values[field].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// Float returns field as a float64, or 0 when unset or not numeric.
func (r *Record) Float(field string) float64 {
	switch v := r.values[field].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case decimal.Decimal:
		return v.InexactFloat64()
	}
	return 0
}

// Decimal returns field as a decimal, or zero when unset or not numeric.
func (r *Record) Decimal(field string) decimal.Decimal {
	switch v := r.values[field].(type) {
	case decimal.Decimal:
		return v
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	}
	return decimal.Zero
}

// Time returns field as a time, or the zero time when unset.
func (r *Record) Time(field string) time.Time {
	if t, ok := r.values[field].(time.Time); ok {
		return t
	}
	return time.Time{}
}

// Bool returns field as a bool, false when unset.
func (r *Record) Bool(field string) bool {
	b, _ := r.values[field].(bool)
	return b
}

// Records returns field as a record list.
func (r *Record) Records(field string) []*Record {
	list, _ := r.values[field].([]*Record)
	return list
}
