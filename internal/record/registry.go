package record

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Type tags understood by the default registry.
const (
	TypeDate    = "date"
	TypeBoolean = "boolean"
	TypeInteger = "integer"
	TypeFloat   = "float"
	TypeDecimal = "decimal"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// ErrCoercion is returned when element text cannot be converted to the
// type mapped for its field.
var ErrCoercion = errors.New("cannot coerce value")

// CoerceFunc converts the text of an XML element into a typed value.
type CoerceFunc func(text string) (any, error)

// Registry maps type tags to coercion functions. One registry is created at
// startup (Default) and shared by every schema that does not set its own.
type Registry struct {
	fns map[string]CoerceFunc
}

// Default is the process-wide registry used by Declare.
var Default = NewRegistry()

// NewRegistry returns a registry pre-filled with the date, boolean, integer,
// float and decimal coercions.
func NewRegistry() *Registry {
	r := &Registry{fns: map[string]CoerceFunc{}}
	r.Register(TypeDate, ParseDate)
	r.Register(TypeBoolean, ParseBoolean)
	r.Register(TypeInteger, parseInteger)
	r.Register(TypeFloat, parseFloat)
	r.Register(TypeDecimal, parseDecimal)
	return r
}

// Register adds or replaces the coercion for a type tag.
func (r *Registry) Register(tag string, fn CoerceFunc) {
	r.fns[tag] = fn
}

// Lookup returns the coercion registered for tag.
func (r *Registry) Lookup(tag string) (CoerceFunc, bool) {
	fn, ok := r.fns[tag]
	return fn, ok
}

// ParseDate parses YYYY-MM-DD (optionally followed by a clock time, which is
// dropped) into a UTC midnight time.
func ParseDate(text string) (any, error) {
	text = strings.TrimSpace(text)
	if len(text) > len(DateLayout) {
		text = text[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, text)
	if err != nil {
		return nil, fmt.Errorf("%w: date %q: %v", ErrCoercion, text, err)
	}
	return t, nil
}

// ParseBoolean maps "0" to false and "1" to true. Any other text is an error.
func ParseBoolean(text string) (any, error) {
	switch strings.TrimSpace(text) {
	case "0":
		return false, nil
	case "1":
		return true, nil
	}
	return nil, fmt.Errorf("%w: boolean %q", ErrCoercion, text)
}

func parseInteger(text string) (any, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("%w: integer %q", ErrCoercion, text)
	}
	return n, nil
}

func parseFloat(text string) (any, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: float %q", ErrCoercion, text)
	}
	return f, nil
}

func parseDecimal(text string) (any, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("%w: decimal %q", ErrCoercion, text)
	}
	return d, nil
}
