package record

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrUnserializable is returned by ToXML for values that are neither
// scalars, records nor record lists.
var ErrUnserializable = errors.New("unserializable value")

// Element is a generic XML element: a name, attributes, text and children.
type Element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []*Element `xml:",any"`
}

// NewElement returns an element named name holding text.
func NewElement(name, text string) *Element {
	return &Element{XMLName: xml.Name{Local: name}, Text: text}
}

// Name returns the local element name.
func (e *Element) Name() string { return e.XMLName.Local }

// Attr returns the value of the named attribute, or "".
func (e *Element) Attr(name string) string {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// Child returns the first child named name, or nil.
func (e *Element) Child(name string) *Element {
	for _, c := range e.Children {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// Add appends children and returns e.
func (e *Element) Add(children ...*Element) *Element {
	e.Children = append(e.Children, children...)
	return e
}

// ToXML converts r into an element named after its schema. Included fields
// are written in declared order; unset fields are omitted.
func ToXML(r *Record) (*Element, error) {
	root := NewElement(r.schema.ElemName(), "")
	for _, field := range r.schema.IncludedFields() {
		value, ok := r.values[field]
		if !ok || value == nil {
			continue
		}
		switch v := value.(type) {
		case []*Record:
			node := NewElement(field, "")
			for i, item := range v {
				if item == nil {
					return nil, fmt.Errorf("%w: %s.%s[%d] is nil", ErrUnserializable, r.schema.Name(), field, i)
				}
				child, err := ToXML(item)
				if err != nil {
					return nil, err
				}
				node.Add(child)
			}
			root.Add(node)
		case *Record:
			if v == nil {
				continue
			}
			child, err := ToXML(v)
			if err != nil {
				return nil, err
			}
			root.Add(NewElement(field, "").Add(child))
		default:
			text, err := FormatValue(v)
			if err != nil {
				return nil, fmt.Errorf("%w: %s.%s: %v", ErrUnserializable, r.schema.Name(), field, err)
			}
			root.Add(NewElement(field, text))
		}
	}
	return root, nil
}

// FromXML builds a record of schema s from the children of el. Each child's
// text is coerced through the field's coercion or type tag, or kept as a
// string when the field has neither. Children that are not declared fields
// are ignored. Empty text on a coerced field leaves the field unset.
func FromXML(el *Element, s *Schema) (*Record, error) {
	rec := New(s)
	for _, child := range el.Children {
		field := child.Name()
		if !s.Has(field) {
			continue
		}
		if n, ok := s.nestedSchema(field); ok {
			value, err := nestedFromXML(child, n)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", s.Name(), field, err)
			}
			if value != nil {
				rec.values[field] = value
			}
			continue
		}
		fn, ok := s.coercion(field)
		if !ok {
			rec.values[field] = child.Text
			continue
		}
		if strings.TrimSpace(child.Text) == "" {
			continue
		}
		value, err := fn(child.Text)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", s.Name(), field, err)
		}
		rec.values[field] = value
	}
	return rec, nil
}

func nestedFromXML(el *Element, n nesting) (any, error) {
	if !n.many {
		if len(el.Children) == 0 {
			return nil, nil
		}
		return FromXML(el.Children[0], n.schema)
	}
	items := make([]*Record, 0, len(el.Children))
	for _, c := range el.Children {
		item, err := FromXML(c, n.schema)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// Marshal serializes r as an XML document fragment.
func Marshal(r *Record) ([]byte, error) {
	el, err := ToXML(r)
	if err != nil {
		return nil, err
	}
	return xml.Marshal(el)
}

// FormatValue returns the wire text of a scalar value. Booleans use the
// "1"/"0" form read back by ParseBoolean; dates at midnight use DateLayout.
func FormatValue(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case bool:
		if v {
			return "1", nil
		}
		return "0", nil
	case decimal.Decimal:
		return v.String(), nil
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return v.Format(DateLayout), nil
		}
		return v.Format("2006-01-02 15:04:05"), nil
	case fmt.Stringer:
		return v.String(), nil
	}
	return "", fmt.Errorf("unsupported type %T", v)
}
