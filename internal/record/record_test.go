package record_test

import (
	"encoding/xml"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/freshtrack/internal/record"
)

func TestElemName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Thing", "thing"},
		{"ThingDeal", "thing_deal"},
		{"TimeEntry", "time_entry"},
		{"project", "project"},
		{"HTTPThing", "httpthing"},
	}
	for _, tt := range tests {
		got := record.Declare(tt.name).ElemName()
		if got != tt.want {
			t.Errorf("ElemName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestDeclareKeepsOrder(t *testing.T) {
	s := record.Declare("Thing", "b", "a", "c", "a")
	require.Equal(t, []string{"b", "a", "c"}, s.Fields())
}

func TestBooleanCoercion(t *testing.T) {
	f, ok := record.Default.Lookup(record.TypeBoolean)
	require.True(t, ok)

	v, err := f("0")
	require.NoError(t, err)
	require.Equal(t, false, v)

	v, err = f("1")
	require.NoError(t, err)
	require.Equal(t, true, v)

	_, err = f("yes")
	require.ErrorIs(t, err, record.ErrCoercion)
}

func TestDateCoercion(t *testing.T) {
	v, err := record.ParseDate("2008-01-29")
	require.NoError(t, err)
	require.Equal(t, time.Date(2008, 1, 29, 0, 0, 0, 0, time.UTC), v)

	v, err = record.ParseDate("2008-01-29 00:00:00")
	require.NoError(t, err)
	require.Equal(t, "2008-01-29", v.(time.Time).Format(record.DateLayout))
}

func TestToXMLOmitsUnsetAndKeepsOrder(t *testing.T) {
	s := record.Declare("TimeEntry", "time_entry_id", "project_id", "hours", "notes")
	r := record.New(s)
	require.NoError(t, r.Set("notes", "wrote code"))
	require.NoError(t, r.Set("project_id", 3))
	require.NoError(t, r.Set("hours", 2.5))

	data, err := record.Marshal(r)
	require.NoError(t, err)
	require.Equal(t,
		"<time_entry><project_id>3</project_id><hours>2.5</hours><notes>wrote code</notes></time_entry>",
		string(data))
}

func TestToXMLNestedList(t *testing.T) {
	line := record.Declare("Line", "name", "quantity")
	inv := record.Declare("Invoice", "invoice_id", "lines").HasMany("lines", line)

	l1 := record.New(line)
	require.NoError(t, l1.Set("name", "Design"))
	require.NoError(t, l1.Set("quantity", 2))
	l2 := record.New(line)
	require.NoError(t, l2.Set("name", "Build"))

	r := record.New(inv)
	require.NoError(t, r.Set("invoice_id", 7))
	require.NoError(t, r.Set("lines", []*record.Record{l1, l2}))

	data, err := record.Marshal(r)
	require.NoError(t, err)
	require.Equal(t,
		"<invoice><invoice_id>7</invoice_id><lines><line><name>Design</name><quantity>2</quantity></line><line><name>Build</name></line></lines></invoice>",
		string(data))

	var el record.Element
	require.NoError(t, xml.Unmarshal(data, &el))
	back, err := record.FromXML(&el, inv)
	require.NoError(t, err)
	lines := back.Records("lines")
	require.Len(t, lines, 2)
	require.Equal(t, "Design", lines[0].String("name"))
	require.Equal(t, "Build", lines[1].String("name"))
}

func TestToXMLUnserializable(t *testing.T) {
	s := record.Declare("Thing", "attr")
	r := record.New(s)
	require.NoError(t, r.Set("attr", map[string]int{"a": 1}))

	_, err := record.ToXML(r)
	require.True(t, errors.Is(err, record.ErrUnserializable), "got %v", err)
}

func TestExclusionEnforcement(t *testing.T) {
	s := record.Declare("Invoice", "invoice_id", "url")
	r := record.New(s)
	require.NoError(t, r.Set("invoice_id", 1))
	require.NoError(t, r.Set("url", "https://example.com/inv/1"))

	// Exclusion declared after the schema and the record exist.
	s.Exclude("url")

	el, err := record.ToXML(r)
	require.NoError(t, err)
	require.Nil(t, el.Child("url"))
	require.NotNil(t, el.Child("invoice_id"))
	require.Equal(t, "https://example.com/inv/1", r.Get("url"))
	require.Equal(t, []string{"invoice_id"}, s.IncludedFields())
}

func TestRoundTripScalars(t *testing.T) {
	s := record.Declare("Project", "project_id", "name", "rate", "billable", "started", "budget").
		SetType("project_id", record.TypeInteger).
		SetType("rate", record.TypeFloat).
		SetType("billable", record.TypeBoolean).
		SetType("started", record.TypeDate).
		SetType("budget", record.TypeDecimal)

	r := record.New(s)
	require.NoError(t, r.Set("project_id", 42))
	require.NoError(t, r.Set("name", "Site & <Ops>"))
	require.NoError(t, r.Set("rate", 87.5))
	require.NoError(t, r.Set("billable", true))
	require.NoError(t, r.Set("started", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, r.Set("budget", decimal.RequireFromString("1200.50")))

	data, err := record.Marshal(r)
	require.NoError(t, err)

	var el record.Element
	require.NoError(t, xml.Unmarshal(data, &el))
	back, err := record.FromXML(&el, s)
	require.NoError(t, err)

	for _, f := range s.Fields() {
		if f == "budget" {
			require.True(t, r.Decimal(f).Equal(back.Decimal(f)))
			continue
		}
		require.Equal(t, r.Get(f), back.Get(f), "field %s", f)
	}
}

func TestFromXMLIgnoresUnknownAndKeepsRawText(t *testing.T) {
	s := record.Declare("Task", "task_id", "name").SetType("task_id", record.TypeInteger)
	el := record.NewElement("task", "").Add(
		record.NewElement("task_id", "9"),
		record.NewElement("name", "Development"),
		record.NewElement("colour", "blue"),
	)

	r, err := record.FromXML(el, s)
	require.NoError(t, err)
	require.Equal(t, 9, r.Get("task_id"))
	require.Equal(t, "Development", r.Get("name"))
	require.Nil(t, r.Get("colour"))
}

func TestFromXMLFieldCoercionWins(t *testing.T) {
	s := record.Declare("Task", "name").
		SetType("name", record.TypeInteger).
		Coerce("name", func(text string) (any, error) { return "task:" + text, nil })

	r, err := record.FromXML(record.NewElement("task", "").Add(record.NewElement("name", "x")), s)
	require.NoError(t, err)
	require.Equal(t, "task:x", r.Get("name"))
}

func TestFromXMLCoercionError(t *testing.T) {
	s := record.Declare("Task", "task_id").SetType("task_id", record.TypeInteger)
	_, err := record.FromXML(record.NewElement("task", "").Add(record.NewElement("task_id", "abc")), s)
	require.ErrorIs(t, err, record.ErrCoercion)
}

func TestExtendedSchema(t *testing.T) {
	base := record.Declare("Invoice", "invoice_id", "amount").SetType("amount", record.TypeDecimal)
	ext := base.Extend("number")

	require.Equal(t, []string{"invoice_id", "amount"}, base.Fields())
	require.Equal(t, []string{"invoice_id", "amount", "number"}, ext.Fields())
	require.Equal(t, "invoice", ext.ElemName())

	r := record.New(ext)
	require.NoError(t, r.Set("number", "INV-0042"))
	require.NoError(t, r.Set("amount", decimal.NewFromInt(10)))
	require.Equal(t, "INV-0042", r.Get("number"))

	err := record.New(base).Set("number", "x")
	require.ErrorIs(t, err, record.ErrUnknownField)

	// Late exclusion on the base shows through the extension.
	base.Exclude("amount")
	require.Equal(t, []string{"invoice_id", "number"}, ext.IncludedFields())
}

func TestSchemaRegistry(t *testing.T) {
	reg := record.NewRegistry()
	reg.Register("upper", func(text string) (any, error) { return text + "!", nil })
	s := record.Declare("Thing", "attr").SetType("attr", "upper").UseRegistry(reg)

	r, err := record.FromXML(record.NewElement("thing", "").Add(record.NewElement("attr", "hi")), s)
	require.NoError(t, err)
	require.Equal(t, "hi!", r.Get("attr"))
}

func TestExtendedSchemaUsesOwnRegistryForBaseFields(t *testing.T) {
	reg := record.NewRegistry()
	reg.Register(record.TypeDecimal, func(text string) (any, error) { return "custom:" + text, nil })

	base := record.Declare("Invoice", "amount").SetType("amount", record.TypeDecimal)
	ext := base.Extend("number").UseRegistry(reg)

	r, err := record.FromXML(record.NewElement("invoice", "").Add(record.NewElement("amount", "12.50")), ext)
	require.NoError(t, err)
	require.Equal(t, "custom:12.50", r.Get("amount"))

	r, err = record.FromXML(record.NewElement("invoice", "").Add(record.NewElement("amount", "12.50")), base)
	require.NoError(t, err)
	require.True(t, decimal.RequireFromString("12.5").Equal(r.Decimal("amount")))
}

func TestNestedSingleRecordRoundTrip(t *testing.T) {
	address := record.Declare("Address", "street", "city")
	contact := record.Declare("ContactPerson", "name", "address").HasOne("address", address)

	addr := record.New(address)
	require.NoError(t, addr.Set("street", "Main"))
	r := record.New(contact)
	require.NoError(t, r.Set("name", "Ann"))
	require.NoError(t, r.Set("address", addr))

	data, err := record.Marshal(r)
	require.NoError(t, err)
	require.Equal(t,
		`<contact_person><name>Ann</name><address><address><street>Main</street></address></address></contact_person>`,
		string(data))

	var el record.Element
	require.NoError(t, xml.Unmarshal(data, &el))
	back, err := record.FromXML(&el, contact)
	require.NoError(t, err)
	require.Equal(t, "Ann", back.Get("name"))

	nested, ok := back.Get("address").(*record.Record)
	require.True(t, ok)
	require.Same(t, address, nested.Schema())
	require.Equal(t, "Main", nested.Get("street"))
	require.False(t, nested.Has("city"))
}

func TestNestedSingleRecordEmpty(t *testing.T) {
	address := record.Declare("Address", "street")
	contact := record.Declare("ContactPerson", "name", "address").HasOne("address", address)

	el := record.NewElement("contact_person", "").Add(record.NewElement("address", ""))
	r, err := record.FromXML(el, contact)
	require.NoError(t, err)
	require.False(t, r.Has("address"))
}
