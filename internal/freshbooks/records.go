package freshbooks

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Tiliavir/freshtrack/internal/record"
)

// Record schemas of the remote API.
var (
	ProjectSchema = record.Declare("Project",
		"project_id", "name", "bill_method", "client_id", "rate", "description").
		SetType("project_id", record.TypeInteger).
		SetType("client_id", record.TypeInteger).
		SetType("rate", record.TypeFloat)

	TaskSchema = record.Declare("Task",
		"task_id", "name", "billable", "rate", "description").
		SetType("task_id", record.TypeInteger).
		SetType("billable", record.TypeBoolean).
		SetType("rate", record.TypeFloat)

	// The billed flag is maintained by the server.
	TimeEntrySchema = record.Declare("TimeEntry",
		"time_entry_id", "project_id", "task_id", "hours", "date", "notes", "billed").
		SetType("time_entry_id", record.TypeInteger).
		SetType("project_id", record.TypeInteger).
		SetType("task_id", record.TypeInteger).
		SetType("hours", record.TypeFloat).
		SetType("date", record.TypeDate).
		SetType("billed", record.TypeBoolean).
		Exclude("billed")

	LineSchema = record.Declare("Line",
		"name", "description", "unit_cost", "quantity", "amount").
		SetType("unit_cost", record.TypeDecimal).
		SetType("quantity", record.TypeFloat).
		SetType("amount", record.TypeDecimal).
		Exclude("amount")

	invoiceBaseSchema = record.Declare("Invoice",
		"invoice_id", "client_id", "date", "status", "amount", "url", "lines").
		SetType("invoice_id", record.TypeInteger).
		SetType("client_id", record.TypeInteger).
		SetType("date", record.TypeDate).
		SetType("amount", record.TypeDecimal).
		HasMany("lines", LineSchema).
		Exclude("url")

	// InvoiceSchema adds the client-assigned invoice number to the base
	// invoice fields.
	InvoiceSchema = invoiceBaseSchema.Extend("number")

	PaymentSchema = record.Declare("Payment",
		"payment_id", "invoice_id", "amount", "date", "type", "notes").
		SetType("payment_id", record.TypeInteger).
		SetType("invoice_id", record.TypeInteger).
		SetType("amount", record.TypeDecimal).
		SetType("date", record.TypeDate)

	ClientSchema = record.Declare("Client",
		"client_id", "organization", "first_name", "last_name", "email").
		SetType("client_id", record.TypeInteger)
)

// Service groups the resources of one remote account.
type Service struct {
	Projects    *Resource[*Project]
	Tasks       *Resource[*Task]
	TimeEntries *Resource[*TimeEntry]
	Invoices    *Resource[*Invoice]
	Payments    *Resource[*Payment]
	Clients     *Resource[*Client]
}

// NewService binds all resources to api.
func NewService(api Caller) *Service {
	s := &Service{}
	s.Projects = newResource(api, "project", "project_id", ProjectSchema,
		func(r *record.Record) *Project { return &Project{Record: r, svc: s} })
	s.Tasks = newResource(api, "task", "task_id", TaskSchema,
		func(r *record.Record) *Task { return &Task{Record: r, svc: s} })
	s.TimeEntries = newResource(api, "time_entry", "time_entry_id", TimeEntrySchema,
		func(r *record.Record) *TimeEntry { return &TimeEntry{Record: r, svc: s} })
	s.Invoices = newResource(api, "invoice", "invoice_id", InvoiceSchema,
		func(r *record.Record) *Invoice { return &Invoice{Record: r, svc: s} })
	s.Payments = newResource(api, "payment", "payment_id", PaymentSchema,
		func(r *record.Record) *Payment { return &Payment{Record: r} })
	s.Clients = newResource(api, "client", "client_id", ClientSchema,
		func(r *record.Record) *Client { return &Client{Record: r} })
	return s
}

// Project is a remote project.
type Project struct {
	*record.Record
	svc *Service
}

func (p *Project) Rec() *record.Record { return p.Record }
func (p *Project) ID() int             { return p.Int("project_id") }
func (p *Project) Name() string        { return p.String("name") }

// Client fetches the project's client.
func (p *Project) Client(ctx context.Context) (*Client, error) {
	return p.svc.Clients.Get(ctx, p.Int("client_id"))
}

// Tasks lists the tasks assigned to the project.
func (p *Project) Tasks(ctx context.Context) ([]*Task, error) {
	return p.svc.Tasks.List(ctx, Params{"project_id": p.ID()})
}

// Task is a remote task.
type Task struct {
	*record.Record
	svc *Service
}

func (t *Task) Rec() *record.Record { return t.Record }
func (t *Task) ID() int             { return t.Int("task_id") }
func (t *Task) Name() string        { return t.String("name") }

// TimeEntries lists the time entries booked on the task.
func (t *Task) TimeEntries(ctx context.Context) ([]*TimeEntry, error) {
	return t.svc.TimeEntries.List(ctx, Params{"task_id": t.ID()})
}

// TimeEntry is a remote time entry.
type TimeEntry struct {
	*record.Record
	svc *Service
}

func (e *TimeEntry) Rec() *record.Record { return e.Record }
func (e *TimeEntry) ID() int             { return e.Int("time_entry_id") }
func (e *TimeEntry) Hours() float64      { return e.Float("hours") }
func (e *TimeEntry) Date() time.Time     { return e.Time("date") }
func (e *TimeEntry) Billed() bool        { return e.Bool("billed") }

// Project fetches the entry's project.
func (e *TimeEntry) Project(ctx context.Context) (*Project, error) {
	return e.svc.Projects.Get(ctx, e.Int("project_id"))
}

// Task fetches the entry's task.
func (e *TimeEntry) Task(ctx context.Context) (*Task, error) {
	return e.svc.Tasks.Get(ctx, e.Int("task_id"))
}

// Invoice is a remote invoice.
type Invoice struct {
	*record.Record
	svc *Service
}

func (i *Invoice) Rec() *record.Record     { return i.Record }
func (i *Invoice) ID() int                 { return i.Int("invoice_id") }
func (i *Invoice) Number() string          { return i.String("number") }
func (i *Invoice) Status() string          { return i.String("status") }
func (i *Invoice) Date() time.Time         { return i.Time("date") }
func (i *Invoice) Amount() decimal.Decimal { return i.Decimal("amount") }

// Open reports whether the invoice is neither a draft nor paid.
func (i *Invoice) Open() bool {
	switch i.Status() {
	case "draft", "paid":
		return false
	}
	return true
}

// Client fetches the invoice's client. It is not cached.
func (i *Invoice) Client(ctx context.Context) (*Client, error) {
	return i.svc.Clients.Get(ctx, i.Int("client_id"))
}

// Payments lists the payments made on the invoice. A failed remote call
// yields no payments rather than an error.
func (i *Invoice) Payments(ctx context.Context) ([]*Payment, error) {
	payments, err := i.svc.Payments.List(ctx, Params{"invoice_id": i.ID()})
	if errors.Is(err, ErrRemoteCall) {
		return []*Payment{}, nil
	}
	return payments, err
}

// PaidAmount is the sum of the invoice's payments.
func (i *Invoice) PaidAmount(ctx context.Context) (decimal.Decimal, error) {
	payments, err := i.Payments(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, p := range payments {
		sum = sum.Add(p.Amount())
	}
	return sum, nil
}

// OwedAmount is the invoice amount minus what has been paid.
func (i *Invoice) OwedAmount(ctx context.Context) (decimal.Decimal, error) {
	paid, err := i.PaidAmount(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return i.Amount().Sub(paid), nil
}

// Payment is a payment against an invoice.
type Payment struct {
	*record.Record
}

func (p *Payment) Rec() *record.Record     { return p.Record }
func (p *Payment) Amount() decimal.Decimal { return p.Decimal("amount") }

// Client is a remote client (customer).
type Client struct {
	*record.Record
}

func (c *Client) Rec() *record.Record  { return c.Record }
func (c *Client) ID() int              { return c.Int("client_id") }
func (c *Client) Organization() string { return c.String("organization") }
