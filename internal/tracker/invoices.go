package tracker

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/Tiliavir/freshtrack/internal/freshbooks"
	"github.com/Tiliavir/freshtrack/internal/timecalc"
)

// AgingRow is one open invoice in the aging report.
type AgingRow struct {
	ID     int             `json:"id"`
	Number string          `json:"number"`
	Client string          `json:"client"`
	Age    int             `json:"age"`
	Status string          `json:"status"`
	Amount decimal.Decimal `json:"amount"`
	Owed   decimal.Decimal `json:"owed"`
}

// OpenInvoices lists the invoices that are neither drafts nor paid. A failed
// list call counts as no invoices.
func (t *Tracker) OpenInvoices(ctx context.Context) ([]*freshbooks.Invoice, error) {
	svc, err := t.service(ctx, t.cfg.DefaultAuth())
	if err != nil {
		return nil, err
	}
	invoices, err := svc.Invoices.List(ctx, nil)
	if errors.Is(err, freshbooks.ErrRemoteCall) {
		t.logger.Warn("listing invoices failed", "err", err)
		invoices = nil
	} else if err != nil {
		return nil, err
	}

	open := []*freshbooks.Invoice{}
	for _, inv := range invoices {
		if inv.Open() {
			open = append(open, inv)
		}
	}
	return open, nil
}

// InvoiceAging reports the age in days and the owed amount of every open
// invoice.
func (t *Tracker) InvoiceAging(ctx context.Context) ([]AgingRow, error) {
	invoices, err := t.OpenInvoices(ctx)
	if err != nil {
		return nil, err
	}
	today := timecalc.DateOf(t.Now())

	rows := make([]AgingRow, 0, len(invoices))
	for _, inv := range invoices {
		var clientName string
		client, err := inv.Client(ctx)
		switch {
		case err == nil:
			clientName = client.Organization()
		case errors.Is(err, freshbooks.ErrRemoteCall), errors.Is(err, freshbooks.ErrNotFound):
			t.logger.Warn("client lookup failed", "invoice", inv.ID(), "err", err)
		default:
			return nil, err
		}

		owed, err := inv.OwedAmount(ctx)
		if err != nil {
			return nil, err
		}
		// An undated invoice has age 0.
		age := 0
		if date := inv.Date(); !date.IsZero() {
			age = int(today.Sub(timecalc.DateOf(date)).Hours() / 24)
		}
		rows = append(rows, AgingRow{
			ID:     inv.ID(),
			Number: inv.Number(),
			Client: clientName,
			Age:    age,
			Status: inv.Status(),
			Amount: inv.Amount(),
			Owed:   owed,
		})
	}
	return rows, nil
}
