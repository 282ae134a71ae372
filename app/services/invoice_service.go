package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Shreehariballakkuraya/ScanPOS/app/billing"
	"github.com/Shreehariballakkuraya/ScanPOS/app/models"
	"github.com/Shreehariballakkuraya/ScanPOS/app/repositories"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/event"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/logger"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/metrics"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/orm"
)

// Events fired after an invoice transaction commits. The payload is the
// affected *models.Invoice.
const (
	EventInvoiceCompleted = "invoice.completed"
	EventInvoiceDeleted   = "invoice.deleted"
)

const invoiceDateLayout = "2006-01-02"

// InvoiceService drives the invoice lifecycle: draft → completed, and
// deletion from either state. Every public method is one transaction.
type InvoiceService struct {
	db     *gorm.DB
	ledger StockLedger
	bus    *event.Bus
	now    func() time.Time
}

func NewInvoiceService(db *gorm.DB, ledger StockLedger, bus *event.Bus) *InvoiceService {
	return &InvoiceService{db: db, ledger: ledger, bus: bus, now: time.Now}
}

// WithClock replaces the time source used for numbering and timestamps.
func (s *InvoiceService) WithClock(now func() time.Time) *InvoiceService {
	s.now = now
	return s
}

// Create opens a draft invoice numbered INV-YYYYMMDD-NNNN, where the date is
// today in UTC and NNNN restarts at 0001 each day.
func (s *InvoiceService) Create(ctx context.Context, customerID *uint) (*models.Invoice, error) {
	now := s.now().UTC()
	inv := &models.Invoice{
		CustomerID:     customerID,
		Status:         models.InvoiceStatusDraft,
		SubtotalAmount: decimal.Zero,
		TotalTax:       decimal.Zero,
		DiscountAmount: decimal.Zero,
		TotalAmount:    decimal.Zero,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if customerID != nil {
			var c models.Customer
			if err := tx.Select("id").First(&c, *customerID).Error; err != nil {
				return notFound(err, "Customer", *customerID)
			}
		}

		day := now.Format("20060102")
		seq, err := repositories.NewSequenceRepository(tx).Next(day)
		if err != nil {
			return fmt.Errorf("next invoice number: %w", err)
		}
		inv.InvoiceNumber = fmt.Sprintf("INV-%s-%04d", day, seq)

		return repositories.NewInvoiceRepository(tx).Create(inv)
	})
	if err != nil {
		return nil, persistence("create invoice", err)
	}

	inv.Items = []models.InvoiceItem{}
	metrics.InvoicesCreated.Inc()
	logger.WithCtx(ctx).Info("invoice created", "invoice_id", inv.ID, "invoice_number", inv.InvoiceNumber)
	return inv, nil
}

// Get returns the invoice with its items, each carrying its product name.
func (s *InvoiceService) Get(ctx context.Context, id uint) (*models.Invoice, error) {
	inv, err := repositories.NewInvoiceRepository(s.db.WithContext(ctx)).FindWithItems(id)
	if err != nil {
		return nil, persistence("get invoice", notFound(err, "Invoice", id))
	}
	return inv, nil
}

// Complete takes stock for every line, snapshots the totals and marks the
// invoice completed. A nil discount means zero. Any failure rolls back every
// stock movement already made.
func (s *InvoiceService) Complete(ctx context.Context, id uint, discount *decimal.Decimal) (*models.Invoice, error) {
	disc := decimal.Zero
	if discount != nil {
		disc = *discount
	}

	var (
		inv   *models.Invoice
		items []models.InvoiceItem
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoices := repositories.NewInvoiceRepository(tx)

		var err error
		inv, err = invoices.FindForUpdate(id)
		if err != nil {
			return notFound(err, "Invoice", id)
		}
		if err := inv.Status.Transition(models.InvoiceStatusCompleted); err != nil {
			return &InvalidStateError{Msg: fmt.Sprintf("Invoice is already %s", inv.Status)}
		}

		items, err = invoices.Items(id)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return &InvalidStateError{Msg: "Cannot complete invoice with no items"}
		}
		if disc.IsNegative() {
			return &ValidationError{Field: "discount_amount", Msg: "Discount cannot be negative"}
		}

		if err := reserveItems(tx, s.ledger, items); err != nil {
			return err
		}

		lines := make([]billing.Line, 0, len(items))
		for _, item := range items {
			lines = append(lines, billing.ComputeLine(item.Quantity, item.UnitPrice, item.TaxPercent))
		}
		subtotal, tax := billing.ComputeInvoiceTotals(lines)

		inv.Status = models.InvoiceStatusCompleted
		inv.SubtotalAmount = subtotal
		inv.TotalTax = tax
		inv.DiscountAmount = disc
		inv.TotalAmount = billing.GrandTotal(subtotal, tax, disc)
		inv.UpdatedAt = s.now().UTC()
		if err := invoices.SaveCompletion(inv); err != nil {
			if errors.Is(err, repositories.ErrInvoiceNotDraft) {
				return &InvalidStateError{Msg: "Invoice is already completed"}
			}
			return err
		}

		metrics.StockUnits.WithLabelValues("reserved").Add(float64(totalQuantity(items)))
		return nil
	})
	if err != nil {
		return nil, persistence("complete invoice", err)
	}

	// The completion is committed, so a failed reload falls back to the
	// in-transaction snapshot rather than reporting an error.
	completed, err := s.Get(ctx, id)
	if err != nil {
		logger.WithCtx(ctx).Warn("reload completed invoice", "invoice_id", id, "error", err)
		inv.Items = items
		completed = inv
	}

	metrics.InvoicesCompleted.Inc()
	metrics.SalesAmount.Add(completed.TotalAmount.InexactFloat64())
	logger.WithCtx(ctx).Info("invoice completed",
		"invoice_id", completed.ID,
		"invoice_number", completed.InvoiceNumber,
		"total_amount", completed.TotalAmount.String(),
	)
	s.bus.Fire(ctx, EventInvoiceCompleted, completed)
	return completed, nil
}

// Delete removes the invoice and its items. A completed invoice first gives
// back the stock it took.
func (s *InvoiceService) Delete(ctx context.Context, id uint) error {
	var inv *models.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoices := repositories.NewInvoiceRepository(tx)

		var err error
		inv, err = invoices.FindForUpdate(id)
		if err != nil {
			return notFound(err, "Invoice", id)
		}

		if inv.Status == models.InvoiceStatusCompleted {
			items, err := invoices.Items(id)
			if err != nil {
				return err
			}
			if err := releaseItems(tx, s.ledger, items); err != nil {
				return err
			}
			metrics.StockUnits.WithLabelValues("released").Add(float64(totalQuantity(items)))
		}

		return invoices.Delete(id)
	})
	if err != nil {
		return persistence("delete invoice", err)
	}

	metrics.InvoicesDeleted.WithLabelValues(string(inv.Status)).Inc()
	logger.WithCtx(ctx).Info("invoice deleted", "invoice_id", id, "status", string(inv.Status))
	s.bus.Fire(ctx, EventInvoiceDeleted, inv)
	return nil
}

// InvoiceQuery is the raw list filter as received from a client.
// From and To are YYYY-MM-DD; the whole To day is included.
type InvoiceQuery struct {
	From   string
	To     string
	Status string
	Page   orm.Pagination
}

// List returns invoice summaries, newest first, with the page metadata
// filled in.
func (s *InvoiceService) List(ctx context.Context, q InvoiceQuery) ([]models.InvoiceSummary, orm.Pagination, error) {
	q.Page = orm.NewPagination(q.Page.Page, q.Page.PageSize)
	f, err := parseInvoiceQuery(q)
	if err != nil {
		return nil, q.Page, err
	}

	rows, total, err := repositories.NewInvoiceRepository(s.db.WithContext(ctx)).List(f, q.Page)
	if err != nil {
		return nil, q.Page, persistence("list invoices", err)
	}
	if rows == nil {
		rows = []models.InvoiceSummary{}
	}
	return rows, q.Page.WithTotal(total), nil
}

func parseInvoiceQuery(q InvoiceQuery) (repositories.InvoiceFilter, error) {
	var f repositories.InvoiceFilter
	if q.From != "" {
		from, err := time.ParseInLocation(invoiceDateLayout, q.From, time.UTC)
		if err != nil {
			return f, &ValidationError{Field: "from", Msg: "Invalid from date format. Use YYYY-MM-DD"}
		}
		f.From = from
	}
	if q.To != "" {
		to, err := time.ParseInLocation(invoiceDateLayout, q.To, time.UTC)
		if err != nil {
			return f, &ValidationError{Field: "to", Msg: "Invalid to date format. Use YYYY-MM-DD"}
		}
		f.To = to.AddDate(0, 0, 1)
	}
	if q.Status != "" {
		st, err := models.ParseInvoiceStatus(q.Status)
		if err != nil {
			return f, &ValidationError{Field: "status", Msg: "Status must be one of: draft, completed"}
		}
		f.Status = st
	}
	return f, nil
}
