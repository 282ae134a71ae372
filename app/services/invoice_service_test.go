package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Shreehariballakkuraya/ScanPOS/app/billing"
	"github.com/Shreehariballakkuraya/ScanPOS/app/models"
	"github.com/Shreehariballakkuraya/ScanPOS/app/repositories"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/orm"
)

func TestCreateInvoiceStartsAsEmptyDraft(t *testing.T) {
	e := newEnv(t)

	inv, err := e.invoices.Create(context.Background(), nil)
	require.NoError(t, err)

	assert.NotZero(t, inv.ID)
	assert.Equal(t, "INV-20260314-0001", inv.InvoiceNumber)
	assert.Equal(t, models.InvoiceStatusDraft, inv.Status)
	assert.Empty(t, inv.Items)
	assert.NotNil(t, inv.Items)
	assertMoney(t, "0", inv.TotalAmount)
}

func TestCreateInvoiceUnknownCustomer(t *testing.T) {
	e := newEnv(t)
	id := uint(99)

	_, err := e.invoices.Create(context.Background(), &id)

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Customer", nf.Resource)
}

func TestCreateInvoiceWithCustomer(t *testing.T) {
	e := newEnv(t)
	c := models.Customer{Name: "Asha"}
	require.NoError(t, e.db.Create(&c).Error)

	inv, err := e.invoices.Create(context.Background(), &c.ID)
	require.NoError(t, err)
	require.NotNil(t, inv.CustomerID)
	assert.Equal(t, c.ID, *inv.CustomerID)
}

func TestInvoiceNumbersIncreaseAndResetDaily(t *testing.T) {
	e := newEnv(t)

	var numbers []string
	for i := 0; i < 3; i++ {
		numbers = append(numbers, e.draft(t).InvoiceNumber)
	}
	assert.Equal(t, []string{"INV-20260314-0001", "INV-20260314-0002", "INV-20260314-0003"}, numbers)

	e.clock.t = e.clock.t.AddDate(0, 0, 1)
	assert.Equal(t, "INV-20260315-0001", e.draft(t).InvoiceNumber)

	e.clock.t = e.clock.t.AddDate(0, 0, -1)
	assert.Equal(t, "INV-20260314-0004", e.draft(t).InvoiceNumber)
}

func TestInvoiceNumberUsesUTCDate(t *testing.T) {
	e := newEnv(t)
	// 23:30 UTC on the 14th is already the 15th in UTC+5:30.
	e.clock.t = e.clock.t.Add(14 * time.Hour)

	assert.Equal(t, "INV-20260314-0001", e.draft(t).InvoiceNumber)
}

func TestGetInvoiceNotFound(t *testing.T) {
	e := newEnv(t)

	_, err := e.invoices.Get(context.Background(), 42)

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Invoice", nf.Resource)
}

func TestGetInvoiceCarriesItemsAndProductNames(t *testing.T) {
	e := newEnv(t)
	a := e.product(t, "Tea", "111", "2.50", "5", 10)
	b := e.product(t, "Milk", "222", "1.20", "0", 10)
	inv := e.draft(t)
	e.add(t, inv.ID, a.ID, 2)
	e.add(t, inv.ID, b.ID, 1)

	got, err := e.invoices.Get(context.Background(), inv.ID)
	require.NoError(t, err)

	require.Len(t, got.Items, 2)
	assert.Equal(t, "Tea", got.Items[0].ProductName)
	assert.Equal(t, "Milk", got.Items[1].ProductName)
	// Draft totals are only settled on completion.
	assertMoney(t, "0", got.SubtotalAmount)
}

func TestCheckoutScenario(t *testing.T) {
	e := newEnv(t)
	a := e.product(t, "Rice 1kg", "890100", "12.50", "18", 100)
	inv := e.draft(t)

	first := e.add(t, inv.ID, a.ID, 5)
	assert.True(t, first.Created)
	second := e.add(t, inv.ID, a.ID, 3)
	assert.False(t, second.Created)
	assert.Equal(t, first.Item.ID, second.Item.ID)
	assert.Equal(t, 8, second.Item.Quantity)
	assert.Equal(t, 100, e.stock(t, a.ID), "draft carts do not consume stock")

	done, err := e.invoices.Complete(context.Background(), inv.ID, decPtr("10"))
	require.NoError(t, err)

	assert.Equal(t, 92, e.stock(t, a.ID))
	assert.Equal(t, models.InvoiceStatusCompleted, done.Status)
	require.Len(t, done.Items, 1)
	assertMoney(t, "100", done.SubtotalAmount)
	assertMoney(t, "18", done.TotalTax)
	assertMoney(t, "10", done.DiscountAmount)
	assertMoney(t, "118", done.SubtotalAmount.Add(done.TotalTax))
	assertMoney(t, "108", done.TotalAmount)
}

func TestCompleteTotalsMatchCalculator(t *testing.T) {
	e := newEnv(t)
	a := e.product(t, "A", "", "0.10", "12.5", 100)
	b := e.product(t, "B", "", "3.33", "7", 100)
	c := e.product(t, "C", "", "19.99", "0", 100)
	inv := e.draft(t)
	e.add(t, inv.ID, a.ID, 7)
	e.add(t, inv.ID, b.ID, 3)
	e.add(t, inv.ID, c.ID, 2)

	done, err := e.invoices.Complete(context.Background(), inv.ID, nil)
	require.NoError(t, err)

	lines := []billing.Line{
		billing.ComputeLine(7, decimal.RequireFromString("0.10"), decimal.RequireFromString("12.5")),
		billing.ComputeLine(3, decimal.RequireFromString("3.33"), decimal.RequireFromString("7")),
		billing.ComputeLine(2, decimal.RequireFromString("19.99"), decimal.Zero),
	}
	subtotal, tax := billing.ComputeInvoiceTotals(lines)
	assertMoney(t, subtotal.String(), done.SubtotalAmount)
	assertMoney(t, tax.String(), done.TotalTax)
	assertMoney(t, "0", done.DiscountAmount)
	assertMoney(t, subtotal.Add(tax).String(), done.TotalAmount)
}

func TestCompleteTwiceIsInvalidState(t *testing.T) {
	e := newEnv(t)
	a := e.product(t, "A", "", "1", "0", 10)
	inv := e.draft(t)
	e.add(t, inv.ID, a.ID, 2)

	_, err := e.invoices.Complete(context.Background(), inv.ID, nil)
	require.NoError(t, err)

	_, err = e.invoices.Complete(context.Background(), inv.ID, nil)
	var is *InvalidStateError
	require.ErrorAs(t, err, &is)
	assert.Equal(t, 8, e.stock(t, a.ID), "stock is consumed once")
}

// racingLedger completes the invoice from inside the transaction before
// taking stock, the way a second completion committing first would look.
type racingLedger struct {
	repositories.StockLedger
	invoiceID uint
}

func (l racingLedger) Reserve(tx *gorm.DB, productID uint, qty int) (bool, error) {
	err := tx.Model(&models.Invoice{}).Where("id = ?", l.invoiceID).
		UpdateColumn("status", models.InvoiceStatusCompleted).Error
	if err != nil {
		return false, err
	}
	return l.StockLedger.Reserve(tx, productID, qty)
}

func TestCompleteLosesRaceToConcurrentCompletion(t *testing.T) {
	e := newEnv(t)
	a := e.product(t, "A", "", "1", "0", 10)
	inv := e.draft(t)
	e.add(t, inv.ID, a.ID, 2)

	svc := NewInvoiceService(e.db, racingLedger{invoiceID: inv.ID}, e.bus)
	_, err := svc.Complete(context.Background(), inv.ID, nil)

	var is *InvalidStateError
	require.ErrorAs(t, err, &is)
	assert.Equal(t, "Invoice is already completed", is.Msg)
	assert.Equal(t, 10, e.stock(t, a.ID), "reservation is rolled back")
	got, err := e.invoices.Get(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusDraft, got.Status)
}

func TestCompleteEmptyInvoice(t *testing.T) {
	e := newEnv(t)
	a := e.product(t, "A", "", "1", "0", 10)
	inv := e.draft(t)

	_, err := e.invoices.Complete(context.Background(), inv.ID, nil)

	var is *InvalidStateError
	require.ErrorAs(t, err, &is)
	got, err := e.invoices.Get(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusDraft, got.Status)
	assertMoney(t, "0", got.TotalAmount)
	assert.Equal(t, 10, e.stock(t, a.ID))
}

func TestCompleteMissingInvoice(t *testing.T) {
	e := newEnv(t)

	_, err := e.invoices.Complete(context.Background(), 7, nil)

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestCompleteNegativeDiscount(t *testing.T) {
	e := newEnv(t)
	a := e.product(t, "A", "", "5", "0", 10)
	inv := e.draft(t)
	e.add(t, inv.ID, a.ID, 1)

	_, err := e.invoices.Complete(context.Background(), inv.ID, decPtr("-0.01"))

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "discount_amount", ve.Field)
	assert.Equal(t, 10, e.stock(t, a.ID))
}

func TestCompleteInsufficientStockRollsBackEveryLine(t *testing.T) {
	e := newEnv(t)
	plenty := e.product(t, "Plenty", "", "1", "0", 10)
	scarce := e.product(t, "Scarce", "", "1", "0", 5)
	inv := e.draft(t)
	e.add(t, inv.ID, plenty.ID, 3)
	e.add(t, inv.ID, scarce.ID, 5)

	// Stock sold elsewhere after the cart was filled.
	require.NoError(t, e.db.Model(&models.Product{}).Where("id = ?", scarce.ID).Update("stock_qty", 2).Error)

	_, err := e.invoices.Complete(context.Background(), inv.ID, nil)

	var ise *InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, "Scarce", ise.ProductName)
	assert.Equal(t, 2, ise.Available)
	assert.Equal(t, "Insufficient stock for Scarce. Available: 2", ise.Error())

	assert.Equal(t, 10, e.stock(t, plenty.ID), "earlier reservation rolled back")
	assert.Equal(t, 2, e.stock(t, scarce.ID))
	got, err := e.invoices.Get(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusDraft, got.Status)
}

func TestConcurrentCompletionsNeverOversell(t *testing.T) {
	e := newEnv(t)
	p := e.product(t, "Last units", "", "4", "0", 5)
	first, second := e.draft(t), e.draft(t)
	e.add(t, first.ID, p.ID, 5)
	e.add(t, second.ID, p.ID, 5)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []uint{first.ID, second.ID} {
		wg.Add(1)
		go func(i int, id uint) {
			defer wg.Done()
			_, errs[i] = e.invoices.Complete(context.Background(), id, nil)
		}(i, id)
	}
	wg.Wait()

	var ok, short int
	for _, err := range errs {
		var ise *InsufficientStockError
		switch {
		case err == nil:
			ok++
		case errors.As(err, &ise):
			short++
			assert.Equal(t, 0, ise.Available)
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, short)
	assert.Equal(t, 0, e.stock(t, p.ID))
}

func TestDeleteCompletedRestoresStock(t *testing.T) {
	e := newEnv(t)
	a := e.product(t, "A", "", "2", "0", 20)
	b := e.product(t, "B", "", "3", "0", 30)
	inv := e.draft(t)
	e.add(t, inv.ID, a.ID, 3)
	e.add(t, inv.ID, b.ID, 5)

	_, err := e.invoices.Complete(context.Background(), inv.ID, nil)
	require.NoError(t, err)
	require.Equal(t, 17, e.stock(t, a.ID))
	require.Equal(t, 25, e.stock(t, b.ID))

	require.NoError(t, e.invoices.Delete(context.Background(), inv.ID))

	assert.Equal(t, 20, e.stock(t, a.ID))
	assert.Equal(t, 30, e.stock(t, b.ID))
	_, err = e.invoices.Get(context.Background(), inv.ID)
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)

	var items int64
	require.NoError(t, e.db.Model(&models.InvoiceItem{}).Where("invoice_id = ?", inv.ID).Count(&items).Error)
	assert.Zero(t, items)
}

func TestDeleteDraftLeavesStockAlone(t *testing.T) {
	e := newEnv(t)
	a := e.product(t, "A", "", "2", "0", 20)
	inv := e.draft(t)
	e.add(t, inv.ID, a.ID, 4)

	require.NoError(t, e.invoices.Delete(context.Background(), inv.ID))

	assert.Equal(t, 20, e.stock(t, a.ID))
	var items int64
	require.NoError(t, e.db.Model(&models.InvoiceItem{}).Count(&items).Error)
	assert.Zero(t, items)
}

func TestDeleteMissingInvoice(t *testing.T) {
	e := newEnv(t)

	err := e.invoices.Delete(context.Background(), 3)

	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestInvoiceEventsFireAfterCommit(t *testing.T) {
	e := newEnv(t)
	a := e.product(t, "A", "", "2", "0", 20)
	inv := e.draft(t)
	e.add(t, inv.ID, a.ID, 1)

	var fired []string
	record := func(name string) func(context.Context, interface{}) {
		return func(_ context.Context, payload interface{}) {
			if got, ok := payload.(*models.Invoice); assert.True(t, ok) {
				assert.Equal(t, inv.ID, got.ID)
			}
			fired = append(fired, name)
		}
	}
	e.bus.Listen(EventInvoiceCompleted, record("completed"))
	e.bus.Listen(EventInvoiceDeleted, record("deleted"))

	_, err := e.invoices.Complete(context.Background(), inv.ID, nil)
	require.NoError(t, err)
	require.NoError(t, e.invoices.Delete(context.Background(), inv.ID))

	assert.Equal(t, []string{"completed", "deleted"}, fired)
}

type ledgerMock struct{ mock.Mock }

func (m *ledgerMock) Reserve(_ *gorm.DB, productID uint, qty int) (bool, error) {
	args := m.Called(productID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *ledgerMock) Release(_ *gorm.DB, productID uint, qty int) error {
	return m.Called(productID, qty).Error(0)
}

func TestCompleteLedgerFailureIsPersistenceError(t *testing.T) {
	e := newEnv(t)
	a := e.product(t, "A", "", "2", "0", 20)
	inv := e.draft(t)
	e.add(t, inv.ID, a.ID, 2)

	ledger := new(ledgerMock)
	ledger.On("Reserve", a.ID, 2).Return(false, errors.New("connection reset"))
	svc := NewInvoiceService(e.db, ledger, e.bus)

	_, err := svc.Complete(context.Background(), inv.ID, nil)

	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	ledger.AssertExpectations(t)
	got, err := e.invoices.Get(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusDraft, got.Status)
}

func TestDeleteLedgerFailureKeepsInvoice(t *testing.T) {
	e := newEnv(t)
	a := e.product(t, "A", "", "2", "0", 20)
	inv := e.draft(t)
	e.add(t, inv.ID, a.ID, 2)
	_, err := e.invoices.Complete(context.Background(), inv.ID, nil)
	require.NoError(t, err)

	ledger := new(ledgerMock)
	ledger.On("Release", a.ID, 2).Return(errors.New("disk full"))
	svc := NewInvoiceService(e.db, ledger, e.bus)

	err = svc.Delete(context.Background(), inv.ID)

	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	got, err := e.invoices.Get(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusCompleted, got.Status)
	assert.Equal(t, 18, e.stock(t, a.ID))
}

func TestListInvoices(t *testing.T) {
	e := newEnv(t)
	a := e.product(t, "A", "", "2", "0", 100)

	// 13th, 14th (two) and 15th of March.
	e.clock.t = e.clock.t.AddDate(0, 0, -1)
	older := e.draft(t)
	e.clock.t = e.clock.t.AddDate(0, 0, 1)
	mid := e.draft(t)
	e.add(t, mid.ID, a.ID, 1)
	e.add(t, mid.ID, e.product(t, "B", "", "1", "0", 5).ID, 1)
	_, err := e.invoices.Complete(context.Background(), mid.ID, nil)
	require.NoError(t, err)
	e.clock.t = e.clock.t.Add(13 * time.Hour) // 22:30 on the 14th
	late := e.draft(t)
	e.clock.t = e.clock.t.AddDate(0, 0, 1)
	newest := e.draft(t)

	ctx := context.Background()
	page := orm.NewPagination(1, 20)

	t.Run("newest first", func(t *testing.T) {
		rows, p, err := e.invoices.List(ctx, InvoiceQuery{Page: page})
		require.NoError(t, err)
		require.Len(t, rows, 4)
		assert.Equal(t, []uint{newest.ID, late.ID, mid.ID, older.ID}, []uint{rows[0].ID, rows[1].ID, rows[2].ID, rows[3].ID})
		assert.EqualValues(t, 4, p.Total)
		assert.Equal(t, 1, p.Pages)
	})

	t.Run("to includes the whole day", func(t *testing.T) {
		rows, _, err := e.invoices.List(ctx, InvoiceQuery{From: "2026-03-14", To: "2026-03-14", Page: page})
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, late.ID, rows[0].ID)
		assert.Equal(t, mid.ID, rows[1].ID)
		assert.EqualValues(t, 2, rows[1].ItemsCount)
	})

	t.Run("status", func(t *testing.T) {
		rows, _, err := e.invoices.List(ctx, InvoiceQuery{Status: "completed", Page: page})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, mid.ID, rows[0].ID)
		assertMoney(t, "3", rows[0].TotalAmount)
	})

	t.Run("paging", func(t *testing.T) {
		rows, p, err := e.invoices.List(ctx, InvoiceQuery{Page: orm.NewPagination(2, 3)})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, older.ID, rows[0].ID)
		assert.Equal(t, 2, p.Pages)
	})

	t.Run("bad date", func(t *testing.T) {
		_, _, err := e.invoices.List(ctx, InvoiceQuery{To: "14/03/2026", Page: page})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "to", ve.Field)
	})

	t.Run("bad status", func(t *testing.T) {
		_, _, err := e.invoices.List(ctx, InvoiceQuery{Status: "cancelled", Page: page})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
	})
}


func TestCompleteSurvivesFailedReload(t *testing.T) {
	e := newEnv(t)
	a := e.product(t, "A", "", "12.50", "18", 10)
	inv := e.draft(t)
	e.add(t, inv.ID, a.ID, 2)

	// Reads start failing once the completion row has been written.
	var down atomic.Bool
	require.NoError(t, e.db.Callback().Update().After("gorm:update").Register("test:invoice_written", func(db *gorm.DB) {
		if db.Statement.Table == "invoices" && db.Error == nil {
			down.Store(true)
		}
	}))
	require.NoError(t, e.db.Callback().Query().Before("gorm:query").Register("test:reads_down", func(db *gorm.DB) {
		if down.Load() {
			_ = db.AddError(errors.New("connection reset"))
		}
	}))

	var fired *models.Invoice
	e.bus.Listen(EventInvoiceCompleted, func(_ context.Context, payload interface{}) {
		fired, _ = payload.(*models.Invoice)
	})

	done, err := e.invoices.Complete(context.Background(), inv.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusCompleted, done.Status)
	assertMoney(t, "29.5", done.TotalAmount)
	assert.Len(t, done.Items, 1)

	require.NotNil(t, fired, "completion event fires without the reload")
	assert.Equal(t, inv.ID, fired.ID)

	down.Store(false)
	assert.Equal(t, 8, e.stock(t, a.ID))
}
