package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Shreehariballakkuraya/ScanPOS/app/models"
	"github.com/Shreehariballakkuraya/ScanPOS/app/repositories"
	"github.com/Shreehariballakkuraya/ScanPOS/internal/testdb"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/event"
)

// clock is a settable time source for services under test.
type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

type env struct {
	db       *gorm.DB
	bus      *event.Bus
	clock    *clock
	invoices *InvoiceService
	cart     *CartService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testdb.Open(t)
	bus := event.New()
	clk := &clock{t: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)}
	return &env{
		db:       db,
		bus:      bus,
		clock:    clk,
		invoices: NewInvoiceService(db, repositories.StockLedger{}, bus).WithClock(clk.now),
		cart:     NewCartService(db),
	}
}

func (e *env) product(t *testing.T, name, barcode, price, tax string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:       name,
		Price:      decimal.RequireFromString(price),
		TaxPercent: decimal.RequireFromString(tax),
		StockQty:   stock,
		IsActive:   true,
	}
	if barcode != "" {
		p.Barcode = &barcode
	}
	require.NoError(t, e.db.Create(p).Error)
	return p
}

func (e *env) stock(t *testing.T, productID uint) int {
	t.Helper()
	var p models.Product
	require.NoError(t, e.db.First(&p, productID).Error)
	return p.StockQty
}

func (e *env) draft(t *testing.T) *models.Invoice {
	t.Helper()
	inv, err := e.invoices.Create(context.Background(), nil)
	require.NoError(t, err)
	return inv
}

func (e *env) add(t *testing.T, invoiceID, productID uint, qty int) *AddResult {
	t.Helper()
	res, err := e.cart.AddItem(context.Background(), invoiceID, ProductRef{ID: &productID}, qty)
	require.NoError(t, err)
	return res
}

func assertMoney(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s %v", want, got.String(), msgAndArgs)
}

func intPtr(n int) *int { return &n }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
