package services

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shreehariballakkuraya/ScanPOS/app/models"
)

// memoryStore is an in-process cache.Store.
type memoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryStore() *memoryStore { return &memoryStore{data: map[string][]byte{}} }

func (m *memoryStore) Get(_ context.Context, key string, dest interface{}) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	return ok && json.Unmarshal(raw, dest) == nil
}

func (m *memoryStore) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = raw
	return nil
}

func (m *memoryStore) DelPrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
		}
	}
	return nil
}

func (m *memoryStore) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

// sell completes a one-line invoice at the env's current time.
func (e *env) sell(t *testing.T, p *models.Product, qty int, discount string) *models.Invoice {
	t.Helper()
	inv := e.draft(t)
	e.add(t, inv.ID, p.ID, qty)
	done, err := e.invoices.Complete(context.Background(), inv.ID, decPtr(discount))
	require.NoError(t, err)
	return done
}

func TestSalesReport(t *testing.T) {
	e := newEnv(t)
	tea := e.product(t, "Tea", "T-1", "2", "10", 100)
	cake := e.product(t, "Cake", "", "5", "0", 100)

	e.clock.t = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e.sell(t, tea, 1, "0") // outside the range
	e.clock.t = time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	e.sell(t, tea, 4, "0.80")
	e.clock.t = time.Date(2026, 3, 12, 23, 59, 0, 0, time.UTC)
	e.sell(t, cake, 2, "0")
	e.draft(t) // drafts never count

	svc := NewReportService(e.db, nil, time.Minute, 10).WithClock(e.clock.now)
	r, err := svc.Sales(context.Background(), "2026-03-05", "2026-03-12")
	require.NoError(t, err)

	assert.Equal(t, "2026-03-05", r.FromDate)
	assert.Equal(t, "2026-03-12", r.ToDate)
	assert.EqualValues(t, 2, r.InvoiceCount)
	assertMoney(t, "18", r.TotalSales) // 8.8 - 0.8 + 10
	assertMoney(t, "0.8", r.TotalTax)
	assertMoney(t, "0.8", r.TotalDiscount)

	require.Len(t, r.TopProducts, 2)
	assert.Equal(t, "Tea", r.TopProducts[0].ProductName)
	assert.Equal(t, "T-1", r.TopProducts[0].SKU)
	assert.EqualValues(t, 4, r.TopProducts[0].TotalQuantity)
	assertMoney(t, "8.8", r.TopProducts[0].TotalRevenue)
	assert.Equal(t, "", r.TopProducts[1].SKU)
}

func TestSalesReportDefaultsToLast30Days(t *testing.T) {
	e := newEnv(t)
	svc := NewReportService(e.db, nil, time.Minute, 10).WithClock(e.clock.now)

	r, err := svc.Sales(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-12", r.FromDate)
	assert.Equal(t, "2026-03-14", r.ToDate)
	assert.NotNil(t, r.TopProducts)

	_, err = svc.Sales(context.Background(), "yesterday", "")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "from", ve.Field)

	r, err = svc.Sales(context.Background(), "2026-03-01T00:00:00.000Z", "2026-03-02")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01", r.FromDate)
}

func TestDashboard(t *testing.T) {
	e := newEnv(t)
	p := e.product(t, "Milk", "M-1", "1.5", "0", 30)
	e.product(t, "Low", "L-1", "1", "0", 3)

	// Saturday 14 March 2026: week starts Monday the 9th.
	e.clock.t = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	e.sell(t, p, 2, "0")
	e.clock.t = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	e.sell(t, p, 4, "0")
	e.clock.t = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	last := e.sell(t, p, 6, "1")

	svc := NewReportService(e.db, nil, time.Minute, 10).WithClock(e.clock.now)
	d, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 1, d.Today.InvoiceCount)
	assertMoney(t, "8", d.Today.TotalSales)
	assert.EqualValues(t, 2, d.Week.InvoiceCount)
	assertMoney(t, "14", d.Week.TotalSales)
	assert.EqualValues(t, 3, d.Month.InvoiceCount)
	assertMoney(t, "17", d.Month.TotalSales)

	assert.EqualValues(t, 2, d.ProductCount)
	require.Len(t, d.LowStock, 1)
	assert.Equal(t, "Low", d.LowStock[0].Name)
	assert.Equal(t, 3, d.LowStock[0].StockQty)

	require.Len(t, d.RecentInvoices, 3)
	assert.Equal(t, last.ID, d.RecentInvoices[0].ID)
	assert.Nil(t, d.RecentInvoices[0].CustomerName)
	assertMoney(t, "8", d.RecentInvoices[0].GrandTotal)
}

func TestReportsCacheUntilSalesChange(t *testing.T) {
	e := newEnv(t)
	p := e.product(t, "Milk", "", "2", "0", 30)
	store := newMemoryStore()
	svc := NewReportService(e.db, store, time.Minute, 10).WithClock(e.clock.now)
	svc.Listen(e.bus)
	ctx := context.Background()

	first, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, first.Today.InvoiceCount)
	_, err = svc.Sales(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, 2, store.len())

	// A stock change alone does not invalidate.
	require.NoError(t, e.db.Model(p).Update("stock_qty", 1).Error)
	cached, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Empty(t, cached.LowStock)

	inv := e.sell(t, p, 1, "0")
	assert.Equal(t, 0, store.len())

	fresh, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, fresh.Today.InvoiceCount)

	require.NoError(t, e.invoices.Delete(ctx, inv.ID))
	assert.Equal(t, 0, store.len())
}
