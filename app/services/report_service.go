package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Shreehariballakkuraya/ScanPOS/app/models"
	"github.com/Shreehariballakkuraya/ScanPOS/app/repositories"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/cache"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/event"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/logger"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/validate"
)

const (
	reportCachePrefix = "reports:"
	topProductsLimit  = 10
	recentLimit       = 5
	defaultReportDays = 30
)

// ReportService builds sales reports and the dashboard from completed
// invoices. Results are cached until the TTL passes or an invoice is
// completed or deleted.
type ReportService struct {
	db       *gorm.DB
	cache    cache.Store
	ttl      time.Duration
	lowStock int
	now      func() time.Time
}

func NewReportService(db *gorm.DB, store cache.Store, ttl time.Duration, lowStockThreshold int) *ReportService {
	if store == nil {
		store = cache.Nop{}
	}
	return &ReportService{db: db, cache: store, ttl: ttl, lowStock: lowStockThreshold, now: time.Now}
}

func (s *ReportService) WithClock(now func() time.Time) *ReportService {
	s.now = now
	return s
}

// Listen drops cached reports whenever sales change.
func (s *ReportService) Listen(bus *event.Bus) {
	invalidate := func(ctx context.Context, _ interface{}) { s.Invalidate(ctx) }
	bus.Listen(EventInvoiceCompleted, invalidate)
	bus.Listen(EventInvoiceDeleted, invalidate)
}

// Invalidate removes every cached report.
func (s *ReportService) Invalidate(ctx context.Context) {
	if err := s.cache.DelPrefix(ctx, reportCachePrefix); err != nil {
		logger.WithCtx(ctx).Warn("report cache invalidation failed", "error", err)
	}
}

// Sales reports completed invoices created between from and to, both
// inclusive days. Either may be YYYY-MM-DD or RFC 3339. With no to the report
// ends today; with no from it starts 30 days before to.
func (s *ReportService) Sales(ctx context.Context, from, to string) (*models.SalesReport, error) {
	var toDate time.Time
	if to == "" {
		toDate, _ = dayBounds(s.now())
	} else {
		t, err := validate.ParseDate(to)
		if err != nil {
			return nil, &ValidationError{Field: "to", Msg: "Invalid to date format. Use YYYY-MM-DD or ISO format"}
		}
		toDate = t.UTC()
	}

	var fromDate time.Time
	if from == "" {
		fromDate = toDate.AddDate(0, 0, -defaultReportDays)
	} else {
		t, err := validate.ParseDate(from)
		if err != nil {
			return nil, &ValidationError{Field: "from", Msg: "Invalid from date format. Use YYYY-MM-DD or ISO format"}
		}
		fromDate = t.UTC()
	}
	end := toDate.AddDate(0, 0, 1)

	key := fmt.Sprintf("%ssales:%d:%d", reportCachePrefix, fromDate.Unix(), end.Unix())
	var report models.SalesReport
	if s.cache.Get(ctx, key, &report) {
		return &report, nil
	}

	reports := repositories.NewReportRepository(s.db.WithContext(ctx))
	totals, err := reports.CompletedTotals(fromDate, end)
	if err != nil {
		return nil, persistence("sales report", err)
	}
	top, err := reports.TopProducts(fromDate, end, topProductsLimit)
	if err != nil {
		return nil, persistence("sales report", err)
	}
	if top == nil {
		top = []models.TopProduct{}
	}

	report = models.SalesReport{
		FromDate:      fromDate.Format(invoiceDateLayout),
		ToDate:        toDate.Format(invoiceDateLayout),
		TotalSales:    totals.Sales,
		TotalTax:      totals.Tax,
		TotalDiscount: totals.Discount,
		InvoiceCount:  totals.Count,
		TopProducts:   top,
	}
	s.store(ctx, key, report)
	return &report, nil
}

// Dashboard summarises today, this week (from Monday) and this month, plus
// catalogue health and the latest sales. Periods are UTC.
func (s *ReportService) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	today, _ := dayBounds(s.now())
	weekStart := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)

	key := fmt.Sprintf("%sdashboard:%s", reportCachePrefix, today.Format("20060102"))
	var d models.Dashboard
	if s.cache.Get(ctx, key, &d) {
		return &d, nil
	}

	db := s.db.WithContext(ctx)
	reports := repositories.NewReportRepository(db)
	periods := []struct {
		start time.Time
		out   *models.PeriodSales
	}{
		{today, &d.Today},
		{weekStart, &d.Week},
		{monthStart, &d.Month},
	}
	for _, p := range periods {
		t, err := reports.CompletedTotals(p.start, time.Time{})
		if err != nil {
			return nil, persistence("dashboard", err)
		}
		*p.out = models.PeriodSales{TotalSales: t.Sales, InvoiceCount: t.Count}
	}

	products := repositories.NewProductRepository(db)
	count, err := products.CountActive()
	if err != nil {
		return nil, persistence("dashboard", err)
	}
	d.ProductCount = count

	low, err := products.LowStock(s.lowStock)
	if err != nil {
		return nil, persistence("dashboard", err)
	}
	d.LowStock = make([]models.LowStockProduct, 0, len(low))
	for _, p := range low {
		sku := ""
		if p.Barcode != nil {
			sku = *p.Barcode
		}
		d.LowStock = append(d.LowStock, models.LowStockProduct{
			ID: p.ID, Name: p.Name, SKU: sku, StockQty: p.StockQty, Price: p.Price,
		})
	}

	recent, err := reports.RecentCompleted(recentLimit)
	if err != nil {
		return nil, persistence("dashboard", err)
	}
	if recent == nil {
		recent = []models.RecentInvoice{}
	}
	d.RecentInvoices = recent

	s.store(ctx, key, d)
	return &d, nil
}

func (s *ReportService) store(ctx context.Context, key string, value interface{}) {
	if s.ttl <= 0 {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		logger.WithCtx(ctx).Warn("report cache write failed", "key", key, "error", err)
	}
}

// dayBounds returns the UTC day containing t as [start, next start).
func dayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.UTC().Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}
