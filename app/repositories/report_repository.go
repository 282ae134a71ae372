package repositories

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Shreehariballakkuraya/ScanPOS/app/models"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/orm"
)

// ReportRepository runs the read-only aggregate queries behind reports.
type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// SalesTotals are the summed money columns of a set of completed invoices.
type SalesTotals struct {
	Sales    decimal.Decimal
	Tax      decimal.Decimal
	Discount decimal.Decimal
	Count    int64
}

// CompletedTotals sums completed invoices created in [from, to). A zero
// bound is open. Sums are taken in Go so no database float creeps in.
func (r *ReportRepository) CompletedTotals(from, to time.Time) (SalesTotals, error) {
	var rows []struct {
		TotalAmount    decimal.Decimal
		TotalTax       decimal.Decimal
		DiscountAmount decimal.Decimal
	}
	err := r.db.Model(&models.Invoice{}).
		Select("total_amount", "total_tax", "discount_amount").
		Where("status = ?", models.InvoiceStatusCompleted).
		Scopes(orm.CreatedBetween("created_at", from, to)).
		Scan(&rows).Error
	if err != nil {
		return SalesTotals{}, err
	}

	t := SalesTotals{Sales: decimal.Zero, Tax: decimal.Zero, Discount: decimal.Zero, Count: int64(len(rows))}
	for _, row := range rows {
		t.Sales = t.Sales.Add(row.TotalAmount)
		t.Tax = t.Tax.Add(row.TotalTax)
		t.Discount = t.Discount.Add(row.DiscountAmount)
	}
	return t, nil
}

// TopProducts ranks products by quantity sold on completed invoices
// created in [from, to).
func (r *ReportRepository) TopProducts(from, to time.Time, limit int) ([]models.TopProduct, error) {
	var out []models.TopProduct
	err := r.db.Table("invoice_items").
		Select(`products.id AS product_id,
			products.name AS product_name,
			COALESCE(products.barcode, '') AS sku,
			SUM(invoice_items.quantity) AS total_quantity,
			COALESCE(SUM(invoice_items.line_total), 0) AS total_revenue`).
		Joins("JOIN invoices ON invoices.id = invoice_items.invoice_id").
		Joins("JOIN products ON products.id = invoice_items.product_id").
		Where("invoices.status = ?", models.InvoiceStatusCompleted).
		Scopes(orm.CreatedBetween("invoices.created_at", from, to)).
		Group("products.id, products.name, products.barcode").
		Order("total_quantity DESC, products.id ASC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}

// RecentCompleted lists the newest completed invoices with the customer name.
func (r *ReportRepository) RecentCompleted(limit int) ([]models.RecentInvoice, error) {
	var out []models.RecentInvoice
	err := r.db.Table("invoices").
		Select(`invoices.id, invoices.invoice_number, customers.name AS customer_name,
			invoices.status, invoices.total_amount AS grand_total, invoices.created_at`).
		Joins("LEFT JOIN customers ON customers.id = invoices.customer_id").
		Where("invoices.status = ?", models.InvoiceStatusCompleted).
		Order("invoices.created_at DESC, invoices.id DESC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}
