package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesReport aggregates completed invoices created in [FromDate, ToDate].
type SalesReport struct {
	FromDate      string          `json:"from_date"`
	ToDate        string          `json:"to_date"`
	TotalSales    decimal.Decimal `json:"total_sales"`
	TotalTax      decimal.Decimal `json:"total_tax"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
	InvoiceCount  int64           `json:"invoice_count"`
	TopProducts   []TopProduct    `json:"top_products"`
}

type TopProduct struct {
	ProductID     uint            `json:"product_id"`
	ProductName   string          `json:"product_name"`
	SKU           string          `json:"sku"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

// PeriodSales is the completed turnover since the start of a period.
type PeriodSales struct {
	TotalSales   decimal.Decimal `json:"total_sales"`
	InvoiceCount int64           `json:"invoice_count"`
}

type Dashboard struct {
	Today          PeriodSales       `json:"today"`
	Week           PeriodSales       `json:"week"`
	Month          PeriodSales       `json:"month"`
	ProductCount   int64             `json:"product_count"`
	LowStock       []LowStockProduct `json:"low_stock"`
	RecentInvoices []RecentInvoice   `json:"recent_invoices"`
}

type LowStockProduct struct {
	ID       uint            `json:"id"`
	Name     string          `json:"name"`
	SKU      string          `json:"sku"`
	StockQty int             `json:"stock_qty"`
	Price    decimal.Decimal `json:"price"`
}

type RecentInvoice struct {
	ID            uint            `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerName  *string         `json:"customer_name"`
	Status        InvoiceStatus   `json:"status"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	CreatedAt     time.Time       `json:"created_at"`
}
