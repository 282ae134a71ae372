package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Money is rendered as JSON numbers, e.g. "price": 12.5.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is a catalogue entry. StockQty is the shared pool that completed
// invoices draw from; it never goes negative.
type Product struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	Name       string          `gorm:"size:255;not null;index" json:"name"`
	Barcode    *string         `gorm:"size:64;uniqueIndex" json:"barcode"`
	Price      decimal.Decimal `gorm:"type:decimal(18,6);not null" json:"price"`
	TaxPercent decimal.Decimal `gorm:"type:decimal(9,4);not null" json:"tax_percent"`
	StockQty   int             `gorm:"not null;check:stock_qty >= 0" json:"stock_qty"`
	IsActive   bool            `gorm:"not null;index" json:"is_active"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
