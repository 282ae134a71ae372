package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the lifecycle state of an invoice. Only the two values
// below exist; anything else is rejected when parsed or scanned.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusCompleted InvoiceStatus = "completed"
)

// ParseInvoiceStatus maps a client value onto a known status.
func ParseInvoiceStatus(s string) (InvoiceStatus, error) {
	switch st := InvoiceStatus(s); st {
	case InvoiceStatusDraft, InvoiceStatusCompleted:
		return st, nil
	default:
		return "", fmt.Errorf("unknown invoice status %q", s)
	}
}

// Transition validates moving from s to next. The only legal edge is
// draft → completed; deletion is not a status.
func (s InvoiceStatus) Transition(next InvoiceStatus) error {
	switch s {
	case InvoiceStatusDraft:
		if next == InvoiceStatusCompleted {
			return nil
		}
	case InvoiceStatusCompleted:
	default:
		return fmt.Errorf("unknown invoice status %q", string(s))
	}
	return fmt.Errorf("invoice cannot move from %s to %s", s, next)
}

// Value implements driver.Valuer.
func (s InvoiceStatus) Value() (driver.Value, error) {
	if _, err := ParseInvoiceStatus(string(s)); err != nil {
		return nil, err
	}
	return string(s), nil
}

// Scan implements sql.Scanner.
func (s *InvoiceStatus) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("invoice status: unsupported scan type %T", src)
	}
	st, err := ParseInvoiceStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// Invoice is a sale. Items can change only while it is a draft.
type Invoice struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	InvoiceNumber  string          `gorm:"size:32;uniqueIndex;not null" json:"invoice_number"`
	CustomerID     *uint           `gorm:"index" json:"customer_id"`
	Status         InvoiceStatus   `gorm:"size:20;not null;index" json:"status"`
	SubtotalAmount decimal.Decimal `gorm:"type:decimal(18,6);not null" json:"subtotal_amount"`
	TotalTax       decimal.Decimal `gorm:"type:decimal(18,6);not null" json:"total_tax"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,6);not null" json:"discount_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(18,6);not null" json:"total_amount"`
	CreatedAt      time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	Customer *Customer    `gorm:"foreignKey:CustomerID" json:"-"`
	Items    []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`
}

// IsDraft reports whether items may still be changed.
func (i *Invoice) IsDraft() bool { return i.Status == InvoiceStatusDraft }

// InvoiceItem is one line of an invoice. Price and tax rate are copied from
// the product when the line is created.
type InvoiceItem struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	InvoiceID    uint            `gorm:"not null;index" json:"invoice_id"`
	ProductID    uint            `gorm:"not null;index" json:"product_id"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(18,6);not null" json:"unit_price"`
	TaxPercent   decimal.Decimal `gorm:"type:decimal(9,4);not null" json:"tax_percent"`
	LineSubtotal decimal.Decimal `gorm:"type:decimal(18,6);not null" json:"line_subtotal"`
	LineTax      decimal.Decimal `gorm:"type:decimal(18,6);not null" json:"line_tax"`
	LineTotal    decimal.Decimal `gorm:"type:decimal(18,6);not null" json:"line_total"`

	Product     *Product `gorm:"foreignKey:ProductID" json:"-"`
	ProductName string   `gorm:"-" json:"product_name"`
}

// InvoiceSummary is a list row: header fields plus the line count.
type InvoiceSummary struct {
	ID             uint            `json:"id"`
	InvoiceNumber  string          `json:"invoice_number"`
	CustomerID     *uint           `json:"customer_id"`
	Status         InvoiceStatus   `json:"status"`
	SubtotalAmount decimal.Decimal `json:"subtotal_amount"`
	TotalTax       decimal.Decimal `json:"total_tax"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	ItemsCount     int64           `json:"items_count"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// InvoiceSequence is the per-day counter behind invoice numbers.
type InvoiceSequence struct {
	Day     string `gorm:"primaryKey;size:8"`
	Counter int    `gorm:"not null"`
}
