package repositories

import (
	"errors"
	"time"

	"github.com/Shreehariballakkuraya/ScanPOS/app/models"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/orm"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InvoiceRepository handles database operations for Invoice and InvoiceItem.
// Construct it over the transaction the caller is running.
type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) Create(inv *models.Invoice) error {
	return r.db.Omit(clause.Associations).Create(inv).Error
}

// FindByID loads the invoice header without items.
func (r *InvoiceRepository) FindByID(id uint) (*models.Invoice, error) {
	var inv models.Invoice
	if err := r.db.First(&inv, id).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// FindForUpdate loads the invoice header and locks its row until the
// transaction ends.
func (r *InvoiceRepository) FindForUpdate(id uint) (*models.Invoice, error) {
	var inv models.Invoice
	if err := r.db.Scopes(forUpdate).First(&inv, id).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// FindWithItems loads the invoice, its items in insertion order, and each
// item's product name.
func (r *InvoiceRepository) FindWithItems(id uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := r.db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("invoice_items.id ASC") }).
		Preload("Items.Product").
		First(&inv, id).Error
	if err != nil {
		return nil, err
	}
	for i := range inv.Items {
		fillProductName(&inv.Items[i])
	}
	return &inv, nil
}

// Items returns the invoice's lines in insertion order.
func (r *InvoiceRepository) Items(invoiceID uint) ([]models.InvoiceItem, error) {
	var items []models.InvoiceItem
	err := r.db.Where("invoice_id = ?", invoiceID).Order("id ASC").Find(&items).Error
	return items, err
}

// FindItem loads one line, scoped to its invoice.
func (r *InvoiceRepository) FindItem(invoiceID, itemID uint) (*models.InvoiceItem, error) {
	var item models.InvoiceItem
	err := r.db.Where("id = ? AND invoice_id = ?", itemID, invoiceID).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindItemByProduct finds the line for productID, if the cart has one.
func (r *InvoiceRepository) FindItemByProduct(invoiceID, productID uint) (*models.InvoiceItem, error) {
	var item models.InvoiceItem
	err := r.db.Where("invoice_id = ? AND product_id = ?", invoiceID, productID).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *InvoiceRepository) CreateItem(item *models.InvoiceItem) error {
	return r.db.Omit(clause.Associations).Create(item).Error
}

// SaveItemAmounts writes the quantity and the computed line money of item.
func (r *InvoiceRepository) SaveItemAmounts(item *models.InvoiceItem) error {
	return r.db.Model(item).
		Select("quantity", "line_subtotal", "line_tax", "line_total").
		Updates(item).Error
}

func (r *InvoiceRepository) DeleteItem(item *models.InvoiceItem) error {
	return r.db.Delete(item).Error
}

// TouchUpdatedAt stamps the invoice as modified.
func (r *InvoiceRepository) TouchUpdatedAt(id uint, at time.Time) error {
	return r.db.Model(&models.Invoice{}).Where("id = ?", id).UpdateColumn("updated_at", at).Error
}

// ErrInvoiceNotDraft is returned by SaveCompletion when the row left the
// draft state after it was read.
var ErrInvoiceNotDraft = errors.New("invoice is no longer a draft")

// SaveCompletion writes the status and money fields of inv, provided the
// stored row is still a draft.
func (r *InvoiceRepository) SaveCompletion(inv *models.Invoice) error {
	res := r.db.Model(&models.Invoice{}).
		Where("id = ? AND status = ?", inv.ID, models.InvoiceStatusDraft).
		Updates(map[string]interface{}{
			"status":          inv.Status,
			"subtotal_amount": inv.SubtotalAmount,
			"total_tax":       inv.TotalTax,
			"discount_amount": inv.DiscountAmount,
			"total_amount":    inv.TotalAmount,
			"updated_at":      inv.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return ErrInvoiceNotDraft
	}
	return nil
}

// Delete removes the invoice and all of its items.
func (r *InvoiceRepository) Delete(id uint) error {
	if err := r.db.Where("invoice_id = ?", id).Delete(&models.InvoiceItem{}).Error; err != nil {
		return err
	}
	return r.db.Delete(&models.Invoice{}, id).Error
}

// InvoiceFilter narrows List. Zero values mean "no constraint"; To is exclusive.
type InvoiceFilter struct {
	From   time.Time
	To     time.Time
	Status models.InvoiceStatus
}

// List returns one page of invoice summaries, newest first.
func (r *InvoiceRepository) List(f InvoiceFilter, p orm.Pagination) ([]models.InvoiceSummary, int64, error) {
	q := r.db.Model(&models.Invoice{}).Scopes(orm.CreatedBetween("invoices.created_at", f.From, f.To))
	if f.Status != "" {
		q = q.Where("invoices.status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.InvoiceSummary
	err := q.Select("invoices.*, (SELECT COUNT(*) FROM invoice_items WHERE invoice_items.invoice_id = invoices.id) AS items_count").
		Order("invoices.created_at DESC, invoices.id DESC").
		Scopes(orm.Paginate(p)).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// forUpdate locks the selected invoice row. SQLite serialises writers itself
// and SQL Server takes the lock through a table hint.
func forUpdate(db *gorm.DB) *gorm.DB {
	switch db.Dialector.Name() {
	case "sqlite":
		return db
	case "sqlserver":
		return db.Clauses(clause.From{Tables: []clause.Table{
			{Name: "invoices WITH (UPDLOCK, ROWLOCK)", Raw: true},
		}})
	default:
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
}

func fillProductName(item *models.InvoiceItem) {
	if item.Product != nil {
		item.ProductName = item.Product.Name
	} else {
		item.ProductName = "Unknown"
	}
}
