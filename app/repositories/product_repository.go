package repositories

import (
	"fmt"
	"strings"

	"github.com/Shreehariballakkuraya/ScanPOS/app/models"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/orm"
	"gorm.io/gorm"
)

// ProductRepository handles database operations for Product.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// FindByID looks up a product regardless of its active flag.
func (r *ProductRepository) FindByID(id uint) (*models.Product, error) {
	var p models.Product
	if err := r.db.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// FindActiveByBarcode only matches products that are switched on.
func (r *ProductRepository) FindActiveByBarcode(barcode string) (*models.Product, error) {
	var p models.Product
	err := r.db.Where("barcode = ? AND is_active = ?", barcode, true).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// BarcodeTaken reports whether another product already uses barcode.
func (r *ProductRepository) BarcodeTaken(barcode string, exceptID uint) (bool, error) {
	var n int64
	q := r.db.Model(&models.Product{}).Where("barcode = ?", barcode)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *ProductRepository) Create(p *models.Product) error {
	return r.db.Create(p).Error
}

// Update writes every catalogue field of p, including zero values.
func (r *ProductRepository) Update(p *models.Product) error {
	return r.db.Model(p).
		Select("name", "barcode", "price", "tax_percent", "stock_qty", "is_active", "updated_at").
		Updates(p).Error
}

// ProductFilter narrows List.
type ProductFilter struct {
	Search       string // name or barcode substring
	ShowInactive bool
}

// List returns one page of products ordered by name.
func (r *ProductRepository) List(f ProductFilter, p orm.Pagination) ([]models.Product, int64, error) {
	q := r.db.Model(&models.Product{})
	if !f.ShowInactive {
		q = q.Where("is_active = ?", true)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(barcode) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []models.Product
	if err := q.Scopes(orm.Paginate(p)).Order("name ASC, id ASC").Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// CountActive is the number of sellable products.
func (r *ProductRepository) CountActive() (int64, error) {
	var n int64
	err := r.db.Model(&models.Product{}).Where("is_active = ?", true).Count(&n).Error
	return n, err
}

// LowStock lists active products with stock_qty below threshold, lowest first.
func (r *ProductRepository) LowStock(threshold int) ([]models.Product, error) {
	var out []models.Product
	err := r.db.Where("is_active = ? AND stock_qty < ?", true, threshold).
		Order("stock_qty ASC, name ASC").
		Find(&out).Error
	return out, err
}

// StockLedger moves products.stock_qty. It is the only code path that
// changes stock outside the catalogue's own create/update.
type StockLedger struct{}

// Reserve takes qty units from the product. The decrement is guarded in SQL
// so two transactions can never both take the last units; it reports false
// when stock is short and changes nothing.
func (StockLedger) Reserve(tx *gorm.DB, productID uint, qty int) (bool, error) {
	if qty <= 0 {
		return false, fmt.Errorf("reserve: quantity must be positive, got %d", qty)
	}
	res := tx.Model(&models.Product{}).
		Where("id = ? AND stock_qty >= ?", productID, qty).
		UpdateColumn("stock_qty", gorm.Expr("stock_qty - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Release returns qty units to the product.
func (StockLedger) Release(tx *gorm.DB, productID uint, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("release: quantity must be positive, got %d", qty)
	}
	res := tx.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock_qty", gorm.Expr("stock_qty + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("release: product %d: %w", productID, gorm.ErrRecordNotFound)
	}
	return nil
}
