package services

import (
	"gorm.io/gorm"

	"github.com/Shreehariballakkuraya/ScanPOS/app/models"
	"github.com/Shreehariballakkuraya/ScanPOS/app/repositories"
)

// StockLedger is the only way invoice code changes products.stock_qty.
// Both methods run inside the caller's transaction.
type StockLedger interface {
	// Reserve takes qty units if the product has them and reports whether
	// it did. A false result leaves stock untouched.
	Reserve(tx *gorm.DB, productID uint, qty int) (bool, error)
	// Release puts qty units back.
	Release(tx *gorm.DB, productID uint, qty int) error
}

var _ StockLedger = repositories.StockLedger{}

// reserveItems takes stock for every line of an invoice. The first line that
// cannot be covered aborts with an InsufficientStockError naming the product.
func reserveItems(tx *gorm.DB, ledger StockLedger, items []models.InvoiceItem) error {
	products := repositories.NewProductRepository(tx)
	for _, item := range items {
		ok, err := ledger.Reserve(tx, item.ProductID, item.Quantity)
		if err != nil {
			return persistence("reserve stock", err)
		}
		if ok {
			continue
		}
		p, err := products.FindByID(item.ProductID)
		if err != nil {
			return persistence("reserve stock", notFound(err, "Product", item.ProductID))
		}
		return insufficient(p)
	}
	return nil
}

// releaseItems gives back the stock of every line of a completed invoice.
func releaseItems(tx *gorm.DB, ledger StockLedger, items []models.InvoiceItem) error {
	for _, item := range items {
		if err := ledger.Release(tx, item.ProductID, item.Quantity); err != nil {
			return persistence("release stock", err)
		}
	}
	return nil
}

func totalQuantity(items []models.InvoiceItem) int {
	n := 0
	for _, item := range items {
		n += item.Quantity
	}
	return n
}
