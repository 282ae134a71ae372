// Package migrations holds the ScanPOS schema. Each migration registers
// itself from init(); importing the package is enough to make them
// available to `scanpos migrate`.
package migrations

import (
	"github.com/Shreehariballakkuraya/ScanPOS/app/models"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/migration"
	"gorm.io/gorm"
)

func init() {
	migration.Register("20260101000000_create_users_table", table(&models.User{}, "users"))
	migration.Register("20260101000001_create_customers_table", table(&models.Customer{}, "customers"))
	migration.Register("20260101000002_create_products_table", table(&models.Product{}, "products"))
	migration.Register("20260101000003_create_invoices_table", table(&models.Invoice{}, "invoices"))
	migration.Register("20260101000004_create_invoice_items_table", table(&models.InvoiceItem{}, "invoice_items"))
	migration.Register("20260101000005_create_invoice_sequences_table", table(&models.InvoiceSequence{}, "invoice_sequences"))
}

// createTable migrates one model up and drops its table down.
type createTable struct {
	model interface{}
	name  string
}

func table(model interface{}, name string) *createTable {
	return &createTable{model: model, name: name}
}

func (m *createTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(m.model)
}

func (m *createTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(m.name)
}
