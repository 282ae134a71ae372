package seeders

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Shreehariballakkuraya/ScanPOS/app/models"
)

func init() {
	Register("demo catalog", seedProducts)
}

var demoCatalog = []struct {
	name, barcode, price, tax string
	stock                     int
}{
	{"Whole Milk 1L", "8901030865278", "1.20", "5", 48},
	{"Brown Bread 400g", "8901063092320", "2.10", "5", 30},
	{"Free Range Eggs x12", "5000128104517", "3.85", "0", 24},
	{"Basmati Rice 5kg", "8906010500375", "11.50", "5", 12},
	{"Instant Coffee 200g", "7613035239814", "6.75", "12", 20},
	{"Green Tea x25", "8901030702382", "2.95", "12", 40},
	{"Dark Chocolate 100g", "7622210449283", "1.80", "18", 60},
	{"Bath Soap x3", "8901030792179", "2.40", "18", 35},
	{"Toothpaste 150g", "8901314010325", "1.95", "18", 4},
	{"Sparkling Water 500ml", "5449000000996", "0.90", "12", 96},
}

// seedProducts adds demo products whose barcode is not in the catalog yet.
func seedProducts(db *gorm.DB) (int, error) {
	created := 0
	for _, d := range demoCatalog {
		var n int64
		if err := db.Model(&models.Product{}).Where("barcode = ?", d.barcode).Count(&n).Error; err != nil {
			return created, err
		}
		if n > 0 {
			continue
		}

		barcode := d.barcode
		p := &models.Product{
			Name:       d.name,
			Barcode:    &barcode,
			Price:      decimal.RequireFromString(d.price),
			TaxPercent: decimal.RequireFromString(d.tax),
			StockQty:   d.stock,
			IsActive:   true,
		}
		if err := db.Create(p).Error; err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
