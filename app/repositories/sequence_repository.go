package repositories

import (
	"github.com/Shreehariballakkuraya/ScanPOS/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SequenceRepository hands out per-day invoice counters.
type SequenceRepository struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

// Next increments the counter for day (YYYYMMDD) and returns the new value.
// The first call for a day returns 1. The upsert takes the row lock, so
// concurrent transactions queue behind each other instead of reading the
// same value.
func (r *SequenceRepository) Next(day string) (int, error) {
	seq := models.InvoiceSequence{Day: day, Counter: 1}
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "day"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"counter": gorm.Expr("invoice_sequences.counter + 1"),
		}),
	}).Create(&seq).Error
	if err != nil {
		return 0, err
	}

	if err := r.db.Where("day = ?", day).First(&seq).Error; err != nil {
		return 0, err
	}
	return seq.Counter, nil
}
