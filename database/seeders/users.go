package seeders

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Shreehariballakkuraya/ScanPOS/app/models"
	"github.com/Shreehariballakkuraya/ScanPOS/config"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/auth"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/rbac"
)

const defaultAdminEmail = "admin@scanpos.com"

func init() {
	Register("admin user", seedAdmin)
}

// seedAdmin creates the first admin unless the email is already taken.
// SEED_ADMIN_PASSWORD overrides the demo password.
func seedAdmin(db *gorm.DB) (int, error) {
	email := config.Get("SEED_ADMIN_EMAIL", defaultAdminEmail)

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return 0, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	hash, err := auth.HashPassword(config.Get("SEED_ADMIN_PASSWORD", "admin123"))
	if err != nil {
		return 0, err
	}
	admin := &models.User{
		Name:         "Admin User",
		Email:        email,
		PasswordHash: hash,
		Role:         rbac.RoleAdmin,
		IsActive:     true,
	}
	if err := db.Create(admin).Error; err != nil {
		return 0, err
	}
	return 1, nil
}
