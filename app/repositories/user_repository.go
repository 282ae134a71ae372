package repositories

import (
	"strings"

	"github.com/Shreehariballakkuraya/ScanPOS/app/models"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/orm"
	"gorm.io/gorm"
)

// UserRepository handles database operations for User.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail looks up a user by email, case-insensitively.
func (r *UserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID looks up a user by primary key.
func (r *UserRepository) FindByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// EmailTaken reports whether another user already has email.
func (r *UserRepository) EmailTaken(email string, exceptID uint) (bool, error) {
	var n int64
	q := r.db.Model(&models.User{}).Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email)))
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *UserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// Update writes the profile fields of user, including zero values.
func (r *UserRepository) Update(user *models.User) error {
	return r.db.Model(user).
		Select("name", "email", "password_hash", "role", "is_active", "updated_at").
		Updates(user).Error
}

// List returns one page of users, optionally filtered by name or email.
func (r *UserRepository) List(search string, p orm.Pagination) ([]models.User, int64, error) {
	q := r.db.Model(&models.User{})
	if s := strings.TrimSpace(search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	if err := q.Scopes(orm.Paginate(p)).Order("id ASC").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
