package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/Shreehariballakkuraya/ScanPOS/app/models"
	"github.com/Shreehariballakkuraya/ScanPOS/app/repositories"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/auth"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/logger"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/orm"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/rbac"
)

// UserInput carries account fields. Nil fields are left unchanged on
// update; Create requires all of name, email, password and role.
type UserInput struct {
	Name     *string `json:"name"      validate:"min=1,max=255"`
	Email    *string `json:"email"     validate:"email"`
	Password *string `json:"password"  validate:"min=6"`
	Role     *string `json:"role"      validate:"in=admin,cashier"`
	IsActive *bool   `json:"is_active"`
}

// UserService is the admin's view of staff accounts.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) List(ctx context.Context, search string, p orm.Pagination) ([]models.User, orm.Pagination, error) {
	p = orm.NewPagination(p.Page, p.PageSize)
	users, total, err := repositories.NewUserRepository(s.db.WithContext(ctx)).List(search, p)
	if err != nil {
		return nil, p, persistence("list users", err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, p.WithTotal(total), nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	u, err := repositories.NewUserRepository(s.db.WithContext(ctx)).FindByID(id)
	if err != nil {
		return nil, persistence("get user", notFound(err, "User", id))
	}
	return u, nil
}

func (s *UserService) Create(ctx context.Context, in UserInput) (*models.User, error) {
	if in.Name == nil || in.Email == nil || in.Password == nil || in.Role == nil {
		return nil, &ValidationError{Msg: "Missing required fields"}
	}
	u := &models.User{IsActive: true}
	if err := applyUserInput(u, in); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := repositories.NewUserRepository(tx)
		if err := checkEmail(users, u.Email, 0); err != nil {
			return err
		}
		return users.Create(u)
	})
	if err != nil {
		return nil, persistence("create user", err)
	}

	logger.WithCtx(ctx).Info("user created", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// Update changes the fields present in in. actorID is the admin making the
// change; nobody can demote or deactivate themselves.
func (s *UserService) Update(ctx context.Context, actorID, id uint, in UserInput) (*models.User, error) {
	var u *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := repositories.NewUserRepository(tx)

		var err error
		u, err = users.FindByID(id)
		if err != nil {
			return notFound(err, "User", id)
		}
		if id == actorID {
			if in.Role != nil && *in.Role != u.Role {
				return &ValidationError{Field: "role", Msg: "Cannot change your own role"}
			}
			if in.IsActive != nil && !*in.IsActive {
				return &ValidationError{Field: "is_active", Msg: "Cannot deactivate yourself"}
			}
		}
		if err := applyUserInput(u, in); err != nil {
			return err
		}
		if in.Email != nil {
			if err := checkEmail(users, u.Email, u.ID); err != nil {
				return err
			}
		}
		return users.Update(u)
	})
	if err != nil {
		return nil, persistence("update user", err)
	}

	logger.WithCtx(ctx).Info("user updated", "user_id", u.ID)
	return u, nil
}

// Delete deactivates the account. Rows stay so that history keeps its author.
func (s *UserService) Delete(ctx context.Context, actorID, id uint) error {
	if id == actorID {
		return &ValidationError{Msg: "Cannot delete yourself"}
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := repositories.NewUserRepository(tx)
		u, err := users.FindByID(id)
		if err != nil {
			return notFound(err, "User", id)
		}
		u.IsActive = false
		return users.Update(u)
	})
	if err != nil {
		return persistence("delete user", err)
	}

	logger.WithCtx(ctx).Info("user deactivated", "user_id", id)
	return nil
}

func applyUserInput(u *models.User, in UserInput) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return &ValidationError{Field: "name", Msg: "Name cannot be empty"}
		}
		u.Name = name
	}
	if in.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Role != nil {
		if !rbac.ValidRole(*in.Role) {
			return &ValidationError{Field: "role", Msg: "Invalid role. Must be admin or cashier"}
		}
		u.Role = *in.Role
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return err
		}
		u.PasswordHash = hash
	}
	return nil
}

func checkEmail(users *repositories.UserRepository, email string, exceptID uint) error {
	taken, err := users.EmailTaken(email, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return &ConflictError{Msg: "Email already exists"}
	}
	return nil
}
