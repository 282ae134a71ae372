package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Shreehariballakkuraya/ScanPOS/app/models"
	"github.com/Shreehariballakkuraya/ScanPOS/app/repositories"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/auth"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/logger"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/rbac"
)

type RegisterInput struct {
	Name     string `json:"name"     validate:"max=255"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginInput struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Token is a signed access token and the account it was issued to.
type Token struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        *models.User `json:"user"`
}

type AuthService struct {
	db *gorm.DB
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{db: db}
}

// Register creates a cashier account. Admin accounts are created through
// UserService by an existing admin.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	name := in.Name
	if name == "" {
		name = "User"
	}
	role := rbac.RoleCashier
	active := true
	return NewUserService(s.db).Create(ctx, UserInput{
		Name:     &name,
		Email:    &in.Email,
		Password: &in.Password,
		Role:     &role,
		IsActive: &active,
	})
}

// Login checks the credentials and issues a token. Unknown emails, wrong
// passwords and deactivated accounts are all UnauthorizedError.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Token, error) {
	user, err := repositories.NewUserRepository(s.db.WithContext(ctx)).FindByEmail(in.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &UnauthorizedError{Msg: "Invalid email or password"}
		}
		return nil, persistence("login", err)
	}
	if !auth.CheckPassword(user.PasswordHash, in.Password) {
		logger.WithCtx(ctx).Warn("login failed", "user_id", user.ID)
		return nil, &UnauthorizedError{Msg: "Invalid email or password"}
	}
	if !user.IsActive {
		return nil, &UnauthorizedError{Msg: "Account is deactivated"}
	}

	token, expiresIn, err := auth.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, persistence("issue token", err)
	}

	logger.WithCtx(ctx).Info("user logged in", "user_id", user.ID)
	return &Token{AccessToken: token, TokenType: "Bearer", ExpiresIn: expiresIn, User: user}, nil
}

// Me returns the account behind the caller's token.
func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	return NewUserService(s.db).Get(ctx, userID)
}
