package controllers

import (
	"github.com/Shreehariballakkuraya/ScanPOS/app/services"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/ctx"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

// Register creates a cashier account.
func (ac *AuthController) Register(c *ctx.Context) {
	var in services.RegisterInput
	if !c.BindJSON(&in) {
		return
	}

	user, err := ac.service.Register(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(user)
}

// Login exchanges credentials for a bearer token.
func (ac *AuthController) Login(c *ctx.Context) {
	var in services.LoginInput
	if !c.BindJSON(&in) {
		return
	}

	token, err := ac.service.Login(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(token)
}

func (ac *AuthController) Me(c *ctx.Context) {
	user, err := ac.service.Me(c.Context(), c.UserID())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(user)
}
