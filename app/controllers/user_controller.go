package controllers

import (
	"github.com/Shreehariballakkuraya/ScanPOS/app/services"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/ctx"
)

// UserController is mounted behind the admin role.
type UserController struct {
	service *services.UserService
}

func NewUserController(service *services.UserService) *UserController {
	return &UserController{service: service}
}

func (uc *UserController) Index(c *ctx.Context) {
	rows, page, err := uc.service.List(c.Context(), c.Query("search"), c.Pagination())
	if err != nil {
		fail(c, err)
		return
	}
	c.Paginated(rows, page)
}

func (uc *UserController) Show(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	u, err := uc.service.Get(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(u)
}

func (uc *UserController) Store(c *ctx.Context) {
	var in services.UserInput
	if !c.BindJSON(&in) {
		return
	}
	u, err := uc.service.Create(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(u)
}

func (uc *UserController) Update(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	var in services.UserInput
	if !c.BindJSON(&in) {
		return
	}
	u, err := uc.service.Update(c.Context(), c.UserID(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(u)
}

func (uc *UserController) Destroy(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	if err := uc.service.Delete(c.Context(), c.UserID(), id); err != nil {
		fail(c, err)
		return
	}
	c.Message("User deactivated")
}
