package controllers

import (
	"github.com/Shreehariballakkuraya/ScanPOS/app/services"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/ctx"
)

type ProductController struct {
	service *services.ProductService
}

func NewProductController(service *services.ProductService) *ProductController {
	return &ProductController{service: service}
}

// Index lists products, optionally filtered by name, SKU or barcode.
func (pc *ProductController) Index(c *ctx.Context) {
	rows, page, err := pc.service.List(c.Context(), c.Query("search"), c.QueryBool("show_inactive"), c.Pagination())
	if err != nil {
		fail(c, err)
		return
	}
	c.Paginated(rows, page)
}

func (pc *ProductController) Show(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	p, err := pc.service.Get(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(p)
}

// ByBarcode resolves a scanned code to an active product.
func (pc *ProductController) ByBarcode(c *ctx.Context) {
	p, err := pc.service.ByBarcode(c.Context(), c.Param("barcode"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(p)
}

func (pc *ProductController) Store(c *ctx.Context) {
	var in services.ProductInput
	if !c.BindJSON(&in) {
		return
	}
	p, err := pc.service.Create(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(p)
}

func (pc *ProductController) Update(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	var in services.ProductInput
	if !c.BindJSON(&in) {
		return
	}
	p, err := pc.service.Update(c.Context(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(p)
}

// Destroy deactivates the product; invoices keep referencing it.
func (pc *ProductController) Destroy(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	if err := pc.service.Delete(c.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Message("Product deactivated")
}
