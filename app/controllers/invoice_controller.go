package controllers

import (
	"github.com/shopspring/decimal"

	"github.com/Shreehariballakkuraya/ScanPOS/app/services"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/ctx"
)

type InvoiceController struct {
	invoices *services.InvoiceService
	cart     *services.CartService
}

func NewInvoiceController(invoices *services.InvoiceService, cart *services.CartService) *InvoiceController {
	return &InvoiceController{invoices: invoices, cart: cart}
}

type createInvoiceRequest struct {
	CustomerID *uint `json:"customer_id"`
}

type addItemRequest struct {
	ProductID *uint  `json:"product_id"`
	Barcode   string `json:"barcode"`
	Quantity  *int   `json:"quantity"`
}

type updateItemRequest struct {
	Quantity *int `json:"quantity"`
}

type completeRequest struct {
	DiscountAmount *decimal.Decimal `json:"discount_amount"`
}

// Store opens a draft invoice.
func (ic *InvoiceController) Store(c *ctx.Context) {
	var in createInvoiceRequest
	if !c.BindJSON(&in) {
		return
	}
	inv, err := ic.invoices.Create(c.Context(), in.CustomerID)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(inv)
}

func (ic *InvoiceController) Show(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	inv, err := ic.invoices.Get(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(inv)
}

// Index lists invoice summaries, newest first.
func (ic *InvoiceController) Index(c *ctx.Context) {
	rows, page, err := ic.invoices.List(c.Context(), services.InvoiceQuery{
		From:   c.Query("from"),
		To:     c.Query("to"),
		Status: c.Query("status"),
		Page:   c.Pagination(),
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.Paginated(rows, page)
}

// AddItem puts a product on a draft. A new line answers 201, a merge into an
// existing line answers 200.
func (ic *InvoiceController) AddItem(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	var in addItemRequest
	if !c.BindJSON(&in) {
		return
	}
	qty := 1
	if in.Quantity != nil {
		qty = *in.Quantity
	}

	res, err := ic.cart.AddItem(c.Context(), id, services.ProductRef{ID: in.ProductID, Barcode: in.Barcode}, qty)
	if err != nil {
		fail(c, err)
		return
	}
	if res.Created {
		c.Created(res.Item)
		return
	}
	c.Success(res.Item)
}

// UpdateItem sets a line's quantity; zero or less removes the line.
func (ic *InvoiceController) UpdateItem(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	itemID, ok := c.ParamUint("itemID")
	if !ok {
		return
	}
	var in updateItemRequest
	if !c.BindJSON(&in) {
		return
	}

	res, err := ic.cart.UpdateItem(c.Context(), id, itemID, in.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	if res.Removed {
		c.Message("Item removed")
		return
	}
	c.Success(res.Item)
}

func (ic *InvoiceController) RemoveItem(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	itemID, ok := c.ParamUint("itemID")
	if !ok {
		return
	}
	if err := ic.cart.RemoveItem(c.Context(), id, itemID); err != nil {
		fail(c, err)
		return
	}
	c.Message("Item removed")
}

// Complete finalizes a draft: stock is taken and totals are frozen.
func (ic *InvoiceController) Complete(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	var in completeRequest
	if !c.BindJSON(&in) {
		return
	}
	inv, err := ic.invoices.Complete(c.Context(), id, in.DiscountAmount)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(inv)
}

// Destroy deletes an invoice, returning stock if it was completed.
func (ic *InvoiceController) Destroy(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	if err := ic.invoices.Delete(c.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Message("Invoice deleted")
}
