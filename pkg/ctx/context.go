// Package ctx gives handlers a single request context with helpers for path
// params, query values, JSON binding and envelope responses.
//
//	func (ic *InvoiceController) Show(c *ctx.Context) {
//	    id, ok := c.ParamUint("id")
//	    if !ok {
//	        return // 404 already sent
//	    }
//	    ...
//	    c.Success(inv)
//	}
//
//	r.Get("/invoices/{id}", "invoices.show", ctx.Wrap(ic.Show))
package ctx

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"github.com/Shreehariballakkuraya/ScanPOS/pkg/auth"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/bind"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/orm"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/response"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/validate"
	"github.com/go-chi/chi/v5"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap adapts a HandlerFunc to http.HandlerFunc for the router.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// Context wraps one request/response pair.
type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	status int
}

var pool = sync.Pool{
	New: func() any { return &Context{} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	c.status = 0
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// ─── Request helpers ──────────────────────────────────────────────────────────

// Param returns a URL path parameter.
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// ParamUint parses a numeric path parameter. A missing or non-numeric value
// answers 404 and returns false.
func (c *Context) ParamUint(key string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(key), 10, 64)
	if err != nil || n == 0 {
		c.NotFound("Not found")
		return 0, false
	}
	return uint(n), true
}

func (c *Context) Query(key string) string {
	return c.R.URL.Query().Get(key)
}

// DefaultQuery returns a query value, or def if it is empty.
func (c *Context) DefaultQuery(key, def string) string {
	if v := c.Query(key); v != "" {
		return v
	}
	return def
}

// QueryBool reads "true"/"1" style flags; anything unparsable is false.
func (c *Context) QueryBool(key string) bool {
	b, _ := strconv.ParseBool(c.Query(key))
	return b
}

// Pagination reads page and page_size.
func (c *Context) Pagination() orm.Pagination {
	return orm.ParsePagination(c.Query("page"), c.Query("page_size"))
}

// Context returns the underlying request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// UserID is the authenticated user's ID, or 0.
func (c *Context) UserID() uint {
	if claims, ok := auth.FromContext(c.R.Context()); ok {
		return claims.UserID
	}
	return 0
}

// Role is the authenticated user's role, or "".
func (c *Context) Role() string {
	if claims, ok := auth.FromContext(c.R.Context()); ok {
		return claims.Role
	}
	return ""
}

// ─── Binding / Validation ─────────────────────────────────────────────────────

// BindJSON decodes and validates the body into dest. On failure it answers
// 400 (malformed) or 422 (invalid) and returns false.
//
//	var in AddItemInput
//	if !c.BindJSON(&in) {
//	    return
//	}
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.R, dest)
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return false
	}
	if validate.HasErrors(errs) {
		c.ValidationError(errs)
		return false
	}
	return true
}

// ─── Response helpers ─────────────────────────────────────────────────────────

func (c *Context) JSON(code int, body response.Envelope) {
	c.status = code
	response.Write(c.W, code, body)
}

func (c *Context) Success(data any) {
	c.JSON(http.StatusOK, response.Envelope{Status: http.StatusOK, Data: data})
}

func (c *Context) Created(data any) {
	c.JSON(http.StatusCreated, response.Envelope{Status: http.StatusCreated, Data: data})
}

// Message sends a 200 carrying only a message.
func (c *Context) Message(message string) {
	c.JSON(http.StatusOK, response.Envelope{Status: http.StatusOK, Message: message})
}

func (c *Context) Paginated(items any, p orm.Pagination) {
	c.Success(response.Page{Items: items, Pagination: p})
}

func (c *Context) Error(code int, message string) {
	c.JSON(code, response.Envelope{Status: code, Message: message})
}

func (c *Context) ValidationError(errs map[string]string) {
	c.JSON(http.StatusUnprocessableEntity, response.Envelope{
		Status:  http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  errs,
	})
}

func (c *Context) Unauthorized(message string) { c.Error(http.StatusUnauthorized, message) }

func (c *Context) NotFound(message string) { c.Error(http.StatusNotFound, message) }

// WrittenStatus is the status written so far, or 0.
func (c *Context) WrittenStatus() int { return c.status }
