package controllers

import (
	"errors"
	"net/http"

	"github.com/Shreehariballakkuraya/ScanPOS/app/services"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/ctx"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/logger"
)

// fail answers with the status the service error maps to. Storage failures
// are logged and hidden behind a generic message.
func fail(c *ctx.Context, err error) {
	var (
		nf  *services.NotFoundError
		is  *services.InvalidStateError
		ve  *services.ValidationError
		ip  *services.InactiveProductError
		ise *services.InsufficientStockError
		ce  *services.ConflictError
		ue  *services.UnauthorizedError
	)

	switch {
	case errors.As(err, &nf):
		c.NotFound(nf.Resource + " not found")
	case errors.As(err, &is):
		c.Error(http.StatusConflict, is.Msg)
	case errors.As(err, &ve):
		field := ve.Field
		if field == "" {
			field = "request"
		}
		c.ValidationError(map[string]string{field: ve.Msg})
	case errors.As(err, &ip):
		c.Error(http.StatusUnprocessableEntity, ip.Error())
	case errors.As(err, &ise):
		c.Error(http.StatusConflict, ise.Error())
	case errors.As(err, &ce):
		c.Error(http.StatusConflict, ce.Msg)
	case errors.As(err, &ue):
		c.Unauthorized(ue.Msg)
	default:
		logger.WithCtx(c.Context()).Error("request failed", "path", c.R.URL.Path, "error", err)
		c.Error(http.StatusInternalServerError, "Internal server error")
	}
}
