package controllers

import (
	"github.com/Shreehariballakkuraya/ScanPOS/app/services"
	"github.com/Shreehariballakkuraya/ScanPOS/pkg/ctx"
)

type ReportController struct {
	service *services.ReportService
}

func NewReportController(service *services.ReportService) *ReportController {
	return &ReportController{service: service}
}

// Sales reports completed sales between from and to (inclusive days).
func (rc *ReportController) Sales(c *ctx.Context) {
	r, err := rc.service.Sales(c.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(r)
}

func (rc *ReportController) Dashboard(c *ctx.Context) {
	d, err := rc.service.Dashboard(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(d)
}
