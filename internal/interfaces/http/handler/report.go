package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	reportapp "github.com/retailpos/backend/internal/application/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler handles reporting and export endpoints
type ReportHandler struct {
	BaseHandler
	reports *reportapp.Service
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reports *reportapp.Service) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// SalesSummary aggregates sales over a period
func (h *ReportHandler) SalesSummary(c *gin.Context) {
	from, to, err := requireDateRange(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	summary, err := h.reports.SalesSummary(c.Request.Context(), from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// CreditOutstanding lists customers with a non-zero balance
func (h *ReportHandler) CreditOutstanding(c *gin.Context) {
	rows, err := h.reports.CreditOutstanding(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, rows)
}

// StockReport values on-hand stock at cost
func (h *ReportHandler) StockReport(c *gin.Context) {
	report, err := h.reports.StockReport(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}

// ExportSales streams the period's sales as an XLSX download
func (h *ReportHandler) ExportSales(c *gin.Context) {
	from, to, err := requireDateRange(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", `attachment; filename="sales.xlsx"`)
	if err := h.reports.ExportSalesXLSX(c.Request.Context(), from, to, c.Writer); err != nil {
		h.InternalError(c, "Export failed")
		return
	}
	c.Status(http.StatusOK)
}

// ExportStatement streams a customer statement as an XLSX download
func (h *ReportHandler) ExportStatement(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}

	from, to, err := parseDateRange(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", `attachment; filename="statement.xlsx"`)
	if err := h.reports.ExportStatementXLSX(c.Request.Context(), customerID, from, to, c.Writer); err != nil {
		h.InternalError(c, "Export failed")
		return
	}
	c.Status(http.StatusOK)
}

// requireDateRange reads mandatory from/to query parameters as dates
func requireDateRange(c *gin.Context) (time.Time, time.Time, error) {
	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	// Include the whole end day
	return from, to.Add(24*time.Hour - time.Nanosecond), nil
}
