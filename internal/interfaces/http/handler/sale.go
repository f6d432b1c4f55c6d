package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	posapp "github.com/retailpos/backend/internal/application/pos"
	"github.com/retailpos/backend/internal/interfaces/http/dto"
)

// SaleHandler handles sale and return posting endpoints
type SaleHandler struct {
	BaseHandler
	sales *posapp.SaleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(sales *posapp.SaleService) *SaleHandler {
	return &SaleHandler{sales: sales}
}

// Create posts a new sale or return
func (h *SaleHandler) Create(c *gin.Context) {
	var req posapp.SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.sales.CreateSale(c.Request.Context(), req, actorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Update replaces an existing sale by reversing and replaying its postings
func (h *SaleHandler) Update(c *gin.Context) {
	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}

	var req posapp.SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.sales.EditSale(c.Request.Context(), saleID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List returns a page of posted sales, filterable by customer and
// return flag
func (h *SaleHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := req.ToFilter()
	if raw := c.Query("customer_id"); raw != "" {
		customerID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid customer ID format")
			return
		}
		filter.Filters["customer_id"] = customerID
	}
	if raw := c.Query("is_return"); raw != "" {
		isReturn, err := strconv.ParseBool(raw)
		if err != nil {
			h.BadRequest(c, "Invalid is_return value")
			return
		}
		filter.Filters["is_return"] = isReturn
	}

	page, err := h.sales.ListSales(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetByID retrieves a sale with its items
func (h *SaleHandler) GetByID(c *gin.Context) {
	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}

	s, err := h.sales.GetSale(c.Request.Context(), saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, s)
}
