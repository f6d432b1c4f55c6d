package handler

import (
	"github.com/gin-gonic/gin"
	inventoryapp "github.com/retailpos/backend/internal/application/inventory"
	"github.com/retailpos/backend/internal/interfaces/http/dto"
)

// StockHandler handles stock level and adjustment endpoints
type StockHandler struct {
	BaseHandler
	adjustments *inventoryapp.AdjustmentService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(adjustments *inventoryapp.AdjustmentService) *StockHandler {
	return &StockHandler{adjustments: adjustments}
}

// Adjust applies one manual stock correction
func (h *StockHandler) Adjust(c *gin.Context) {
	var req inventoryapp.AdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.adjustments.Adjust(c.Request.Context(), req); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// BulkAdjust applies a CSV of corrections in one transaction
func (h *StockHandler) BulkAdjust(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "Missing file upload")
		return
	}
	defer file.Close()

	result, err := h.adjustments.BulkAdjust(c.Request.Context(), file, c.PostForm("note"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Levels returns on-hand quantities with low stock flags
func (h *StockHandler) Levels(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	levels, err := h.adjustments.StockLevels(c.Request.Context(), req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, levels)
}
