package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	tradeapp "github.com/retailpos/backend/internal/application/trade"
	"github.com/retailpos/backend/internal/interfaces/http/dto"
)

// PurchaseHandler handles goods receipt endpoints
type PurchaseHandler struct {
	BaseHandler
	purchases *tradeapp.PurchaseService
}

// NewPurchaseHandler creates a new PurchaseHandler
func NewPurchaseHandler(purchases *tradeapp.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchases: purchases}
}

// Create posts a goods receipt, adding stock for every line
func (h *PurchaseHandler) Create(c *gin.Context) {
	var req tradeapp.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.purchases.CreatePurchase(c.Request.Context(), req, actorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// GetByID retrieves a purchase with its items
func (h *PurchaseHandler) GetByID(c *gin.Context) {
	purchaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid purchase ID format")
		return
	}

	purchase, err := h.purchases.GetPurchase(c.Request.Context(), purchaseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, purchase)
}

// List returns a paginated purchase listing
func (h *PurchaseHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	filter := req.ToFilter()

	purchases, total, err := h.purchases.ListPurchases(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, purchases, total, filter.Page, filter.PageSize)
}
