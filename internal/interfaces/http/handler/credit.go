package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	creditapp "github.com/retailpos/backend/internal/application/credit"
)

// CreditHandler handles customer credit endpoints
type CreditHandler struct {
	BaseHandler
	credit *creditapp.Service
}

// NewCreditHandler creates a new CreditHandler
func NewCreditHandler(credit *creditapp.Service) *CreditHandler {
	return &CreditHandler{credit: credit}
}

// ReceivePayment records money received against a customer's balance
func (h *CreditHandler) ReceivePayment(c *gin.Context) {
	var req creditapp.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.credit.ReceivePayment(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// PostCharge posts a manual debit against a customer
func (h *CreditHandler) PostCharge(c *gin.Context) {
	var req creditapp.ChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.credit.PostCharge(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Balance returns a customer's current balance
func (h *CreditHandler) Balance(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}

	resp, err := h.credit.Balance(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Statement returns a customer's ledger activity over an optional period
func (h *CreditHandler) Statement(c *gin.Context) {
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

	resp, err := h.credit.GetStatement(c.Request.Context(), customerID, from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// parseDateRange reads optional from/to query parameters as dates
func parseDateRange(c *gin.Context) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if s := c.Query("from"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, nil, err
		}
		from = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, nil, err
		}
		// Include the whole end day
		t = t.Add(24*time.Hour - time.Nanosecond)
		to = &t
	}
	return from, to, nil
}
