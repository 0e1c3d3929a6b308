package handler

import (
	"gameserver-market/internal/adapter/http/dto"
	"gameserver-market/internal/core/ports"
	"gameserver-market/pkg/apperror"
	"gameserver-market/pkg/response"

	"github.com/gin-gonic/gin"
)

// CheckoutHandler turns carts into orders.
type CheckoutHandler struct {
	checkoutSvc ports.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(checkoutSvc ports.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutSvc: checkoutSvc}
}

// Checkout handles POST /api/v1/checkout.
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	accountID, ok := contextAccountID(c)
	if !ok {
		return
	}

	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	items := make([]ports.CartItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, ports.CartItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	order, err := h.checkoutSvc.Checkout(c.Request.Context(), ports.CheckoutRequest{
		AccountID:      accountID,
		Items:          items,
		IdempotencyKey: req.IdempotencyKey,
		ClientIP:       c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, order)
}

// SiteStatus handles GET /api/v1/site/status.
func (h *CheckoutHandler) SiteStatus(c *gin.Context) {
	enabled, err := h.checkoutSvc.SiteEnabled(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"enabled": enabled})
}

// GetOrder handles GET /api/v1/orders/:id. Orders belonging to other
// accounts are indistinguishable from missing ones.
func (h *CheckoutHandler) GetOrder(c *gin.Context) {
	accountID, ok := contextAccountID(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	order, err := h.checkoutSvc.GetOrder(c.Request.Context(), accountID, orderID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, order)
}
