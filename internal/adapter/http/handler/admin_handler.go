package handler

import (
	"strconv"

	"gameserver-market/internal/adapter/http/dto"
	"gameserver-market/internal/adapter/http/middleware"
	"gameserver-market/internal/core/domain"
	"gameserver-market/internal/core/ports"
	"gameserver-market/pkg/apperror"
	"gameserver-market/pkg/response"

	"github.com/gin-gonic/gin"
)

// AdminHandler exposes the privileged management surface. Every call is
// attributed to the authenticated admin and audited by the service layer.
type AdminHandler struct {
	adminSvc ports.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminSvc ports.AdminService) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc}
}

// contextActor builds the acting-admin identity from the request context.
func contextActor(c *gin.Context) ports.Actor {
	return ports.Actor{
		AdminID:  c.GetInt64(middleware.CtxAdminID),
		ClientIP: c.ClientIP(),
	}
}

// --- Accounts ---

// ListAccounts handles GET /api/v1/admin/accounts.
func (h *AdminHandler) ListAccounts(c *gin.Context) {
	accounts, err := h.adminSvc.ListAccounts(c.Request.Context(), contextActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, accounts)
}

// Credit handles POST /api/v1/admin/accounts/:id/credit.
func (h *AdminHandler) Credit(c *gin.Context) {
	accountID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.CreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	mutation, err := h.adminSvc.Credit(c.Request.Context(), contextActor(c), accountID, req.Amount, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, toMutationResponse(mutation))
}

// ResetBalance handles POST /api/v1/admin/accounts/:id/reset.
func (h *AdminHandler) ResetBalance(c *gin.Context) {
	accountID, ok := pathID(c, "id")
	if !ok {
		return
	}

	mutation, err := h.adminSvc.ResetBalance(c.Request.Context(), contextActor(c), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, toMutationResponse(mutation))
}

// SetAccountStatus handles PUT /api/v1/admin/accounts/:id/status.
func (h *AdminHandler) SetAccountStatus(c *gin.Context) {
	accountID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.AccountStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if err := h.adminSvc.SetAccountStatus(c.Request.Context(), contextActor(c), accountID, domain.AccountStatus(req.Status)); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"account_id": accountID, "status": req.Status})
}

// DeleteAccount handles DELETE /api/v1/admin/accounts/:id.
func (h *AdminHandler) DeleteAccount(c *gin.Context) {
	accountID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.adminSvc.DeleteAccount(c.Request.Context(), contextActor(c), accountID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"deleted": accountID})
}

// --- Orders ---

// ListOrders handles GET /api/v1/admin/orders.
func (h *AdminHandler) ListOrders(c *gin.Context) {
	orders, err := h.adminSvc.ListOrders(c.Request.Context(), contextActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, orders)
}

// SetOrderStatus handles PUT /api/v1/admin/orders/:id/status.
func (h *AdminHandler) SetOrderStatus(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.OrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if err := h.adminSvc.SetOrderStatus(c.Request.Context(), contextActor(c), orderID, domain.OrderStatus(req.Status)); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"order_id": orderID, "status": req.Status})
}

// --- Products ---

// CreateProduct handles POST /api/v1/admin/products.
func (h *AdminHandler) CreateProduct(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	product := &domain.Product{
		Title:       req.Title,
		Price:       req.Price,
		Description: req.Description,
		Icon:        req.Icon,
		Gradient:    req.Gradient,
	}
	if err := h.adminSvc.CreateProduct(c.Request.Context(), contextActor(c), product); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, product)
}

// DeleteProduct handles DELETE /api/v1/admin/products/:id.
func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	productID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.adminSvc.DeleteProduct(c.Request.Context(), contextActor(c), productID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"deleted": productID})
}

// --- Administrators ---

// ListAdmins handles GET /api/v1/admin/admins.
func (h *AdminHandler) ListAdmins(c *gin.Context) {
	admins, err := h.adminSvc.ListAdmins(c.Request.Context(), contextActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, admins)
}

// CreateAdmin handles POST /api/v1/admin/admins.
func (h *AdminHandler) CreateAdmin(c *gin.Context) {
	var req dto.CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	admin, err := h.adminSvc.CreateAdmin(c.Request.Context(), contextActor(c), ports.CreateAdminRequest{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Role:     req.Role,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, admin)
}

// SetAdminStatus handles PUT /api/v1/admin/admins/:id/status.
func (h *AdminHandler) SetAdminStatus(c *gin.Context) {
	targetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.AdminStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if err := h.adminSvc.SetAdminStatus(c.Request.Context(), contextActor(c), targetID, *req.Active); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"admin_id": targetID, "active": *req.Active})
}

// DeleteAdmin handles DELETE /api/v1/admin/admins/:id.
func (h *AdminHandler) DeleteAdmin(c *gin.Context) {
	targetID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.adminSvc.DeleteAdmin(c.Request.Context(), contextActor(c), targetID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"deleted": targetID})
}

// --- Site, stats, audit ---

// SetSiteEnabled handles PUT /api/v1/admin/site.
func (h *AdminHandler) SetSiteEnabled(c *gin.Context) {
	var req dto.SiteToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if err := h.adminSvc.SetSiteEnabled(c.Request.Context(), contextActor(c), *req.Enabled); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"enabled": *req.Enabled})
}

// Stats handles GET /api/v1/admin/stats.
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.adminSvc.Stats(c.Request.Context(), contextActor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stats)
}

// ListAuthEvents handles GET /api/v1/admin/auth-events.
func (h *AdminHandler) ListAuthEvents(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	events, err := h.adminSvc.ListAuthEvents(c.Request.Context(), contextActor(c), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, events)
}
