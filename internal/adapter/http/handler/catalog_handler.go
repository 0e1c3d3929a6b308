package handler

import (
	"strconv"

	"gameserver-market/internal/core/ports"
	"gameserver-market/pkg/apperror"
	"gameserver-market/pkg/response"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the public, read-only product catalog.
type CatalogHandler struct {
	catalogSvc ports.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogSvc ports.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogSvc: catalogSvc}
}

// ListProducts handles GET /api/v1/catalog.
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	products, err := h.catalogSvc.ListProducts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, products)
}

// GetProduct handles GET /api/v1/catalog/:id.
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	product, err := h.catalogSvc.GetProduct(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, product)
}

// pathID parses a positive int64 path parameter. On failure it writes the
// error response and returns ok=false.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, apperror.Validation("invalid "+name))
		return 0, false
	}
	return id, true
}
