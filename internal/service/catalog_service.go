package service

import (
	"context"
	"fmt"

	"gameserver-market/internal/core/domain"
	"gameserver-market/internal/core/ports"
	"gameserver-market/pkg/apperror"
)

// CatalogServiceImpl implements ports.CatalogService.
type CatalogServiceImpl struct {
	productRepo ports.ProductRepository
}

// NewCatalogService creates a new CatalogServiceImpl.
func NewCatalogService(productRepo ports.ProductRepository) *CatalogServiceImpl {
	return &CatalogServiceImpl{productRepo: productRepo}
}

// ListProducts returns the full catalog.
func (s *CatalogServiceImpl) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list products: %w", err))
	}
	return products, nil
}

// GetProduct fetches a single catalog item.
func (s *CatalogServiceImpl) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get product: %w", err))
	}
	if p == nil {
		return nil, apperror.ErrNotFound("product")
	}
	return p, nil
}

// ResolveItems prices cart items from the catalog. Duplicate product entries
// are merged by summing quantities.
func (s *CatalogServiceImpl) ResolveItems(ctx context.Context, items []ports.CartItem) ([]domain.LineItem, error) {
	if len(items) == 0 {
		return nil, apperror.ErrEmptyCart()
	}

	merged := make(map[int64]int64, len(items))
	order := make([]int64, 0, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, apperror.ErrInvalidLineItem()
		}
		if _, seen := merged[it.ProductID]; !seen {
			order = append(order, it.ProductID)
		}
		merged[it.ProductID] += it.Quantity
	}

	lineItems := make([]domain.LineItem, 0, len(order))
	for _, productID := range order {
		p, err := s.productRepo.GetByID(ctx, productID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("resolve product %d: %w", productID, err))
		}
		if p == nil {
			return nil, apperror.ErrNotFound("product")
		}
		lineItems = append(lineItems, domain.LineItem{
			ProductID: p.ID,
			Title:     p.Title,
			Quantity:  merged[productID],
			UnitPrice: p.Price,
		})
	}
	return lineItems, nil
}
