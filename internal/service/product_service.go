package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/storegate/storegate/internal/domain/catalog"
	"github.com/storegate/storegate/internal/domain/fault"
)

// ProductService implements product creation and lookup.
type ProductService struct {
	repo   catalog.ProductRepository
	logger *slog.Logger
}

// NewProductService creates a ProductService.
func NewProductService(repo catalog.ProductRepository, logger *slog.Logger) *ProductService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProductService{repo: repo, logger: logger}
}

// Create stores a new product and returns its assigned ID.
func (s *ProductService) Create(ctx context.Context, p catalog.Product) (int64, error) {
	if strings.TrimSpace(p.Name) == "" {
		return 0, fault.Validation("name is required")
	}
	id, err := s.repo.Create(ctx, p)
	if err != nil {
		return 0, err
	}
	s.logger.Info("product created", "product_id", id, "name", p.Name, "category_id", p.CategoryID)
	return id, nil
}

// Get returns the product or a NotFound fault.
func (s *ProductService) Get(ctx context.Context, id int64) (*catalog.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fault.NotFound()
	}
	return p, nil
}

// ListByCategory returns the products in a category.
func (s *ProductService) ListByCategory(ctx context.Context, categoryID int64) ([]catalog.Product, error) {
	return s.repo.ListByCategory(ctx, categoryID)
}
