package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/storegate/storegate/internal/domain/catalog"
	"github.com/storegate/storegate/internal/domain/fault"
)

// CategoryService implements category CRUD.
type CategoryService struct {
	repo   catalog.CategoryRepository
	logger *slog.Logger
}

// NewCategoryService creates a CategoryService.
func NewCategoryService(repo catalog.CategoryRepository, logger *slog.Logger) *CategoryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CategoryService{repo: repo, logger: logger}
}

// Create stores a new category and returns its assigned ID.
func (s *CategoryService) Create(ctx context.Context, name string) (int64, error) {
	if strings.TrimSpace(name) == "" {
		return 0, fault.Validation("name is required")
	}
	id, err := s.repo.Create(ctx, name)
	if err != nil {
		return 0, err
	}
	s.logger.Info("category created", "category_id", id, "name", name)
	return id, nil
}

// Get returns the category or a NotFound fault.
func (s *CategoryService) Get(ctx context.Context, id int64) (*catalog.Category, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fault.NotFound()
	}
	return c, nil
}

// List returns all categories.
func (s *CategoryService) List(ctx context.Context) ([]catalog.Category, error) {
	return s.repo.List(ctx)
}

// Update renames an existing category.
func (s *CategoryService) Update(ctx context.Context, id int64, name string) (*catalog.Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fault.Validation("name is required")
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fault.NotFound()
	}
	updated, err := s.repo.Update(ctx, id, name)
	if err != nil {
		return nil, err
	}
	s.logger.Info("category updated", "category_id", id, "name", name)
	return updated, nil
}

// Delete removes the category, or returns NotFound.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return fault.NotFound()
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("category deleted", "category_id", id)
	return nil
}
