package memory

import (
	"context"
	"sync"

	"github.com/storegate/storegate/internal/domain/catalog"
)

// CategoryStore implements catalog.CategoryRepository with an in-memory map.
type CategoryStore struct {
	mu         sync.RWMutex
	categories map[int64]*catalog.Category
	nextID     int64
}

// NewCategoryStore creates a new in-memory category store.
func NewCategoryStore() *CategoryStore {
	return &CategoryStore{categories: make(map[int64]*catalog.Category), nextID: 1}
}

// Create stores a new active category and returns its assigned ID.
func (s *CategoryStore) Create(_ context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.categories[id] = &catalog.Category{ID: id, Name: name, Active: true}
	return id, nil
}

// GetByID returns a copy of the category, or (nil, nil) if absent.
func (s *CategoryStore) GetByID(_ context.Context, id int64) (*catalog.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[id]
	if !ok {
		return nil, nil
	}
	cCopy := *c
	return &cCopy, nil
}

// List returns copies of all categories in ID order.
func (s *CategoryStore) List(_ context.Context) ([]catalog.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]catalog.Category, 0, len(s.categories))
	for id := int64(1); id < s.nextID; id++ {
		if c, ok := s.categories[id]; ok {
			result = append(result, *c)
		}
	}
	return result, nil
}

// Update renames an existing category.
func (s *CategoryStore) Update(_ context.Context, id int64, name string) (*catalog.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.categories[id]
	if !ok {
		return nil, nil
	}
	c.Name = name
	cCopy := *c
	return &cCopy, nil
}

// Delete removes the category.
func (s *CategoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.categories, id)
	return nil
}

// ProductStore implements catalog.ProductRepository with an in-memory map.
type ProductStore struct {
	mu       sync.RWMutex
	products map[int64]*catalog.Product
	nextID   int64
}

// NewProductStore creates a new in-memory product store.
func NewProductStore() *ProductStore {
	return &ProductStore{products: make(map[int64]*catalog.Product), nextID: 1}
}

// Create stores a new product and returns its assigned ID.
func (s *ProductStore) Create(_ context.Context, p catalog.Product) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	p.ID = id
	p.Active = true
	s.products[id] = &p
	return id, nil
}

// GetByID returns a copy of the product, or (nil, nil) if absent.
func (s *ProductStore) GetByID(_ context.Context, id int64) (*catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	pCopy := *p
	return &pCopy, nil
}

// ListByCategory returns copies of the products in a category, in ID order.
func (s *ProductStore) ListByCategory(_ context.Context, categoryID int64) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]catalog.Product, 0)
	for id := int64(1); id < s.nextID; id++ {
		if p, ok := s.products[id]; ok && p.CategoryID == categoryID {
			result = append(result, *p)
		}
	}
	return result, nil
}

// Compile-time interface verification.
var (
	_ catalog.CategoryRepository = (*CategoryStore)(nil)
	_ catalog.ProductRepository  = (*ProductStore)(nil)
)
