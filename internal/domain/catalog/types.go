// Package catalog contains the category and product aggregates and
// their repository ports.
package catalog

import "context"

// Category groups products.
type Category struct {
	ID     int64
	Name   string
	Active bool
}

// Product is a sellable item belonging to a category.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       float64
	Stock       int32
	CategoryID  int64
	Active      bool
}

// CategoryRepository is the outbound port for category persistence.
type CategoryRepository interface {
	Create(ctx context.Context, name string) (int64, error)
	// GetByID returns the category or (nil, nil) if absent.
	GetByID(ctx context.Context, id int64) (*Category, error)
	List(ctx context.Context) ([]Category, error)
	Update(ctx context.Context, id int64, name string) (*Category, error)
	Delete(ctx context.Context, id int64) error
}

// ProductRepository is the outbound port for product persistence.
type ProductRepository interface {
	Create(ctx context.Context, p Product) (int64, error)
	// GetByID returns the product or (nil, nil) if absent.
	GetByID(ctx context.Context, id int64) (*Product, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]Product, error)
}
