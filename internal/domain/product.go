package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Product represents a catalog product. Category, Attributes and Images are
// populated at read time and never persisted through this struct.
type Product struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Name        string     `json:"name" db:"name" validate:"required,min=1,max=255"`
	Description *string    `json:"description,omitempty" db:"description"`
	Price       float64    `json:"price" db:"price" validate:"gte=0"`
	Stock       int        `json:"stock" db:"stock" validate:"gte=0"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty" db:"category_id"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`

	Category   *Category           `json:"category,omitempty" db:"-"`
	Attributes []*ProductAttribute `json:"attributes" db:"-"`
	Images     []*ProductImage     `json:"images" db:"-"`
}

// ProductFilter narrows product listings. Zero values mean "no constraint".
type ProductFilter struct {
	Name       string
	CategoryID *uuid.UUID
}

// ProductStatistics is the single-pass aggregate over active products.
type ProductStatistics struct {
	TotalProducts int64   `json:"total_products" db:"total_products"`
	AveragePrice  float64 `json:"average_price" db:"average_price"`
	TotalStock    int64   `json:"total_stock" db:"total_stock"`
	MinPrice      float64 `json:"min_price" db:"min_price"`
	MaxPrice      float64 `json:"max_price" db:"max_price"`
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	// Create creates a new product
	Create(ctx context.Context, product *Product) error

	// GetByID retrieves a product by ID (excludes soft-deleted)
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// ListActive retrieves all non-deleted products, newest first
	ListActive(ctx context.Context) ([]*Product, error)

	// SearchByName retrieves non-deleted products whose name contains the
	// given substring, case-insensitively
	SearchByName(ctx context.Context, name string) ([]*Product, error)

	// FindPaged retrieves one page of non-deleted products matching the filter
	FindPaged(ctx context.Context, filter ProductFilter, page PageRequest) ([]*Product, error)

	// CountByFilter counts non-deleted products matching the filter
	CountByFilter(ctx context.Context, filter ProductFilter) (int64, error)

	// Update updates an existing product
	Update(ctx context.Context, product *Product) error

	// Delete soft-deletes a product
	Delete(ctx context.Context, id uuid.UUID) error

	// Statistics computes count/avg/sum/min/max over active products in one query
	Statistics(ctx context.Context) (*ProductStatistics, error)
}
