package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Category groups products. Products hold a weak reference to it by id; a
// category is never owned by any single product.
type Category struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Name        string     `json:"name" db:"name" validate:"required,min=1,max=255"`
	Description *string    `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	// Create creates a new category
	Create(ctx context.Context, category *Category) error

	// GetByID retrieves a category by ID (excludes soft-deleted)
	GetByID(ctx context.Context, id uuid.UUID) (*Category, error)

	// FindByIDs retrieves all non-deleted categories whose id is in ids,
	// using a single batched query. Ids without a match are simply absent
	// from the result.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Category, error)

	// ListActive retrieves all non-deleted categories
	ListActive(ctx context.Context) ([]*Category, error)

	// ExistsActiveByName reports whether a non-deleted category with the
	// given name exists, case-insensitively
	ExistsActiveByName(ctx context.Context, name string) (bool, error)

	// Update updates an existing category
	Update(ctx context.Context, category *Category) error

	// Delete soft-deletes a category
	Delete(ctx context.Context, id uuid.UUID) error

	// Restore clears the soft-delete marker of a deleted category
	Restore(ctx context.Context, id uuid.UUID) (*Category, error)
}
