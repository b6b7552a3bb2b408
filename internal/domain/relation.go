package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ProductAttribute is a named value attached to one product. Attributes are
// created by a separate collaborator; this module only reads them.
type ProductAttribute struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	ProductID uuid.UUID  `json:"product_id" db:"product_id"`
	Name      string     `json:"name" db:"name"`
	Value     string     `json:"value" db:"value"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// ProductImage is an image attached to one product, ordered by Position.
type ProductImage struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	ProductID uuid.UUID  `json:"product_id" db:"product_id"`
	URL       string     `json:"url" db:"url"`
	AltText   *string    `json:"alt_text,omitempty" db:"alt_text"`
	Position  int        `json:"position" db:"position"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// ProductAttributeRepository reads product attributes in batch.
type ProductAttributeRepository interface {
	// ListByProductIDs retrieves all non-deleted attributes whose product id
	// is in ids, in a single query
	ListByProductIDs(ctx context.Context, ids []uuid.UUID) ([]*ProductAttribute, error)
}

// ProductImageRepository reads product images in batch.
type ProductImageRepository interface {
	// ListByProductIDs retrieves all non-deleted images whose product id is
	// in ids, in a single query
	ListByProductIDs(ctx context.Context, ids []uuid.UUID) ([]*ProductImage, error)
}
