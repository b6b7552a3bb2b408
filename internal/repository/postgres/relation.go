package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/minhvt/product_catalog/internal/domain"
)

// ProductAttributeRepository implements domain.ProductAttributeRepository
// for PostgreSQL. Attributes are written by another service; this side only
// reads them in batch.
type ProductAttributeRepository struct {
	db *sqlx.DB
}

// NewProductAttributeRepository creates a new attribute repository
func NewProductAttributeRepository(db *sqlx.DB) *ProductAttributeRepository {
	return &ProductAttributeRepository{db: db}
}

// ListByProductIDs retrieves all non-deleted attributes for the given
// products with a single query
func (r *ProductAttributeRepository) ListByProductIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.ProductAttribute, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, product_id, name, value, created_at, updated_at, deleted_at
		FROM product_attributes
		WHERE product_id IN (?) AND deleted_at IS NULL
		ORDER BY product_id, name
	`, ids)
	if err != nil {
		return nil, err
	}

	query = r.db.Rebind(query)

	var attributes []*domain.ProductAttribute
	if err := r.db.SelectContext(ctx, &attributes, query, args...); err != nil {
		return nil, err
	}

	return attributes, nil
}

// ProductImageRepository implements domain.ProductImageRepository for PostgreSQL
type ProductImageRepository struct {
	db *sqlx.DB
}

// NewProductImageRepository creates a new image repository
func NewProductImageRepository(db *sqlx.DB) *ProductImageRepository {
	return &ProductImageRepository{db: db}
}

// ListByProductIDs retrieves all non-deleted images for the given products
// with a single query
func (r *ProductImageRepository) ListByProductIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.ProductImage, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, product_id, url, alt_text, position, created_at, updated_at, deleted_at
		FROM product_images
		WHERE product_id IN (?) AND deleted_at IS NULL
		ORDER BY product_id, position
	`, ids)
	if err != nil {
		return nil, err
	}

	query = r.db.Rebind(query)

	var images []*domain.ProductImage
	if err := r.db.SelectContext(ctx, &images, query, args...); err != nil {
		return nil, err
	}

	return images, nil
}
