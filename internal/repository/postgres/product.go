package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/minhvt/product_catalog/internal/domain"
)

const productColumns = "id, name, description, price, stock, category_id, created_at, updated_at, deleted_at"

// productSortColumns whitelists the fields a caller may sort by.
var productSortColumns = map[string]string{
	"name":       "name",
	"price":      "price",
	"stock":      "stock",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// ProductRepository implements domain.ProductRepository for PostgreSQL
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new PostgreSQL product repository
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create creates a new product
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (name, description, price, stock, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	err := r.db.QueryRowxContext(
		ctx,
		query,
		product.Name,
		product.Description,
		product.Price,
		product.Stock,
		product.CategoryID,
		product.CreatedAt,
		product.UpdatedAt,
	).Scan(
		&product.ID,
		&product.CreatedAt,
		&product.UpdatedAt,
	)

	if err != nil {
		return err
	}

	return nil
}

// GetByID retrieves a product by ID
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE id = $1 AND deleted_at IS NULL
	`, productColumns)

	var product domain.Product
	err := r.db.GetContext(ctx, &product, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return &product, nil
}

// ListActive retrieves all non-deleted products, newest first
func (r *ProductRepository) ListActive(ctx context.Context) ([]*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
	`, productColumns)

	var products []*domain.Product
	err := r.db.SelectContext(ctx, &products, query)
	if err != nil {
		return nil, err
	}

	return products, nil
}

// SearchByName retrieves non-deleted products matching the name substring
func (r *ProductRepository) SearchByName(ctx context.Context, name string) ([]*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE deleted_at IS NULL AND name ILIKE $1
		ORDER BY created_at DESC
	`, productColumns)

	var products []*domain.Product
	err := r.db.SelectContext(ctx, &products, query, "%"+name+"%")
	if err != nil {
		return nil, err
	}

	return products, nil
}

// FindPaged retrieves one page of non-deleted products matching the filter
func (r *ProductRepository) FindPaged(ctx context.Context, filter domain.ProductFilter, page domain.PageRequest) ([]*domain.Product, error) {
	where, args := buildProductFilter(filter)

	column, ok := productSortColumns[page.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if page.SortDir == domain.SortDesc {
		direction = "DESC"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, productColumns, where, column, direction, len(args)+1, len(args)+2)
	args = append(args, page.Size, page.Offset())

	var products []*domain.Product
	err := r.db.SelectContext(ctx, &products, query, args...)
	if err != nil {
		return nil, err
	}

	return products, nil
}

// CountByFilter counts non-deleted products matching the filter
func (r *ProductRepository) CountByFilter(ctx context.Context, filter domain.ProductFilter) (int64, error) {
	where, args := buildProductFilter(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM products WHERE %s`, where)

	var count int64
	err := r.db.GetContext(ctx, &count, query, args...)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Update updates an existing product
func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, stock = $4, category_id = $5, updated_at = $6
		WHERE id = $7 AND deleted_at IS NULL
		RETURNING updated_at
	`

	product.UpdatedAt = time.Now()

	err := r.db.QueryRowxContext(
		ctx,
		query,
		product.Name,
		product.Description,
		product.Price,
		product.Stock,
		product.CategoryID,
		product.UpdatedAt,
		product.ID,
	).Scan(&product.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}

	return nil
}

// Delete soft-deletes a product
func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE products
		SET deleted_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// Statistics computes the product aggregate in a single pass. COALESCE keeps
// the result zero-valued when no active products exist.
func (r *ProductRepository) Statistics(ctx context.Context) (*domain.ProductStatistics, error) {
	query := `
		SELECT
			COUNT(*) AS total_products,
			COALESCE(AVG(price), 0) AS average_price,
			COALESCE(SUM(stock), 0) AS total_stock,
			COALESCE(MIN(price), 0) AS min_price,
			COALESCE(MAX(price), 0) AS max_price
		FROM products
		WHERE deleted_at IS NULL
	`

	var stats domain.ProductStatistics
	err := r.db.GetContext(ctx, &stats, query)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.ProductStatistics{}, nil
		}
		return nil, err
	}

	return &stats, nil
}

// buildProductFilter renders the WHERE clause shared by FindPaged and
// CountByFilter. Soft-deleted rows are always excluded.
func buildProductFilter(filter domain.ProductFilter) (string, []interface{}) {
	where := []string{"deleted_at IS NULL"}
	var args []interface{}

	if filter.Name != "" {
		args = append(args, "%"+filter.Name+"%")
		where = append(where, fmt.Sprintf("name ILIKE $%d", len(args)))
	}

	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		where = append(where, fmt.Sprintf("category_id = $%d", len(args)))
	}

	return strings.Join(where, " AND "), args
}
