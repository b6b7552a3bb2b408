package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/minhvt/product_catalog/internal/domain"
	"github.com/minhvt/product_catalog/internal/pkg/logger"
	pkgvalidator "github.com/minhvt/product_catalog/internal/pkg/validator"
)

// CategoryCache is the bounded-staleness category store consulted during
// populate. Implementations never return errors: a failure is a miss.
type CategoryCache interface {
	GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Category, []uuid.UUID)
	PutMany(ctx context.Context, entries map[uuid.UUID]*domain.Category)
	Clear(ctx context.Context)
}

// StatisticsCache holds the last computed product aggregate.
type StatisticsCache interface {
	Get(ctx context.Context) (*domain.ProductStatistics, bool)
	Set(ctx context.Context, stats *domain.ProductStatistics)
	Clear(ctx context.Context)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// ProductEvent represents a mutation event for a product
type ProductEvent struct {
	EventType string          `json:"event_type"`
	Timestamp time.Time       `json:"timestamp"`
	ProductID uuid.UUID       `json:"product_id"`
	Product   *domain.Product `json:"product,omitempty"`
}

// ListQuery carries raw listing parameters as received from a caller. The
// category id arrives as text; a malformed value is ignored, not rejected.
type ListQuery struct {
	Name       string
	CategoryID string
	Page       int
	Size       int
	SortBy     string
	SortDir    string
}

// Service is the catalog facade: it owns reads (populated with category,
// attributes and images), writes, and the wholesale cache invalidation every
// write triggers.
type Service struct {
	products   domain.ProductRepository
	categories domain.CategoryRepository
	attributes domain.ProductAttributeRepository
	images     domain.ProductImageRepository

	categoryCache CategoryCache
	statsCache    StatisticsCache
	publisher     EventPublisher
	validate      *validator.Validate
	logger        *logger.Logger
}

// NewService creates a new catalog service
func NewService(
	products domain.ProductRepository,
	categories domain.CategoryRepository,
	attributes domain.ProductAttributeRepository,
	images domain.ProductImageRepository,
	categoryCache CategoryCache,
	statsCache StatisticsCache,
	publisher EventPublisher,
	log *logger.Logger,
) *Service {
	return &Service{
		products:      products,
		categories:    categories,
		attributes:    attributes,
		images:        images,
		categoryCache: categoryCache,
		statsCache:    statsCache,
		publisher:     publisher,
		validate:      pkgvalidator.Get(),
		logger:        log,
	}
}

// Create creates a new product. A referenced category must exist.
func (s *Service) Create(ctx context.Context, product *domain.Product) error {
	if err := s.validate.Struct(product); err != nil {
		s.logger.Error("Product validation failed", err)
		return domain.ErrInvalidInput
	}

	if err := s.ensureCategoryExists(ctx, product.CategoryID); err != nil {
		return err
	}

	if err := s.products.Create(ctx, product); err != nil {
		s.logger.Error("Failed to create product", err)
		return domain.StoreError(err)
	}

	s.invalidateCaches(ctx)
	s.publishEvent(ctx, "catalog.product.created", product.ID, product)

	s.logger.WithFields(map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	}).Info("Product created successfully")

	return nil
}

// Update updates an existing active product in place
func (s *Service) Update(ctx context.Context, product *domain.Product) error {
	if product.ID == uuid.Nil {
		return domain.ErrInvalidInput
	}

	if err := s.validate.Struct(product); err != nil {
		s.logger.Error("Product validation failed", err)
		return domain.ErrInvalidInput
	}

	if err := s.ensureCategoryExists(ctx, product.CategoryID); err != nil {
		return err
	}

	if err := s.products.Update(ctx, product); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debugf("Product not found for update: %s", product.ID)
			return domain.ErrNotFound
		}
		s.logger.Error("Failed to update product", err)
		return domain.StoreError(err)
	}

	s.invalidateCaches(ctx)
	s.publishEvent(ctx, "catalog.product.updated", product.ID, product)

	s.logger.WithFields(map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	}).Info("Product updated successfully")

	return nil
}

// SoftDelete marks a product deleted. Deleted products never come back.
func (s *Service) SoftDelete(ctx context.Context, id uuid.UUID) error {
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debugf("Product not found for delete: %s", id)
			return domain.ErrNotFound
		}
		s.logger.Error("Failed to delete product", err)
		return domain.StoreError(err)
	}

	s.invalidateCaches(ctx)
	s.publishEvent(ctx, "catalog.product.deleted", id, nil)

	s.logger.WithFields(map[string]interface{}{
		"product_id": id,
	}).Info("Product deleted successfully")

	return nil
}

// GetByID retrieves one active product, fully populated
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debugf("Product not found: %s", id)
			return nil, domain.ErrNotFound
		}
		s.logger.Error("Failed to get product", err)
		return nil, domain.StoreError(err)
	}

	s.Populate(ctx, []*domain.Product{product})
	return product, nil
}

// GetAllActive retrieves every active product, fully populated
func (s *Service) GetAllActive(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.products.ListActive(ctx)
	if err != nil {
		s.logger.Error("Failed to list products", err)
		return nil, domain.StoreError(err)
	}

	return s.Populate(ctx, products), nil
}

// SearchByName retrieves active products whose name contains the substring,
// case-insensitively, fully populated
func (s *Service) SearchByName(ctx context.Context, name string) ([]*domain.Product, error) {
	products, err := s.products.SearchByName(ctx, name)
	if err != nil {
		s.logger.Error("Failed to search products", err)
		return nil, domain.StoreError(err)
	}

	return s.Populate(ctx, products), nil
}

// GetPaged retrieves one page of populated products plus page metadata
func (s *Service) GetPaged(ctx context.Context, query ListQuery) (*domain.Page, error) {
	filter := domain.ProductFilter{Name: strings.TrimSpace(query.Name)}

	if raw := strings.TrimSpace(query.CategoryID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			// Bad filter input narrows nothing; it does not fail the request
			s.logger.Warnf("Ignoring malformed category filter %q: %v", raw, err)
		} else {
			filter.CategoryID = &id
		}
	}

	page := domain.PageRequest{
		Page:    query.Page,
		Size:    query.Size,
		SortBy:  query.SortBy,
		SortDir: query.SortDir,
	}.Normalize()

	products, err := s.products.FindPaged(ctx, filter, page)
	if err != nil {
		s.logger.Error("Failed to page products", err)
		return nil, domain.StoreError(err)
	}

	total, err := s.products.CountByFilter(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to count products", err)
		return nil, domain.StoreError(err)
	}

	s.Populate(ctx, products)

	return domain.NewPage(products, total, page.Page, page.Size), nil
}

// GetStatistics returns the aggregate over active products, served from the
// statistics cache within its TTL
func (s *Service) GetStatistics(ctx context.Context) (*domain.ProductStatistics, error) {
	if stats, ok := s.statsCache.Get(ctx); ok {
		s.logger.Debug("Statistics cache hit")
		return stats, nil
	}

	stats, err := s.products.Statistics(ctx)
	if err != nil {
		s.logger.Error("Failed to compute statistics", err)
		return nil, domain.StoreError(err)
	}

	s.statsCache.Set(ctx, stats)
	return stats, nil
}

func (s *Service) ensureCategoryExists(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}

	if _, err := s.categories.GetByID(ctx, *id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warnf("Product references unknown category %s", *id)
			return domain.ErrInvalidInput
		}
		s.logger.Error("Failed to check category reference", err)
		return domain.StoreError(err)
	}

	return nil
}

// invalidateCaches clears both caches wholesale. Runs synchronously inside
// every mutation so the next read on any goroutine sees the cleared state.
func (s *Service) invalidateCaches(ctx context.Context) {
	s.categoryCache.Clear(ctx)
	s.statsCache.Clear(ctx)
}

func (s *Service) publishEvent(ctx context.Context, eventType string, productID uuid.UUID, product *domain.Product) {
	event := ProductEvent{
		EventType: eventType,
		Timestamp: time.Now(),
		ProductID: productID,
		Product:   product,
	}

	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("Failed to marshal product event", err)
		return
	}

	if err := s.publisher.Publish(ctx, eventType, data); err != nil {
		s.logger.Warnf("Failed to publish %s event for product %s: %v", eventType, productID, err)
	}
}
