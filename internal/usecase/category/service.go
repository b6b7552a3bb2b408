package category

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

// CacheInvalidator clears a cache wholesale. Category mutations clear both
// the category cache and the statistics cache, same as product mutations.
type CacheInvalidator interface {
	Clear(ctx context.Context)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// CategoryEvent represents a mutation event for a category
type CategoryEvent struct {
	EventType  string           `json:"event_type"`
	Timestamp  time.Time        `json:"timestamp"`
	CategoryID uuid.UUID        `json:"category_id"`
	Category   *domain.Category `json:"category,omitempty"`
}

// Service handles category lifecycle: create, update, soft delete and, for
// categories only, restore.
type Service struct {
	repo          domain.CategoryRepository
	categoryCache CacheInvalidator
	statsCache    CacheInvalidator
	publisher     EventPublisher
	validate      *validator.Validate
	logger        *logger.Logger
}

// NewService creates a new category service
func NewService(
	repo domain.CategoryRepository,
	categoryCache CacheInvalidator,
	statsCache CacheInvalidator,
	publisher EventPublisher,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:          repo,
		categoryCache: categoryCache,
		statsCache:    statsCache,
		publisher:     publisher,
		validate:      pkgvalidator.Get(),
		logger:        log,
	}
}

// Create creates a new category. Active category names are unique.
func (s *Service) Create(ctx context.Context, name string, description *string) (*domain.Category, error) {
	category := &domain.Category{
		Name:        strings.TrimSpace(name),
		Description: description,
	}

	if err := s.validate.Struct(category); err != nil {
		s.logger.Error("Category validation failed", err)
		return nil, domain.ErrInvalidInput
	}

	exists, err := s.repo.ExistsActiveByName(ctx, category.Name)
	if err != nil {
		s.logger.Error("Failed to check category name", err)
		return nil, domain.StoreError(err)
	}
	if exists {
		s.logger.Debugf("Category name already taken: %s", category.Name)
		return nil, domain.ErrConflict
	}

	if err := s.repo.Create(ctx, category); err != nil {
		s.logger.Error("Failed to create category", err)
		return nil, domain.StoreError(err)
	}

	s.invalidateCaches(ctx)
	s.publishEvent(ctx, "catalog.category.created", category.ID, category)

	s.logger.WithFields(map[string]interface{}{
		"category_id": category.ID,
		"name":        category.Name,
	}).Info("Category created successfully")

	return category, nil
}

// Update renames or re-describes an active category
func (s *Service) Update(ctx context.Context, id uuid.UUID, name string, description *string) (*domain.Category, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debugf("Category not found: %s", id)
			return nil, domain.ErrNotFound
		}
		s.logger.Error("Failed to get category", err)
		return nil, domain.StoreError(err)
	}

	name = strings.TrimSpace(name)
	if !strings.EqualFold(existing.Name, name) {
		exists, err := s.repo.ExistsActiveByName(ctx, name)
		if err != nil {
			s.logger.Error("Failed to check category name", err)
			return nil, domain.StoreError(err)
		}
		if exists {
			s.logger.Debugf("Category name already taken: %s", name)
			return nil, domain.ErrConflict
		}
	}

	existing.Name = name
	existing.Description = description

	if err := s.validate.Struct(existing); err != nil {
		s.logger.Error("Category validation failed", err)
		return nil, domain.ErrInvalidInput
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		s.logger.Error("Failed to update category", err)
		return nil, domain.StoreError(err)
	}

	s.invalidateCaches(ctx)
	s.publishEvent(ctx, "catalog.category.updated", existing.ID, existing)

	s.logger.WithFields(map[string]interface{}{
		"category_id": existing.ID,
		"name":        existing.Name,
	}).Info("Category updated successfully")

	return existing, nil
}

// SoftDelete marks a category deleted. Products keep their weak reference;
// reads simply stop resolving it.
func (s *Service) SoftDelete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debugf("Category not found for delete: %s", id)
			return domain.ErrNotFound
		}
		s.logger.Error("Failed to delete category", err)
		return domain.StoreError(err)
	}

	s.invalidateCaches(ctx)
	s.publishEvent(ctx, "catalog.category.deleted", id, nil)

	s.logger.WithFields(map[string]interface{}{
		"category_id": id,
	}).Info("Category deleted successfully")

	return nil
}

// Restore brings a soft-deleted category back
func (s *Service) Restore(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	category, err := s.repo.Restore(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debugf("No deleted category to restore: %s", id)
			return nil, domain.ErrNotFound
		}
		s.logger.Error("Failed to restore category", err)
		return nil, domain.StoreError(err)
	}

	s.invalidateCaches(ctx)
	s.publishEvent(ctx, "catalog.category.restored", category.ID, category)

	s.logger.WithFields(map[string]interface{}{
		"category_id": category.ID,
		"name":        category.Name,
	}).Info("Category restored successfully")

	return category, nil
}

// GetByID retrieves an active category
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debugf("Category not found: %s", id)
			return nil, domain.ErrNotFound
		}
		s.logger.Error("Failed to get category", err)
		return nil, domain.StoreError(err)
	}

	return category, nil
}

// ListActive retrieves all active categories
func (s *Service) ListActive(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.repo.ListActive(ctx)
	if err != nil {
		s.logger.Error("Failed to list categories", err)
		return nil, domain.StoreError(err)
	}

	return categories, nil
}

func (s *Service) invalidateCaches(ctx context.Context) {
	s.categoryCache.Clear(ctx)
	s.statsCache.Clear(ctx)
}

func (s *Service) publishEvent(ctx context.Context, eventType string, categoryID uuid.UUID, category *domain.Category) {
	event := CategoryEvent{
		EventType:  eventType,
		Timestamp:  time.Now(),
		CategoryID: categoryID,
		Category:   category,
	}

	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("Failed to marshal category event", err)
		return
	}

	if err := s.publisher.Publish(ctx, eventType, data); err != nil {
		s.logger.Warnf("Failed to publish %s event for category %s: %v", eventType, categoryID, err)
	}
}
