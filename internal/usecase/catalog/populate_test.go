package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/minhvt/product_catalog/internal/domain"
	"github.com/minhvt/product_catalog/internal/pkg/logger"
	"github.com/minhvt/product_catalog/internal/repository/cache"
)

type populateFixture struct {
	*serviceFixture
	now time.Time
}

// newPopulateFixture wires the service against a category cache whose clock
// the test controls.
func newPopulateFixture(categoryTTL time.Duration) *populateFixture {
	f := &populateFixture{
		serviceFixture: &serviceFixture{
			products:   new(MockProductRepository),
			categories: new(MockCategoryRepository),
			attributes: new(MockAttributeRepository),
			images:     new(MockImageRepository),
			publisher:  new(MockPublisher),
		},
		now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	f.categoryCache = cache.NewMemory[uuid.UUID, *domain.Category](categoryTTL, func() time.Time { return f.now })
	f.statsCache = cache.NewValue[*domain.ProductStatistics](time.Minute, func() time.Time { return f.now })
	f.service = NewService(
		f.products,
		f.categories,
		f.attributes,
		f.images,
		f.categoryCache,
		f.statsCache,
		f.publisher,
		logger.New("test"),
	)
	return f
}

func (f *populateFixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func TestPopulate_BatchesEveryRelationQuery(t *testing.T) {
	f := newPopulateFixture(5 * time.Minute)

	categoryIDs := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	categories := make([]*domain.Category, len(categoryIDs))
	for i, id := range categoryIDs {
		categories[i] = &domain.Category{ID: id, Name: "Category"}
	}

	products := make([]*domain.Product, 12)
	for i := range products {
		id := categoryIDs[i%3]
		products[i] = &domain.Product{ID: uuid.New(), Name: "Product", Price: 1, CategoryID: &id}
	}

	attrs := []*domain.ProductAttribute{
		{ID: uuid.New(), ProductID: products[0].ID, Name: "color", Value: "black"},
		{ID: uuid.New(), ProductID: products[0].ID, Name: "weight", Value: "120g"},
	}
	imgs := []*domain.ProductImage{
		{ID: uuid.New(), ProductID: products[1].ID, URL: "https://cdn.example.com/a.jpg", Position: 0},
	}

	f.categories.On("FindByIDs", mock.Anything, mock.MatchedBy(func(ids []uuid.UUID) bool {
		return len(ids) == 3
	})).Return(categories, nil)
	f.attributes.On("ListByProductIDs", mock.Anything, mock.MatchedBy(func(ids []uuid.UUID) bool {
		return len(ids) == 12
	})).Return(attrs, nil)
	f.images.On("ListByProductIDs", mock.Anything, mock.MatchedBy(func(ids []uuid.UUID) bool {
		return len(ids) == 12
	})).Return(imgs, nil)

	got := f.service.Populate(context.Background(), products)

	assert.Len(t, got, 12)
	for _, product := range got {
		assert.NotNil(t, product.Category)
		assert.Equal(t, *product.CategoryID, product.Category.ID)
		assert.NotNil(t, product.Attributes)
		assert.NotNil(t, product.Images)
	}
	assert.Len(t, got[0].Attributes, 2)
	assert.Len(t, got[1].Images, 1)
	assert.Empty(t, got[2].Attributes)
	assert.Empty(t, got[2].Images)

	// One round-trip per relation type for the whole batch
	f.categories.AssertNumberOfCalls(t, "FindByIDs", 1)
	f.attributes.AssertNumberOfCalls(t, "ListByProductIDs", 1)
	f.images.AssertNumberOfCalls(t, "ListByProductIDs", 1)
}

func TestPopulate_CategoryCacheServesSecondBatch(t *testing.T) {
	f := newPopulateFixture(5 * time.Minute)

	categoryID := uuid.New()
	category := &domain.Category{ID: categoryID, Name: "Storage"}
	first := makeProducts(3, &categoryID)
	second := makeProducts(2, &categoryID)

	f.categories.On("FindByIDs", mock.Anything, []uuid.UUID{categoryID}).Return([]*domain.Category{category}, nil)
	f.attributes.On("ListByProductIDs", mock.Anything, mock.Anything).Return([]*domain.ProductAttribute{}, nil)
	f.images.On("ListByProductIDs", mock.Anything, mock.Anything).Return([]*domain.ProductImage{}, nil)

	f.service.Populate(context.Background(), first)
	f.advance(time.Minute)
	f.service.Populate(context.Background(), second)

	for _, product := range second {
		assert.Equal(t, category, product.Category)
	}
	f.categories.AssertNumberOfCalls(t, "FindByIDs", 1)
}

func TestPopulate_CategoryCacheExpiresWholesale(t *testing.T) {
	f := newPopulateFixture(5 * time.Minute)

	categoryID := uuid.New()
	category := &domain.Category{ID: categoryID, Name: "Networking"}
	products := makeProducts(2, &categoryID)

	f.categories.On("FindByIDs", mock.Anything, []uuid.UUID{categoryID}).Return([]*domain.Category{category}, nil)
	f.attributes.On("ListByProductIDs", mock.Anything, mock.Anything).Return([]*domain.ProductAttribute{}, nil)
	f.images.On("ListByProductIDs", mock.Anything, mock.Anything).Return([]*domain.ProductImage{}, nil)

	f.service.Populate(context.Background(), products)
	f.advance(6 * time.Minute)
	f.service.Populate(context.Background(), products)

	f.categories.AssertNumberOfCalls(t, "FindByIDs", 2)
}

func TestPopulate_DanglingCategoryStaysUnresolved(t *testing.T) {
	f := newPopulateFixture(5 * time.Minute)

	missingID := uuid.New()
	products := makeProducts(1, &missingID)

	f.categories.On("FindByIDs", mock.Anything, []uuid.UUID{missingID}).Return([]*domain.Category{}, nil)
	f.attributes.On("ListByProductIDs", mock.Anything, mock.Anything).Return([]*domain.ProductAttribute{}, nil)
	f.images.On("ListByProductIDs", mock.Anything, mock.Anything).Return([]*domain.ProductImage{}, nil)

	got := f.service.Populate(context.Background(), products)

	assert.Nil(t, got[0].Category)
	assert.NotNil(t, got[0].Attributes)
	assert.NotNil(t, got[0].Images)
}

func TestPopulate_CategoryStoreFailureDegrades(t *testing.T) {
	f := newPopulateFixture(5 * time.Minute)

	categoryID := uuid.New()
	products := makeProducts(2, &categoryID)

	f.categories.On("FindByIDs", mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))
	f.attributes.On("ListByProductIDs", mock.Anything, mock.Anything).Return([]*domain.ProductAttribute{}, nil)
	f.images.On("ListByProductIDs", mock.Anything, mock.Anything).Return([]*domain.ProductImage{}, nil)

	got := f.service.Populate(context.Background(), products)

	assert.Len(t, got, 2)
	for _, product := range got {
		assert.Nil(t, product.Category)
	}
}

func TestPopulate_RelationFailureRetriesSequentially(t *testing.T) {
	f := newPopulateFixture(5 * time.Minute)

	categoryID := uuid.New()
	category := &domain.Category{ID: categoryID, Name: "Cables"}
	products := makeProducts(3, &categoryID)
	imgs := []*domain.ProductImage{
		{ID: uuid.New(), ProductID: products[0].ID, URL: "https://cdn.example.com/x.jpg"},
	}

	f.categories.On("FindByIDs", mock.Anything, []uuid.UUID{categoryID}).Return([]*domain.Category{category}, nil)
	f.attributes.On("ListByProductIDs", mock.Anything, mock.Anything).Return(nil, errors.New("deadlock"))
	f.images.On("ListByProductIDs", mock.Anything, mock.Anything).Return(imgs, nil)

	got := f.service.Populate(context.Background(), products)

	// Attributes failed in both the parallel and the sequential attempt:
	// they render empty while the categories and images that did load are kept.
	assert.Len(t, got[0].Images, 1)
	for _, product := range got {
		assert.Equal(t, category, product.Category)
		assert.NotNil(t, product.Attributes)
		assert.Empty(t, product.Attributes)
	}
	f.attributes.AssertNumberOfCalls(t, "ListByProductIDs", 2)
	f.images.AssertNumberOfCalls(t, "ListByProductIDs", 2)
}

func TestPopulate_EmptyBatchTouchesNothing(t *testing.T) {
	f := newPopulateFixture(5 * time.Minute)

	got := f.service.Populate(context.Background(), []*domain.Product{})

	assert.Empty(t, got)
	f.categories.AssertNotCalled(t, "FindByIDs")
	f.attributes.AssertNotCalled(t, "ListByProductIDs")
	f.images.AssertNotCalled(t, "ListByProductIDs")
}
