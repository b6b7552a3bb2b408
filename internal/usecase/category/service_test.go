package category

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/minhvt/product_catalog/internal/domain"
	"github.com/minhvt/product_catalog/internal/pkg/logger"
	"github.com/minhvt/product_catalog/internal/repository/cache"
)

// MockCategoryRepository is a mock implementation of domain.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Category, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) ListActive(ctx context.Context) ([]*domain.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) ExistsActiveByName(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCategoryRepository) Restore(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

// MockPublisher is a mock implementation of EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

type fixture struct {
	repo      *MockCategoryRepository
	publisher *MockPublisher

	categoryCache *cache.Memory[uuid.UUID, *domain.Category]
	statsCache    *cache.Value[*domain.ProductStatistics]

	service *Service
}

func newFixture() *fixture {
	f := &fixture{
		repo:          new(MockCategoryRepository),
		publisher:     new(MockPublisher),
		categoryCache: cache.NewMemory[uuid.UUID, *domain.Category](5*time.Minute, nil),
		statsCache:    cache.NewValue[*domain.ProductStatistics](time.Minute, nil),
	}
	f.service = NewService(f.repo, f.categoryCache, f.statsCache, f.publisher, logger.New("test"))
	return f
}

func TestService_Create_Success(t *testing.T) {
	f := newFixture()

	f.repo.On("ExistsActiveByName", mock.Anything, "Audio").Return(false, nil)
	f.repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("Publish", mock.Anything, "catalog.category.created", mock.Anything).Return(nil)

	category, err := f.service.Create(context.Background(), "  Audio  ", nil)

	require.NoError(t, err)
	assert.Equal(t, "Audio", category.Name)
	f.repo.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestService_Create_EmptyName(t *testing.T) {
	f := newFixture()

	category, err := f.service.Create(context.Background(), "   ", nil)

	assert.Nil(t, category)
	assert.Equal(t, domain.ErrInvalidInput, err)
	f.repo.AssertNotCalled(t, "Create")
}

func TestService_Create_DuplicateName(t *testing.T) {
	f := newFixture()

	f.repo.On("ExistsActiveByName", mock.Anything, "Audio").Return(true, nil)

	category, err := f.service.Create(context.Background(), "Audio", nil)

	assert.Nil(t, category)
	assert.Equal(t, domain.ErrConflict, err)
	f.repo.AssertNotCalled(t, "Create")
	f.publisher.AssertNotCalled(t, "Publish")
}

func TestService_Update_NotFound(t *testing.T) {
	f := newFixture()

	id := uuid.New()
	f.repo.On("GetByID", mock.Anything, id).Return(nil, domain.ErrNotFound)

	category, err := f.service.Update(context.Background(), id, "Renamed", nil)

	assert.Nil(t, category)
	assert.Equal(t, domain.ErrNotFound, err)
}

func TestService_Update_RenameConflict(t *testing.T) {
	f := newFixture()

	id := uuid.New()
	f.repo.On("GetByID", mock.Anything, id).Return(&domain.Category{ID: id, Name: "Audio"}, nil)
	f.repo.On("ExistsActiveByName", mock.Anything, "Video").Return(true, nil)

	category, err := f.service.Update(context.Background(), id, "Video", nil)

	assert.Nil(t, category)
	assert.Equal(t, domain.ErrConflict, err)
	f.repo.AssertNotCalled(t, "Update")
}

func TestService_Update_SameNameSkipsUniqueCheck(t *testing.T) {
	f := newFixture()

	id := uuid.New()
	f.repo.On("GetByID", mock.Anything, id).Return(&domain.Category{ID: id, Name: "Audio"}, nil)
	f.repo.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("Publish", mock.Anything, "catalog.category.updated", mock.Anything).Return(nil)

	description := "Speakers and headphones"
	category, err := f.service.Update(context.Background(), id, "audio", &description)

	require.NoError(t, err)
	assert.Equal(t, "audio", category.Name)
	f.repo.AssertNotCalled(t, "ExistsActiveByName")
}

func TestService_Restore_Success(t *testing.T) {
	f := newFixture()

	id := uuid.New()
	restored := &domain.Category{ID: id, Name: "Audio"}
	f.repo.On("Restore", mock.Anything, id).Return(restored, nil)
	f.publisher.On("Publish", mock.Anything, "catalog.category.restored", mock.Anything).Return(nil)

	category, err := f.service.Restore(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, restored, category)
	f.publisher.AssertExpectations(t)
}

func TestService_Restore_NothingToRestore(t *testing.T) {
	f := newFixture()

	id := uuid.New()
	f.repo.On("Restore", mock.Anything, id).Return(nil, domain.ErrNotFound)

	category, err := f.service.Restore(context.Background(), id)

	assert.Nil(t, category)
	assert.Equal(t, domain.ErrNotFound, err)
	f.publisher.AssertNotCalled(t, "Publish")
}

func TestService_SoftDelete_ClearsCategoryCache(t *testing.T) {
	f := newFixture()

	cached := &domain.Category{ID: uuid.New(), Name: "Audio"}
	f.categoryCache.PutMany(context.Background(), map[uuid.UUID]*domain.Category{cached.ID: cached})

	f.repo.On("Delete", mock.Anything, cached.ID).Return(nil)
	f.publisher.On("Publish", mock.Anything, "catalog.category.deleted", mock.Anything).Return(nil)

	require.NoError(t, f.service.SoftDelete(context.Background(), cached.ID))

	hits, missing := f.categoryCache.GetMany(context.Background(), []uuid.UUID{cached.ID})
	assert.Empty(t, hits)
	assert.Equal(t, []uuid.UUID{cached.ID}, missing)
}

func TestService_GetByID_StoreError(t *testing.T) {
	f := newFixture()

	id := uuid.New()
	f.repo.On("GetByID", mock.Anything, id).Return(nil, errors.New("connection refused"))

	category, err := f.service.GetByID(context.Background(), id)

	assert.Nil(t, category)
	assert.True(t, errors.Is(err, domain.ErrStore))
}
