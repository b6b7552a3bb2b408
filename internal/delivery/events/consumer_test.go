package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhvt/product_catalog/internal/pkg/logger"
	"github.com/minhvt/product_catalog/internal/repository/cache"
)

func TestInvalidationHandler_ClearsAllCaches(t *testing.T) {
	categoryCache := cache.NewMemory[string, string](time.Minute, nil)
	statsCache := cache.NewValue[int](time.Minute, nil)

	categoryCache.PutMany(context.Background(), map[string]string{"a": "Audio"})
	statsCache.Set(context.Background(), 42)

	handler := InvalidationHandler(logger.New("test"), categoryCache, statsCache)

	err := handler([]byte(`{"event_type":"catalog.product.created","product_id":"00000000-0000-0000-0000-000000000001"}`))
	require.NoError(t, err)

	_, ok := categoryCache.Get(context.Background(), "a")
	assert.False(t, ok)
	_, ok = statsCache.Get(context.Background())
	assert.False(t, ok)
}

func TestInvalidationHandler_RejectsMalformedPayload(t *testing.T) {
	categoryCache := cache.NewMemory[string, string](time.Minute, nil)
	categoryCache.PutMany(context.Background(), map[string]string{"a": "Audio"})

	handler := InvalidationHandler(logger.New("test"), categoryCache)

	err := handler([]byte(`not json`))
	assert.Error(t, err)

	value, ok := categoryCache.Get(context.Background(), "a")
	assert.True(t, ok)
	assert.Equal(t, "Audio", value)
}
