package catalog

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/minhvt/product_catalog/internal/domain"
)

// Populate attaches the category, attribute list and image list to every
// product in the batch. It issues at most one category query (for cache
// misses), one attribute query and one image query, regardless of batch size.
//
// Populate never fails: relation-load errors are logged and degrade to absent
// categories or empty collections, so callers always get their products back.
func (s *Service) Populate(ctx context.Context, products []*domain.Product) []*domain.Product {
	if len(products) == 0 {
		return products
	}

	categories := s.resolveCategories(ctx, products)

	seen := make(map[uuid.UUID]struct{}, len(products))
	productIDs := make([]uuid.UUID, 0, len(products))
	for _, product := range products {
		if _, ok := seen[product.ID]; ok {
			continue
		}
		seen[product.ID] = struct{}{}
		productIDs = append(productIDs, product.ID)
	}

	attributes, images := s.fetchRelations(ctx, productIDs)

	attributesByProduct := make(map[uuid.UUID][]*domain.ProductAttribute, len(products))
	for _, attribute := range attributes {
		attributesByProduct[attribute.ProductID] = append(attributesByProduct[attribute.ProductID], attribute)
	}

	imagesByProduct := make(map[uuid.UUID][]*domain.ProductImage, len(products))
	for _, image := range images {
		imagesByProduct[image.ProductID] = append(imagesByProduct[image.ProductID], image)
	}

	for _, product := range products {
		if product.CategoryID != nil {
			// A dangling category reference simply stays unresolved
			if category, ok := categories[*product.CategoryID]; ok {
				product.Category = category
			}
		}

		product.Attributes = attributesByProduct[product.ID]
		if product.Attributes == nil {
			product.Attributes = []*domain.ProductAttribute{}
		}

		product.Images = imagesByProduct[product.ID]
		if product.Images == nil {
			product.Images = []*domain.ProductImage{}
		}
	}

	return products
}

// resolveCategories returns every category referenced by the batch, going to
// the store once for the ids the cache cannot answer.
func (s *Service) resolveCategories(ctx context.Context, products []*domain.Product) map[uuid.UUID]*domain.Category {
	seen := make(map[uuid.UUID]struct{}, len(products))
	var ids []uuid.UUID
	for _, product := range products {
		if product.CategoryID == nil {
			continue
		}
		if _, ok := seen[*product.CategoryID]; ok {
			continue
		}
		seen[*product.CategoryID] = struct{}{}
		ids = append(ids, *product.CategoryID)
	}

	if len(ids) == 0 {
		return nil
	}

	hits, missing := s.categoryCache.GetMany(ctx, ids)
	if hits == nil {
		hits = make(map[uuid.UUID]*domain.Category, len(ids))
	}
	if len(missing) == 0 {
		return hits
	}

	fetched, err := s.categories.FindByIDs(ctx, missing)
	if err != nil {
		// Degraded read: this batch renders without the missing categories
		s.logger.Errorf(err, "Failed to load %d categories during populate", len(missing))
		return hits
	}

	entries := make(map[uuid.UUID]*domain.Category, len(fetched))
	for _, category := range fetched {
		entries[category.ID] = category
		hits[category.ID] = category
	}
	s.categoryCache.PutMany(ctx, entries)

	return hits
}

// fetchRelations runs the attribute and image queries concurrently and joins
// both before returning. If either task fails, both outcomes are discarded
// and the same two queries run again sequentially on the calling goroutine;
// a relation type that fails twice degrades to empty for the whole batch.
func (s *Service) fetchRelations(ctx context.Context, productIDs []uuid.UUID) ([]*domain.ProductAttribute, []*domain.ProductImage) {
	var attributes []*domain.ProductAttribute
	var images []*domain.ProductImage

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		attributes, err = s.attributes.ListByProductIDs(gctx, productIDs)
		return err
	})
	g.Go(func() error {
		var err error
		images, err = s.images.ListByProductIDs(gctx, productIDs)
		return err
	})

	err := g.Wait()
	if err == nil {
		return attributes, images
	}

	s.logger.Warnf("Parallel relation fetch failed, retrying sequentially: %v", err)

	attributes, err = s.attributes.ListByProductIDs(ctx, productIDs)
	if err != nil {
		s.logger.Errorf(err, "Attribute fetch failed twice, returning empty attributes")
		attributes = nil
	}

	images, err = s.images.ListByProductIDs(ctx, productIDs)
	if err != nil {
		s.logger.Errorf(err, "Image fetch failed twice, returning empty images")
		images = nil
	}

	return attributes, images
}
