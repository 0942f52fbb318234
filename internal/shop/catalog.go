package shop

import (
	"context"
	"log/slog"
	"strings"

	"github.com/m3rciful/storebot/core/logger"
	"github.com/m3rciful/storebot/internal/domain"
)

// DefaultSearchLimit caps search results when the caller passes no limit.
const DefaultSearchLimit = 20

// ListCategories returns categories ordered by id.
func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	cats, err := s.store.ListCategories(ctx)
	return cats, wrap("list categories", "category", err)
}

// Category returns a single category.
func (s *Service) Category(ctx context.Context, id int64) (domain.Category, error) {
	c, err := s.store.CategoryByID(ctx, id)
	return c, wrap("get category", "category", err)
}

// ListProducts returns products of categoryID ordered by id.
func (s *Service) ListProducts(ctx context.Context, categoryID int64) ([]domain.Product, error) {
	if _, err := s.store.CategoryByID(ctx, categoryID); err != nil {
		return nil, wrap("get category", "category", err)
	}
	products, err := s.store.ListProducts(ctx, categoryID)
	return products, wrap("list products", "product", err)
}

// Product returns a single product.
func (s *Service) Product(ctx context.Context, id int64) (domain.Product, error) {
	p, err := s.store.ProductByID(ctx, id)
	return p, wrap("get product", "product", err)
}

// SearchProducts matches product titles case-insensitively.
func (s *Service) SearchProducts(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	query = strings.TrimSpace(query)
	products, err := s.store.SearchProducts(ctx, query, limit)
	if err != nil {
		return nil, wrap("search products", "product", err)
	}
	logger.Debug(ctx, compCatalog, "catalog.search",
		slog.String("query", query),
		slog.Int("found", len(products)),
	)
	return products, nil
}
