package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/storage"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type ProductIndexer interface {
	IndexProduct(ctx context.Context, p *models.Product) error
}

type ProductSearcher interface {
	Search(ctx context.Context, query string, from, size int) (int64, []search.Document, error)
}

type CatalogService struct {
	Repo     *repo.GormRepo
	Thumbs   storage.Thumbnails
	Indexer  ProductIndexer
	Searcher ProductSearcher
}

type ProductView struct {
	models.Product
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

func (s *CatalogService) view(ctx context.Context, p models.Product) ProductView {
	v := ProductView{Product: p}
	if s.Thumbs == nil || p.Thumbnail == "" {
		return v
	}
	u, err := s.Thumbs.URL(ctx, p.Thumbnail)
	if err != nil {
		logging.FromContext(ctx).Warn("thumbnail_url_error", "svc", "catalog", "slug", p.Slug, "error", err)
		return v
	}
	v.ThumbnailURL = u
	return v
}

func (s *CatalogService) ListProducts(ctx context.Context, offset, limit int) (int64, []ProductView, error) {
	total, items, err := s.Repo.ListProducts(ctx, offset, limit)
	if err != nil {
		return 0, nil, err
	}
	out := make([]ProductView, len(items))
	for i, p := range items {
		out[i] = s.view(ctx, p)
	}
	return total, out, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, productSlug string) (*ProductView, error) {
	p, err := s.Repo.GetProductBySlug(ctx, productSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %q: %w", productSlug, ErrNotFound)
		}
		return nil, err
	}
	v := s.view(ctx, *p)
	return &v, nil
}

// CreateProduct stores p under the slug of its name and indexes it for
// search. An indexing failure is logged and does not undo the insert.
func (s *CatalogService) CreateProduct(ctx context.Context, p *models.Product) error {
	l := logging.FromContext(ctx).With("svc", "catalog.create")

	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("name is required: %w", ErrValidation)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("price must not be negative: %w", ErrValidation)
	}
	p.Slug = slug.Make(p.Name)

	if _, err := s.Repo.GetProductBySlug(ctx, p.Slug); err == nil {
		return fmt.Errorf("product %q already exists: %w", p.Slug, ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		return err
	}

	if s.Indexer != nil {
		if err := s.Indexer.IndexProduct(ctx, p); err != nil {
			l.Warn("index_product_error", "slug", p.Slug, "error", err)
		}
	}
	l.Info("product created", "slug", p.Slug)
	return nil
}

func (s *CatalogService) Search(ctx context.Context, query string, from, size int) (int64, []search.Document, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, nil, fmt.Errorf("query is required: %w", ErrValidation)
	}
	if s.Searcher == nil {
		return 0, nil, errors.New("search is not configured")
	}
	return s.Searcher.Search(ctx, query, from, size)
}
