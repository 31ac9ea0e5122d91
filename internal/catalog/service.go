package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	pkgerrors "github.com/pasofino/tienda-backend/pkg/errors"
	"github.com/pasofino/tienda-backend/pkg/pagination"
)

const (
	relatedLimit  = 4
	featuredLimit = 8
)

// Service exposes public catalog reads.
type Service interface {
	ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error)
	GetProduct(ctx context.Context, slug string) (*ProductDetailDTO, error)
	ListFeatured(ctx context.Context) ([]ProductSummaryDTO, error)
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	ListBrands(ctx context.Context) ([]BrandDTO, error)
}

type service struct {
	repo *Repository
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	products, total, err := s.repo.ListProducts(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	summaries := make([]ProductSummaryDTO, 0, len(products))
	for i := range products {
		summaries = append(summaries, NewProductSummaryDTO(&products[i]))
	}
	return &ProductListResult{
		Products: summaries,
		Page:     pagination.BuildPage(input.Pagination, total),
	}, nil
}

func (s *service) GetProduct(ctx context.Context, slug string) (*ProductDetailDTO, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product slug is required")
	}

	product, err := s.repo.FindAvailableBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	related, err := s.repo.ListRelated(ctx, product.ID, product.CategoryID, relatedLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load related products")
	}
	return NewProductDetailDTO(product, related), nil
}

func (s *service) ListFeatured(ctx context.Context) ([]ProductSummaryDTO, error) {
	products, err := s.repo.ListFeatured(ctx, featuredLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list featured products")
	}
	summaries := make([]ProductSummaryDTO, 0, len(products))
	for i := range products {
		summaries = append(summaries, NewProductSummaryDTO(&products[i]))
	}
	return summaries, nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	dtos := make([]CategoryDTO, 0, len(categories))
	for i := range categories {
		dtos = append(dtos, NewCategoryDTO(&categories[i]))
	}
	return dtos, nil
}

func (s *service) ListBrands(ctx context.Context) ([]BrandDTO, error) {
	brands, err := s.repo.ListBrands(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list brands")
	}
	dtos := make([]BrandDTO, 0, len(brands))
	for i := range brands {
		dtos = append(dtos, NewBrandDTO(&brands[i]))
	}
	return dtos, nil
}
