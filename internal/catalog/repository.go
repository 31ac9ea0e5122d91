package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pasofino/tienda-backend/pkg/db/models"
	"github.com/pasofino/tienda-backend/pkg/pagination"
)

// Repository wires catalog read persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// ListProducts returns a filtered page of available products plus the total
// row count for the same filters.
func (r *Repository) ListProducts(ctx context.Context, input ListProductsInput) ([]models.Product, int64, error) {
	params := pagination.Normalize(input.Pagination)

	query := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("products.available = ?", true)
	query = applyFilters(query, input.Filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	if err := query.
		Preload("Category").
		Preload("Brand").
		Preload("Variants").
		Preload("Images").
		Order("products.created_at DESC").
		Limit(params.Limit).
		Offset(input.Pagination.Offset()).
		Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// FindAvailableBySlug loads one available product with all associations.
func (r *Repository) FindAvailableBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Brand").
		Preload("Variants", func(tx *gorm.DB) *gorm.DB { return tx.Order("size ASC") }).
		Preload("Images", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }).
		First(&product, "slug = ? AND available = ?", slug, true).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// ListRelated returns up to limit other available products from the same
// category.
func (r *Repository) ListRelated(ctx context.Context, productID uuid.UUID, categoryID *uuid.UUID, limit int) ([]models.Product, error) {
	if categoryID == nil {
		return nil, nil
	}
	var products []models.Product
	if err := r.db.WithContext(ctx).
		Preload("Brand").
		Preload("Images").
		Preload("Variants").
		Where("category_id = ? AND id <> ? AND available = ?", *categoryID, productID, true).
		Order("created_at DESC").
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ListFeatured returns available products flagged as featured.
func (r *Repository) ListFeatured(ctx context.Context, limit int) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Brand").
		Preload("Variants").
		Preload("Images").
		Where("featured = ? AND available = ?", true, true).
		Order("created_at DESC").
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ListCategories returns all categories ordered by name.
func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// ListBrands returns all brands ordered by name.
func (r *Repository) ListBrands(ctx context.Context) ([]models.Brand, error) {
	var brands []models.Brand
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&brands).Error; err != nil {
		return nil, err
	}
	return brands, nil
}

func applyFilters(query *gorm.DB, filters ProductListFilters) *gorm.DB {
	if slug := strings.TrimSpace(filters.CategorySlug); slug != "" {
		query = query.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", slug)
	}
	if slug := strings.TrimSpace(filters.BrandSlug); slug != "" {
		query = query.Joins("JOIN brands ON brands.id = products.brand_id").
			Where("brands.slug = ?", slug)
	}
	if filters.Gender != nil {
		query = query.Where("products.gender = ?", filters.Gender.String())
	}
	if filters.PriceMin != nil {
		query = query.Where("products.price >= ?", *filters.PriceMin)
	}
	if filters.PriceMax != nil {
		query = query.Where("products.price <= ?", *filters.PriceMax)
	}
	if filters.Featured != nil {
		query = query.Where("products.featured = ?", *filters.Featured)
	}
	if q := strings.TrimSpace(filters.Query); q != "" {
		needle := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ?", needle, needle)
	}
	return query
}
