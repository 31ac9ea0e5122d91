package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pasofino/tienda-backend/pkg/db/models"
	"github.com/pasofino/tienda-backend/pkg/pagination"
)

// ProductSummaryDTO is the compact catalog row for listings.
type ProductSummaryDTO struct {
	ID              uuid.UUID        `json:"id"`
	Name            string           `json:"name"`
	Slug            string           `json:"slug"`
	Price           decimal.Decimal  `json:"price"`
	FinalPrice      decimal.Decimal  `json:"final_price"`
	DiscountPercent *decimal.Decimal `json:"discount_percent,omitempty"`
	Gender          string           `json:"gender"`
	ImageURL        string           `json:"image_url,omitempty"`
	Category        *NamedRefDTO     `json:"category,omitempty"`
	Brand           *NamedRefDTO     `json:"brand,omitempty"`
	Featured        bool             `json:"featured"`
	InStock         bool             `json:"in_stock"`
}

// NamedRefDTO is a slim reference to a category or brand.
type NamedRefDTO struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// VariantDTO is one purchasable size of a product.
type VariantDTO struct {
	ID      uuid.UUID `json:"id"`
	Size    string    `json:"size"`
	InStock bool      `json:"in_stock"`
}

// ProductDetailDTO is the full product page payload.
type ProductDetailDTO struct {
	ProductSummaryDTO
	Description string              `json:"description"`
	Color       string              `json:"color,omitempty"`
	Material    string              `json:"material,omitempty"`
	Images      []string            `json:"images"`
	Variants    []VariantDTO        `json:"variants"`
	Related     []ProductSummaryDTO `json:"related"`
}

// ProductListResult bundles a page of summaries with pagination metadata.
type ProductListResult struct {
	Products []ProductSummaryDTO `json:"products"`
	Page     pagination.Page     `json:"pagination"`
}

// CategoryDTO is the public category shape.
type CategoryDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
}

// BrandDTO is the public brand shape.
type BrandDTO struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Slug     string    `json:"slug"`
	ImageURL string    `json:"image_url,omitempty"`
}

// NewProductSummaryDTO maps a product row onto the listing shape.
func NewProductSummaryDTO(product *models.Product) ProductSummaryDTO {
	dto := ProductSummaryDTO{
		ID:              product.ID,
		Name:            product.Name,
		Slug:            product.Slug,
		Price:           product.Price,
		FinalPrice:      product.FinalPrice(),
		DiscountPercent: product.DiscountPercent,
		Gender:          product.Gender.String(),
		ImageURL:        product.PrimaryImage(),
		Featured:        product.Featured,
		InStock:         productInStock(product),
	}
	if product.Category != nil {
		dto.Category = &NamedRefDTO{Name: product.Category.Name, Slug: product.Category.Slug}
	}
	if product.Brand != nil {
		dto.Brand = &NamedRefDTO{Name: product.Brand.Name, Slug: product.Brand.Slug}
	}
	return dto
}

// NewProductDetailDTO maps a product row plus its related products onto the
// detail shape.
func NewProductDetailDTO(product *models.Product, related []models.Product) *ProductDetailDTO {
	if product == nil {
		return nil
	}
	detail := &ProductDetailDTO{
		ProductSummaryDTO: NewProductSummaryDTO(product),
		Description:       product.Description,
		Color:             product.Color,
		Material:          product.Material,
		Images:            make([]string, 0, len(product.Images)),
		Variants:          make([]VariantDTO, 0, len(product.Variants)),
		Related:           make([]ProductSummaryDTO, 0, len(related)),
	}
	for _, img := range product.Images {
		detail.Images = append(detail.Images, img.URL)
	}
	for _, variant := range product.Variants {
		detail.Variants = append(detail.Variants, VariantDTO{
			ID:      variant.ID,
			Size:    variant.Size,
			InStock: variant.Stock > 0,
		})
	}
	for i := range related {
		detail.Related = append(detail.Related, NewProductSummaryDTO(&related[i]))
	}
	return detail
}

// NewCategoryDTO maps a category row onto the API shape.
func NewCategoryDTO(category *models.Category) CategoryDTO {
	return CategoryDTO{
		ID:          category.ID,
		Name:        category.Name,
		Slug:        category.Slug,
		Description: category.Description,
		ImageURL:    category.ImageURL,
	}
}

// NewBrandDTO maps a brand row onto the API shape.
func NewBrandDTO(brand *models.Brand) BrandDTO {
	return BrandDTO{
		ID:       brand.ID,
		Name:     brand.Name,
		Slug:     brand.Slug,
		ImageURL: brand.ImageURL,
	}
}

// productInStock reports whether any purchasable unit remains. Sized models
// look at variant stock, the rest at the product counter.
func productInStock(product *models.Product) bool {
	if product.HasVariants() {
		for _, variant := range product.Variants {
			if variant.Stock > 0 {
				return true
			}
		}
		return false
	}
	return product.Stock > 0
}
