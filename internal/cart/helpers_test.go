package cart

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pasofino/tienda-backend/pkg/db/models"
)

func mustCreateTestProduct(t *testing.T, tx *gorm.DB, stock int, price string) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:        uuid.New(),
		Name:      "Test Runner",
		Slug:      fmt.Sprintf("test-runner-%s", uuid.NewString()),
		Price:     decimal.RequireFromString(price),
		Stock:     stock,
		Available: true,
	}
	if err := tx.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func mustCreateTestVariant(t *testing.T, tx *gorm.DB, productID uuid.UUID, size string, stock int) *models.ProductVariant {
	t.Helper()
	variant := &models.ProductVariant{
		ID:        uuid.New(),
		ProductID: productID,
		Size:      size,
		Stock:     stock,
	}
	if err := tx.Create(variant).Error; err != nil {
		t.Fatalf("create variant: %v", err)
	}
	return variant
}

func mustProductStock(t *testing.T, tx *gorm.DB, productID uuid.UUID) int {
	t.Helper()
	var product models.Product
	if err := tx.First(&product, "id = ?", productID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	return product.Stock
}

func mustVariantStock(t *testing.T, tx *gorm.DB, variantID uuid.UUID) int {
	t.Helper()
	var variant models.ProductVariant
	if err := tx.First(&variant, "id = ?", variantID).Error; err != nil {
		t.Fatalf("load variant: %v", err)
	}
	return variant.Stock
}
