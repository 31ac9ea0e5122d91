package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pasofino/tienda-backend/pkg/db/models"
)

// CartItemDTO is one cart line with its frozen-for-display pricing.
type CartItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductSlug string          `json:"product_slug"`
	VariantID   *uuid.UUID      `json:"variant_id,omitempty"`
	Size        *string         `json:"size,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// CartDTO is the cart summary every cart surface returns, so totals are
// consistent no matter which operation produced them.
type CartDTO struct {
	ID        uuid.UUID       `json:"id"`
	Items     []CartItemDTO   `json:"items"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// NewCartDTO maps a cart with preloaded items onto the API shape. Unit
// prices use the product's discounted price at read time.
func NewCartDTO(cart *models.Cart) *CartDTO {
	dto := &CartDTO{
		ID:       cart.ID,
		Items:    make([]CartItemDTO, 0, len(cart.Items)),
		Subtotal: decimal.Zero,
	}
	for _, item := range cart.Items {
		line := CartItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		}
		if item.Product != nil {
			line.ProductName = item.Product.Name
			line.ProductSlug = item.Product.Slug
			line.UnitPrice = item.Product.FinalPrice()
		}
		if item.Variant != nil {
			size := item.Variant.Size
			line.Size = &size
		}
		line.LineTotal = line.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))

		dto.Items = append(dto.Items, line)
		dto.ItemCount += item.Quantity
		dto.Subtotal = dto.Subtotal.Add(line.LineTotal)
	}
	return dto
}
