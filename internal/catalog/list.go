package catalog

import (
	"github.com/pasofino/tienda-backend/pkg/enums"
	"github.com/pasofino/tienda-backend/pkg/pagination"
)

// ProductListFilters describe the supported filter knobs for the browse endpoint.
type ProductListFilters struct {
	CategorySlug string        `json:"category,omitempty"`
	BrandSlug    string        `json:"brand,omitempty"`
	Gender       *enums.Gender `json:"gender,omitempty"`
	PriceMin     *float64      `json:"price_min,omitempty"`
	PriceMax     *float64      `json:"price_max,omitempty"`
	Featured     *bool         `json:"featured,omitempty"`
	Query        string        `json:"q,omitempty"`
}

// ListProductsInput captures the inputs needed to paginate/filter the catalog.
type ListProductsInput struct {
	Filters    ProductListFilters
	Pagination pagination.Params
}
