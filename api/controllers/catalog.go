package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pasofino/tienda-backend/api/responses"
	"github.com/pasofino/tienda-backend/api/validators"
	catalogsvc "github.com/pasofino/tienda-backend/internal/catalog"
	pkgerrors "github.com/pasofino/tienda-backend/pkg/errors"
	"github.com/pasofino/tienda-backend/pkg/logger"
)

// ProductList serves the filtered, paginated storefront listing.
func ProductList(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		input, err := parseProductListInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListProducts(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ProductDetail(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		slug := chi.URLParam(r, "slug")
		detail, err := svc.GetProduct(r.Context(), slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

func ProductFeatured(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		featured, err := svc.ListFeatured(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, featured)
	}
}

func CategoryList(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		categories, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

func BrandList(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		brands, err := svc.ListBrands(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, brands)
	}
}

func parseProductListInput(r *http.Request) (catalogsvc.ListProductsInput, error) {
	params, err := validators.ParsePagination(r)
	if err != nil {
		return catalogsvc.ListProductsInput{}, err
	}

	gender, err := validators.ParseQueryGender(r, "gender")
	if err != nil {
		return catalogsvc.ListProductsInput{}, err
	}
	priceMin, err := validators.ParseQueryFloat(r, "price_min")
	if err != nil {
		return catalogsvc.ListProductsInput{}, err
	}
	priceMax, err := validators.ParseQueryFloat(r, "price_max")
	if err != nil {
		return catalogsvc.ListProductsInput{}, err
	}
	if priceMin != nil && priceMax != nil && *priceMin > *priceMax {
		return catalogsvc.ListProductsInput{}, pkgerrors.New(pkgerrors.CodeValidation, "price_min must not exceed price_max")
	}
	featured, err := validators.ParseQueryBool(r, "featured")
	if err != nil {
		return catalogsvc.ListProductsInput{}, err
	}

	query := r.URL.Query()
	return catalogsvc.ListProductsInput{
		Filters: catalogsvc.ProductListFilters{
			CategorySlug: strings.TrimSpace(query.Get("category")),
			BrandSlug:    strings.TrimSpace(query.Get("brand")),
			Gender:       gender,
			PriceMin:     priceMin,
			PriceMax:     priceMax,
			Featured:     featured,
			Query:        strings.TrimSpace(query.Get("q")),
		},
		Pagination: params,
	}, nil
}
