package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pasofino/tienda-backend/pkg/db"
	"github.com/pasofino/tienda-backend/pkg/db/models"
	pkgerrors "github.com/pasofino/tienda-backend/pkg/errors"
	"github.com/pasofino/tienda-backend/pkg/metrics"
	"github.com/pasofino/tienda-backend/pkg/types"
)

// Service exposes cart mutations. Every operation resolves the identity's
// single live cart and runs inside one transaction, so stock reservations
// and cart lines always move together.
type Service interface {
	Get(ctx context.Context, identity types.Identity) (*CartDTO, error)
	AddItem(ctx context.Context, identity types.Identity, input AddItemInput) (*CartDTO, error)
	UpdateItem(ctx context.Context, identity types.Identity, itemID uuid.UUID, quantity int) (*CartDTO, error)
	RemoveItem(ctx context.Context, identity types.Identity, itemID uuid.UUID) (*CartDTO, error)
	Clear(ctx context.Context, identity types.Identity) (*CartDTO, error)
}

// AddItemInput holds the validated payload to add a product to the cart.
type AddItemInput struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Quantity  int
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	metrics  *metrics.StoreMetrics
}

// NewService constructs a cart service instance.
func NewService(repo *Repository, dbClient *db.Client, storeMetrics *metrics.StoreMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{
		repo:     repo,
		dbClient: dbClient,
		metrics:  storeMetrics,
	}, nil
}

func (s *service) Get(ctx context.Context, identity types.Identity) (*CartDTO, error) {
	var dto *CartDTO
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		cart, err := ResolveActive(ctx, tx, identity)
		if err != nil {
			return err
		}
		dto, err = s.reload(ctx, tx, cart.ID)
		return err
	}); err != nil {
		return nil, coerce(err, "get cart")
	}
	return dto, nil
}

func (s *service) AddItem(ctx context.Context, identity types.Identity, input AddItemInput) (*CartDTO, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	var dto *CartDTO
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		cart, err := ResolveActive(ctx, tx, identity)
		if err != nil {
			return err
		}

		product, err := txRepo.FindProductWithVariants(ctx, input.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if !product.Available {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}

		variant, err := selectVariant(product, input.VariantID)
		if err != nil {
			return err
		}

		if err := s.reserve(ctx, txRepo, product.ID, variant, input.Quantity); err != nil {
			return err
		}

		if existing := findLine(cart.Items, input.ProductID, input.VariantID); existing != nil {
			if err := txRepo.IncrementItemQuantity(ctx, existing.ID, input.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "merge cart item")
			}
		} else {
			item := &models.CartItem{
				CartID:    cart.ID,
				ProductID: input.ProductID,
				VariantID: input.VariantID,
				Quantity:  input.Quantity,
			}
			if _, err := txRepo.CreateItem(ctx, item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert cart item")
			}
		}

		dto, err = s.reload(ctx, tx, cart.ID)
		return err
	}); err != nil {
		return nil, coerce(err, "add cart item")
	}
	return dto, nil
}

func (s *service) UpdateItem(ctx context.Context, identity types.Identity, itemID uuid.UUID, quantity int) (*CartDTO, error) {
	if quantity < 0 {
		quantity = 0
	}

	var dto *CartDTO
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		cart, err := ResolveActive(ctx, tx, identity)
		if err != nil {
			return err
		}

		item := findItem(cart.Items, itemID)
		if item == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}

		switch {
		case quantity == 0:
			if err := RestockItems(ctx, tx, []models.CartItem{*item}); err != nil {
				return err
			}
			if err := txRepo.DeleteItem(ctx, item.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
			}
		case quantity > item.Quantity:
			delta := quantity - item.Quantity
			if err := s.reserveLine(ctx, txRepo, item, delta); err != nil {
				return err
			}
			if err := txRepo.UpdateItemQuantity(ctx, item.ID, quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
			}
		case quantity < item.Quantity:
			delta := item.Quantity - quantity
			if item.VariantID != nil {
				err = txRepo.ReleaseVariantStock(ctx, *item.VariantID, delta)
			} else {
				err = txRepo.ReleaseProductStock(ctx, item.ProductID, delta)
			}
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release stock")
			}
			if err := txRepo.UpdateItemQuantity(ctx, item.ID, quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
			}
		}

		dto, err = s.reload(ctx, tx, cart.ID)
		return err
	}); err != nil {
		return nil, coerce(err, "update cart item")
	}
	return dto, nil
}

func (s *service) RemoveItem(ctx context.Context, identity types.Identity, itemID uuid.UUID) (*CartDTO, error) {
	var dto *CartDTO
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		cart, err := ResolveActive(ctx, tx, identity)
		if err != nil {
			return err
		}

		item := findItem(cart.Items, itemID)
		if item == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}

		if err := RestockItems(ctx, tx, []models.CartItem{*item}); err != nil {
			return err
		}
		if err := txRepo.DeleteItem(ctx, item.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
		}

		dto, err = s.reload(ctx, tx, cart.ID)
		return err
	}); err != nil {
		return nil, coerce(err, "remove cart item")
	}
	return dto, nil
}

func (s *service) Clear(ctx context.Context, identity types.Identity) (*CartDTO, error) {
	var dto *CartDTO
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		cart, err := ResolveActive(ctx, tx, identity)
		if err != nil {
			return err
		}

		if err := RestockItems(ctx, tx, cart.Items); err != nil {
			return err
		}
		if err := txRepo.DeleteItems(ctx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}

		dto, err = s.reload(ctx, tx, cart.ID)
		return err
	}); err != nil {
		return nil, coerce(err, "clear cart")
	}
	return dto, nil
}

// reserve decrements the stock-bearing counter, recording rejections.
func (s *service) reserve(ctx context.Context, txRepo *Repository, productID uuid.UUID, variant *models.ProductVariant, qty int) error {
	var ok bool
	var err error
	if variant != nil {
		ok, err = txRepo.ReserveVariantStock(ctx, variant.ID, qty)
	} else {
		ok, err = txRepo.ReserveProductStock(ctx, productID, qty)
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve stock")
	}
	if !ok {
		s.metrics.IncStockRejection()
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock for requested quantity")
	}
	return nil
}

// reserveLine reserves extra units against whichever counter backs the line.
func (s *service) reserveLine(ctx context.Context, txRepo *Repository, item *models.CartItem, qty int) error {
	var ok bool
	var err error
	if item.VariantID != nil {
		ok, err = txRepo.ReserveVariantStock(ctx, *item.VariantID, qty)
	} else {
		ok, err = txRepo.ReserveProductStock(ctx, item.ProductID, qty)
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve stock")
	}
	if !ok {
		s.metrics.IncStockRejection()
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock for requested quantity")
	}
	return nil
}

func (s *service) reload(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) (*CartDTO, error) {
	cart, err := s.repo.WithTx(tx).Reload(ctx, cartID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload cart")
	}
	return NewCartDTO(cart), nil
}

// selectVariant enforces the size selection rules: sized products require a
// variant that belongs to them, unsized products reject any variant.
func selectVariant(product *models.Product, variantID *uuid.UUID) (*models.ProductVariant, error) {
	if product.HasVariants() {
		if variantID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeMissingVariant, "product requires a size selection")
		}
		for i := range product.Variants {
			if product.Variants[i].ID == *variantID {
				return &product.Variants[i], nil
			}
		}
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant does not belong to product")
	}
	if variantID != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product has no size variants")
	}
	return nil, nil
}

func findLine(items []models.CartItem, productID uuid.UUID, variantID *uuid.UUID) *models.CartItem {
	for i := range items {
		if items[i].SameLine(productID, variantID) {
			return &items[i]
		}
	}
	return nil
}

func findItem(items []models.CartItem, itemID uuid.UUID) *models.CartItem {
	for i := range items {
		if items[i].ID == itemID {
			return &items[i]
		}
	}
	return nil
}

// coerce keeps coded errors as-is and wraps everything else.
func coerce(err error, message string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
}
