package cart

import (
	"context"

	"gorm.io/gorm"

	"github.com/pasofino/tienda-backend/pkg/db/models"
	pkgerrors "github.com/pasofino/tienda-backend/pkg/errors"
	"github.com/pasofino/tienda-backend/pkg/types"
)

// ResolveActive returns the identity's single live cart, creating one when
// none exists. When duplicates are found the earliest-created cart wins; the
// newer carts have their reservations returned to stock before deletion, so
// the stock ledger stays balanced.
func ResolveActive(ctx context.Context, tx *gorm.DB, identity types.Identity) (*models.Cart, error) {
	if !identity.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart identity requires a customer or session")
	}

	repo := NewRepository(tx)
	carts, err := repo.FindByIdentity(ctx, identity)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load carts")
	}

	if len(carts) == 0 {
		created, inserted, err := repo.Create(ctx, identity)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
		}
		if inserted {
			return created, nil
		}
		// Lost the insert race on the per-identity unique index; the
		// winner's cart is committed and visible by now.
		carts, err = repo.FindByIdentity(ctx, identity)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load carts")
		}
		if len(carts) == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeDependency, "cart vanished during creation")
		}
		return &carts[0], nil
	}

	for i := 1; i < len(carts); i++ {
		if err := RestockItems(ctx, tx, carts[i].Items); err != nil {
			return nil, err
		}
		if err := repo.DeleteCart(ctx, carts[i].ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete duplicate cart")
		}
	}
	return &carts[0], nil
}

// RestockItems returns every line's reserved quantity to its stock counter.
func RestockItems(ctx context.Context, tx *gorm.DB, items []models.CartItem) error {
	repo := NewRepository(tx)
	for _, item := range items {
		var err error
		if item.VariantID != nil {
			err = repo.ReleaseVariantStock(ctx, *item.VariantID, item.Quantity)
		} else {
			err = repo.ReleaseProductStock(ctx, item.ProductID, item.Quantity)
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restock cart item")
		}
	}
	return nil
}
