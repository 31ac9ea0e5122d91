package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pasofino/tienda-backend/pkg/db"
	"github.com/pasofino/tienda-backend/pkg/db/models"
	"github.com/pasofino/tienda-backend/pkg/types"
)

// Repository wires cart persistence plus the stock counters it reserves
// against.
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

// FindByIdentity returns every cart owned by the identity, oldest first,
// with items and their products/variants preloaded. The cart rows are locked
// for the rest of the transaction: every mutation path resolves the cart
// first, so writers to the same cart queue here and the line quantities read
// afterwards are current, not a stale snapshot.
func (r *Repository) FindByIdentity(ctx context.Context, identity types.Identity) ([]models.Cart, error) {
	query := db.ForUpdate(r.db.WithContext(ctx)).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at ASC") }).
		Preload("Items.Product").
		Preload("Items.Product.Variants").
		Preload("Items.Variant").
		Order("created_at ASC")

	var carts []models.Cart
	var err error
	if identity.IsCustomer() {
		err = query.Find(&carts, "customer_id = ?", *identity.CustomerID).Error
	} else {
		err = query.Find(&carts, "session_key = ?", *identity.SessionKey).Error
	}
	if err != nil {
		return nil, err
	}
	return carts, nil
}

// Create inserts an empty cart for the identity. ON CONFLICT DO NOTHING
// keeps a concurrent insert on the per-identity unique index from aborting
// the enclosing transaction; inserted reports whether our row won.
func (r *Repository) Create(ctx context.Context, identity types.Identity) (*models.Cart, bool, error) {
	cart := &models.Cart{
		ID:         uuid.New(),
		CustomerID: identity.CustomerID,
		SessionKey: identity.SessionKey,
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(cart)
	if res.Error != nil {
		return nil, false, res.Error
	}
	return cart, res.RowsAffected == 1, nil
}

// Reload refreshes a cart with all associations.
func (r *Repository) Reload(ctx context.Context, cartID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.WithContext(ctx).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at ASC") }).
		Preload("Items.Product").
		Preload("Items.Variant").
		First(&cart, "id = ?", cartID).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// DeleteCart removes a cart row and its items.
func (r *Repository) DeleteCart(ctx context.Context, cartID uuid.UUID) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Cart{}, "id = ?", cartID).Error
}

// CreateItem inserts a cart line.
func (r *Repository) CreateItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// IncrementItemQuantity adds delta to a cart line in place. The relative
// expression makes the merge write independent of whatever quantity the
// caller loaded, so a concurrent merge into the same line cannot be lost.
func (r *Repository) IncrementItemQuantity(ctx context.Context, itemID uuid.UUID, delta int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", itemID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", delta)).Error
}

// UpdateItemQuantity sets the quantity of a cart line.
func (r *Repository) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", itemID).
		UpdateColumn("quantity", quantity).Error
}

// DeleteItem removes one cart line.
func (r *Repository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.CartItem{}, "id = ?", itemID).Error
}

// DeleteItems removes every line of the cart without touching stock. The
// caller decides whether the reservation is returned or consumed.
func (r *Repository) DeleteItems(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}

// FindProductWithVariants loads a product and its variants for stock checks.
func (r *Repository) FindProductWithVariants(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Preload("Variants").
		First(&product, "id = ?", productID).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// ReserveProductStock conditionally decrements product stock. It reports
// false without changing anything when fewer than qty units remain.
func (r *Repository) ReserveProductStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ReserveVariantStock conditionally decrements variant stock.
func (r *Repository) ReserveVariantStock(ctx context.Context, variantID uuid.UUID, qty int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Where("id = ? AND stock >= ?", variantID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ReleaseProductStock returns qty units to the product counter.
func (r *Repository) ReleaseProductStock(ctx context.Context, productID uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty)).Error
}

// ReleaseVariantStock returns qty units to the variant counter.
func (r *Repository) ReleaseVariantStock(ctx context.Context, variantID uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Where("id = ?", variantID).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty)).Error
}
