package item

import (
	"context"

	"github.com/recurcart/recurcart/internal/domain/scheme"
)

// SubscriptionFlags are the host-stored selling flags of a product.
type SubscriptionFlags struct {
	// ForceSubscription disallows one-time purchase; the item's first
	// scheme becomes the default choice
	ForceSubscription bool `json:"force_subscription"`

	// DefaultToSubscription makes the scheme picker default to the first
	// scheme instead of one-time purchase
	DefaultToSubscription bool `json:"default_to_subscription"`
}

// ProductRepository is the read side of the host platform's product storage.
// The engine never persists scheme definitions itself; it only reads what
// the host stores against its catalog products.
type ProductRepository interface {
	// GetSchemeDefinitions returns the persisted scheme definitions for a
	// product, empty (not an error) when the product has none.
	GetSchemeDefinitions(ctx context.Context, productID string) ([]scheme.StoredDefinition, error)

	// GetSubscriptionFlags returns the product's selling flags, nil when
	// the product defines none. Variants with nil flags fall back to their
	// parent product.
	GetSubscriptionFlags(ctx context.Context, productID string) (*SubscriptionFlags, error)

	// IsLegacySubscription reports whether the product is a legacy
	// subscription type that cannot be converted to scheme-based selling.
	// Carts containing one suppress cart-level schemes entirely.
	IsLegacySubscription(ctx context.Context, productID string) (bool, error)
}
