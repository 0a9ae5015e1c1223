package cart

import (
	"context"

	"github.com/recurcart/recurcart/internal/types"
)

// SessionRepository is the host's cart session storage. One session serves
// one shopper at a time, so reads and writes need no locking here; the sync
// pass does read-modify-write within a single request.
type SessionRepository interface {
	// GetCartSchemeKey reads the cart-level scheme selection, undefined
	// when the shopper has never chosen.
	GetCartSchemeKey(ctx context.Context, cartID string) (types.ActiveSchemeState, error)

	// SetCartSchemeKey writes the cart-level scheme selection
	SetCartSchemeKey(ctx context.Context, cartID string, state types.ActiveSchemeState) error

	// GetLineState reads the persisted application blob for a line,
	// reporting whether one exists.
	GetLineState(ctx context.Context, cartID, lineID string) (SchemeApplicationState, bool, error)

	// SetLineState writes the application blob for a line
	SetLineState(ctx context.Context, cartID, lineID string, state SchemeApplicationState) error

	// DeleteLineState strips the application blob from a line
	DeleteLineState(ctx context.Context, cartID, lineID string) error
}
