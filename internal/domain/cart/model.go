package cart

import (
	"github.com/recurcart/recurcart/internal/domain/item"
	"github.com/recurcart/recurcart/internal/domain/scheme"
	"github.com/recurcart/recurcart/internal/types"
	"github.com/shopspring/decimal"
)

// LineItem is one cart line wrapping a purchasable item instance.
type LineItem struct {
	// ID identifies the line within its cart
	ID string `json:"id"`

	// Item is the purchasable item on this line
	Item *item.Item `json:"item"`

	// Quantity of the item
	Quantity int `json:"quantity"`

	// Origin tells the sync pass whether this line is owned by the
	// external lifecycle system (renewals and friends)
	Origin types.LineItemOrigin `json:"origin"`

	// ContainerLineID is set on bundle children and points at the line
	// holding the container. Identity only; the cart owns all lines.
	ContainerLineID string `json:"container_line_id,omitempty"`

	// Application is the session-visible record of what was applied to
	// this line on the last resolution pass
	Application SchemeApplicationState `json:"application"`

	// EffectivePrices is the triple in force after scheme pricing, fed by
	// the sync pass from the item's base prices
	EffectivePrices scheme.PriceTriple `json:"effective_prices"`
}

// NewLineItem creates a standard cart line for an item
func NewLineItem(it *item.Item, quantity int) *LineItem {
	return &LineItem{
		ID:       types.GenerateUUIDWithPrefix(types.UUIDPrefixLineItem),
		Item:     it,
		Quantity: quantity,
		Origin:   types.LineItemOriginStandard,
	}
}

// LineTotal is quantity times the effective unit price, zero when the line
// has no priced item.
func (li *LineItem) LineTotal() decimal.Decimal {
	if li.EffectivePrices.Price == nil {
		return decimal.Zero
	}
	return li.EffectivePrices.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// SchemeApplicationState is the per-line blob persisted through the host
// session and replayed on the next load. IntendedKey records what the
// shopper chose; the active state is what resolution actually applied.
// The two diverging is what the validation pass reports.
type SchemeApplicationState struct {
	Status      types.ActiveSchemeStatus `json:"status"`
	Key         string                   `json:"key,omitempty"`
	IntendedKey string                   `json:"intended_key,omitempty"`
	Mismatch    bool                     `json:"mismatch,omitempty"`
}

// NewApplicationState captures an applied state and the intent behind it
func NewApplicationState(applied types.ActiveSchemeState, intendedKey string) SchemeApplicationState {
	return SchemeApplicationState{
		Status:      applied.Status,
		Key:         applied.Key,
		IntendedKey: intendedKey,
	}
}

// ActiveState reconstructs the applied scheme state from the blob
func (a SchemeApplicationState) ActiveState() types.ActiveSchemeState {
	switch a.Status {
	case types.ActiveSchemeStatusActive:
		return types.ActiveScheme(a.Key)
	case types.ActiveSchemeStatusNone:
		return types.OneTimePurchase()
	default:
		return types.UndefinedScheme()
	}
}

// IsZero reports whether the blob carries no applied state at all
func (a SchemeApplicationState) IsZero() bool {
	return a == SchemeApplicationState{}
}

// Notice is a shopper-facing message raised by the validation pass. Only
// blocking notices may prevent checkout, and only the validation pass
// raises those.
type Notice struct {
	Severity types.NoticeSeverity `json:"severity"`
	Message  string               `json:"message"`
	LineID   string               `json:"line_id,omitempty"`
}

// Cart is the request-scoped view of the shopper's cart.
type Cart struct {
	// ID identifies the cart in the host session
	ID string `json:"id"`

	// Lines are the cart's line items in display order
	Lines []*LineItem `json:"lines"`

	// Total is the scheme-effective cart total computed by the sync pass
	Total decimal.Decimal `json:"total"`

	// Notices raised by the last validation pass
	Notices []Notice `json:"notices,omitempty"`

	cartSchemes         *scheme.Set
	cartSchemesComputed bool
}

// New creates an empty cart
func New() *Cart {
	return &Cart{ID: types.GenerateUUIDWithPrefix(types.UUIDPrefixCart)}
}

// AddLine appends a line to the cart
func (c *Cart) AddLine(li *LineItem) {
	c.Lines = append(c.Lines, li)
}

// Line returns a line by ID
func (c *Cart) Line(id string) (*LineItem, bool) {
	for _, li := range c.Lines {
		if li.ID == id {
			return li, true
		}
	}
	return nil, false
}

// CartSchemes returns the cached cart-level scheme set and whether it has
// been computed for this request yet.
func (c *Cart) CartSchemes() (*scheme.Set, bool) {
	return c.cartSchemes, c.cartSchemesComputed
}

// SetCartSchemes caches the computed cart-level scheme set for the request.
// A nil set means cart-level schemes are suppressed for this cart.
func (c *Cart) SetCartSchemes(set *scheme.Set) {
	c.cartSchemes = set
	c.cartSchemesComputed = true
}

// InvalidateCartSchemes forces recomputation on the next load
func (c *Cart) InvalidateCartSchemes() {
	c.cartSchemes = nil
	c.cartSchemesComputed = false
}

// AddNotice records a shopper-facing notice
func (c *Cart) AddNotice(n Notice) {
	c.Notices = append(c.Notices, n)
}

// ClearNotices drops notices from the previous pass
func (c *Cart) ClearNotices() {
	c.Notices = nil
}

// HasBlockingNotice reports whether checkout is currently prevented
func (c *Cart) HasBlockingNotice() bool {
	for _, n := range c.Notices {
		if n.Severity == types.NoticeSeverityBlocking {
			return true
		}
	}
	return false
}
