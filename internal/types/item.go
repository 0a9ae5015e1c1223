package types

import (
	ierr "github.com/recurcart/recurcart/internal/errors"
	"github.com/samber/lo"
)

// ItemKind is the closed set of purchasable item shapes the engine understands.
// Container and child are produced by bundle/composite extensions; with no such
// extension present every item is simple or a variant.
type ItemKind string

const (
	ItemKindSimple    ItemKind = "simple"
	ItemKindVariant   ItemKind = "variant"
	ItemKindContainer ItemKind = "container"
	ItemKindChild     ItemKind = "child"
)

func (k ItemKind) String() string {
	return string(k)
}

func (k ItemKind) Validate() error {
	allowed := []ItemKind{ItemKindSimple, ItemKindVariant, ItemKindContainer, ItemKindChild}
	if !lo.Contains(allowed, k) {
		return ierr.NewError("invalid item kind").
			WithHint("Invalid item kind").
			WithReportableDetails(map[string]any{
				"kind":          k,
				"allowed_kinds": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ActiveSchemeStatus is the tri-state of an item's scheme choice
type ActiveSchemeStatus string

const (
	// ActiveSchemeStatusUndefined means no resolution pass has decided yet
	ActiveSchemeStatusUndefined ActiveSchemeStatus = "undefined"

	// ActiveSchemeStatusNone means the item is explicitly a one-time purchase
	ActiveSchemeStatusNone ActiveSchemeStatus = "none"

	// ActiveSchemeStatusActive means a specific scheme key is in effect
	ActiveSchemeStatusActive ActiveSchemeStatus = "active"
)

// ActiveSchemeState is the resolved scheme choice for one item instance.
// Key is meaningful only when Status is active.
type ActiveSchemeState struct {
	Status ActiveSchemeStatus `json:"status"`
	Key    string             `json:"key,omitempty"`
}

// UndefinedScheme returns the pre-resolution state
func UndefinedScheme() ActiveSchemeState {
	return ActiveSchemeState{Status: ActiveSchemeStatusUndefined}
}

// OneTimePurchase returns the explicit one-time state
func OneTimePurchase() ActiveSchemeState {
	return ActiveSchemeState{Status: ActiveSchemeStatusNone}
}

// ActiveScheme returns the state for a specific scheme key. An empty key is
// treated as one-time rather than an invalid active state.
func ActiveScheme(key string) ActiveSchemeState {
	if key == "" {
		return OneTimePurchase()
	}
	return ActiveSchemeState{Status: ActiveSchemeStatusActive, Key: key}
}

func (s ActiveSchemeState) IsUndefined() bool {
	return s.Status == ActiveSchemeStatusUndefined || s.Status == ""
}

func (s ActiveSchemeState) IsNone() bool {
	return s.Status == ActiveSchemeStatusNone
}

func (s ActiveSchemeState) IsActive() bool {
	return s.Status == ActiveSchemeStatusActive
}

func (s ActiveSchemeState) Equal(other ActiveSchemeState) bool {
	if s.IsUndefined() && other.IsUndefined() {
		return true
	}
	return s.Status == other.Status && s.Key == other.Key
}

func (s ActiveSchemeState) String() string {
	if s.IsActive() {
		return s.Key
	}
	return string(s.Status)
}
