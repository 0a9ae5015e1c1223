package cart

import (
	"github.com/recurcart/recurcart/internal/domain/item"
	"github.com/recurcart/recurcart/internal/types"
)

// OrderLineRecord is the engine's share of an order or subscription record:
// enough to rebuild a cart line with the same scheme choice for
// reorder/resubscribe flows. An empty SchemeKey means one-time purchase.
type OrderLineRecord struct {
	ProductID       string               `json:"product_id"`
	ParentProductID string               `json:"parent_product_id,omitempty"`
	ProductType     string               `json:"product_type"`
	Kind            types.ItemKind       `json:"kind"`
	Quantity        int                  `json:"quantity"`
	SchemeKey       string               `json:"scheme_key,omitempty"`
	Origin          types.LineItemOrigin `json:"origin"`
}

// RecordFromLine serializes a line's scheme choice into an order record.
// Undefined states are recorded as one-time: an order is a decision.
func RecordFromLine(li *LineItem) OrderLineRecord {
	rec := OrderLineRecord{
		ProductID:       li.Item.ProductID,
		ParentProductID: li.Item.ParentProductID,
		ProductType:     li.Item.ProductType,
		Kind:            li.Item.Kind,
		Quantity:        li.Quantity,
		Origin:          li.Origin,
	}
	if state := li.Item.ActiveScheme(); state.IsActive() {
		rec.SchemeKey = state.Key
	}
	return rec
}

// ActiveState reconstructs the scheme state the record was serialized from
func (r OrderLineRecord) ActiveState() types.ActiveSchemeState {
	if r.SchemeKey == "" {
		return types.OneTimePurchase()
	}
	return types.ActiveScheme(r.SchemeKey)
}

// RestoreLine rebuilds a cart line from the record. The application blob is
// seeded with the recorded choice so the next resolution pass replays it.
func (r OrderLineRecord) RestoreLine() *LineItem {
	it := item.New(r.ProductID, r.ProductType, r.Kind)
	it.ParentProductID = r.ParentProductID
	it.SetActiveScheme(r.ActiveState())

	li := NewLineItem(it, r.Quantity)
	li.Origin = r.Origin
	li.Application = NewApplicationState(r.ActiveState(), r.SchemeKey)
	return li
}
