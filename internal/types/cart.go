package types

import (
	ierr "github.com/recurcart/recurcart/internal/errors"
	"github.com/samber/lo"
)

// LineItemOrigin tells the sync pass where a cart line came from. Anything
// other than a standard add-to-cart line is owned by the external
// subscription-lifecycle system and must never have scheme data applied.
type LineItemOrigin string

const (
	LineItemOriginStandard        LineItemOrigin = "standard"
	LineItemOriginRenewal         LineItemOrigin = "renewal"
	LineItemOriginResubscribe     LineItemOrigin = "resubscribe"
	LineItemOriginPaymentRecovery LineItemOrigin = "payment_recovery"
)

func (o LineItemOrigin) String() string {
	return string(o)
}

func (o LineItemOrigin) Validate() error {
	allowed := []LineItemOrigin{
		LineItemOriginStandard,
		LineItemOriginRenewal,
		LineItemOriginResubscribe,
		LineItemOriginPaymentRecovery,
	}
	if !lo.Contains(allowed, o) {
		return ierr.NewError("invalid line item origin").
			WithHint("Invalid line item origin").
			WithReportableDetails(map[string]any{
				"origin":          o,
				"allowed_origins": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsLifecycleManaged reports whether the external lifecycle record is
// authoritative for this line (renewals, resubscribes, payment recovery).
func (o LineItemOrigin) IsLifecycleManaged() bool {
	return o == LineItemOriginRenewal ||
		o == LineItemOriginResubscribe ||
		o == LineItemOriginPaymentRecovery
}

// NoticeSeverity classifies notices raised by the pre-checkout validation pass
type NoticeSeverity string

const (
	// NoticeSeverityInfo invites the shopper to re-select without blocking checkout
	NoticeSeverityInfo NoticeSeverity = "info"

	// NoticeSeverityBlocking prevents checkout; raised only when a
	// forced-subscription item has no valid scheme left
	NoticeSeverityBlocking NoticeSeverity = "blocking"
)

func (s NoticeSeverity) String() string {
	return string(s)
}
