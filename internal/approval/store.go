package approval

import (
	"cuserentals_backend/internal/model"
	"cuserentals_backend/pkg/payment"
)

// ListingStore is the mutable listing state the approval machine drives.
// Every write is idempotent: replaying it must not change the end state.
type ListingStore interface {
	Get(id uint) (*model.Listing, error)
	GetOwned(id, userID uint) (*model.Listing, error)

	SetSocialPosting(id uint, enabled bool) error
	SavePaymentMethod(id uint, paymentMethodID string) error

	// Activate/Deactivate are the webhook-facing projections of is_public.
	Activate(id uint, subscriptionID string) error
	Deactivate(id uint) error

	// FinalizeApproval flips visible/is_public/approval_status and stores the
	// subscription id, guarded by visible=0. Returns false when the guard
	// fails, i.e. a concurrent approval won.
	FinalizeApproval(id uint, subscriptionID string) (bool, error)

	Hide(id uint) error
	StoreFeedback(id uint, feedback string) error
	RecordSocialResult(id uint, posted bool, postID, errMsg string) error
}

type UserStore interface {
	Get(id uint) (*model.User, error)
	SaveStripeCustomerID(id uint, customerID string) error
}

// EventLog dedupes provider events. An event is recorded only after its
// handler succeeded; a failed delivery stays unrecorded so the provider's
// retry gets a fresh attempt.
type EventLog interface {
	Seen(eventID string) (bool, error)
	MarkProcessed(eventID, eventType string, payload []byte) error
}

// Gateway is the slice of the payment provider the approval flow consumes.
// *payment.Gateway satisfies it.
type Gateway interface {
	CreateCustomer(email, name string, userID uint) (string, error)
	CreateSetupSession(customerID string, listingIDs []uint, userID uint) (string, error)
	SetupPaymentMethod(setupIntentID string) (string, error)
	CreateSubscription(customerID, paymentMethodID string, priceIDs []string, listingIDs []uint) (payment.Subscription, error)
	ListActiveSubscriptions(customerID string) ([]payment.Subscription, error)
}

// Notifier delivers best-effort owner notifications. Implementations must
// swallow their own failures; the approval flow never checks them.
type Notifier interface {
	ListingApproved(owner *model.User, listing *model.Listing)
	ChangesRequested(owner *model.User, listing *model.Listing, feedback string)
}
