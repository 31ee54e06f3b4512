package approval

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrListingNotFound = errors.New("listing not found")
	ErrNotOwner        = errors.New("listing does not belong to user")
	ErrNotAdmin        = errors.New("moderation capability required")

	ErrNoItems            = errors.New("no items provided")
	ErrPriceNotConfigured = errors.New("price not configured")

	ErrMissingPaymentMethod = errors.New("no payment method on file for this listing")
	ErrNoBillingCustomer    = errors.New("listing owner has no billing customer record")

	// ErrPaymentNotSettled means the provider created the subscription but the
	// underlying charge neither succeeded nor activated it. The listing stays
	// unapproved and the approve action can be retried.
	ErrPaymentNotSettled = errors.New("subscription charge did not settle")

	// ErrConcurrentApproval is the lost side of the visible=0 compare-and-swap:
	// another approval finalized between our check and our write. The charge
	// already happened; subscription sync reconciles the duplicate.
	ErrConcurrentApproval = errors.New("listing was approved concurrently")

	ErrFeedbackRequired = errors.New("feedback text is required")
)
