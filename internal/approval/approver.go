package approval

import (
	"fmt"
	"log"
	"strings"

	"cuserentals_backend/internal/model"
	"cuserentals_backend/internal/social"
	"cuserentals_backend/pkg/config"
)

// CheckoutItem is one listing in a checkout batch.
type CheckoutItem struct {
	ListingID   uint   `json:"listing_id"`
	ProductType string `json:"type"`
	SocialMedia bool   `json:"social_media"`
}

// Approver drives the listing approval state machine:
//
//	draft -> pending -> {approved, changes_requested} -> (edited) -> pending
//
// visible and is_public are boolean projections gated by approval plus
// payment success.
type Approver struct {
	Listings ListingStore
	Users    UserStore
	Gateway  Gateway
	Prices   config.StripeConfig

	// Best-effort collaborators, both optional.
	Social   social.Publisher
	Notifier Notifier
}

// RequestCheckout validates the batch, ensures a billing customer exists and
// starts a setup-mode session scoped to every listing id in the batch. The
// whole batch fails if any listing is not owned or any price is missing.
//
// Known quirk carried over from the previous system: the per-item social
// posting preference is persisted before the price check can fail the batch,
// so a failed batch may still have updated preferences.
func (a *Approver) RequestCheckout(userID uint, items []CheckoutItem) (string, error) {
	user, err := a.Users.Get(userID)
	if err != nil {
		return "", ErrUserNotFound
	}

	if len(items) == 0 {
		return "", ErrNoItems
	}

	var listingIDs []uint
	for _, item := range items {
		if item.ListingID == 0 {
			continue
		}

		listing, err := a.Listings.GetOwned(item.ListingID, userID)
		if err != nil {
			return "", err
		}

		if err := a.Listings.SetSocialPosting(listing.ID, item.SocialMedia); err != nil {
			return "", err
		}

		if _, err := a.Prices.PriceForProductType(item.ProductType); err != nil {
			return "", fmt.Errorf("%w: %v", ErrPriceNotConfigured, err)
		}

		listingIDs = append(listingIDs, listing.ID)
	}

	if len(listingIDs) == 0 {
		return "", ErrNoItems
	}

	customerID := user.StripeCustomerID
	if customerID == "" {
		customerID, err = a.Gateway.CreateCustomer(user.Email, user.GetFullName(), user.ID)
		if err != nil {
			return "", err
		}
		if err := a.Users.SaveStripeCustomerID(user.ID, customerID); err != nil {
			return "", err
		}
	}

	return a.Gateway.CreateSetupSession(customerID, listingIDs, user.ID)
}

// CapturePaymentMethod applies a completed setup session to every listing in
// the batch: store the payment method reference and move the listing to
// pending review. No charge happens here. A missing listing does not abort
// the rest of the batch.
func (a *Approver) CapturePaymentMethod(setupIntentID string, listingIDs []uint) error {
	if setupIntentID == "" || len(listingIDs) == 0 {
		log.Printf("setup capture skipped: missing setup intent or listing ids")
		return nil
	}

	paymentMethodID, err := a.Gateway.SetupPaymentMethod(setupIntentID)
	if err != nil {
		return err
	}

	for _, id := range listingIDs {
		if err := a.Listings.SavePaymentMethod(id, paymentMethodID); err != nil {
			log.Printf("setup capture: listing %d: %v", id, err)
			continue
		}
		log.Printf("listing %d payment method saved, pending review", id)
	}
	return nil
}

// Approve charges the stored payment method and makes the listing public.
// Approving an already-visible listing is a no-op success; a listing without
// a captured payment method always fails, regardless of admin validity.
func (a *Approver) Approve(adminID, listingID uint) (*model.Listing, error) {
	admin, err := a.Users.Get(adminID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if !admin.Can(model.CapModerateListings) {
		return nil, ErrNotAdmin
	}

	listing, err := a.Listings.Get(listingID)
	if err != nil {
		return nil, err
	}
	if listing.Visible {
		return listing, nil
	}
	if listing.StripePaymentMethodID == "" {
		return nil, ErrMissingPaymentMethod
	}

	owner, err := a.Users.Get(listing.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if owner.StripeCustomerID == "" {
		return nil, ErrNoBillingCustomer
	}

	prices, err := a.resolvePrices(listing)
	if err != nil {
		return nil, err
	}

	sub, err := a.Gateway.CreateSubscription(owner.StripeCustomerID, listing.StripePaymentMethodID, prices, []uint{listing.ID})
	if err != nil {
		return nil, err
	}
	if sub.PaymentIntentStatus != "succeeded" && sub.Status != "active" {
		log.Printf("approve listing %d: subscription %s not settled (status=%s payment=%s)",
			listing.ID, sub.ID, sub.Status, sub.PaymentIntentStatus)
		return nil, ErrPaymentNotSettled
	}

	won, err := a.Listings.FinalizeApproval(listing.ID, sub.ID)
	if err != nil {
		return nil, err
	}
	if !won {
		log.Printf("approve listing %d: lost visibility race after charging subscription %s", listing.ID, sub.ID)
		return nil, ErrConcurrentApproval
	}

	listing, err = a.Listings.Get(listing.ID)
	if err != nil {
		return nil, err
	}

	a.publishSocial(listing)
	if a.Notifier != nil {
		a.Notifier.ListingApproved(owner, listing)
	}

	return listing, nil
}

// Reject hides the listing. approval_status is left as-is: the schema has no
// rejected status and we do not invent one.
func (a *Approver) Reject(adminID, listingID uint) (*model.Listing, error) {
	admin, err := a.Users.Get(adminID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if !admin.Can(model.CapModerateListings) {
		return nil, ErrNotAdmin
	}

	listing, err := a.Listings.Get(listingID)
	if err != nil {
		return nil, err
	}
	if !listing.Visible {
		return listing, nil
	}

	if err := a.Listings.Hide(listing.ID); err != nil {
		return nil, err
	}
	return a.Listings.Get(listing.ID)
}

// RequestChanges stores admin feedback, marks the listing changes_requested
// and hides it until the owner resubmits.
func (a *Approver) RequestChanges(adminID, listingID uint, feedback string) (*model.Listing, error) {
	admin, err := a.Users.Get(adminID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if !admin.Can(model.CapModerateListings) {
		return nil, ErrNotAdmin
	}

	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return nil, ErrFeedbackRequired
	}

	listing, err := a.Listings.Get(listingID)
	if err != nil {
		return nil, err
	}

	if err := a.Listings.StoreFeedback(listing.ID, feedback); err != nil {
		return nil, err
	}

	listing, err = a.Listings.Get(listing.ID)
	if err != nil {
		return nil, err
	}

	if a.Notifier != nil {
		owner, uerr := a.Users.Get(listing.UserID)
		if uerr == nil {
			a.Notifier.ChangesRequested(owner, listing, feedback)
		}
	}
	return listing, nil
}

// SyncSubscriptions pulls the provider's view of a user's active
// subscriptions and repairs any listing the webhooks missed. Writes only
// happen when local state differs, so running it repeatedly is safe.
func (a *Approver) SyncSubscriptions(userID uint) (int, error) {
	user, err := a.Users.Get(userID)
	if err != nil {
		return 0, ErrUserNotFound
	}
	if user.StripeCustomerID == "" {
		return 0, nil
	}

	subs, err := a.Gateway.ListActiveSubscriptions(user.StripeCustomerID)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, sub := range subs {
		for _, id := range sub.ListingIDs {
			listing, err := a.Listings.Get(id)
			if err != nil {
				continue
			}
			if listing.IsPublic && listing.StripeSubscriptionID == sub.ID {
				continue
			}
			if err := a.Listings.Activate(id, sub.ID); err != nil {
				log.Printf("sync: listing %d: %v", id, err)
				continue
			}
			updated++
		}
	}
	return updated, nil
}

func (a *Approver) resolvePrices(listing *model.Listing) ([]string, error) {
	productType := "standard"
	if listing.Featured > 0 {
		productType = "featured"
	}

	base, err := a.Prices.PriceForProductType(productType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPriceNotConfigured, err)
	}
	prices := []string{base}

	if listing.SocialMediaPosting {
		if a.Prices.PriceSocial == "" {
			return nil, fmt.Errorf("%w: social posting add-on", ErrPriceNotConfigured)
		}
		prices = append(prices, a.Prices.PriceSocial)
	}
	return prices, nil
}

// publishSocial fires the social posting add-on after approval. Failures are
// recorded on the listing and logged, never surfaced to the caller.
func (a *Approver) publishSocial(listing *model.Listing) {
	if !listing.SocialMediaPosting || a.Social == nil {
		return
	}

	postID, err := a.Social.PostListing(listing)
	if err != nil {
		log.Printf("social publish failed for listing %d: %v", listing.ID, err)
		if rerr := a.Listings.RecordSocialResult(listing.ID, false, "", err.Error()); rerr != nil {
			log.Printf("social publish: record result for listing %d: %v", listing.ID, rerr)
		}
		return
	}
	if rerr := a.Listings.RecordSocialResult(listing.ID, true, postID, ""); rerr != nil {
		log.Printf("social publish: record result for listing %d: %v", listing.ID, rerr)
	}
}
