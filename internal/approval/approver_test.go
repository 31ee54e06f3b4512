package approval

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"cuserentals_backend/internal/model"
	"cuserentals_backend/pkg/config"
	"cuserentals_backend/pkg/payment"
)

var testPrices = config.StripeConfig{
	PriceStandard: "price_standard",
	PriceFeatured: "price_featured",
	PriceSocial:   "price_social",
}

func landlord(id uint) *model.User {
	return &model.User{Model: gorm.Model{ID: id}, Email: "owner@example.com", FirstName: "Pat", Level: 0}
}

func admin(id uint) *model.User {
	return &model.User{Model: gorm.Model{ID: id}, Email: "admin@example.com", FirstName: "Ada", Level: 10}
}

func pendingListing(id, ownerID uint) *model.Listing {
	return &model.Listing{
		Model:                 gorm.Model{ID: id},
		UserID:                ownerID,
		Address:               "123 Euclid Ave",
		ApprovalStatus:        model.ApprovalPending,
		StripePaymentMethodID: "pm_test",
	}
}

func newApprover(listings *fakeListings, users *fakeUsers, gw *fakeGateway) *Approver {
	return &Approver{
		Listings: listings,
		Users:    users,
		Gateway:  gw,
		Prices:   testPrices,
	}
}

func TestRequestCheckoutCreatesCustomerAndSession(t *testing.T) {
	owner := landlord(1)
	listings := newFakeListings(
		&model.Listing{Model: gorm.Model{ID: 5}, UserID: 1},
		&model.Listing{Model: gorm.Model{ID: 9}, UserID: 1},
	)
	users := newFakeUsers(owner)
	gw := &fakeGateway{}

	a := newApprover(listings, users, gw)

	url, err := a.RequestCheckout(1, []CheckoutItem{
		{ListingID: 5, ProductType: "standard"},
		{ListingID: 9, ProductType: "featured", SocialMedia: true},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.test/session", url)

	assert.Equal(t, 1, gw.customersCreated)
	assert.Equal(t, "cus_test", gw.sessionCustomer)
	assert.Equal(t, []uint{5, 9}, gw.sessionListings)

	saved, _ := users.Get(1)
	assert.Equal(t, "cus_test", saved.StripeCustomerID)

	l9, _ := listings.Get(9)
	assert.True(t, l9.SocialMediaPosting)
}

func TestRequestCheckoutReusesExistingCustomer(t *testing.T) {
	owner := landlord(1)
	owner.StripeCustomerID = "cus_existing"
	listings := newFakeListings(&model.Listing{Model: gorm.Model{ID: 5}, UserID: 1})
	gw := &fakeGateway{}

	a := newApprover(listings, newFakeUsers(owner), gw)

	_, err := a.RequestCheckout(1, []CheckoutItem{{ListingID: 5}})
	require.NoError(t, err)
	assert.Equal(t, 0, gw.customersCreated)
	assert.Equal(t, "cus_existing", gw.sessionCustomer)
}

func TestRequestCheckoutRejectsForeignListing(t *testing.T) {
	listings := newFakeListings(&model.Listing{Model: gorm.Model{ID: 5}, UserID: 2})
	a := newApprover(listings, newFakeUsers(landlord(1)), &fakeGateway{})

	_, err := a.RequestCheckout(1, []CheckoutItem{{ListingID: 5}})
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestRequestCheckoutEmptyBatch(t *testing.T) {
	a := newApprover(newFakeListings(), newFakeUsers(landlord(1)), &fakeGateway{})

	_, err := a.RequestCheckout(1, nil)
	assert.ErrorIs(t, err, ErrNoItems)

	_, err = a.RequestCheckout(1, []CheckoutItem{{ListingID: 0}})
	assert.ErrorIs(t, err, ErrNoItems)
}

// A bad product type fails the whole batch, but the social posting
// preferences written before the failing item stay written.
func TestRequestCheckoutPreferencePersistsPastBatchFailure(t *testing.T) {
	listings := newFakeListings(
		&model.Listing{Model: gorm.Model{ID: 5}, UserID: 1},
		&model.Listing{Model: gorm.Model{ID: 9}, UserID: 1},
	)
	gw := &fakeGateway{}
	a := newApprover(listings, newFakeUsers(landlord(1)), gw)

	_, err := a.RequestCheckout(1, []CheckoutItem{
		{ListingID: 5, ProductType: "standard", SocialMedia: true},
		{ListingID: 9, ProductType: "platinum", SocialMedia: true},
	})
	assert.ErrorIs(t, err, ErrPriceNotConfigured)
	assert.Empty(t, gw.sessionCustomer)

	l5, _ := listings.Get(5)
	assert.True(t, l5.SocialMediaPosting)
	l9, _ := listings.Get(9)
	assert.True(t, l9.SocialMediaPosting)
}

func TestCapturePaymentMethod(t *testing.T) {
	listings := newFakeListings(
		&model.Listing{Model: gorm.Model{ID: 5}, UserID: 1, ApprovalStatus: model.ApprovalDraft},
		&model.Listing{Model: gorm.Model{ID: 9}, UserID: 1, ApprovalStatus: model.ApprovalDraft},
	)
	gw := &fakeGateway{paymentMethodID: "pm_captured"}
	a := newApprover(listings, newFakeUsers(landlord(1)), gw)

	// A missing listing in the batch must not abort the others.
	err := a.CapturePaymentMethod("seti_1", []uint{5, 404, 9})
	require.NoError(t, err)

	for _, id := range []uint{5, 9} {
		l, _ := listings.Get(id)
		assert.Equal(t, "pm_captured", l.StripePaymentMethodID)
		assert.Equal(t, model.ApprovalPending, l.ApprovalStatus)
		assert.False(t, l.Visible, "capture must not publish listing %d", id)
	}
}

func TestCapturePaymentMethodMissingData(t *testing.T) {
	a := newApprover(newFakeListings(), newFakeUsers(), &fakeGateway{})

	assert.NoError(t, a.CapturePaymentMethod("", []uint{5}))
	assert.NoError(t, a.CapturePaymentMethod("seti_1", nil))
}

func TestApproveHappyPath(t *testing.T) {
	owner := landlord(1)
	owner.StripeCustomerID = "cus_1"
	listing := pendingListing(5, 1)

	listings := newFakeListings(listing)
	gw := &fakeGateway{
		subscription: payment.Subscription{ID: "sub_1", Status: "active", PaymentIntentStatus: "succeeded"},
	}
	notifier := &fakeNotifier{}

	a := newApprover(listings, newFakeUsers(owner, admin(2)), gw)
	a.Notifier = notifier

	got, err := a.Approve(2, 5)
	require.NoError(t, err)

	assert.True(t, got.Visible)
	assert.True(t, got.IsPublic)
	assert.Equal(t, model.ApprovalApproved, got.ApprovalStatus)
	assert.Equal(t, "sub_1", got.StripeSubscriptionID)

	assert.Equal(t, "cus_1", gw.subCustomer)
	assert.Equal(t, "pm_test", gw.subPayment)
	assert.Equal(t, []string{"price_standard"}, gw.subPrices)
	assert.Equal(t, []uint{5}, notifier.approved)
}

func TestApproveAlreadyVisibleIsNoOp(t *testing.T) {
	listing := pendingListing(5, 1)
	listing.Visible = true
	gw := &fakeGateway{}

	a := newApprover(newFakeListings(listing), newFakeUsers(landlord(1), admin(2)), gw)

	got, err := a.Approve(2, 5)
	require.NoError(t, err)
	assert.True(t, got.Visible)
	assert.Equal(t, 0, gw.subCalls, "no second charge for an already-visible listing")
}

func TestApproveRequiresModerationCapability(t *testing.T) {
	a := newApprover(newFakeListings(pendingListing(5, 1)), newFakeUsers(landlord(1), landlord(3)), &fakeGateway{})

	_, err := a.Approve(3, 5)
	assert.ErrorIs(t, err, ErrNotAdmin)
}

func TestApproveMissingPaymentMethod(t *testing.T) {
	listing := pendingListing(5, 1)
	listing.StripePaymentMethodID = ""
	gw := &fakeGateway{}

	a := newApprover(newFakeListings(listing), newFakeUsers(landlord(1), admin(2)), gw)

	_, err := a.Approve(2, 5)
	assert.ErrorIs(t, err, ErrMissingPaymentMethod)
	assert.Equal(t, 0, gw.subCalls)
}

func TestApproveNoBillingCustomer(t *testing.T) {
	a := newApprover(newFakeListings(pendingListing(5, 1)), newFakeUsers(landlord(1), admin(2)), &fakeGateway{})

	_, err := a.Approve(2, 5)
	assert.ErrorIs(t, err, ErrNoBillingCustomer)
}

func TestApproveUnsettledPaymentKeepsListingHidden(t *testing.T) {
	owner := landlord(1)
	owner.StripeCustomerID = "cus_1"
	listings := newFakeListings(pendingListing(5, 1))
	gw := &fakeGateway{
		subscription: payment.Subscription{ID: "sub_1", Status: "incomplete", PaymentIntentStatus: "requires_payment_method"},
	}

	a := newApprover(listings, newFakeUsers(owner, admin(2)), gw)

	_, err := a.Approve(2, 5)
	assert.ErrorIs(t, err, ErrPaymentNotSettled)

	l, _ := listings.Get(5)
	assert.False(t, l.Visible)
	assert.False(t, l.IsPublic)
	assert.Empty(t, l.StripeSubscriptionID)
}

func TestApproveCardDeclined(t *testing.T) {
	owner := landlord(1)
	owner.StripeCustomerID = "cus_1"
	gw := &fakeGateway{subErr: &payment.DeclinedError{Message: "Your card was declined."}}

	a := newApprover(newFakeListings(pendingListing(5, 1)), newFakeUsers(owner, admin(2)), gw)

	_, err := a.Approve(2, 5)
	var declined *payment.DeclinedError
	require.True(t, errors.As(err, &declined))
	assert.Equal(t, "Your card was declined.", declined.Message)
}

func TestApproveLosesFinalizeRace(t *testing.T) {
	owner := landlord(1)
	owner.StripeCustomerID = "cus_1"
	listings := newFakeListings(pendingListing(5, 1))
	gw := &fakeGateway{
		subscription: payment.Subscription{ID: "sub_1", Status: "active", PaymentIntentStatus: "succeeded"},
	}
	// Another approve lands between the charge and the finalize write.
	gw.onCreateSubscription = func() {
		listings.items[5].Visible = true
		listings.items[5].StripeSubscriptionID = "sub_other"
	}

	a := newApprover(listings, newFakeUsers(owner, admin(2)), gw)

	_, err := a.Approve(2, 5)
	assert.ErrorIs(t, err, ErrConcurrentApproval)

	l, _ := listings.Get(5)
	assert.Equal(t, "sub_other", l.StripeSubscriptionID, "loser must not overwrite the winner's subscription")
}

func TestApproveFeaturedWithSocialAddOn(t *testing.T) {
	owner := landlord(1)
	owner.StripeCustomerID = "cus_1"
	listing := pendingListing(5, 1)
	listing.Featured = 1
	listing.SocialMediaPosting = true

	listings := newFakeListings(listing)
	gw := &fakeGateway{
		subscription: payment.Subscription{ID: "sub_1", Status: "active", PaymentIntentStatus: "succeeded"},
	}
	social := &fakeSocial{postID: "fb:42"}

	a := newApprover(listings, newFakeUsers(owner, admin(2)), gw)
	a.Social = social

	_, err := a.Approve(2, 5)
	require.NoError(t, err)

	assert.Equal(t, []string{"price_featured", "price_social"}, gw.subPrices)
	assert.Equal(t, 1, social.calls)

	l, _ := listings.Get(5)
	assert.True(t, l.SocialMediaPosted)
	assert.Equal(t, "fb:42", l.SocialMediaPostID)
}

func TestApproveSocialFailureDoesNotFailApproval(t *testing.T) {
	owner := landlord(1)
	owner.StripeCustomerID = "cus_1"
	listing := pendingListing(5, 1)
	listing.SocialMediaPosting = true

	listings := newFakeListings(listing)
	gw := &fakeGateway{
		subscription: payment.Subscription{ID: "sub_1", Status: "active", PaymentIntentStatus: "succeeded"},
	}
	social := &fakeSocial{err: errors.New("graph api down")}

	a := newApprover(listings, newFakeUsers(owner, admin(2)), gw)
	a.Social = social

	got, err := a.Approve(2, 5)
	require.NoError(t, err)
	assert.True(t, got.Visible)

	l, _ := listings.Get(5)
	assert.False(t, l.SocialMediaPosted)
	assert.Equal(t, "graph api down", l.SocialMediaError)
}

func TestApproveSocialPriceMissing(t *testing.T) {
	owner := landlord(1)
	owner.StripeCustomerID = "cus_1"
	listing := pendingListing(5, 1)
	listing.SocialMediaPosting = true

	a := newApprover(newFakeListings(listing), newFakeUsers(owner, admin(2)), &fakeGateway{})
	a.Prices = config.StripeConfig{PriceStandard: "price_standard"}

	_, err := a.Approve(2, 5)
	assert.ErrorIs(t, err, ErrPriceNotConfigured)
}

func TestRejectHidesWithoutTouchingStatus(t *testing.T) {
	listing := pendingListing(5, 1)
	listing.Visible = true
	listing.ApprovalStatus = model.ApprovalApproved
	listings := newFakeListings(listing)

	a := newApprover(listings, newFakeUsers(landlord(1), admin(2)), &fakeGateway{})

	got, err := a.Reject(2, 5)
	require.NoError(t, err)
	assert.False(t, got.Visible)
	assert.Equal(t, model.ApprovalApproved, got.ApprovalStatus, "rejection has no status of its own")

	// Rejecting again is a no-op.
	got, err = a.Reject(2, 5)
	require.NoError(t, err)
	assert.False(t, got.Visible)
}

func TestRequestChangesStoresFeedbackAndHides(t *testing.T) {
	listing := pendingListing(5, 1)
	listing.Visible = true
	listings := newFakeListings(listing)
	notifier := &fakeNotifier{}

	a := newApprover(listings, newFakeUsers(landlord(1), admin(2)), &fakeGateway{})
	a.Notifier = notifier

	got, err := a.RequestChanges(2, 5, "  add interior photos  ")
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalChangesRequested, got.ApprovalStatus)
	assert.Equal(t, "add interior photos", got.AdminFeedback)
	assert.False(t, got.Visible)
	assert.Equal(t, []string{"add interior photos"}, notifier.feedbacks)
}

func TestRequestChangesRequiresFeedback(t *testing.T) {
	a := newApprover(newFakeListings(pendingListing(5, 1)), newFakeUsers(landlord(1), admin(2)), &fakeGateway{})

	_, err := a.RequestChanges(2, 5, "   ")
	assert.ErrorIs(t, err, ErrFeedbackRequired)
}

func TestSyncSubscriptionsRepairsMissedWebhook(t *testing.T) {
	owner := landlord(1)
	owner.StripeCustomerID = "cus_1"

	inSync := pendingListing(5, 1)
	inSync.IsPublic = true
	inSync.StripeSubscriptionID = "sub_1"
	missed := pendingListing(9, 1)

	listings := newFakeListings(inSync, missed)
	gw := &fakeGateway{
		activeSubs: []payment.Subscription{
			{ID: "sub_1", Status: "active", ListingIDs: []uint{5, 9}},
		},
	}

	a := newApprover(listings, newFakeUsers(owner), gw)

	updated, err := a.SyncSubscriptions(1)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	l9, _ := listings.Get(9)
	assert.True(t, l9.IsPublic)
	assert.Equal(t, "sub_1", l9.StripeSubscriptionID)

	// Second run finds nothing to repair.
	updated, err = a.SyncSubscriptions(1)
	require.NoError(t, err)
	assert.Equal(t, 0, updated)
}

func TestSyncSubscriptionsWithoutCustomer(t *testing.T) {
	a := newApprover(newFakeListings(), newFakeUsers(landlord(1)), &fakeGateway{})

	updated, err := a.SyncSubscriptions(1)
	require.NoError(t, err)
	assert.Equal(t, 0, updated)
}
