package approval

import (
	"errors"

	"cuserentals_backend/internal/model"
	"cuserentals_backend/pkg/payment"
)

// In-memory stores mirroring the gorm-backed semantics, including the
// visible=0 guard on FinalizeApproval.

type fakeListings struct {
	items map[uint]*model.Listing
}

func newFakeListings(listings ...*model.Listing) *fakeListings {
	f := &fakeListings{items: make(map[uint]*model.Listing)}
	for _, l := range listings {
		f.items[l.ID] = l
	}
	return f
}

func (f *fakeListings) Get(id uint) (*model.Listing, error) {
	l, ok := f.items[id]
	if !ok {
		return nil, ErrListingNotFound
	}
	cp := *l
	return &cp, nil
}

func (f *fakeListings) GetOwned(id, userID uint) (*model.Listing, error) {
	l, err := f.Get(id)
	if err != nil {
		return nil, err
	}
	if l.UserID != userID {
		return nil, ErrNotOwner
	}
	return l, nil
}

func (f *fakeListings) SetSocialPosting(id uint, enabled bool) error {
	l, ok := f.items[id]
	if !ok {
		return ErrListingNotFound
	}
	l.SocialMediaPosting = enabled
	return nil
}

func (f *fakeListings) SavePaymentMethod(id uint, paymentMethodID string) error {
	l, ok := f.items[id]
	if !ok {
		return ErrListingNotFound
	}
	l.StripePaymentMethodID = paymentMethodID
	l.ApprovalStatus = model.ApprovalPending
	return nil
}

func (f *fakeListings) Activate(id uint, subscriptionID string) error {
	l, ok := f.items[id]
	if !ok {
		return ErrListingNotFound
	}
	l.IsPublic = true
	l.StripeSubscriptionID = subscriptionID
	return nil
}

func (f *fakeListings) Deactivate(id uint) error {
	l, ok := f.items[id]
	if !ok {
		return ErrListingNotFound
	}
	l.IsPublic = false
	l.StripeSubscriptionID = ""
	return nil
}

func (f *fakeListings) FinalizeApproval(id uint, subscriptionID string) (bool, error) {
	l, ok := f.items[id]
	if !ok {
		return false, nil
	}
	if l.Visible {
		return false, nil
	}
	l.Visible = true
	l.IsPublic = true
	l.ApprovalStatus = model.ApprovalApproved
	l.StripeSubscriptionID = subscriptionID
	return true, nil
}

func (f *fakeListings) Hide(id uint) error {
	l, ok := f.items[id]
	if !ok {
		return ErrListingNotFound
	}
	l.Visible = false
	return nil
}

func (f *fakeListings) StoreFeedback(id uint, feedback string) error {
	l, ok := f.items[id]
	if !ok {
		return ErrListingNotFound
	}
	l.ApprovalStatus = model.ApprovalChangesRequested
	l.AdminFeedback = feedback
	l.Visible = false
	return nil
}

func (f *fakeListings) RecordSocialResult(id uint, posted bool, postID, errMsg string) error {
	l, ok := f.items[id]
	if !ok {
		return ErrListingNotFound
	}
	l.SocialMediaPosted = posted
	l.SocialMediaPostID = postID
	l.SocialMediaError = errMsg
	return nil
}

type fakeUsers struct {
	items map[uint]*model.User
}

func newFakeUsers(users ...*model.User) *fakeUsers {
	f := &fakeUsers{items: make(map[uint]*model.User)}
	for _, u := range users {
		f.items[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Get(id uint) (*model.User, error) {
	u, ok := f.items[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) SaveStripeCustomerID(id uint, customerID string) error {
	u, ok := f.items[id]
	if !ok {
		return ErrUserNotFound
	}
	u.StripeCustomerID = customerID
	return nil
}

type fakeGateway struct {
	customersCreated int
	sessionListings  []uint
	sessionCustomer  string

	paymentMethodID string

	subscription payment.Subscription
	subErr       error
	subCalls     int
	subPrices    []string
	subCustomer  string
	subPayment   string

	activeSubs []payment.Subscription

	// invoked right before CreateSubscription returns, for simulating a
	// concurrent writer between the charge and the finalize.
	onCreateSubscription func()
}

func (f *fakeGateway) CreateCustomer(email, name string, userID uint) (string, error) {
	f.customersCreated++
	return "cus_test", nil
}

func (f *fakeGateway) CreateSetupSession(customerID string, listingIDs []uint, userID uint) (string, error) {
	f.sessionCustomer = customerID
	f.sessionListings = listingIDs
	return "https://checkout.test/session", nil
}

func (f *fakeGateway) SetupPaymentMethod(setupIntentID string) (string, error) {
	if f.paymentMethodID == "" {
		return "", errors.New("no payment method")
	}
	return f.paymentMethodID, nil
}

func (f *fakeGateway) CreateSubscription(customerID, paymentMethodID string, priceIDs []string, listingIDs []uint) (payment.Subscription, error) {
	f.subCalls++
	f.subCustomer = customerID
	f.subPayment = paymentMethodID
	f.subPrices = priceIDs
	if f.onCreateSubscription != nil {
		f.onCreateSubscription()
	}
	if f.subErr != nil {
		return payment.Subscription{}, f.subErr
	}
	return f.subscription, nil
}

func (f *fakeGateway) ListActiveSubscriptions(customerID string) ([]payment.Subscription, error) {
	return f.activeSubs, nil
}

type fakeEventLog struct {
	seen map[string]bool
}

func newFakeEventLog() *fakeEventLog {
	return &fakeEventLog{seen: make(map[string]bool)}
}

func (f *fakeEventLog) Seen(eventID string) (bool, error) {
	return f.seen[eventID], nil
}

func (f *fakeEventLog) MarkProcessed(eventID, eventType string, payload []byte) error {
	f.seen[eventID] = true
	return nil
}

type fakeNotifier struct {
	approved  []uint
	changes   []uint
	feedbacks []string
}

func (f *fakeNotifier) ListingApproved(owner *model.User, listing *model.Listing) {
	f.approved = append(f.approved, listing.ID)
}

func (f *fakeNotifier) ChangesRequested(owner *model.User, listing *model.Listing, feedback string) {
	f.changes = append(f.changes, listing.ID)
	f.feedbacks = append(f.feedbacks, feedback)
}

type fakeSocial struct {
	postID string
	err    error
	calls  int
}

func (f *fakeSocial) PostListing(listing *model.Listing) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.postID, nil
}
