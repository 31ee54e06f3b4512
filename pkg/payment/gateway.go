package payment

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"
	"github.com/stripe/stripe-go/v74/webhook"

	"cuserentals_backend/pkg/config"
)

// Subscription is the gateway's view of a provider subscription, reduced to
// what the approval flow and the reconciler need.
type Subscription struct {
	ID                  string
	Status              string
	PaymentIntentStatus string
	CancelAtPeriodEnd   bool
	CurrentPeriodEnd    int64
	ListingIDs          []uint
}

// DeclinedError carries the provider-supplied user-facing message for a
// failed charge.
type DeclinedError struct {
	Message string
}

func (e *DeclinedError) Error() string {
	return e.Message
}

// Gateway wraps a dedicated Stripe client. The API key lives on the client,
// never on the package-global stripe.Key.
type Gateway struct {
	api           *client.API
	webhookSecret string
	frontendURL   string
}

func New(cfg config.StripeConfig, frontendURL string) *Gateway {
	return &Gateway{
		api:           client.New(cfg.SecretKey, nil),
		webhookSecret: cfg.WebhookSecret,
		frontendURL:   frontendURL,
	}
}

func (g *Gateway) CreateCustomer(email, name string, userID uint) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	params.AddMetadata("user_id", strconv.FormatUint(uint64(userID), 10))

	cust, err := g.api.Customers.New(params)
	if err != nil {
		return "", err
	}
	return cust.ID, nil
}

// CreateSetupSession starts a setup-mode checkout that captures a reusable
// payment method without charging. The listing batch rides along in the
// session metadata so the webhook can correlate it back.
func (g *Gateway) CreateSetupSession(customerID string, listingIDs []uint, userID uint) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Customer:           stripe.String(customerID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSetup)),
		SuccessURL:         stripe.String(g.frontendURL + "/landlord/dashboard?success=true&session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:          stripe.String(g.frontendURL + "/landlord/dashboard?canceled=true"),
	}
	params.AddMetadata("listing_ids", JoinListingIDs(listingIDs))
	params.AddMetadata("user_id", strconv.FormatUint(uint64(userID), 10))
	params.AddMetadata("setup_for_approval", "true")

	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}

// SetupPaymentMethod resolves the captured payment method from a completed
// setup intent.
func (g *Gateway) SetupPaymentMethod(setupIntentID string) (string, error) {
	si, err := g.api.SetupIntents.Get(setupIntentID, nil)
	if err != nil {
		return "", err
	}
	if si.PaymentMethod == nil {
		return "", fmt.Errorf("setup intent %s has no payment method", setupIntentID)
	}
	return si.PaymentMethod.ID, nil
}

// CreateSubscription charges the stored payment method immediately. Card
// declines come back as *DeclinedError so callers can surface the provider
// message; everything else is a provider/service error.
func (g *Gateway) CreateSubscription(customerID, paymentMethodID string, priceIDs []string, listingIDs []uint) (Subscription, error) {
	params := &stripe.SubscriptionParams{
		Customer:             stripe.String(customerID),
		DefaultPaymentMethod: stripe.String(paymentMethodID),
	}
	for _, price := range priceIDs {
		params.Items = append(params.Items, &stripe.SubscriptionItemsParams{
			Price: stripe.String(price),
		})
	}
	params.AddMetadata("listing_ids", JoinListingIDs(listingIDs))
	params.AddExpand("latest_invoice.payment_intent")

	sub, err := g.api.Subscriptions.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			return Subscription{}, &DeclinedError{Message: stripeErr.Msg}
		}
		return Subscription{}, err
	}
	return newSubscription(sub), nil
}

func (g *Gateway) GetSubscription(id string) (Subscription, error) {
	sub, err := g.api.Subscriptions.Get(id, nil)
	if err != nil {
		return Subscription{}, err
	}
	return newSubscription(sub), nil
}

// CancelAtPeriodEnd schedules the subscription to lapse instead of cutting
// it off immediately.
func (g *Gateway) CancelAtPeriodEnd(id string) error {
	_, err := g.api.Subscriptions.Update(id, &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(true),
	})
	return err
}

func (g *Gateway) ListActiveSubscriptions(customerID string) ([]Subscription, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String(string(stripe.SubscriptionStatusActive)),
	}
	params.Limit = stripe.Int64(100)

	var subs []Subscription
	iter := g.api.Subscriptions.List(params)
	for iter.Next() {
		subs = append(subs, newSubscription(iter.Subscription()))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return subs, nil
}

func (g *Gateway) CreatePortalSession(customerID string) (string, error) {
	sess, err := g.api.BillingPortalSessions.New(&stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(g.frontendURL + "/landlord/billing"),
	})
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}

// ConstructEvent verifies the webhook signature before anything in the
// payload is trusted.
func (g *Gateway) ConstructEvent(payload []byte, signatureHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, signatureHeader, g.webhookSecret)
}

func newSubscription(sub *stripe.Subscription) Subscription {
	out := Subscription{
		ID:                sub.ID,
		Status:            string(sub.Status),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		CurrentPeriodEnd:  sub.CurrentPeriodEnd,
		ListingIDs:        ParseListingIDs(sub.Metadata),
	}
	if sub.LatestInvoice != nil && sub.LatestInvoice.PaymentIntent != nil {
		out.PaymentIntentStatus = string(sub.LatestInvoice.PaymentIntent.Status)
	}
	return out
}

// ParseListingIDs reads the comma-delimited listing batch out of session or
// subscription metadata. Older subscriptions carried a single "listing_id"
// key; that fallback has to stay.
func ParseListingIDs(metadata map[string]string) []uint {
	raw := metadata["listing_ids"]
	if raw == "" {
		raw = metadata["listing_id"]
	}
	if raw == "" {
		return nil
	}

	var ids []uint
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids
}

func JoinListingIDs(ids []uint) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatUint(uint64(id), 10))
	}
	return strings.Join(parts, ",")
}
