package approval

import "log"

// CheckoutSessionData is the reconciler's view of a completed checkout
// session event.
type CheckoutSessionData struct {
	Mode           string
	SetupIntentID  string
	SubscriptionID string
	ListingIDs     []uint
}

// Reconciler applies asynchronous provider events to the listing store.
// Webhook delivery order is not assumed; every handler tolerates reordering
// and duplication.
type Reconciler struct {
	Listings ListingStore
	Events   EventLog
	Approver *Approver
}

// Seen reports whether the event was already fully processed. Callers
// short-circuit replays with a success response so the provider stops
// retrying.
func (r *Reconciler) Seen(eventID string) (bool, error) {
	return r.Events.Seen(eventID)
}

// MarkProcessed records the event after its handler succeeded. Recording
// afterwards, not before, keeps a failed delivery eligible for the
// provider's retry instead of acknowledging it into a black hole.
func (r *Reconciler) MarkProcessed(eventID, eventType string, payload []byte) error {
	return r.Events.MarkProcessed(eventID, eventType, payload)
}

// HandleCheckoutCompleted routes a checkout.session.completed event. Setup
// mode captures the payment method; subscription mode is the legacy path
// that activates listings directly.
func (r *Reconciler) HandleCheckoutCompleted(s CheckoutSessionData) error {
	if s.Mode == "setup" {
		return r.Approver.CapturePaymentMethod(s.SetupIntentID, s.ListingIDs)
	}

	if s.SubscriptionID == "" || len(s.ListingIDs) == 0 {
		log.Printf("checkout completed: missing metadata, ids=%v sub=%q", s.ListingIDs, s.SubscriptionID)
		return nil
	}

	for _, id := range s.ListingIDs {
		if err := r.Listings.Activate(id, s.SubscriptionID); err != nil {
			log.Printf("activate listing %d: %v", id, err)
			continue
		}
		log.Printf("listing %d activated with subscription %s", id, s.SubscriptionID)
	}
	return nil
}

// HandleSubscriptionDeleted deactivates every listing the lapsed
// subscription covered. A missing listing does not abort the batch.
func (r *Reconciler) HandleSubscriptionDeleted(listingIDs []uint) error {
	for _, id := range listingIDs {
		if err := r.Listings.Deactivate(id); err != nil {
			log.Printf("deactivate listing %d: %v", id, err)
			continue
		}
		log.Printf("listing %d deactivated", id)
	}
	return nil
}
