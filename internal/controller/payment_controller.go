package controller

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v74"

	"cuserentals_backend/internal/approval"
	"cuserentals_backend/internal/model"
	"cuserentals_backend/pkg/database"
	"cuserentals_backend/pkg/payment"
	"cuserentals_backend/pkg/utils/jwt"
)

type CheckoutInput struct {
	Items []approval.CheckoutItem `json:"items"`

	// Legacy single-item format
	ListingID   uint   `json:"listing_id"`
	ProductType string `json:"type"`
	SocialMedia bool   `json:"social_media"`
}

// CreateCheckoutSession starts a setup-mode session for a batch of listings.
// No charge happens here; the card is captured for the later off-session
// charge at approval time.
func CreateCheckoutSession(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)
	input := new(CheckoutInput)

	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	items := input.Items
	if len(items) == 0 && input.ListingID != 0 {
		items = []approval.CheckoutItem{{
			ListingID:   input.ListingID,
			ProductType: input.ProductType,
			SocialMedia: input.SocialMedia,
		}}
	}

	url, err := approver.RequestCheckout(claims.UserID, items)
	if err != nil {
		return mapApprovalError(c, err)
	}

	return c.JSON(fiber.Map{"url": url})
}

// HandleStripeWebhook verifies the signature, dedupes the event and hands it
// to the reconciler. Replays are acknowledged without reprocessing so the
// provider stops retrying.
func HandleStripeWebhook(c *fiber.Ctx) error {
	payload := c.Body()
	signatureHeader := c.Get("Stripe-Signature")

	event, err := gateway.ConstructEvent(payload, signatureHeader)
	if err != nil {
		log.Printf("webhook rejected: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook signature",
		})
	}

	log.Printf("Processing Stripe webhook event: %s", event.Type)

	seen, err := reconciler.Seen(event.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not check webhook event",
		})
	}
	if seen {
		log.Printf("webhook event %s already processed", event.ID)
		return c.SendStatus(fiber.StatusOK)
	}

	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return c.Status(fiber.StatusBadRequest).Send(nil)
		}

		data := approval.CheckoutSessionData{
			Mode:       string(session.Mode),
			ListingIDs: payment.ParseListingIDs(session.Metadata),
		}
		if session.SetupIntent != nil {
			data.SetupIntentID = session.SetupIntent.ID
		}
		if session.Subscription != nil {
			data.SubscriptionID = session.Subscription.ID
		}

		if err := reconciler.HandleCheckoutCompleted(data); err != nil {
			log.Printf("webhook checkout.session.completed: %v", err)
			return c.Status(fiber.StatusInternalServerError).Send(nil)
		}

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return c.Status(fiber.StatusBadRequest).Send(nil)
		}

		if err := reconciler.HandleSubscriptionDeleted(payment.ParseListingIDs(sub.Metadata)); err != nil {
			log.Printf("webhook customer.subscription.deleted: %v", err)
			return c.Status(fiber.StatusInternalServerError).Send(nil)
		}
	}

	// Only a fully handled event is recorded; a 500 above leaves the event
	// unrecorded so the provider's retry gets a real second attempt.
	if err := reconciler.MarkProcessed(event.ID, string(event.Type), payload); err != nil {
		log.Printf("webhook event %s: could not record: %v", event.ID, err)
		return c.Status(fiber.StatusInternalServerError).Send(nil)
	}

	return c.SendStatus(fiber.StatusOK)
}

// GetSubscriptionDetails ilanın abonelik durumunu Stripe'tan okur
func GetSubscriptionDetails(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)
	listingID := c.Query("listing_id")
	if listingID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "listing_id is required",
		})
	}

	var listing model.Listing
	if err := database.GetDB().First(&listing, listingID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Listing not found",
		})
	}
	if listing.UserID != claims.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Not authorized to manage this listing",
		})
	}
	if listing.StripeSubscriptionID == "" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No active subscription found",
		})
	}

	sub, err := gateway.GetSubscription(listing.StripeSubscriptionID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"status":               sub.Status,
		"current_period_end":   sub.CurrentPeriodEnd,
		"cancel_at_period_end": sub.CancelAtPeriodEnd,
	})
}

// CancelSubscription aboneliği dönem sonunda iptal eder
func CancelSubscription(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var input struct {
		ListingID uint `json:"listing_id"`
	}
	if err := c.BodyParser(&input); err != nil || input.ListingID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "listing_id is required",
		})
	}

	var listing model.Listing
	if err := database.GetDB().First(&listing, input.ListingID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Listing not found",
		})
	}
	if listing.UserID != claims.UserID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Not authorized to manage this listing",
		})
	}
	if listing.StripeSubscriptionID == "" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No active subscription found",
		})
	}

	if err := gateway.CancelAtPeriodEnd(listing.StripeSubscriptionID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"status": "canceled"})
}

// SyncSubscriptions manually reconciles the caller's listings against the
// provider, for when webhooks were missed.
func SyncSubscriptions(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	updated, err := approver.SyncSubscriptions(claims.UserID)
	if err != nil {
		return mapApprovalError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Sync complete",
		"updated": updated,
	})
}

func CreatePortalSession(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var user model.User
	if err := database.GetDB().First(&user, claims.UserID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}
	if user.StripeCustomerID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No billing record found. Please subscribe to a listing first.",
		})
	}

	url, err := gateway.CreatePortalSession(user.StripeCustomerID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"url": url})
}

func declinedMessage(err error) string {
	var declined *payment.DeclinedError
	if errors.As(err, &declined) {
		return declined.Message
	}
	return ""
}
