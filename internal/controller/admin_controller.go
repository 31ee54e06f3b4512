package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"cuserentals_backend/internal/approval"
	"cuserentals_backend/internal/model"
	"cuserentals_backend/pkg/database"
	"cuserentals_backend/pkg/utils/jwt"
)

type RequestChangesInput struct {
	Feedback string `json:"feedback" validate:"required"`
}

// ListPendingListings onay bekleyen ilanları listeler
func ListPendingListings(c *fiber.Ctx) error {
	var listings []model.Listing
	if err := database.GetDB().
		Where("approval_status = ?", model.ApprovalPending).
		Preload("Photos").Preload("Utilities").
		Order("created_at asc").
		Find(&listings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch pending listings",
		})
	}

	return c.JSON(fiber.Map{
		"listings": listings,
		"count":    len(listings),
	})
}

// ApproveListing charges the stored payment method and publishes the
// listing. Declines come back with the provider message; everything else in
// the error mapping follows the taxonomy in mapApprovalError.
func ApproveListing(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)
	listingID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid listing id",
		})
	}

	listing, err := approver.Approve(claims.UserID, uint(listingID))
	if err != nil {
		return mapApprovalError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Listing approved",
		"listing": listing,
	})
}

func RejectListing(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)
	listingID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid listing id",
		})
	}

	listing, err := approver.Reject(claims.UserID, uint(listingID))
	if err != nil {
		return mapApprovalError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Listing rejected",
		"listing": listing,
	})
}

func RequestListingChanges(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)
	listingID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid listing id",
		})
	}

	input := new(RequestChangesInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	listing, err := approver.RequestChanges(claims.UserID, uint(listingID), input.Feedback)
	if err != nil {
		return mapApprovalError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Changes requested",
		"listing": listing,
	})
}

func mapApprovalError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, approval.ErrListingNotFound), errors.Is(err, approval.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, approval.ErrNotAdmin), errors.Is(err, approval.ErrNotOwner):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, approval.ErrMissingPaymentMethod):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "missing_payment_method",
		})
	case errors.Is(err, approval.ErrFeedbackRequired),
		errors.Is(err, approval.ErrNoItems),
		errors.Is(err, approval.ErrNoBillingCustomer):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, approval.ErrPriceNotConfigured):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, approval.ErrPaymentNotSettled), errors.Is(err, approval.ErrConcurrentApproval):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if declined := declinedMessage(err); declined != "" {
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
			"error": declined,
			"code":  "payment_declined",
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": err.Error(),
	})
}
