package middleware

import (
	"github.com/gofiber/fiber/v2"

	"cuserentals_backend/internal/model"
	"cuserentals_backend/pkg/database"
	"cuserentals_backend/pkg/utils/jwt"
)

// RequireCapability gates a route on an explicit capability instead of a
// magic user-level threshold. The fresh DB read means a demoted admin loses
// access before their token expires.
func RequireCapability(cap model.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := c.Locals("user").(*jwt.Claims)

		var user model.User
		if err := database.DB.First(&user, claims.UserID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		}

		if !user.Can(cap) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "You don't have permission to perform this action",
			})
		}

		return c.Next()
	}
}

// CheckListingOwnership ilanın sahibi olup olmadığını kontrol eder
func CheckListingOwnership() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := c.Locals("user").(*jwt.Claims)
		listingID := c.Params("id")

		var listing model.Listing
		if err := database.DB.First(&listing, listingID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Listing not found",
			})
		}

		if listing.UserID != claims.UserID {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "You don't have permission to access this listing",
			})
		}

		return c.Next()
	}
}
