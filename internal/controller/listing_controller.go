package controller

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"cuserentals_backend/internal/model"
	"cuserentals_backend/pkg/database"
	"cuserentals_backend/pkg/utils/jwt"
)

type ListingInput struct {
	Address         string   `json:"address"`
	PhysicalAddress string   `json:"physical_address"`
	Zip             string   `json:"zip"`
	Unit            int      `json:"unit"`
	Beds            int      `json:"beds" validate:"min=0"`
	Baths           string   `json:"baths"`
	Rent            int      `json:"rent" validate:"min=0"`
	Details         string   `json:"details"`
	Location        string   `json:"location"`
	BuildingType    string   `json:"building_type"`
	Furnished       string   `json:"furnished"`
	Laundry         string   `json:"laundry"`
	Parking         string   `json:"parking"`
	Pets            string   `json:"pets"`
	PerfectFor      string   `json:"perfect_for"`
	LatLng          string   `json:"lat_lng"`
	TypeCode        int      `json:"type_code" validate:"min=1,max=4"`
	Featured        int      `json:"featured"`
	DateAvail       string   `json:"date_avail"`
	DateExpires     string   `json:"date_expires"`
	ContactName     string   `json:"contact_name" validate:"required"`
	ContactNumber   string   `json:"contact_number"`
	ContactEmail    string   `json:"contact_email"`
	Utilities       []string `json:"utilities"`
	Photos          []string `json:"photos"`
}

func listVisibleListings(c *fiber.Ctx, typeCode int, label string) error {
	q := database.GetDB().Where("visible = ?", true)
	if typeCode != 0 {
		q = q.Where("type_code = ?", typeCode)
	}

	filters := FiltersFromQuery(func(key string) string { return c.Query(key) })
	q = filters.Apply(q)

	var listings []model.Listing
	if err := q.Preload("Photos").Preload("Utilities").
		Order("featured desc, created_at desc").
		Find(&listings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch listings",
		})
	}

	resp := fiber.Map{
		"listings": listings,
		"count":    len(listings),
	}
	if label != "" {
		resp["type"] = label
	}
	return c.JSON(resp)
}

func ListListings(c *fiber.Ctx) error {
	return listVisibleListings(c, 0, "")
}

func ListRentals(c *fiber.Ctx) error {
	return listVisibleListings(c, model.TypeRental, "rentals")
}

func ListSublets(c *fiber.Ctx) error {
	return listVisibleListings(c, model.TypeSublet, "sublets")
}

func ListRooms(c *fiber.Ctx) error {
	return listVisibleListings(c, model.TypeRoom, "rooms")
}

func ListShortTerm(c *fiber.Ctx) error {
	return listVisibleListings(c, model.TypeShortTerm, "short-term")
}

func GetListing(c *fiber.Ctx) error {
	id := c.Params("id")

	var listing model.Listing
	if err := database.GetDB().Preload("Photos").Preload("Utilities").
		First(&listing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Listing not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch listing",
		})
	}

	return c.JSON(fiber.Map{"listing": listing})
}

// CreateListing yeni ilan oluşturur. New listings start as hidden drafts;
// they only go public through the payment + approval flow.
func CreateListing(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)
	input := new(ListingInput)

	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}
	if err := validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	listing := model.Listing{
		UserID:          claims.UserID,
		Address:         input.Address,
		PhysicalAddress: input.PhysicalAddress,
		Zip:             input.Zip,
		Unit:            input.Unit,
		Beds:            input.Beds,
		Baths:           input.Baths,
		Rent:            input.Rent,
		Details:         input.Details,
		Location:        input.Location,
		BuildingType:    input.BuildingType,
		Furnished:       input.Furnished,
		Laundry:         input.Laundry,
		Parking:         input.Parking,
		Pets:            input.Pets,
		PerfectFor:      input.PerfectFor,
		LatLng:          input.LatLng,
		TypeCode:        input.TypeCode,
		Featured:        input.Featured,
		ContactName:     input.ContactName,
		ContactNumber:   input.ContactNumber,
		ContactEmail:    input.ContactEmail,
		Visible:         false,
		ApprovalStatus:  model.ApprovalDraft,
	}
	listing.DateAvail = parseDate(input.DateAvail)
	listing.DateExpires = parseDate(input.DateExpires)

	tx := database.GetDB().Begin()

	if err := tx.Create(&listing).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create listing",
		})
	}

	if err := insertUtilities(tx, listing.ID, input.Utilities); err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not save utilities",
		})
	}

	for i, path := range input.Photos {
		photo := model.Photo{
			ListingID: listing.ID,
			Path:      path,
			IsMain:    i == 0,
		}
		if err := tx.Create(&photo).Error; err != nil {
			tx.Rollback()
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not save photos",
			})
		}
	}

	if err := tx.Commit().Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not complete the listing creation",
		})
	}

	database.GetDB().Preload("Photos").Preload("Utilities").First(&listing, listing.ID)

	return c.Status(fiber.StatusCreated).JSON(listing)
}

// UpdateListing ilanı günceller. Any edit hides the listing again for
// re-review; approval_status stays as it was.
func UpdateListing(c *fiber.Ctx) error {
	id := c.Params("id")
	input := new(ListingInput)

	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	var listing model.Listing
	if err := database.GetDB().First(&listing, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Listing not found",
		})
	}

	tx := database.GetDB().Begin()

	listing.Address = input.Address
	listing.PhysicalAddress = input.PhysicalAddress
	listing.Zip = input.Zip
	listing.Unit = input.Unit
	listing.Beds = input.Beds
	listing.Baths = input.Baths
	listing.Rent = input.Rent
	listing.Details = input.Details
	listing.Location = input.Location
	listing.BuildingType = input.BuildingType
	listing.Furnished = input.Furnished
	listing.Laundry = input.Laundry
	listing.Parking = input.Parking
	listing.Pets = input.Pets
	listing.PerfectFor = input.PerfectFor
	listing.LatLng = input.LatLng
	if input.TypeCode != 0 {
		listing.TypeCode = input.TypeCode
	}
	listing.ContactName = input.ContactName
	listing.ContactNumber = input.ContactNumber
	listing.ContactEmail = input.ContactEmail
	listing.DateAvail = parseDate(input.DateAvail)
	listing.DateExpires = parseDate(input.DateExpires)

	// Edits force re-review
	listing.Visible = false

	if err := tx.Save(&listing).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update listing",
		})
	}

	// Utilities tablosu diff'lenmez, komple değiştirilir
	if err := tx.Where("listing_id = ?", listing.ID).Delete(&model.ListingUtility{}).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update utilities",
		})
	}
	if err := insertUtilities(tx, listing.ID, input.Utilities); err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update utilities",
		})
	}

	if err := tx.Commit().Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not complete the update",
		})
	}

	database.GetDB().Preload("Photos").Preload("Utilities").First(&listing, listing.ID)

	return c.JSON(listing)
}

// ListMyListings kullanıcının kendi ilanlarını listeler
func ListMyListings(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var listings []model.Listing
	if err := database.GetDB().Where("user_id = ?", claims.UserID).
		Preload("Photos").Preload("Utilities").
		Order("created_at desc").
		Find(&listings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch listings",
		})
	}

	return c.JSON(listings)
}

func DeleteListing(c *fiber.Ctx) error {
	id := c.Params("id")

	var listing model.Listing
	if err := database.GetDB().First(&listing, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Listing not found",
		})
	}

	if err := database.GetDB().Delete(&listing).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not delete listing",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func insertUtilities(tx *gorm.DB, listingID uint, names []string) error {
	for _, name := range names {
		if name == "" {
			continue
		}
		util := model.ListingUtility{ListingID: listingID, Name: name}
		if err := tx.Create(&util).Error; err != nil {
			return err
		}
	}
	return nil
}

func parseDate(v string) *time.Time {
	if v == "" {
		return nil
	}
	d, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil
	}
	return &d
}
