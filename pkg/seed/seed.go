package seed

import (
	"log"

	"cuserentals_backend/internal/model"

	"gorm.io/gorm"
)

func SeedListingTypes(db *gorm.DB) {
	types := []model.ListingType{
		{Code: model.TypeRental, Name: "Rentals", IsActive: true},
		{Code: model.TypeSublet, Name: "Sublets", IsActive: true},
		{Code: model.TypeRoom, Name: "Room For Rent", IsActive: true},
		{Code: model.TypeShortTerm, Name: "Short Term", IsActive: true},
	}

	for _, t := range types {
		result := db.FirstOrCreate(&t, model.ListingType{Code: t.Code})
		if result.Error != nil {
			log.Printf("Error creating listing type %s: %v", t.Name, result.Error)
		}
	}

	log.Println("Listing types seeded successfully!")
}
