package cron

import (
	"log"
	"time"

	"cuserentals_backend/internal/model"
	"cuserentals_backend/pkg/database"

	"github.com/robfig/cron/v3"
)

func InitListingExpiryCron() {
	c := cron.New()

	_, err := c.AddFunc("0 3 * * *", func() {
		hideExpiredListings()
	})

	if err != nil {
		log.Printf("Could not initialize listing expiry cron: %v", err)
		return
	}

	c.Start()
}

// hideExpiredListings süresi dolan ilanları gizler
func hideExpiredListings() {
	log.Println("Checking for expired listings...")

	result := database.DB.Model(&model.Listing{}).
		Where("visible = ? AND date_expires IS NOT NULL AND date_expires < ?", true, time.Now()).
		Updates(map[string]interface{}{
			"visible":   false,
			"is_public": false,
		})

	if result.Error != nil {
		log.Printf("Error hiding expired listings: %v", result.Error)
		return
	}

	if result.RowsAffected > 0 {
		log.Printf("Hid %d expired listings", result.RowsAffected)
	}
}
