package cron

import (
	"log"

	"cuserentals_backend/internal/approval"
	"cuserentals_backend/internal/model"
	"cuserentals_backend/pkg/database"

	"github.com/robfig/cron/v3"
)

// InitSubscriptionReconcileCron nightly re-checks every billed user against
// the payment provider, catching webhooks that never arrived.
func InitSubscriptionReconcileCron(app *approval.Approver) {
	c := cron.New()

	_, err := c.AddFunc("30 4 * * *", func() {
		reconcileSubscriptions(app)
	})

	if err != nil {
		log.Printf("Could not initialize subscription reconcile cron: %v", err)
		return
	}

	c.Start()
}

func reconcileSubscriptions(app *approval.Approver) {
	log.Println("Reconciling subscriptions with Stripe...")

	var users []model.User
	if err := database.DB.Where("stripe_customer_id <> ''").Find(&users).Error; err != nil {
		log.Printf("Error fetching billed users: %v", err)
		return
	}

	total := 0
	for _, user := range users {
		updated, err := app.SyncSubscriptions(user.ID)
		if err != nil {
			log.Printf("Error syncing subscriptions for user %d: %v", user.ID, err)
			continue
		}
		total += updated
	}

	log.Printf("Subscription reconcile complete: %d listings updated across %d users", total, len(users))
}
