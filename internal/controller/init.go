package controller

import (
	"github.com/go-playground/validator/v10"

	"cuserentals_backend/internal/approval"
	"cuserentals_backend/internal/social"
	"cuserentals_backend/pkg/config"
	"cuserentals_backend/pkg/database"
	"cuserentals_backend/pkg/email"
	"cuserentals_backend/pkg/payment"
)

var (
	validate = validator.New()

	gateway    *payment.Gateway
	approver   *approval.Approver
	reconciler *approval.Reconciler
)

// InitControllers wires the approval machine and its collaborators. Must run
// after database.InitDB.
func InitControllers(cfg *config.Config) {
	gateway = payment.New(cfg.Stripe, cfg.FrontendURL)

	listings := approval.NewGormListings(database.GetDB())
	users := approval.NewGormUsers(database.GetDB())

	approver = &approval.Approver{
		Listings: listings,
		Users:    users,
		Gateway:  gateway,
		Prices:   cfg.Stripe,
		Social:   social.NewMetaPublisher(cfg.Social),
		Notifier: email.NewApprovalNotifier(),
	}

	reconciler = &approval.Reconciler{
		Listings: listings,
		Events:   approval.NewGormEventLog(database.GetDB()),
		Approver: approver,
	}
}

// Approver exposes the wired state machine for the cron sweeps.
func Approver() *approval.Approver {
	return approver
}
