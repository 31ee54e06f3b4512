package email

import (
	"log"

	"cuserentals_backend/internal/model"
)

// ApprovalNotifier sends the moderation outcome emails. Delivery is best
// effort; a failed send never blocks the approval flow.
type ApprovalNotifier struct{}

func NewApprovalNotifier() *ApprovalNotifier {
	return &ApprovalNotifier{}
}

func (n *ApprovalNotifier) ListingApproved(owner *model.User, listing *model.Listing) {
	if GlobalEmailService == nil || owner == nil {
		return
	}
	if err := GlobalEmailService.SendListingApprovedEmail(
		owner.Email, owner.GetFullName(), listing.Address, listing.ID,
	); err != nil {
		log.Printf("approval email to %s failed: %v", owner.Email, err)
	}
}

func (n *ApprovalNotifier) ChangesRequested(owner *model.User, listing *model.Listing, feedback string) {
	if GlobalEmailService == nil || owner == nil {
		return
	}
	if err := GlobalEmailService.SendChangesRequestedEmail(
		owner.Email, owner.GetFullName(), listing.Address, feedback, listing.ID,
	); err != nil {
		log.Printf("changes-requested email to %s failed: %v", owner.Email, err)
	}
}
