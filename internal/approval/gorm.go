package approval

import (
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"cuserentals_backend/internal/model"
)

// GORM-backed implementations of the store interfaces.

type GormListings struct {
	db *gorm.DB
}

func NewGormListings(db *gorm.DB) *GormListings {
	return &GormListings{db: db}
}

func (s *GormListings) Get(id uint) (*model.Listing, error) {
	var listing model.Listing
	if err := s.db.First(&listing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return &listing, nil
}

func (s *GormListings) GetOwned(id, userID uint) (*model.Listing, error) {
	listing, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if listing.UserID != userID {
		return nil, ErrNotOwner
	}
	return listing, nil
}

func (s *GormListings) SetSocialPosting(id uint, enabled bool) error {
	return s.update(id, map[string]interface{}{
		"social_media_posting": enabled,
	})
}

func (s *GormListings) SavePaymentMethod(id uint, paymentMethodID string) error {
	return s.update(id, map[string]interface{}{
		"stripe_payment_method_id": paymentMethodID,
		"approval_status":          model.ApprovalPending,
	})
}

func (s *GormListings) Activate(id uint, subscriptionID string) error {
	return s.update(id, map[string]interface{}{
		"is_public":              true,
		"stripe_subscription_id": subscriptionID,
	})
}

func (s *GormListings) Deactivate(id uint) error {
	return s.update(id, map[string]interface{}{
		"is_public":              false,
		"stripe_subscription_id": "",
	})
}

// FinalizeApproval is the conditional write that closes the concurrent
// approve race: only the caller that still sees visible=0 wins.
func (s *GormListings) FinalizeApproval(id uint, subscriptionID string) (bool, error) {
	tx := s.db.Model(&model.Listing{}).
		Where("id = ? AND visible = ?", id, false).
		Updates(map[string]interface{}{
			"visible":                true,
			"is_public":              true,
			"approval_status":        model.ApprovalApproved,
			"stripe_subscription_id": subscriptionID,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (s *GormListings) Hide(id uint) error {
	return s.update(id, map[string]interface{}{
		"visible": false,
	})
}

func (s *GormListings) StoreFeedback(id uint, feedback string) error {
	return s.update(id, map[string]interface{}{
		"approval_status": model.ApprovalChangesRequested,
		"admin_feedback":  feedback,
		"visible":         false,
	})
}

func (s *GormListings) RecordSocialResult(id uint, posted bool, postID, errMsg string) error {
	return s.update(id, map[string]interface{}{
		"social_media_posted":  posted,
		"social_media_post_id": postID,
		"social_media_error":   errMsg,
	})
}

func (s *GormListings) update(id uint, values map[string]interface{}) error {
	tx := s.db.Model(&model.Listing{}).Where("id = ?", id).Updates(values)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrListingNotFound
	}
	return nil
}

type GormUsers struct {
	db *gorm.DB
}

func NewGormUsers(db *gorm.DB) *GormUsers {
	return &GormUsers{db: db}
}

func (s *GormUsers) Get(id uint) (*model.User, error) {
	var user model.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *GormUsers) SaveStripeCustomerID(id uint, customerID string) error {
	return s.db.Model(&model.User{}).Where("id = ?", id).
		Update("stripe_customer_id", customerID).Error
}

type GormEventLog struct {
	db *gorm.DB
}

func NewGormEventLog(db *gorm.DB) *GormEventLog {
	return &GormEventLog{db: db}
}

func (s *GormEventLog) Seen(eventID string) (bool, error) {
	var existing model.WebhookEvent
	err := s.db.Where("event_id = ?", eventID).First(&existing).Error
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}

func (s *GormEventLog) MarkProcessed(eventID, eventType string, payload []byte) error {
	record := model.WebhookEvent{
		EventID: eventID,
		Type:    eventType,
		Payload: datatypes.JSON(payload),
	}
	if err := s.db.Create(&record).Error; err != nil {
		// Unique index on event_id: a concurrent delivery beat us to it.
		// The handlers are idempotent, so the duplicate run was harmless.
		return nil
	}
	return nil
}
