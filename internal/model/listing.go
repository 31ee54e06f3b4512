package model

import (
	"fmt"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// Listing type codes (kept numeric to match the legacy schema)
const (
	TypeRental    = 1
	TypeSublet    = 2
	TypeRoom      = 3
	TypeShortTerm = 4
)

// Approval statuses. Advisory only: storage does not constrain the column.
// Note there is no "rejected" status on purpose, rejection only hides the
// listing (visible=0) and leaves approval_status untouched.
type ApprovalStatus string

const (
	ApprovalDraft            ApprovalStatus = "draft"
	ApprovalPending          ApprovalStatus = "pending"
	ApprovalChangesRequested ApprovalStatus = "changes_requested"
	ApprovalApproved         ApprovalStatus = "approved"
)

type Listing struct {
	gorm.Model
	UserID uint `json:"user_id" gorm:"index;not null"`

	Address         string `json:"address"`
	PhysicalAddress string `json:"physical_address"`
	Zip             string `json:"zip"`
	Unit            int    `json:"unit" gorm:"default:0"`
	Beds            int    `json:"beds"`
	Baths           string `json:"baths"`
	Rent            int    `json:"rent"`
	Details         string `json:"details" gorm:"type:text"`
	Location        string `json:"location"`
	BuildingType    string `json:"building_type"`
	Furnished       string `json:"furnished"`
	Laundry         string `json:"laundry"`
	Parking         string `json:"parking"`
	Pets            string `json:"pets"`
	PerfectFor      string `json:"perfect_for"`
	LatLng          string `json:"lat_lng"`
	TypeCode        int    `json:"type_code" gorm:"default:1;index"`
	Featured        int    `json:"featured" gorm:"default:0"`
	Slug            string `json:"slug" gorm:"index"`

	DateAvail   *time.Time `json:"date_avail"`
	DateExpires *time.Time `json:"date_expires"`

	ContactName   string `json:"contact_name"`
	ContactNumber string `json:"contact_number"`
	ContactEmail  string `json:"contact_email"`

	// Approval / billing state. visible gates the public queries, is_public is
	// only ever set after a successful charge or a webhook activation.
	Visible               bool           `json:"visible" gorm:"default:false;index"`
	IsPublic              bool           `json:"is_public" gorm:"default:false"`
	ApprovalStatus        ApprovalStatus `json:"approval_status" gorm:"default:'draft'"`
	AdminFeedback         string         `json:"admin_feedback" gorm:"type:text"`
	StripePaymentMethodID string         `json:"stripe_payment_method_id"`
	StripeSubscriptionID  string         `json:"stripe_subscription_id"`

	// Social posting add-on
	SocialMediaPosting bool   `json:"social_media_posting" gorm:"default:false"`
	SocialMediaPosted  bool   `json:"social_media_posted" gorm:"default:false"`
	SocialMediaPostID  string `json:"social_media_post_id"`
	SocialMediaError   string `json:"social_media_error"`

	// İlişkiler
	User      User             `json:"-" gorm:"foreignKey:UserID"`
	Photos    []Photo          `json:"photos" gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE"`
	Utilities []ListingUtility `json:"utilities" gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE"`
}

type Photo struct {
	gorm.Model
	ListingID   uint   `json:"listing_id" gorm:"index"`
	Name        string `json:"name"`
	Path        string `json:"path" gorm:"not null"`
	Description string `json:"description"`
	IsMain      bool   `json:"is_main" gorm:"default:false"`

	Listing Listing `json:"-" gorm:"foreignKey:ListingID"`
}

// ListingUtility rows are replaced wholesale on every listing update,
// they are never diffed.
type ListingUtility struct {
	gorm.Model
	ListingID uint   `json:"listing_id" gorm:"index"`
	Name      string `json:"name" gorm:"not null"`
}

// ListingType is the lookup table behind the numeric type codes.
type ListingType struct {
	gorm.Model
	Code     int    `json:"code" gorm:"uniqueIndex;not null"`
	Name     string `json:"name" gorm:"uniqueIndex;not null"`
	IsActive bool   `json:"is_active" gorm:"default:true"`
}

func (ListingType) TableName() string {
	return "lookup_listing_types"
}

// BeforeCreate derives a URL slug from the address, falling back to the bed
// count when the address is withheld from the public page.
func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.Slug == "" {
		base := l.Address
		if base == "" {
			base = fmt.Sprintf("%d-bed-%s", l.Beds, l.BuildingType)
		}
		candidate := slug.Make(base)

		var count int64
		tx.Model(&Listing{}).Where("slug = ?", candidate).Count(&count)
		if count > 0 {
			candidate = fmt.Sprintf("%s-%s", candidate, time.Now().Format("20060102150405"))
		}
		l.Slug = candidate
	}
	return nil
}
