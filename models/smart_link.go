package models

import (
	"time"

	"github.com/google/uuid"
)

// SmartLink is a short trackable URL that funnels visitors into one of its
// campaign's rotating groups. The resolver treats it as read-only except for
// the TotalClicks counter, which is bumped with a plain read-then-write and
// may lose updates under concurrency (accepted, see ClickEvent for the
// authoritative per-click log).
type SmartLink struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UUID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_smart_links_uuid" json:"uuid"`
	Slug         string    `gorm:"size:64;not null;uniqueIndex:uk_smart_links_slug" json:"slug"`
	CampaignID   uint      `gorm:"not null;index:idx_smart_links_campaign_id" json:"campaign_id"`
	UserID       string    `gorm:"size:128;not null;index:idx_smart_links_user_id" json:"user_id"`
	IsActive     *bool     `gorm:"default:true" json:"is_active"`
	TrackClicks  *bool     `gorm:"default:true" json:"track_clicks"`
	DetectDevice *bool     `gorm:"default:true" json:"detect_device"`

	// RedirectDelay is the client-side delay in milliseconds before the
	// browser follows the redirect (0 = immediate).
	RedirectDelay int   `gorm:"not null;default:0" json:"redirect_delay"`
	TotalClicks   int64 `gorm:"not null;default:0" json:"total_clicks"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_smart_links_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

// TableName returns the table name for SmartLink
func (SmartLink) TableName() string { return "smart_links" }

// SmartLinkFilter provides filter fields for repository queries
type SmartLinkFilter struct {
	ID            *uint
	UUID          *string
	Slug          *string
	CampaignID    *uint
	UserID        *string
	IsActive      *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
