package models

import "time"

// CampaignGroup is one candidate WhatsApp destination group in a campaign's
// rotation. CurrentMembers is a cached value refreshed best-effort from the
// live provider probe; it can lag behind reality and the limit is soft.
// Priority ascending means tried first.
type CampaignGroup struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	CampaignID      uint   `gorm:"not null;index:idx_campaign_groups_campaign_id" json:"campaign_id"`
	Name            string `gorm:"size:255;not null" json:"name"`
	Phone           string `gorm:"size:32" json:"phone"`
	InviteLink      string `gorm:"type:text" json:"invite_link"`
	CurrentMembers  int    `gorm:"not null;default:0" json:"current_members"`
	MemberLimit     int    `gorm:"not null;default:1024" json:"member_limit"`
	Priority        int    `gorm:"not null;default:0;index:idx_campaign_groups_priority" json:"priority"`
	IsActive        *bool  `gorm:"default:true" json:"is_active"`
	RotationEnabled *bool  `gorm:"default:true" json:"rotation_enabled"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

// TableName returns the table name for CampaignGroup
func (CampaignGroup) TableName() string { return "campaign_groups" }

// CampaignGroupFilter provides filter fields for repository queries
type CampaignGroupFilter struct {
	ID              *uint
	CampaignID      *uint
	IsActive        *bool
	RotationEnabled *bool
	Priority        *int
}
