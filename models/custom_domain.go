package models

import "time"

// CustomDomain is a user-supplied hostname that can front smart links.
// Verification is a single HTTP HEAD probe recorded as a boolean flag.
type CustomDomain struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        string     `gorm:"size:128;not null;index:idx_custom_domains_user_id" json:"user_id"`
	Hostname      string     `gorm:"size:255;not null;uniqueIndex:uk_custom_domains_hostname" json:"hostname"`
	IsVerified    *bool      `gorm:"default:false" json:"is_verified"`
	LastCheckedAt *time.Time `json:"last_checked_at,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

// TableName returns the table name for CustomDomain
func (CustomDomain) TableName() string { return "custom_domains" }

// CustomDomainFilter provides filter fields for repository queries
type CustomDomainFilter struct {
	ID         *uint
	UserID     *string
	Hostname   *string
	IsVerified *bool
}
