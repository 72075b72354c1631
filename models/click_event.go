package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// DeviceType classifies the visitor device resolved from the User-Agent
type DeviceType string

const (
	DeviceTypeIOS     DeviceType = "ios"
	DeviceTypeAndroid DeviceType = "android"
	DeviceTypeDesktop DeviceType = "desktop"
	DeviceTypeUnknown DeviceType = "unknown"
)

// String returns the string representation of the device type
func (d DeviceType) String() string {
	return string(d)
}

// Valid checks if the device type is valid
func (d DeviceType) Valid() bool {
	switch d {
	case DeviceTypeIOS, DeviceTypeAndroid, DeviceTypeDesktop, DeviceTypeUnknown:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for DeviceType
func (d *DeviceType) Scan(value any) error {
	if value == nil {
		*d = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*d = DeviceType(v)
	case []byte:
		*d = DeviceType(string(v))
	default:
		return fmt.Errorf("cannot scan %T into DeviceType", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for DeviceType
func (d DeviceType) Value() (driver.Value, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid DeviceType: %s", d)
	}
	return string(d), nil
}

// ClickEvent is one resolved redirect, append-only. GroupPhone identifies the
// selected destination group. UserAgent and Referrer are truncated before
// insert to bound storage.
type ClickEvent struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	SmartLinkID uint       `gorm:"not null;index:idx_click_events_smart_link_id" json:"smart_link_id"`
	GroupPhone  string     `gorm:"size:32" json:"group_phone"`
	DeviceType  DeviceType `gorm:"size:10;not null;default:'unknown'" json:"device_type"`
	UserAgent   *string    `gorm:"type:text" json:"user_agent,omitempty"`
	Referrer    *string    `gorm:"type:text" json:"referrer,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_click_events_created_at" json:"created_at"`
}

// TableName returns the table name for ClickEvent
func (ClickEvent) TableName() string { return "click_events" }

// ClickEventFilter provides filter fields for repository queries
type ClickEventFilter struct {
	ID            *uint
	SmartLinkID   *uint
	DeviceType    *DeviceType
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
