package dto

// CreateSmartLinkRequest represents a smart link creation request
type CreateSmartLinkRequest struct {
	Slug          string `json:"slug" validate:"required,min=1,max=64"`
	CampaignUUID  string `json:"campaign_uuid" validate:"required,uuid4"`
	TrackClicks   *bool  `json:"track_clicks,omitempty"`
	DetectDevice  *bool  `json:"detect_device,omitempty"`
	RedirectDelay *int   `json:"redirect_delay,omitempty" validate:"omitempty,min=0,max=30000"`
}

// UpdateSmartLinkRequest represents a smart link update request
type UpdateSmartLinkRequest struct {
	IsActive      *bool `json:"is_active,omitempty"`
	TrackClicks   *bool `json:"track_clicks,omitempty"`
	DetectDevice  *bool `json:"detect_device,omitempty"`
	RedirectDelay *int  `json:"redirect_delay,omitempty" validate:"omitempty,min=0,max=30000"`
}

// SmartLinkDTO represents a smart link in API responses
type SmartLinkDTO struct {
	UUID          string `json:"uuid"`
	Slug          string `json:"slug"`
	IsActive      *bool  `json:"is_active"`
	TrackClicks   *bool  `json:"track_clicks"`
	DetectDevice  *bool  `json:"detect_device"`
	RedirectDelay int    `json:"redirect_delay"`
	TotalClicks   int64  `json:"total_clicks"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// ListSmartLinksResponse represents the smart link listing payload
type ListSmartLinksResponse struct {
	Items []SmartLinkDTO `json:"items"`
	Total int64          `json:"total"`
}

// ClickEventDTO represents a recorded click in API responses
type ClickEventDTO struct {
	ID         uint    `json:"id"`
	GroupPhone string  `json:"group_phone"`
	DeviceType string  `json:"device_type"`
	UserAgent  *string `json:"user_agent,omitempty"`
	Referrer   *string `json:"referrer,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

// SmartLinkStatsResponse aggregates click statistics for one smart link
type SmartLinkStatsResponse struct {
	TotalClicks    int64            `json:"total_clicks"`
	ClicksByDevice map[string]int64 `json:"clicks_by_device"`
	LastClickAt    *string          `json:"last_click_at,omitempty"`
	RecentClicks   []ClickEventDTO  `json:"recent_clicks"`
}
