package dto

// CreateCampaignRequest represents a campaign creation request
type CreateCampaignRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
}

// UpdateCampaignRequest represents a campaign update request
type UpdateCampaignRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=active paused archived"`
}

// CampaignDTO represents a campaign in API responses
type CampaignDTO struct {
	UUID        string  `json:"uuid"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// ListCampaignsResponse represents the campaign listing payload
type ListCampaignsResponse struct {
	Items []CampaignDTO `json:"items"`
	Total int64         `json:"total"`
}

// CreateCampaignGroupRequest represents a group creation request
type CreateCampaignGroupRequest struct {
	Name            string `json:"name" validate:"required,min=1,max=255"`
	Phone           string `json:"phone" validate:"required,max=32"`
	InviteLink      string `json:"invite_link" validate:"required,url"`
	MemberLimit     *int   `json:"member_limit,omitempty" validate:"omitempty,min=1"`
	Priority        *int   `json:"priority,omitempty" validate:"omitempty,min=0"`
	IsActive        *bool  `json:"is_active,omitempty"`
	RotationEnabled *bool  `json:"rotation_enabled,omitempty"`
}

// UpdateCampaignGroupRequest represents a group update request
type UpdateCampaignGroupRequest struct {
	Name            *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Phone           *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	InviteLink      *string `json:"invite_link,omitempty" validate:"omitempty,url"`
	MemberLimit     *int    `json:"member_limit,omitempty" validate:"omitempty,min=1"`
	Priority        *int    `json:"priority,omitempty" validate:"omitempty,min=0"`
	IsActive        *bool   `json:"is_active,omitempty"`
	RotationEnabled *bool   `json:"rotation_enabled,omitempty"`
}

// CampaignGroupDTO represents a campaign group in API responses
type CampaignGroupDTO struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	InviteLink      string `json:"invite_link"`
	CurrentMembers  int    `json:"current_members"`
	MemberLimit     int    `json:"member_limit"`
	Priority        int    `json:"priority"`
	IsActive        *bool  `json:"is_active"`
	RotationEnabled *bool  `json:"rotation_enabled"`
	CreatedAt       string `json:"created_at"`
}
