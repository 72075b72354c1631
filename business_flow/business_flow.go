// Package businessflow contains the business logic for the application.
package businessflow

import (
	"time"

	"zaplinks/app/dto"
	"zaplinks/models"
)

// ClientMetadata holds all client-related information for click tracking and audit logging
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	Referrer  string `json:"referrer,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetReferrer sets the HTTP referrer
func (cm *ClientMetadata) SetReferrer(referrer string) {
	cm.Referrer = referrer
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// ToCampaignDTO converts a campaign model to CampaignDTO for API responses
func ToCampaignDTO(campaign models.Campaign) dto.CampaignDTO {
	return dto.CampaignDTO{
		UUID:        campaign.UUID.String(),
		Name:        campaign.Name,
		Description: campaign.Description,
		Status:      string(campaign.Status),
		CreatedAt:   campaign.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   campaign.UpdatedAt.Format(time.RFC3339),
	}
}

// ToCampaignGroupDTO converts a campaign group model to CampaignGroupDTO
func ToCampaignGroupDTO(group models.CampaignGroup) dto.CampaignGroupDTO {
	return dto.CampaignGroupDTO{
		ID:              group.ID,
		Name:            group.Name,
		Phone:           group.Phone,
		InviteLink:      group.InviteLink,
		CurrentMembers:  group.CurrentMembers,
		MemberLimit:     group.MemberLimit,
		Priority:        group.Priority,
		IsActive:        group.IsActive,
		RotationEnabled: group.RotationEnabled,
		CreatedAt:       group.CreatedAt.Format(time.RFC3339),
	}
}

// ToSmartLinkDTO converts a smart link model to SmartLinkDTO
func ToSmartLinkDTO(link models.SmartLink) dto.SmartLinkDTO {
	return dto.SmartLinkDTO{
		UUID:          link.UUID.String(),
		Slug:          link.Slug,
		IsActive:      link.IsActive,
		TrackClicks:   link.TrackClicks,
		DetectDevice:  link.DetectDevice,
		RedirectDelay: link.RedirectDelay,
		TotalClicks:   link.TotalClicks,
		CreatedAt:     link.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     link.UpdatedAt.Format(time.RFC3339),
	}
}

// ToClickEventDTO converts a click event model to ClickEventDTO
func ToClickEventDTO(event models.ClickEvent) dto.ClickEventDTO {
	return dto.ClickEventDTO{
		ID:         event.ID,
		GroupPhone: event.GroupPhone,
		DeviceType: string(event.DeviceType),
		UserAgent:  event.UserAgent,
		Referrer:   event.Referrer,
		CreatedAt:  event.CreatedAt.Format(time.RFC3339),
	}
}

// ToCustomDomainDTO converts a custom domain model to CustomDomainDTO
func ToCustomDomainDTO(domain models.CustomDomain) dto.CustomDomainDTO {
	d := dto.CustomDomainDTO{
		ID:         domain.ID,
		Hostname:   domain.Hostname,
		IsVerified: domain.IsVerified,
		CreatedAt:  domain.CreatedAt.Format(time.RFC3339),
	}
	if domain.LastCheckedAt != nil {
		checked := domain.LastCheckedAt.Format(time.RFC3339)
		d.LastCheckedAt = &checked
	}
	return d
}
