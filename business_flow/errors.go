// Package businessflow contains the core business logic and use cases for smart link workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Smart link errors
	ErrSlugRequired         = errors.New("slug is required")
	ErrSmartLinkNotFound    = errors.New("smart link not found")
	ErrSmartLinkUUIDInvalid = errors.New("smart link UUID is invalid")
	ErrSlugAlreadyExists    = errors.New("slug already exists")
	ErrSlugInvalid          = errors.New("slug contains invalid characters")

	// Campaign errors
	ErrCampaignNotFound     = errors.New("campaign not found")
	ErrCampaignAccessDenied = errors.New("campaign access denied")
	ErrCampaignNameRequired = errors.New("campaign name is required")
	ErrCampaignArchived     = errors.New("campaign is archived")

	// Campaign group errors
	ErrCampaignGroupNotFound = errors.New("campaign group not found")
	ErrNoConfiguredGroups    = errors.New("campaign has no groups configured")
	ErrNoEligibleGroups      = errors.New("campaign has no eligible groups")
	ErrInviteLinkRequired    = errors.New("invite link is required")
	ErrInviteLinkInvalid     = errors.New("invite link must be a WhatsApp group invite")
	ErrMemberLimitInvalid    = errors.New("member limit must be positive")

	// Custom domain errors
	ErrDomainNotFound      = errors.New("domain not found")
	ErrDomainAlreadyExists = errors.New("domain already registered")
	ErrDomainNotReachable  = errors.New("domain is not reachable")
	ErrHostnameRequired    = errors.New("hostname is required")

	// Messaging errors
	ErrPhoneRequired   = errors.New("phone is required")
	ErrMessageRequired = errors.New("message is required")

	// Filter errors
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = errors.New("page size must be between 1 and 100")
)

// BusinessError represents a business logic error with additional context
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Helper functions to check error types

func IsSlugRequired(err error) bool {
	return errors.Is(err, ErrSlugRequired)
}

func IsSmartLinkNotFound(err error) bool {
	return errors.Is(err, ErrSmartLinkNotFound)
}

func IsSlugAlreadyExists(err error) bool {
	return errors.Is(err, ErrSlugAlreadyExists)
}

func IsSlugInvalid(err error) bool {
	return errors.Is(err, ErrSlugInvalid)
}

func IsCampaignNotFound(err error) bool {
	return errors.Is(err, ErrCampaignNotFound)
}

func IsCampaignAccessDenied(err error) bool {
	return errors.Is(err, ErrCampaignAccessDenied)
}

func IsCampaignGroupNotFound(err error) bool {
	return errors.Is(err, ErrCampaignGroupNotFound)
}

func IsNoConfiguredGroups(err error) bool {
	return errors.Is(err, ErrNoConfiguredGroups)
}

func IsNoEligibleGroups(err error) bool {
	return errors.Is(err, ErrNoEligibleGroups)
}

func IsInviteLinkInvalid(err error) bool {
	return errors.Is(err, ErrInviteLinkInvalid)
}

func IsDomainNotFound(err error) bool {
	return errors.Is(err, ErrDomainNotFound)
}

func IsDomainAlreadyExists(err error) bool {
	return errors.Is(err, ErrDomainAlreadyExists)
}

func IsDomainNotReachable(err error) bool {
	return errors.Is(err, ErrDomainNotReachable)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}
