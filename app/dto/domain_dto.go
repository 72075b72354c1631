package dto

// CreateDomainRequest represents a custom domain registration request
type CreateDomainRequest struct {
	Hostname string `json:"hostname" validate:"required,hostname_rfc1123"`
}

// CustomDomainDTO represents a custom domain in API responses
type CustomDomainDTO struct {
	ID            uint    `json:"id"`
	Hostname      string  `json:"hostname"`
	IsVerified    *bool   `json:"is_verified"`
	LastCheckedAt *string `json:"last_checked_at,omitempty"`
	CreatedAt     string  `json:"created_at"`
}
