package dto

// ResolveRequest represents the query parameters of a smart link resolution
type ResolveRequest struct {
	Slug string `json:"slug" query:"slug" validate:"required,max=64"`
}

// ResolveResponse is the wire contract consumed by the public redirect page.
// Field names are fixed; the landing script reads them verbatim.
type ResolveResponse struct {
	Success     bool   `json:"success"`
	InviteLink  string `json:"inviteLink"`
	RedirectURL string `json:"redirectUrl"`
	DeviceType  string `json:"deviceType"`
	GroupName   string `json:"groupName"`
	Delay       int    `json:"delay"`
}

// ResolveErrorResponse is the flat error shape of the public resolver.
// It deliberately bypasses the APIResponse envelope used by the
// management API.
type ResolveErrorResponse struct {
	Error string `json:"error"`
}
