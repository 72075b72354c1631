package utils

import (
	"time"
)

// Request context keys shared between handlers and flows
type ContextKey string

const (
	RequestIDKey  ContextKey = "request_id"
	UserAgentKey  ContextKey = "user_agent"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
)

// Smart link and rotation constants
const (
	// WhatsAppInviteHost is the host substring every usable group invite link must contain
	WhatsAppInviteHost = "chat.whatsapp.com"

	// ClickMetadataMaxLen bounds the stored user-agent and referrer strings
	ClickMetadataMaxLen = 500

	// DefaultProbeTimeout bounds a single live member-count probe
	DefaultProbeTimeout = 5 * time.Second

	// DefaultMemberCacheTTL is how long a probed member count stays fresh in Redis
	DefaultMemberCacheTTL = 60 * time.Second
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)
