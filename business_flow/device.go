package businessflow

import (
	"net/url"
	"strings"

	"zaplinks/models"
	"zaplinks/utils"
)

// DetectDevice classifies a User-Agent string into a device type.
// Classification is substring-based; it only needs to be good enough to
// pick a deep link scheme, not to fingerprint clients.
func DetectDevice(userAgent string) models.DeviceType {
	if userAgent == "" {
		return models.DeviceTypeUnknown
	}
	ua := strings.ToLower(userAgent)

	switch {
	case strings.Contains(ua, "iphone"), strings.Contains(ua, "ipad"), strings.Contains(ua, "ipod"):
		return models.DeviceTypeIOS
	case strings.Contains(ua, "android"):
		return models.DeviceTypeAndroid
	case strings.Contains(ua, "windows nt"), strings.Contains(ua, "macintosh"), strings.Contains(ua, "x11"):
		return models.DeviceTypeDesktop
	default:
		return models.DeviceTypeUnknown
	}
}

// ExtractInviteCode pulls the invite code out of a chat.whatsapp.com URL.
// Returns empty string when the link is not a group invite.
func ExtractInviteCode(inviteLink string) string {
	u, err := url.Parse(inviteLink)
	if err != nil {
		return ""
	}
	if !strings.EqualFold(u.Hostname(), utils.WhatsAppInviteHost) {
		return ""
	}
	return strings.Trim(u.Path, "/")
}

// IsWhatsAppInviteLink reports whether the link points at a WhatsApp
// group invite. Only such links participate in rotation.
func IsWhatsAppInviteLink(inviteLink string) bool {
	return ExtractInviteCode(inviteLink) != ""
}

// BuildRedirectURL produces the platform-specific redirect target for an
// invite link. iOS gets the whatsapp:// scheme, Android an intent URL with
// a browser fallback, and everything else the plain web invite.
func BuildRedirectURL(inviteLink string, deviceType models.DeviceType) string {
	code := ExtractInviteCode(inviteLink)
	if code == "" {
		return inviteLink
	}

	switch deviceType {
	case models.DeviceTypeIOS:
		return "whatsapp://chat?code=" + code
	case models.DeviceTypeAndroid:
		return "intent://chat?code=" + code +
			"#Intent;scheme=whatsapp;package=com.whatsapp;S.browser_fallback_url=" +
			url.QueryEscape(inviteLink) + ";end"
	default:
		return inviteLink
	}
}
