package businessflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"zaplinks/models"
)

func TestDetectDevice(t *testing.T) {
	cases := []struct {
		name      string
		userAgent string
		expected  models.DeviceType
	}{
		{"iPhone", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)", models.DeviceTypeIOS},
		{"iPad", "Mozilla/5.0 (iPad; CPU OS 16_6 like Mac OS X)", models.DeviceTypeIOS},
		{"iPod", "Mozilla/5.0 (iPod touch; CPU iPhone OS 15_0 like Mac OS X)", models.DeviceTypeIOS},
		{"AndroidPhone", "Mozilla/5.0 (Linux; Android 14; Pixel 8)", models.DeviceTypeAndroid},
		{"AndroidTablet", "Mozilla/5.0 (Linux; Android 13; SM-X710)", models.DeviceTypeAndroid},
		{"WindowsDesktop", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)", models.DeviceTypeDesktop},
		{"MacDesktop", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)", models.DeviceTypeDesktop},
		{"LinuxDesktop", "Mozilla/5.0 (X11; Linux x86_64)", models.DeviceTypeDesktop},
		{"EmptyUA", "", models.DeviceTypeUnknown},
		{"Bot", "curl/8.4.0", models.DeviceTypeUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, DetectDevice(tc.userAgent))
		})
	}
}

func TestExtractInviteCode(t *testing.T) {
	assert.Equal(t, "AbCdEf123456", ExtractInviteCode("https://chat.whatsapp.com/AbCdEf123456"))
	assert.Equal(t, "AbCdEf123456", ExtractInviteCode("https://chat.whatsapp.com/AbCdEf123456/"))
	assert.Empty(t, ExtractInviteCode("https://t.me/somegroup"))
	assert.Empty(t, ExtractInviteCode("not a url at all\x7f"))
	assert.Empty(t, ExtractInviteCode("https://wa.me/5511999990000"))
}

func TestBuildRedirectURL(t *testing.T) {
	invite := "https://chat.whatsapp.com/AbCdEf123456"

	assert.Equal(t, "whatsapp://chat?code=AbCdEf123456", BuildRedirectURL(invite, models.DeviceTypeIOS))

	android := BuildRedirectURL(invite, models.DeviceTypeAndroid)
	assert.Contains(t, android, "intent://chat?code=AbCdEf123456")
	assert.Contains(t, android, "scheme=whatsapp")
	assert.Contains(t, android, "S.browser_fallback_url=https%3A%2F%2Fchat.whatsapp.com%2FAbCdEf123456")

	assert.Equal(t, invite, BuildRedirectURL(invite, models.DeviceTypeDesktop))
	assert.Equal(t, invite, BuildRedirectURL(invite, models.DeviceTypeUnknown))

	// Non-invite links pass through untouched for any device
	assert.Equal(t, "https://example.com/x", BuildRedirectURL("https://example.com/x", models.DeviceTypeIOS))
}
