// Package services provides external service integrations and technical concerns for the application
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"zaplinks/config"
	"zaplinks/utils"
)

// ZAPIClient talks to the Z-API WhatsApp gateway. It doubles as the
// membership provider for the smart-link resolver (group invitation
// metadata) and as the outbound messaging proxy for the dashboard.
type ZAPIClient interface {
	// GroupInvitationMetadata returns the live participant count for a group
	// invite link. A non-2xx response yields (0, nil): the gateway answers
	// with structured errors the resolver must treat as a probe miss, not a
	// transport failure.
	GroupInvitationMetadata(ctx context.Context, inviteLink string) (int, error)
	InstanceStatus(ctx context.Context) (*InstanceStatus, error)
	QRCode(ctx context.Context) (string, error)
	SendText(ctx context.Context, phone, message string) (*SendTextResult, error)
}

// InstanceStatus mirrors the gateway's instance status payload
type InstanceStatus struct {
	Connected           bool   `json:"connected"`
	SmartphoneConnected bool   `json:"smartphoneConnected"`
	Error               string `json:"error,omitempty"`
}

// SendTextResult mirrors the gateway's send-text acknowledgement
type SendTextResult struct {
	ZaapID    string `json:"zaapId"`
	MessageID string `json:"messageId"`
}

// ZAPIClientImpl implements ZAPIClient over HTTP
type ZAPIClientImpl struct {
	config *config.ZAPIConfig
	client *http.Client
}

// NewZAPIClient creates a new Z-API client instance
func NewZAPIClient(cfg *config.ZAPIConfig) ZAPIClient {
	return &ZAPIClientImpl{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (z *ZAPIClientImpl) instanceURL(path string) string {
	return fmt.Sprintf("%s/instances/%s/token/%s/%s",
		z.config.BaseURL, z.config.InstanceID, z.config.InstanceToken, path)
}

func (z *ZAPIClientImpl) do(ctx context.Context, method, endpoint string, body []byte) (*http.Response, error) {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if z.config.ClientToken != "" {
		req.Header.Set("Client-Token", z.config.ClientToken)
	}
	return z.client.Do(req)
}

func (z *ZAPIClientImpl) GroupInvitationMetadata(ctx context.Context, inviteLink string) (int, error) {
	endpoint := z.instanceURL("group-invitation-metadata") + "?url=" + url.QueryEscape(inviteLink)

	resp, err := z.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("group invitation metadata request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// The gateway reports unknown or expired invites with an error
		// status; zero tells the caller to fall back to its cached count.
		return 0, nil
	}

	var body struct {
		ParticipantsCount int `json:"participantsCount"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("failed to decode group invitation metadata: %w", err)
	}
	return body.ParticipantsCount, nil
}

func (z *ZAPIClientImpl) InstanceStatus(ctx context.Context) (*InstanceStatus, error) {
	resp, err := z.do(ctx, http.MethodGet, z.instanceURL("status"), nil)
	if err != nil {
		return nil, fmt.Errorf("instance status request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("instance status request returned %d", resp.StatusCode)
	}

	var status InstanceStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode instance status: %w", err)
	}
	return &status, nil
}

func (z *ZAPIClientImpl) QRCode(ctx context.Context) (string, error) {
	resp, err := z.do(ctx, http.MethodGet, z.instanceURL("qr-code/image"), nil)
	if err != nil {
		return "", fmt.Errorf("qr code request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("qr code request returned %d", resp.StatusCode)
	}

	var body struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode qr code response: %w", err)
	}
	return body.Value, nil
}

func (z *ZAPIClientImpl) SendText(ctx context.Context, phone, message string) (*SendTextResult, error) {
	payload, err := json.Marshal(map[string]string{
		"phone":   phone,
		"message": message,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal send-text request: %w", err)
	}

	resp, err := z.do(ctx, http.MethodPost, z.instanceURL("send-text"), payload)
	if err != nil {
		return nil, fmt.Errorf("send-text request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("send-text request returned %d", resp.StatusCode)
	}

	var result SendTextResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode send-text response: %w", err)
	}
	return &result, nil
}

// MockZAPIClient implements ZAPIClient for testing
type MockZAPIClient struct {
	// MemberCounts maps invite link to the count the mock reports
	MemberCounts map[string]int
	// ProbeErr, when set, fails every GroupInvitationMetadata call
	ProbeErr error
	// ProbeCalls records every invite link probed, in order
	ProbeCalls []string

	Status    InstanceStatus
	QRValue   string
	SentTexts []MockSentText
}

// MockSentText records one SendText invocation
type MockSentText struct {
	Phone   string
	Message string
	SentAt  time.Time
}

// NewMockZAPIClient creates a new mock Z-API client
func NewMockZAPIClient() *MockZAPIClient {
	return &MockZAPIClient{
		MemberCounts: make(map[string]int),
		Status:       InstanceStatus{Connected: true, SmartphoneConnected: true},
	}
}

func (m *MockZAPIClient) GroupInvitationMetadata(ctx context.Context, inviteLink string) (int, error) {
	m.ProbeCalls = append(m.ProbeCalls, inviteLink)
	if m.ProbeErr != nil {
		return 0, m.ProbeErr
	}
	return m.MemberCounts[inviteLink], nil
}

func (m *MockZAPIClient) InstanceStatus(ctx context.Context) (*InstanceStatus, error) {
	status := m.Status
	return &status, nil
}

func (m *MockZAPIClient) QRCode(ctx context.Context) (string, error) {
	return m.QRValue, nil
}

func (m *MockZAPIClient) SendText(ctx context.Context, phone, message string) (*SendTextResult, error) {
	m.SentTexts = append(m.SentTexts, MockSentText{Phone: phone, Message: message, SentAt: utils.UTCNow()})
	return &SendTextResult{ZaapID: "mock-zaap", MessageID: fmt.Sprintf("mock-%d", len(m.SentTexts))}, nil
}
