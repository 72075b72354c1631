package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zaplinks/config"
)

func testZAPIConfig(baseURL string) *config.ZAPIConfig {
	return &config.ZAPIConfig{
		BaseURL:       baseURL,
		InstanceID:    "inst-1",
		InstanceToken: "tok-1",
		ClientToken:   "client-secret",
		Timeout:       5 * time.Second,
	}
}

func TestZAPIClient_GroupInvitationMetadata(t *testing.T) {
	t.Run("ReturnsParticipantCount", func(t *testing.T) {
		var gotPath, gotToken, gotURL string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotToken = r.Header.Get("Client-Token")
			gotURL = r.URL.Query().Get("url")
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"groupInviteLink":"https://chat.whatsapp.com/AbC","participantsCount":342}`))
		}))
		defer server.Close()

		client := NewZAPIClient(testZAPIConfig(server.URL))
		count, err := client.GroupInvitationMetadata(context.Background(), "https://chat.whatsapp.com/AbC")
		require.NoError(t, err)
		assert.Equal(t, 342, count)
		assert.Equal(t, "/instances/inst-1/token/tok-1/group-invitation-metadata", gotPath)
		assert.Equal(t, "client-secret", gotToken)
		assert.Equal(t, "https://chat.whatsapp.com/AbC", gotURL)
	})

	t.Run("NonSuccessStatusYieldsZeroWithoutError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"invalid invitation link"}`))
		}))
		defer server.Close()

		client := NewZAPIClient(testZAPIConfig(server.URL))
		count, err := client.GroupInvitationMetadata(context.Background(), "https://chat.whatsapp.com/expired")
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("TransportFailureReturnsError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close() // Closed immediately so the request fails

		client := NewZAPIClient(testZAPIConfig(server.URL))
		_, err := client.GroupInvitationMetadata(context.Background(), "https://chat.whatsapp.com/AbC")
		assert.Error(t, err)
	})

	t.Run("ContextTimeoutIsHonored", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(300 * time.Millisecond)
		}))
		defer server.Close()

		client := NewZAPIClient(testZAPIConfig(server.URL))
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := client.GroupInvitationMetadata(ctx, "https://chat.whatsapp.com/AbC")
		assert.Error(t, err)
	})
}

func TestZAPIClient_SendText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/instances/inst-1/token/tok-1/send-text", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"zaapId":"z-1","messageId":"m-1"}`))
	}))
	defer server.Close()

	client := NewZAPIClient(testZAPIConfig(server.URL))
	result, err := client.SendText(context.Background(), "5511999990000", "hello")
	require.NoError(t, err)
	assert.Equal(t, "z-1", result.ZaapID)
	assert.Equal(t, "m-1", result.MessageID)
}

func TestZAPIClient_InstanceStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/instances/inst-1/token/tok-1/status", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"connected":true,"smartphoneConnected":false}`))
	}))
	defer server.Close()

	client := NewZAPIClient(testZAPIConfig(server.URL))
	status, err := client.InstanceStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.False(t, status.SmartphoneConnected)
}
