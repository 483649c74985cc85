package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"08123456789":   "628123456789",
		"+628123456789": "628123456789",
		" 628123 ":      "628123",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizePhone(in), in)
	}
}

func TestSendMessagePostsToGateway(t *testing.T) {
	var got outgoingMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/device-1/send/message", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "shop", user)
		assert.Equal(t, "secret", pass)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"success":true,"message":"ok","data":{"message_id":"m-1","status":"sent"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", "shop", "secret", "/device-1/")
	resp, err := client.SendMessage(context.Background(), "0812", "hello")
	require.NoError(t, err)

	assert.Equal(t, "m-1", resp.Data.MessageID)
	assert.Equal(t, "6212@s.whatsapp.net", got.Phone)
	assert.Equal(t, "hello", got.Message)
}

func TestSendMessageReportsGatewayFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "device offline", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "shop", "secret", "device-1")
	err := client.SendTextMessage(context.Background(), "0812", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestSendMessageReportsRejectedMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"number not registered"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "shop", "secret", "device-1")
	err := client.SendTextMessage(context.Background(), "0812", "hello")
	assert.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "number not registered")
}
