package uploader

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewClient_RejectsEmptyAPIKey(t *testing.T) {
	if _, err := NewClient("http://localhost", ""); err != ErrMissingAPIKey {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestUpload_SuccessStatus(t *testing.T) {
	var receivedKey string
	var body requestBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedKey = r.Header.Get("X-API-Key")
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, "secret-key")
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}

	outcome, err := client.Upload(context.Background(), "abcdef0123456789", -120, []ProviderUpload{
		{Name: "codex", DailySummaryJSON: json.RawMessage(`{"daily":[]}`)},
	})
	if err != nil {
		t.Fatalf("Upload error: %v", err)
	}
	if outcome.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", outcome.StatusCode)
	}
	if outcome.Message != "success" {
		t.Errorf("message = %q, want success", outcome.Message)
	}
	if receivedKey != "secret-key" {
		t.Errorf("X-API-Key header = %q, want secret-key", receivedKey)
	}
	if body.MachineID != "abcdef0123456789" {
		t.Errorf("machine_id = %q, want abcdef0123456789", body.MachineID)
	}
	if body.TimezoneOffsetMinutes != -120 {
		t.Errorf("timezone_offset_minutes = %d, want -120", body.TimezoneOffsetMinutes)
	}
	if len(body.Providers) != 1 || body.Providers[0].Name != "codex" {
		t.Errorf("providers = %+v", body.Providers)
	}
}

func TestUpload_StatusCodeMessages(t *testing.T) {
	cases := []struct {
		status  int
		message string
	}{
		{http.StatusUnauthorized, "Authentication failed"},
		{http.StatusUnprocessableEntity, "Data validation error"},
		{http.StatusInternalServerError, "Server error"},
		{http.StatusTeapot, "Failed (HTTP 418)"},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))
		client, err := NewClient(srv.URL, "key")
		if err != nil {
			t.Fatalf("NewClient error: %v", err)
		}
		outcome, err := client.Upload(context.Background(), "id", 0, nil)
		srv.Close()
		if err != nil {
			t.Fatalf("Upload error for status %d: %v", tc.status, err)
		}
		if outcome.Message != tc.message {
			t.Errorf("status %d: message = %q, want %q", tc.status, outcome.Message, tc.message)
		}
	}
}
