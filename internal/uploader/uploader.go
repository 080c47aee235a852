// Package uploader implements tokenuze's upload path (spec.md §4.7): one
// POST per run carrying a per-provider aggregation, authenticated with an
// API key header the way
// _examples/janekbaraniewski-openusage/internal/providers/claude_code/usage_api.go
// authenticates its own usage-status fetch, with an http.Client timeout in
// the same idiom.
package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/bfactory-ai/tokenuze/internal/render"
)

// ErrMissingAPIKey is returned when DASHBOARD_API_KEY is unset — spec.md
// §4.7's only non-zero exit condition for the uploader.
var ErrMissingAPIKey = errors.New("DASHBOARD_API_KEY is not set; configure it before using --upload")

// defaultTimeout is the per-request upload timeout spec.md §5 leaves
// implementation-chosen, defaulting to 30s.
const defaultTimeout = 30 * time.Second

// ProviderUpload is one provider's contribution to the upload payload.
type ProviderUpload struct {
	Name                string          `json:"name"`
	DailySummaryJSON    json.RawMessage `json:"daily_summary_json"`
	SessionsSummaryJSON json.RawMessage `json:"sessions_summary_json"`
	WeeklySummaryJSON   json.RawMessage `json:"weekly_summary_json"`
}

// requestBody is the top-level JSON body spec.md §4.7 describes.
type requestBody struct {
	MachineID             string           `json:"machine_id"`
	TimezoneOffsetMinutes int              `json:"timezone_offset_minutes"`
	Providers             []ProviderUpload `json:"providers"`
}

// BuildProviderUpload packages one provider's already-built render.Document
// trio into the wire shape the dashboard expects.
func BuildProviderUpload(name string, daily, sessions, weekly render.Document) (ProviderUpload, error) {
	dailyJSON, err := render.JSON(daily, false)
	if err != nil {
		return ProviderUpload{}, err
	}
	sessionsJSON, err := render.JSON(sessions, false)
	if err != nil {
		return ProviderUpload{}, err
	}
	weeklyJSON, err := render.JSON(weekly, false)
	if err != nil {
		return ProviderUpload{}, err
	}
	return ProviderUpload{
		Name:                name,
		DailySummaryJSON:    dailyJSON,
		SessionsSummaryJSON: sessionsJSON,
		WeeklySummaryJSON:   weeklyJSON,
	}, nil
}

// Client uploads aggregated usage to the dashboard API.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient returns a Client configured with the default upload timeout.
// It returns ErrMissingAPIKey if apiKey is empty, matching spec.md §4.7's
// only non-success exit path.
func NewClient(baseURL, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}, nil
}

// Outcome summarizes the human-readable result of an upload attempt, per
// spec.md §4.7's status-code table.
type Outcome struct {
	StatusCode int
	Message    string
}

// Upload POSTs the report to {BaseURL}/api/usage/report with the
// X-API-Key header, retrying once with the client from libcResolverClient
// if the first attempt fails with a DNS CNAME anomaly.
func (c *Client) Upload(ctx context.Context, machineID string, tzOffsetMinutes int, providers []ProviderUpload) (Outcome, error) {
	body := requestBody{
		MachineID:             machineID,
		TimezoneOffsetMinutes: tzOffsetMinutes,
		Providers:             providers,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return Outcome{}, err
	}

	resp, err := c.post(ctx, payload, c.HTTPClient)
	if err != nil && isCNAMEAnomaly(err) {
		resp, err = c.post(ctx, payload, libcResolverClient())
	}
	if err != nil {
		return Outcome{}, err
	}
	defer resp.Body.Close()

	return Outcome{StatusCode: resp.StatusCode, Message: describeStatus(resp.StatusCode)}, nil
}

func (c *Client) post(ctx context.Context, payload []byte, client *http.Client) (*http.Response, error) {
	url := strings.TrimRight(c.BaseURL, "/") + "/api/usage/report"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.APIKey)
	return client.Do(req)
}

// isCNAMEAnomaly reports whether err looks like the Go-native DNS
// resolver's "invalid CNAME record" failure mode, which the libc resolver
// frequently does not reproduce.
func isCNAMEAnomaly(err error) bool {
	return err != nil && strings.Contains(err.Error(), "invalid CNAME record")
}

// libcResolverClient returns the http.Client for the one-shot retry. Its
// dialer uses a net.Resolver with PreferGo set to false, which leaves the
// choice between Go's internal resolver and the libc (cgo) one to the Go
// runtime's usual rules; it does not force the libc resolver.
func libcResolverClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:  defaultTimeout,
		Resolver: &net.Resolver{PreferGo: false},
	}
	return &http.Client{
		Timeout: defaultTimeout,
		Transport: &http.Transport{
			DialContext: dialer.DialContext,
		},
	}
}

func describeStatus(code int) string {
	switch {
	case code == http.StatusOK:
		return "success"
	case code == http.StatusUnauthorized:
		return "Authentication failed"
	case code == http.StatusUnprocessableEntity:
		return "Data validation error"
	case code >= 500:
		return "Server error"
	default:
		return fmt.Sprintf("Failed (HTTP %d)", code)
	}
}
