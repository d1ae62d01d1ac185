package entitlement

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client checks premium entitlements against the RevenueCat subscribers API.
type Client struct {
	BaseURL       string
	APIKey        string
	EntitlementID string
	client        *http.Client
}

func NewClient(baseURL, apiKey, entitlementID string) *Client {
	if baseURL == "" {
		baseURL = "https://api.revenuecat.com/v1"
	}
	return &Client{
		BaseURL:       baseURL,
		APIKey:        apiKey,
		EntitlementID: entitlementID,
		client:        &http.Client{Timeout: 15 * time.Second},
	}
}

// Enabled reports whether the client is configured with an API key.
func (c *Client) Enabled() bool {
	return c.APIKey != ""
}

type subscriberResp struct {
	Subscriber struct {
		Entitlements map[string]struct {
			ExpiresDate *time.Time `json:"expires_date"`
		} `json:"entitlements"`
	} `json:"subscriber"`
}

// IsEntitled fetches the subscriber record for the given app user ID and
// reports whether the configured entitlement is currently active. A missing
// API key means entitlements are not enforced and everyone is entitled.
func (c *Client) IsEntitled(ctx context.Context, appUserID string) (bool, error) {
	if !c.Enabled() {
		return true, nil
	}
	endpoint := c.BaseURL + "/subscribers/" + url.PathEscape(appUserID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	resp, err := c.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusNotFound {
		// Unknown subscriber, never made a purchase.
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("revenuecat subscriber: %d %s", resp.StatusCode, string(respBody))
	}
	var out subscriberResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return false, err
	}
	ent, ok := out.Subscriber.Entitlements[c.EntitlementID]
	if !ok {
		return false, nil
	}
	if ent.ExpiresDate != nil && ent.ExpiresDate.Before(time.Now()) {
		return false, nil
	}
	return true, nil
}
