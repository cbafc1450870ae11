package contrib

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/utopian-io/utbot/app/retry"
)

// Client fetches reviewed contribution batches from the review service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	policy     retry.Policy
}

func NewClient(baseURL, userAgent string, httpClient *http.Client, retryCount int, backoff time.Duration) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		userAgent:  userAgent,
		policy: retry.Policy{
			MaxAttempts: retryCount,
			Backoff:     retry.Fixed(backoff),
		},
	}
}

// FetchReviewed returns the service's current window of reviewed
// contributions, most recently reviewed first. Transient failures are
// retried before the batch is given up on; the next polling cycle picks
// up whatever was missed.
func (c *Client) FetchReviewed(ctx context.Context) ([]Contribution, error) {
	var batch []Contribution

	err := c.policy.Do(ctx, func() error {
		fetched, err := c.fetchOnce(ctx)
		if err != nil {
			return err
		}
		batch = fetched
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reviewed contributions: %w", err)
	}

	return batch, nil
}

func (c *Client) fetchOnce(ctx context.Context) ([]Contribution, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/posts/reviewed", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("review service returned status %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Results []Contribution `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode review service response: %w", err)
	}

	return payload.Results, nil
}
