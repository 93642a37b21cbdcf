package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"CreatorProfiler/internal/domain"
	"CreatorProfiler/internal/ports"
)

// DefaultEndpoint is the YouTube Data API channels resource.
const DefaultEndpoint = "https://www.googleapis.com/youtube/v3/channels"

// ErrChannelNotFound is returned when the API knows no such channel.
var ErrChannelNotFound = errors.New("youtube channel not found")

// Client reads channel statistics from the YouTube Data API.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ ports.ReachProvider = (*Client)(nil)

// NewClient creates a reusable HTTP client; an empty endpoint uses the public API.
func NewClient(endpoint, apiKey string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

// The API encodes counters as decimal strings.
type channelsResponse struct {
	Items []struct {
		Statistics struct {
			SubscriberCount string `json:"subscriberCount"`
			ViewCount       string `json:"viewCount"`
			VideoCount      string `json:"videoCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// ChannelStats fetches subscriber, view and video counts of a channel.
func (c *Client) ChannelStats(ctx context.Context, channelID string) (domain.ReachStats, error) {
	if c.apiKey == "" {
		return domain.ReachStats{}, fmt.Errorf("youtube client misconfigured")
	}
	if channelID == "" {
		return domain.ReachStats{}, fmt.Errorf("empty channel id")
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return domain.ReachStats{}, fmt.Errorf("invalid endpoint %s: %w", c.endpoint, err)
	}
	q := u.Query()
	q.Set("part", "statistics")
	q.Set("id", channelID)
	q.Set("key", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return domain.ReachStats{}, fmt.Errorf("new request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.ReachStats{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.ReachStats{}, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var payload channelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.ReachStats{}, fmt.Errorf("decode response: %w", err)
	}
	if len(payload.Items) == 0 {
		return domain.ReachStats{}, ErrChannelNotFound
	}

	stats := payload.Items[0].Statistics
	return domain.ReachStats{
		SubscriberCount: counter(stats.SubscriberCount),
		ViewCount:       counter(stats.ViewCount),
		VideoCount:      counter(stats.VideoCount),
	}, nil
}

// counter treats hidden or malformed values as zero.
func counter(raw string) int64 {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
