package virlo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/contentcompass/compass/pkg/models"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://api.virlo.ai"

const (
	defaultTimeout = 30 * time.Second
	maxRetries     = 3
	initialDelay   = 1 * time.Second
)

// Query defaults matching the dashboard's standard requests.
const (
	hashtagWindow       = 7 * 24 * time.Hour
	defaultHashtagLimit = "50"
	defaultHashtagOrder = "views"
	defaultVideoLimit   = "10"
)

// APIError is a definitive upstream response with a non-success status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("virlo api status %d: %s", e.StatusCode, e.Body)
}

// Client calls the Virlo API. The credential is supplied per call and held
// only for the duration of the request; the client itself stores none.
type Client struct {
	baseURL    string
	httpc      *http.Client
	log        *zap.Logger
	retryDelay time.Duration
}

// New returns a client. An empty baseURL selects DefaultBaseURL, a
// non-positive timeout the 30 second default; nil disables logging.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpc:      &http.Client{Timeout: timeout},
		log:        logger,
		retryDelay: initialDelay,
	}
}

// Fetch retrieves the payload for kind. params may override the limit,
// niche and order_by defaults.
func (c *Client) Fetch(ctx context.Context, kind models.ResourceKind, params models.Params, credential string) (models.Payload, error) {
	switch kind {
	case models.KindTrends:
		return c.get(ctx, "/trends/digest", nil, credential)
	case models.KindHashtags:
		end := time.Now().UTC()
		start := end.Add(-hashtagWindow)
		query := url.Values{}
		query.Set("startDate", start.Format("2006-01-02"))
		query.Set("endDate", end.Format("2006-01-02"))
		query.Set("limit", params.Value("limit", defaultHashtagLimit))
		query.Set("orderBy", params.Value("order_by", defaultHashtagOrder))
		query.Set("sort", "desc")
		return c.get(ctx, "/hashtags", query, credential)
	case models.KindVideos:
		query := url.Values{}
		query.Set("limit", params.Value("limit", defaultVideoLimit))
		if niche := params.Value("niche", ""); niche != "" {
			query.Set("niche", niche)
		}
		return c.get(ctx, "/videos/digest", query, credential)
	case models.KindNiches:
		return c.get(ctx, "/niches", nil, credential)
	default:
		return models.Payload{}, fmt.Errorf("virlo: unsupported resource kind %q", kind)
	}
}

// get performs one GET with exponential backoff on rate limits, server
// errors and transport failures. Other non-success statuses fail at once.
func (c *Client) get(ctx context.Context, path string, query url.Values, credential string) (models.Payload, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var lastErr error
	for attempt := range maxRetries {
		if attempt > 0 {
			delay := time.Duration(math.Pow(2, float64(attempt))) * c.retryDelay
			c.log.Debug("retrying request",
				zap.String("path", path),
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return models.Payload{}, ctx.Err()
			}
		}

		payload, retryable, err := c.doGet(ctx, u, credential)
		if err == nil {
			return payload, nil
		}
		if !retryable {
			return models.Payload{}, err
		}
		lastErr = err
	}
	return models.Payload{}, fmt.Errorf("virlo request failed after %d attempts: %w", maxRetries, lastErr)
}

func (c *Client) doGet(ctx context.Context, u, credential string) (models.Payload, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return models.Payload{}, false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+credential)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return models.Payload{}, true, fmt.Errorf("virlo request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Payload{}, true, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return models.Payload{}, true, &APIError{StatusCode: resp.StatusCode, Body: truncate(body)}
	}
	if resp.StatusCode != http.StatusOK {
		return models.Payload{}, false, &APIError{StatusCode: resp.StatusCode, Body: truncate(body)}
	}

	var payload models.Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		return models.Payload{}, false, fmt.Errorf("decode response: %w", err)
	}
	return payload, false, nil
}

func truncate(body []byte) string {
	const max = 200
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max]
	}
	return s
}
