package dietprefs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ikkim/dietprefs-client/internal/app/model"
	"github.com/ikkim/dietprefs-client/pkg/logger"
	"golang.org/x/time/rate"
)

// RequestIDHeader correlates client log lines with backend access logs.
const RequestIDHeader = "X-Request-ID"

// Client represents a dietprefs API client
type Client struct {
	config     Config
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *logger.Logger
}

// NewClient creates a new dietprefs client with the given configuration
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	var limiter *rate.Limiter
	if config.RateLimit > 0 {
		burst := config.Burst
		if burst == 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit), burst)
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		log:        logger.Component("dietprefs-client"),
	}, nil
}

// GetConfig returns the client configuration
func (c *Client) GetConfig() Config {
	return c.config
}

// FetchAppConfig retrieves the centrally managed business configuration
func (c *Client) FetchAppConfig(ctx context.Context) (*model.AppConfig, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/config", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch config: %w", err)
	}

	var cfg model.AppConfig
	if err := decode(body, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FetchPreferences retrieves backend display metadata for preference tags
func (c *Client) FetchPreferences(ctx context.Context) (*model.PreferencesConfig, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/preferences", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch preferences: %w", err)
	}

	var prefs model.PreferencesConfig
	if err := decode(body, &prefs); err != nil {
		return nil, err
	}
	return &prefs, nil
}

// SearchVendors runs a vendor search for one page
func (c *Client) SearchVendors(ctx context.Context, req SearchRequest) (*model.VendorSearchResponse, error) {
	if req.User1Preferences == nil {
		req.User1Preferences = []string{}
	}
	if req.User2Preferences == nil {
		req.User2Preferences = []string{}
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/vendors/search", nil, req)
	if err != nil {
		return nil, fmt.Errorf("failed to search vendors: %w", err)
	}

	var resp model.VendorSearchResponse
	if err := decode(body, &resp); err != nil {
		return nil, err
	}
	if resp.Vendors == nil {
		resp.Vendors = []model.Vendor{}
	}
	return &resp, nil
}

// GetVendorItems lists a vendor's menu items annotated with per-user matches
func (c *Client) GetVendorItems(ctx context.Context, vendorID int, query ItemsQuery) ([]model.MenuItem, error) {
	path := fmt.Sprintf("/vendors/%d/items", vendorID)
	body, err := c.doRequest(ctx, http.MethodGet, path, query.Values(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get items for vendor %d: %w", vendorID, err)
	}

	var items []model.MenuItem
	if err := decode(body, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.MenuItem{}
	}
	return items, nil
}

// VoteOnItem records an up or down vote. Not idempotent server-side.
func (c *Client) VoteOnItem(ctx context.Context, itemID int, vote model.VoteType) (*VoteResponse, error) {
	path := fmt.Sprintf("/items/%d/vote", itemID)
	body, err := c.doRequest(ctx, http.MethodPost, path, nil, model.VoteRequest{Vote: vote})
	if err != nil {
		return nil, fmt.Errorf("failed to vote on item %d: %w", itemID, err)
	}

	var ack VoteResponse
	if len(bytes.TrimSpace(body)) == 0 {
		return &ack, nil
	}
	if err := decode(body, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

func decode(body []byte, v interface{}) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// doRequest performs an HTTP request against the dietprefs API
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, payload interface{}) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
		}
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	endpoint := c.config.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.New().String()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("API request failed", map[string]interface{}{
			"request_id": requestID,
			"method":     method,
			"path":       path,
			"error":      err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", ErrNetworkError, err)
	}

	c.log.Debug("API request completed", map[string]interface{}{
		"request_id":  requestID,
		"method":      method,
		"path":        path,
		"status_code": resp.StatusCode,
		"latency_ms":  time.Since(start).Milliseconds(),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(body, &eb)
		detail := eb.message()
		if detail == "" && len(body) > 0 && len(body) < 512 {
			detail = string(body)
		}

		apiErr := &APIError{StatusCode: resp.StatusCode, Detail: detail}
		switch {
		case resp.StatusCode == http.StatusNotFound:
			apiErr.kind = ErrNotFound
		case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
			apiErr.kind = ErrInvalidRequest
		case resp.StatusCode >= 500:
			apiErr.kind = ErrServerError
		default:
			apiErr.kind = ErrUnexpectedStatus
		}
		return nil, apiErr
	}

	return body, nil
}
