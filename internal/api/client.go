// Package api implements the MindWell REST transport consumed by the
// notification policy engine. It is the only package that knows the wire
// shapes; everything above it works with the engine's own model types.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/patrickmn/go-cache"

	"github.com/mindwell/mindwell-go/internal/errors"
	"github.com/mindwell/mindwell-go/internal/logging"
	"github.com/mindwell/mindwell-go/internal/notification"
)

// Config holds the transport configuration.
type Config struct {
	// BaseURL is the API root, e.g. https://api.mindwell.app
	BaseURL string
	// Token is the bearer token attached to every request
	Token string
	// Timeout applies per request
	Timeout time.Duration
	// CacheTTL controls how long unread-count responses are served from
	// cache; zero disables caching
	CacheTTL time.Duration
	Debug    bool
}

// DefaultConfig returns sensible client defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:  30 * time.Second,
		CacheTTL: 30 * time.Second,
	}
}

const unreadCountCacheKey = "unread-count"

// Client talks to the MindWell backend. It implements
// notification.Transport and notification.PreferenceTransport.
// Thread-safe.
type Client struct {
	config Config
	http   *resty.Client
	cache  *cache.Cache
	logger *slog.Logger

	// Metrics
	apiCalls    atomic.Int64
	apiErrors   atomic.Int64
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
}

// NewClient creates a MindWell API client.
func NewClient(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, errors.Newf("API base URL is required").
			Component("api").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultConfig().Timeout
	}

	httpClient := resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(config.Timeout).
		SetHeader("Accept", "application/json")
	if config.Token != "" {
		httpClient.SetAuthToken(config.Token)
	}

	client := &Client{
		config: config,
		http:   httpClient,
		cache:  cache.New(config.CacheTTL, config.CacheTTL*2),
		logger: logging.ForService("api"),
	}

	client.logger.Info("MindWell API client initialized",
		"base_url", config.BaseURL,
		"timeout", config.Timeout,
		"cache_ttl", config.CacheTTL,
		"token_configured", config.Token != "")

	return client, nil
}

// HTTPClient exposes the underlying resty client for tests.
func (c *Client) HTTPClient() *resty.Client {
	return c.http
}

// Stats returns cumulative request counters.
func (c *Client) Stats() (calls, errs, cacheHits, cacheMisses int64) {
	return c.apiCalls.Load(), c.apiErrors.Load(), c.cacheHits.Load(), c.cacheMisses.Load()
}

// wrapError maps a transport or HTTP failure onto the engine's error
// taxonomy.
func (c *Client) wrapError(err error, resp *resty.Response, operation string) error {
	c.apiErrors.Add(1)

	if err != nil {
		return errors.New(err).
			Component("api").
			Category(errors.CategoryNetwork).
			Context("operation", operation).
			Build()
	}

	category := errors.CategoryHTTP
	switch resp.StatusCode() {
	case 401, 403:
		category = errors.CategoryAuth
	case 404:
		category = errors.CategoryNotFound
	}
	return errors.Newf("backend returned %s", resp.Status()).
		Component("api").
		Category(category).
		Context("operation", operation).
		Context("status_code", resp.StatusCode()).
		Build()
}

// FetchNotifications retrieves one page of a user's notifications.
func (c *Client) FetchNotifications(ctx context.Context, userID string, query notification.FetchQuery) ([]*notification.Notification, error) {
	c.apiCalls.Add(1)

	params := map[string]string{
		"page": fmt.Sprintf("%d", query.Page),
		"size": fmt.Sprintf("%d", query.Size),
	}
	if query.Status != "" {
		params["status"] = string(query.Status)
	}
	if query.Type != "" {
		params["type"] = string(query.Type)
	}

	var dtos []*notificationDTO
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&dtos).
		Get(fmt.Sprintf("/api/v1/users/%s/notifications", userID))
	if err != nil || resp.IsError() {
		return nil, c.wrapError(err, resp, "fetch_notifications")
	}

	result := make([]*notification.Notification, 0, len(dtos))
	for _, dto := range dtos {
		result = append(result, c.toNotification(dto))
	}

	c.logger.Debug("fetched notifications",
		"user_id", userID, "count", len(result), "page", query.Page)
	return result, nil
}

// FetchUnreadCount retrieves the server-side unread count. Responses are
// cached for the configured TTL since the badge is polled frequently and
// the locally derived count is authoritative anyway.
func (c *Client) FetchUnreadCount(ctx context.Context, userID string) (int, error) {
	key := unreadCountCacheKey + ":" + userID
	if cached, found := c.cache.Get(key); found {
		c.cacheHits.Add(1)
		return cached.(int), nil
	}
	c.cacheMisses.Add(1)
	c.apiCalls.Add(1)

	var dto unreadCountDTO
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&dto).
		Get(fmt.Sprintf("/api/v1/users/%s/notifications/unread-count", userID))
	if err != nil || resp.IsError() {
		return 0, c.wrapError(err, resp, "fetch_unread_count")
	}

	if c.config.CacheTTL > 0 {
		c.cache.Set(key, dto.Count, cache.DefaultExpiration)
	}
	return dto.Count, nil
}

// MarkRead tells the backend a notification was read.
func (c *Client) MarkRead(ctx context.Context, id string) error {
	c.apiCalls.Add(1)

	resp, err := c.http.R().
		SetContext(ctx).
		Post(fmt.Sprintf("/api/v1/notifications/%s/read", id))
	if err != nil || resp.IsError() {
		return c.wrapError(err, resp, "mark_read")
	}
	c.invalidateUnreadCount()
	return nil
}

// MarkAllRead tells the backend every notification of the user was read.
func (c *Client) MarkAllRead(ctx context.Context, userID string) error {
	c.apiCalls.Add(1)

	resp, err := c.http.R().
		SetContext(ctx).
		Post(fmt.Sprintf("/api/v1/users/%s/notifications/read-all", userID))
	if err != nil || resp.IsError() {
		return c.wrapError(err, resp, "mark_all_read")
	}
	c.invalidateUnreadCount()
	return nil
}

// Delete removes a notification on the backend.
func (c *Client) Delete(ctx context.Context, id string) error {
	c.apiCalls.Add(1)

	resp, err := c.http.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("/api/v1/notifications/%s", id))
	if err != nil || resp.IsError() {
		return c.wrapError(err, resp, "delete")
	}
	c.invalidateUnreadCount()
	return nil
}

// invalidateUnreadCount drops cached unread counts after any mutation.
func (c *Client) invalidateUnreadCount() {
	c.cache.Flush()
}
