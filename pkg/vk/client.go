package vk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/vkgraph/pkg/buildinfo"
	"github.com/matzehuels/vkgraph/pkg/httputil"
	"github.com/matzehuels/vkgraph/pkg/observability"
)

// Defaults used when the corresponding [Config] field is zero.
const (
	DefaultBaseURL  = "https://api.vk.com/method/"
	DefaultVersion  = "5.199"
	DefaultLang     = "0"
	DefaultTimeout  = 10 * time.Second
	DefaultPoolSize = 100
)

// Config configures a [Client].
type Config struct {
	BaseURL  string                   // API root, must end with "/" (default: DefaultBaseURL)
	Token    string                   // access_token sent with every call
	Version  string                   // API version "v" (default: 5.199)
	Lang     string                   // response language "lang" (default: 0)
	Timeout  time.Duration            // per-call timeout when Get is given 0
	PoolSize int                      // idle connections kept per host
	Retry    httputil.Policy          // retry policy for transient failures
	Hooks    observability.HTTPHooks  // optional metrics hooks
	HTTP     *http.Client             // optional; replaces the pooled client
}

// Client issues parameterized GET requests against the VK API.
// It is safe for concurrent use.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
	version string
	lang    string
	timeout time.Duration
	retry   httputil.Policy
	hooks   observability.HTTPHooks
}

// NewClient creates a Client. Zero fields of cfg take their defaults; a
// zero Retry policy performs a single attempt.
func NewClient(cfg Config) *Client {
	c := &Client{
		http:    cfg.HTTP,
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		version: cfg.Version,
		lang:    cfg.Lang,
		timeout: cfg.Timeout,
		retry:   cfg.Retry,
		hooks:   observability.HTTPOrNoop(cfg.Hooks),
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(c.baseURL, "/") {
		c.baseURL += "/"
	}
	if c.version == "" {
		c.version = DefaultVersion
	}
	if c.lang == "" {
		c.lang = DefaultLang
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.http == nil {
		c.http = NewHTTPClient(cfg.PoolSize)
	}
	return c
}

// NewHTTPClient returns an http.Client whose transport keeps up to pool
// idle connections per host. Timeouts are applied per call via context.
func NewHTTPClient(pool int) *http.Client {
	if pool <= 0 {
		pool = DefaultPoolSize
	}
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = pool
	t.MaxIdleConnsPerHost = pool
	t.MaxConnsPerHost = pool
	return &http.Client{Transport: t}
}

type envelope struct {
	Response json.RawMessage `json:"response"`
	Error    *APIError       `json:"error"`
}

// Get calls method with params and returns the raw "response" payload.
// The version, language and access token are added to params. A timeout
// of 0 uses the client default. Transient failures are retried under the
// client's policy; API errors are returned as [*APIError] immediately.
func (c *Client) Get(ctx context.Context, method string, params url.Values, timeout time.Duration) (json.RawMessage, error) {
	if timeout <= 0 {
		timeout = c.timeout
	}

	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("v", c.version)
	q.Set("lang", c.lang)
	q.Set("access_token", c.token)
	endpoint := c.baseURL + method + "?" + q.Encode()

	var out json.RawMessage
	err := httputil.Retry(ctx, c.retry, func() error {
		var err error
		out, err = c.do(ctx, method, endpoint, timeout)
		return err
	})
	return out, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, timeout time.Duration) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", method, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		err = transportError(method, err)
		c.hooks.OnError(ctx, method, err)
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(method, resp.StatusCode); err != nil {
		c.hooks.OnResponse(ctx, method, resp.StatusCode, false, time.Since(start))
		return nil, err
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if ctx.Err() != nil {
			err = transportError(method, ctx.Err())
			c.hooks.OnError(ctx, method, err)
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, method, err)
	}
	c.hooks.OnResponse(ctx, method, resp.StatusCode, env.Error != nil, time.Since(start))

	if env.Error != nil {
		env.Error.Method = method
		return nil, env.Error
	}
	if len(env.Response) == 0 {
		return nil, fmt.Errorf("%w: %s: no response payload", ErrMalformed, method)
	}
	return env.Response, nil
}

// transportError wraps a failed round trip. *url.Error is unwrapped because
// its message embeds the request URL, and with it the access token.
func transportError(method string, err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		err = ue.Err
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() || errors.Is(err, context.DeadlineExceeded) {
		return httputil.Retryable(fmt.Errorf("%w: %s: timeout: %v", ErrNetwork, method, err))
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", method, err)
	}
	return httputil.Retryable(fmt.Errorf("%w: %s: %v", ErrNetwork, method, err))
}

func checkStatus(method string, code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code >= 500 || code == http.StatusTooManyRequests:
		return httputil.Retryable(fmt.Errorf("%w: %s: status %d", ErrNetwork, method, code))
	default:
		return fmt.Errorf("%w: %s: status %d", ErrNetwork, method, code)
	}
}

// Users resolves user ids or screen names with users.get.
func (c *Client) Users(ctx context.Context, ids ...string) ([]User, error) {
	params := url.Values{}
	params.Set("user_ids", strings.Join(ids, ","))
	params.Set("fields", userFields)

	raw, err := c.Get(ctx, "users.get", params, 0)
	if err != nil {
		return nil, err
	}
	var users []User
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("%w: users.get: %v", ErrMalformed, err)
	}
	return users, nil
}

// User resolves a single id or screen name. It returns [ErrNotFound] when
// the API answers with an empty list.
func (c *Client) User(ctx context.Context, id string) (*User, error) {
	users, err := c.Users(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &users[0], nil
}

// FollowersPage returns one page of follower ids from users.getFollowers.
func (c *Client) FollowersPage(ctx context.Context, userID int64, offset, count int) ([]int64, error) {
	params := pageParams(userID, offset, count)

	raw, err := c.Get(ctx, "users.getFollowers", params, 0)
	if err != nil {
		return nil, err
	}
	var p page[int64]
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: users.getFollowers: %v", ErrMalformed, err)
	}
	return p.Items, nil
}

// SubscriptionsPage returns one page of the extended subscription list from
// users.getSubscriptions.
func (c *Client) SubscriptionsPage(ctx context.Context, userID int64, offset, count int) ([]SubscriptionItem, error) {
	params := pageParams(userID, offset, count)
	params.Set("extended", "1")

	raw, err := c.Get(ctx, "users.getSubscriptions", params, 0)
	if err != nil {
		return nil, err
	}
	var p page[SubscriptionItem]
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: users.getSubscriptions: %v", ErrMalformed, err)
	}
	return p.Items, nil
}

func pageParams(userID int64, offset, count int) url.Values {
	params := url.Values{}
	params.Set("user_id", strconv.FormatInt(userID, 10))
	params.Set("offset", strconv.Itoa(offset))
	params.Set("count", strconv.Itoa(count))
	return params
}
