package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"

	"github.com/cineshelf/cineshelf/internal/config"
	"github.com/cineshelf/cineshelf/internal/constants"
	"github.com/cineshelf/cineshelf/internal/http"
	"github.com/cineshelf/cineshelf/internal/logging"
	"github.com/cineshelf/cineshelf/internal/models"
	"github.com/cineshelf/cineshelf/internal/ratelimit"
)

// retryLogger implements the retryablehttp.LeveledLogger interface on zerolog.
type retryLogger struct {
	zl zerolog.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.zl.Error().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	// Only log errors and warnings, not every attempt
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.zl.Debug().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.zl.Warn().Fields(keysAndValues).Msg(msg)
}

// TokenSource supplies the bearer token for outbound requests.
// An empty token means the request is sent anonymously.
type TokenSource interface {
	Token() string
}

// Client talks to the movie catalog REST API.
type Client struct {
	httpClient *nethttp.Client
	baseURL    string
	tokens     TokenSource
	limiter    *ratelimit.RateLimiter
	logger     *logging.Logger
	retryLog   *retryLogger
}

// NewClient creates a catalog API client. tokens may be nil.
func NewClient(cfg *config.Config, tokens TokenSource) (*Client, error) {
	if strings.TrimSpace(cfg.APIBaseURL) == "" {
		return nil, fmt.Errorf("API base URL is empty: set base_url in the config file or CINESHELF_API_URL")
	}

	// Configure HTTP client with proxy support
	httpClient, err := http.ConfigureHTTPClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
	}
	if timeout := cfg.RequestTimeout(); timeout > 0 {
		httpClient.Timeout = timeout
	}

	logger := logging.NewNopLogger()

	// Failed reads and writes are not retried unless max_retries says so.
	// The passthrough handler hands the final response back so the
	// server's error message stays readable.
	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = httpClient
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = constants.RetryWaitMin
	retryClient.RetryWaitMax = constants.RetryWaitMax
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryLog := &retryLogger{zl: *logger.Zerolog()}
	retryClient.Logger = retryLog

	rps, burst := cfg.RequestsPerSecond, cfg.Burst
	if rps <= 0 {
		rps = constants.DefaultRequestsPerSecond
	}
	if burst <= 0 {
		burst = constants.DefaultBurst
	}

	return &Client{
		httpClient: retryClient.StandardClient(),
		baseURL:    strings.TrimSuffix(cfg.APIBaseURL, "/"),
		tokens:     tokens,
		limiter:    ratelimit.NewRateLimiter(rps, burst),
		logger:     logger,
		retryLog:   retryLog,
	}, nil
}

// SetLogger routes request logging to l.
func (c *Client) SetLogger(l *logging.Logger) {
	if l == nil {
		return
	}
	c.logger = l
	c.retryLog.zl = *l.Zerolog()
	c.limiter.SetLogger(*l.Zerolog())
}

// BaseURL returns the API root every path is resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doRequest performs an HTTP request with authentication and rate limiting.
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) (*nethttp.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter cancelled: %w", err)
	}

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := nethttp.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Error().Err(err).
			Str("method", method).
			Str("path", path).
			Str("request_id", requestID).
			Msg("API call failed")
		return nil, fmt.Errorf("request failed: %w", err)
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Str("request_id", requestID).
		Msg("API call")

	if resp.StatusCode == nethttp.StatusTooManyRequests {
		wait := parseRetryAfter(resp.Header.Get("Retry-After"))
		c.logger.Warn().
			Str("method", method).
			Str("path", path).
			Dur("retry_after", wait).
			Msg("Throttled by catalog API")
		if wait > 0 {
			c.limiter.SetCooldown(wait)
		}
	}

	return resp, nil
}

// parseRetryAfter reads a Retry-After header given in seconds or as an HTTP date.
func parseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := nethttp.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// decode checks the status and decodes a JSON body into out.
func decode(resp *nethttp.Response, op string, out interface{}, ok ...int) error {
	defer resp.Body.Close()

	accepted := false
	for _, code := range ok {
		if resp.StatusCode == code {
			accepted = true
			break
		}
	}
	if !accepted {
		return newAPIError(op, resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	return q
}

// normalizePage fills in what the server left out of a page response.
func normalizePage(result *models.PageResult, page, limit int) {
	if result.Items == nil {
		result.Items = []models.Movie{}
	}
	if result.Page <= 0 {
		result.Page = page
	}
	if result.Limit <= 0 {
		result.Limit = limit
	}
	if result.Total < 0 {
		result.Total = 0
	}
}

// ListSorted gets one server-sorted page of the catalog.
func (c *Client) ListSorted(ctx context.Context, page, limit int, sort models.SortSpec) (*models.PageResult, error) {
	q := pageQuery(page, limit)
	q.Set("by", string(sort.By))
	q.Set("order", string(sort.Order))

	resp, err := c.doRequest(ctx, nethttp.MethodGet, "/movies/sorted?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var result models.PageResult
	if err := decode(resp, "list movies", &result, nethttp.StatusOK); err != nil {
		return nil, err
	}
	normalizePage(&result, page, limit)
	return &result, nil
}

// Search gets one page of movies matching free text. An empty query matches everything.
func (c *Client) Search(ctx context.Context, query string, page, limit int) (*models.PageResult, error) {
	q := pageQuery(page, limit)
	q.Set("q", query)

	resp, err := c.doRequest(ctx, nethttp.MethodGet, "/movies/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var result models.PageResult
	if err := decode(resp, "search movies", &result, nethttp.StatusOK); err != nil {
		return nil, err
	}
	normalizePage(&result, page, limit)
	return &result, nil
}

// CreateMovie adds a movie. Requires an admin token.
func (c *Client) CreateMovie(ctx context.Context, input models.MovieInput) (*models.Movie, error) {
	resp, err := c.doRequest(ctx, nethttp.MethodPost, "/movies", input)
	if err != nil {
		return nil, err
	}

	var movie models.Movie
	if err := decode(resp, "create movie", &movie, nethttp.StatusCreated, nethttp.StatusOK); err != nil {
		return nil, err
	}
	return &movie, nil
}

// UpdateMovie overwrites every editable field of a movie.
func (c *Client) UpdateMovie(ctx context.Context, id string, input models.MovieInput) (*models.Movie, error) {
	resp, err := c.doRequest(ctx, nethttp.MethodPut, "/movies/"+url.PathEscape(id), input)
	if err != nil {
		return nil, err
	}

	var movie models.Movie
	if err := decode(resp, "update movie", &movie, nethttp.StatusOK); err != nil {
		return nil, err
	}
	return &movie, nil
}

// DeleteMovie removes a movie.
func (c *Client) DeleteMovie(ctx context.Context, id string) error {
	resp, err := c.doRequest(ctx, nethttp.MethodDelete, "/movies/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	return decode(resp, "delete movie", nil, nethttp.StatusOK, nethttp.StatusNoContent)
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	resp, err := c.doRequest(ctx, nethttp.MethodPost, "/auth/login", req)
	if err != nil {
		return nil, err
	}

	var auth models.AuthResponse
	if err := decode(resp, "login", &auth, nethttp.StatusOK); err != nil {
		return nil, err
	}
	return &auth, nil
}

// Signup registers a user and returns the new session.
func (c *Client) Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error) {
	resp, err := c.doRequest(ctx, nethttp.MethodPost, "/auth/signup", req)
	if err != nil {
		return nil, err
	}

	var auth models.AuthResponse
	if err := decode(resp, "signup", &auth, nethttp.StatusCreated, nethttp.StatusOK); err != nil {
		return nil, err
	}
	return &auth, nil
}
