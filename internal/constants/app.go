package constants

import (
	"time"
)

// Catalog list defaults
const (
	// DefaultPageSize - rows per page on the browse and search views
	DefaultPageSize = 12

	// AdminPageSize - rows per page on the manage view
	AdminPageSize = 10

	// DefaultSortBy and DefaultSortOrder are restored every time a view mounts
	DefaultSortBy    = "title"
	DefaultSortOrder = "asc"

	// DebounceWindow - quiet period before a typed filter is sent
	DebounceWindow = 350 * time.Millisecond
)

// Movie form defaults
const (
	DefaultRating          = 0
	DefaultDurationMinutes = 120
	DefaultIMDbRank        = 0

	// MaxRating - ratings are on a 0-10 scale
	MaxRating = 10.0

	// ReleaseDateLayout - date-only wire format for releaseDate
	ReleaseDateLayout = "2006-01-02"
)

// Account rules
const (
	// MinPasswordLength - signup rejects shorter passwords before any request
	MinPasswordLength = 8

	// RoleAdmin - the only role that may create, edit or delete movies
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Event system configuration
const (
	// EventBusDefaultBuffer - default buffer size for event channels (1000)
	EventBusDefaultBuffer = 1000

	// EventBusMaxBuffer - maximum buffer size for high-throughput scenarios (5000)
	EventBusMaxBuffer = 5000
)

// API client defaults
const (
	// DefaultBaseURL - local development backend
	DefaultBaseURL = "http://localhost:5000/api"

	// DefaultRequestTimeout - overall timeout for a single API call
	DefaultRequestTimeout = 30 * time.Second

	// DefaultMaxRetries - failed requests are surfaced, not retried
	DefaultMaxRetries = 0

	// RetryWaitMin / RetryWaitMax bound the backoff when retries are enabled
	RetryWaitMin = 500 * time.Millisecond
	RetryWaitMax = 5 * time.Second

	// DefaultRequestsPerSecond / DefaultBurst size the client-side token bucket
	DefaultRequestsPerSecond = 10.0
	DefaultBurst             = 20.0
)

// HTTP Client Timeouts
const (
	// HTTPIdleConnTimeout - how long to keep idle connections open (90 seconds)
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPTLSHandshakeTimeout - timeout for TLS handshake (15 seconds)
	HTTPTLSHandshakeTimeout = 15 * time.Second

	// HTTPExpectContinueTimeout - timeout for 100-continue response (1 second)
	HTTPExpectContinueTimeout = 1 * time.Second

	// HTTPDialTimeout - timeout for establishing connection (10 seconds)
	HTTPDialTimeout = 10 * time.Second

	// HTTPDialKeepAlive - keep-alive period for dialer (30 seconds)
	HTTPDialKeepAlive = 30 * time.Second

	// ProxyWarmupTimeout - timeout for the optional proxy warmup request
	ProxyWarmupTimeout = 10 * time.Second
)

// Mock backend
const (
	// MockListenAddr - default address for cineshelf-mock
	MockListenAddr = "127.0.0.1:5000"

	// MockTokenTTL - lifetime of tokens issued by the mock backend
	MockTokenTTL = 24 * time.Hour
)
