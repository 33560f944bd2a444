package pugoing

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/anicoll/pugoing-integration/internal/pkg/config"
	"github.com/anicoll/pugoing-integration/pkg/clock"
)

// Token lifecycle: the vendor token lives 24h; we re-login five minutes
// ahead of expiry so a token is always treated as expired before use,
// never after.
const (
	tokenLifetime = 24 * time.Hour
	tokenBuffer   = 5 * time.Minute
)

// Client is the PuGoing cloud API client: token manager, transport and
// aggregation live here. Not safe for concurrent token refresh; two callers
// racing an expired token may both log in, the later token wins. Login is
// idempotent and cheap so this is tolerated rather than serialized.
type Client struct {
	cfg    *config.PuGoingConfig
	urls   endpoints
	http   *http.Client
	clock  clock.Clock
	logger *zap.Logger

	token         string
	tokenIssuedAt time.Time
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithClock(clk clock.Clock) Option {
	return func(c *Client) { c.clock = clk }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func New(cfg *config.PuGoingConfig, opts ...Option) *Client {
	c := &Client{
		cfg:    cfg,
		urls:   endpointsFor(cfg.Environment, cfg.BaseURL),
		http:   &http.Client{},
		clock:  clock.New(),
		logger: zap.L(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ensureToken logs in when no token is held or the held one is inside the
// expiry buffer. Called before every remote operation.
func (c *Client) ensureToken(ctx context.Context) error {
	if c.token != "" && c.clock.Since(c.tokenIssuedAt) <= tokenLifetime-tokenBuffer {
		return nil
	}
	return c.login(ctx)
}

// login posts credentials and replaces the held token wholesale. Both a
// non-200 status and an ack==0 envelope surface as AuthenticationError.
func (c *Client) login(ctx context.Context) error {
	c.logger.Debug("logging in", zap.String("username", c.cfg.Username))

	env, err := c.post(ctx, c.urls.login, map[string]any{
		"account": c.cfg.Username,
		"pwd":     c.cfg.Password,
	}, "", controlTimeout)
	if err != nil {
		return &AuthenticationError{Message: "login rejected", Cause: err}
	}

	data, err := decodeData[tokenData](env)
	if err != nil || data.Token == "" {
		return &AuthenticationError{Message: "malformed login response", Cause: err}
	}

	c.token = data.Token
	c.tokenIssuedAt = c.clock.Now()
	c.logger.Info("login ok")
	return nil
}

// ForceRelogin discards the held token and logs in again. Used by the
// nightly refresh job so the 24h expiry never lands mid-poll.
func (c *Client) ForceRelogin(ctx context.Context) error {
	c.token = ""
	return c.login(ctx)
}

// Token returns the currently held bearer token.
func (c *Client) Token() string { return c.token }
