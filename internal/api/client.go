package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/minhvu-dev/teahouse/pkg/config"
	pkgerrors "github.com/minhvu-dev/teahouse/pkg/errors"
	"github.com/minhvu-dev/teahouse/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// The backend expects money as JSON numbers, not quoted strings. Every
// outbound body is marshaled in this package, so the switch is flipped
// here.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

const (
	// refreshBudget is the number of refresh-and-retry attempts a
	// single call may spend. It is threaded through the call path so
	// a retried request can never trigger a second refresh.
	refreshBudget = 1

	errorBodyReadLimit int64 = 4096
)

// CredentialSource is the slice of the session store the client needs:
// read both credentials, replace the bearer after a refresh, and wipe
// everything on hard failure.
type CredentialSource interface {
	AccessToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) (string, error)
	SetAccessToken(ctx context.Context, access string) error
	Clear(ctx context.Context) error
}

// Client dispatches all outbound calls to the ordering backend. It
// stamps the stored bearer credential on every request and performs
// the one-shot refresh-and-retry dance when the backend rejects it.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	creds         CredentialSource
	log           *logger.Logger
	onAuthFailure func()
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured backend base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithAuthFailureHook registers the side effect fired when a refresh
// exchange fails and the stored credentials are purged. The caller
// uses it to send the user to the login entry point.
func WithAuthFailureHook(hook func()) Option {
	return func(c *Client) {
		if hook != nil {
			c.onAuthFailure = hook
		}
	}
}

// NewClient builds the backend client.
func NewClient(cfg config.APIConfig, creds CredentialSource, log *logger.Logger, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("api base url is required")
	}
	if creds == nil {
		return nil, fmt.Errorf("credential source is required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := &Client{
		httpClient:    &http.Client{Timeout: timeout},
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		creds:         creds,
		log:           log,
		onAuthFailure: func() {},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// Get issues an authenticated GET and decodes the payload into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out, refreshBudget)
}

// Post issues an authenticated POST and decodes the payload into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out, refreshBudget)
}

// ProbeSession issues the minimal authenticated call used to test
// credential validity. It spends no refresh budget: the session guard
// owns the refresh decision on this path.
func (c *Client) ProbeSession(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/auth/profile", nil, nil, 0)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, budget int) error {
	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal request body")
		}
		payload = encoded
	}

	req, err := c.newRequest(ctx, method, path, payload)
	if err != nil {
		return err
	}

	access, err := c.creds.AccessToken(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read bearer credential")
	}
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s %s", method, path))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized && budget > 0 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, errorBodyReadLimit))
		if err := c.refreshCredential(ctx); err != nil {
			return err
		}
		return c.do(ctx, method, path, body, out, budget-1)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := decodePayload(resp.Body, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("decode %s %s response", method, path))
	}
	return nil
}

// refreshCredential runs the exchange for the auto-retry path. On
// success the new bearer is persisted; on any failure the slots are
// purged and the auth failure hook fires.
func (c *Client) refreshCredential(ctx context.Context) error {
	token, err := c.RefreshExchange(ctx)
	if err == nil {
		if persistErr := c.creds.SetAccessToken(ctx, token); persistErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, persistErr, "persist refreshed credential")
		}
		return nil
	}

	c.log.Warn(ctx, "refresh exchange failed, purging credentials")
	purgeErr := c.creds.Clear(ctx)
	c.onAuthFailure()

	failure := pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "credential refresh failed")
	return multierr.Append(failure, purgeErr)
}

// RefreshExchange trades the stored refresh credential for a new
// bearer credential. It neither persists nor purges; callers decide
// what a failed exchange means.
func (c *Client) RefreshExchange(ctx context.Context) (string, error) {
	refresh, err := c.creds.RefreshToken(ctx)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read refresh credential")
	}
	if refresh == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "no refresh credential stored")
	}

	payload, err := json.Marshal(map[string]string{"refreshToken": refresh})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal refresh request")
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/auth/refresh", payload)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute refresh exchange")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", c.statusError(resp)
	}

	var result struct {
		AccessToken string `json:"accessToken"`
	}
	if err := decodePayload(resp.Body, &result); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode refresh response")
	}
	if result.AccessToken == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "refresh exchange returned no credential")
	}
	return result.AccessToken, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, payload []byte) (*http.Request, error) {
	url := c.baseURL + "/" + strings.TrimLeft(path, "/")

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("build %s %s", method, path))
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))

	message := strings.TrimSpace(envelopeMessage(raw))
	if message == "" {
		message = fmt.Sprintf("backend returned status %d", resp.StatusCode)
	}

	return pkgerrors.New(pkgerrors.FromStatus(resp.StatusCode), message).
		WithDetails(map[string]any{"status": resp.StatusCode})
}
