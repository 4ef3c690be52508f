package session

import (
	"context"
	"fmt"

	"github.com/minhvu-dev/teahouse/pkg/errors"
	"github.com/minhvu-dev/teahouse/pkg/logger"
)

// State names the positions of the per-activation guard machine.
type State string

const (
	StateUnchecked    State = "unchecked"
	StateRefreshing   State = "refreshing"
	StateAuthorized   State = "authorized"
	StateUnauthorized State = "unauthorized"
)

// AuthAPI is the slice of the HTTP client the guard drives: a probe
// that never self-refreshes, and the raw refresh exchange.
type AuthAPI interface {
	ProbeSession(ctx context.Context) error
	RefreshExchange(ctx context.Context) (string, error)
}

// Guard gates protected views. Each Check is a fresh activation: at
// most one probe and at most one refresh, never a loop, and no caching
// of an Authorized outcome across activations.
type Guard struct {
	api      AuthAPI
	slots    *Store
	loginURL string
	log      *logger.Logger
}

// Result is the terminal outcome of one activation.
type Result struct {
	State State
	// RedirectTo is set only for Unauthorized outcomes.
	RedirectTo string
}

func (r Result) Authorized() bool {
	return r.State == StateAuthorized
}

func NewGuard(api AuthAPI, slots *Store, loginURL string, log *logger.Logger) (*Guard, error) {
	if api == nil {
		return nil, fmt.Errorf("auth api is required")
	}
	if slots == nil {
		return nil, fmt.Errorf("slot store is required")
	}
	if loginURL == "" {
		return nil, fmt.Errorf("login url is required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Guard{api: api, slots: slots, loginURL: loginURL, log: log}, nil
}

// Check runs one activation of the guard machine and returns its
// terminal state. Unauthorized is a result, not an error; the error
// return carries only infrastructure failures worth logging.
func (g *Guard) Check(ctx context.Context) (Result, error) {
	access, err := g.slots.AccessToken(ctx)
	if err != nil {
		return g.unauthorized(), err
	}
	refresh, err := g.slots.RefreshToken(ctx)
	if err != nil {
		return g.unauthorized(), err
	}

	if access == "" && refresh == "" {
		g.log.Debug(ctx, "guard: no stored credentials")
		return g.unauthorized(), nil
	}

	probeErr := g.api.ProbeSession(ctx)
	if probeErr == nil {
		return Result{State: StateAuthorized}, nil
	}

	if errors.HasCode(probeErr, errors.CodeAuthExpired) && refresh != "" {
		g.log.Debug(ctx, "guard: credential expired, attempting refresh")
		if res, ok := g.refresh(ctx); ok {
			return res, nil
		}
	} else {
		g.log.Warn(ctx, "guard: probe rejected without refresh path")
	}

	return g.purge(ctx, probeErr)
}

// refresh runs the single allowed exchange. It reports false when the
// caller should fall through to the purge path.
func (g *Guard) refresh(ctx context.Context) (Result, bool) {
	token, err := g.api.RefreshExchange(ctx)
	if err != nil || token == "" {
		g.log.Warn(ctx, "guard: refresh exchange failed")
		return Result{}, false
	}
	if err := g.slots.SetAccessToken(ctx, token); err != nil {
		g.log.Error(ctx, "guard: persisting refreshed credential", err)
		return Result{}, false
	}
	return Result{State: StateAuthorized}, true
}

func (g *Guard) purge(ctx context.Context, cause error) (Result, error) {
	if err := g.slots.Clear(ctx); err != nil {
		g.log.Error(ctx, "guard: clearing credential slots", err)
		return g.unauthorized(), err
	}
	g.log.Info(ctx, "guard: session terminated, redirecting to login")
	if errors.HasCode(cause, errors.CodeAuthExpired) {
		return g.unauthorized(), nil
	}
	return g.unauthorized(), cause
}

func (g *Guard) unauthorized() Result {
	return Result{State: StateUnauthorized, RedirectTo: g.loginURL}
}
