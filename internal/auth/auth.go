// Package auth covers the explicit ends of the session lifecycle:
// signing in, reading the profile, and signing out. The silent middle
// of the lifecycle, probing and refreshing, belongs to the session
// guard.
package auth

import (
	"context"
	"encoding/json"
	"fmt"

	pkgerrors "github.com/minhvu-dev/teahouse/pkg/errors"
	"github.com/minhvu-dev/teahouse/pkg/logger"
	"github.com/minhvu-dev/teahouse/pkg/validate"

	"github.com/minhvu-dev/teahouse/internal/session"
)

// Caller is the slice of the backend client the auth flows use.
type Caller interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
}

// Credentials is the sign-in payload.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Profile mirrors the backend account record.
type Profile struct {
	ID          string `json:"id"`
	Username    string `json:"username,omitempty"`
	Name        string `json:"name,omitempty"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	FullName    string `json:"fullName,omitempty"`
	Gender      string `json:"gender,omitempty"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
	MemberSince string `json:"memberSince,omitempty"`
}

type Service struct {
	api   Caller
	slots *session.Store
	log   *logger.Logger
}

func NewService(api Caller, slots *session.Store, log *logger.Logger) (*Service, error) {
	if api == nil {
		return nil, fmt.Errorf("api caller is required")
	}
	if slots == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Service{api: api, slots: slots, log: log}, nil
}

// Login exchanges credentials for a token pair and persists both
// tokens plus the profile blob in the session slots.
func (s *Service) Login(ctx context.Context, creds Credentials) (*Profile, error) {
	if err := validate.Struct(creds); err != nil {
		return nil, err
	}

	var result struct {
		AccessToken  string          `json:"accessToken"`
		RefreshToken string          `json:"refreshToken"`
		User         json.RawMessage `json:"user"`
	}
	if err := s.api.Post(ctx, "/auth/login", creds, &result); err != nil {
		return nil, err
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "login response missing token pair")
	}

	if err := s.slots.SetTokens(ctx, result.AccessToken, result.RefreshToken); err != nil {
		return nil, err
	}

	var profile Profile
	if len(result.User) > 0 {
		if err := json.Unmarshal(result.User, &profile); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode login profile")
		}
		if err := s.slots.SetProfile(ctx, string(result.User)); err != nil {
			return nil, err
		}
	}

	s.log.Info(s.log.WithUserID(ctx, profile.ID), "signed in")
	return &profile, nil
}

// Fetch reads the account profile from the backend and updates the
// cached profile slot.
func (s *Service) Fetch(ctx context.Context) (*Profile, error) {
	var profile Profile
	if err := s.api.Get(ctx, "/auth/profile", &profile); err != nil {
		return nil, err
	}

	blob, err := json.Marshal(profile)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode profile blob")
	}
	if err := s.slots.SetProfile(ctx, string(blob)); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Cached returns the locally stored profile without touching the
// backend. A nil profile means no blob is stored.
func (s *Service) Cached(ctx context.Context) (*Profile, error) {
	blob, err := s.slots.Profile(ctx)
	if err != nil {
		return nil, err
	}
	if blob == "" {
		return nil, nil
	}

	var profile Profile
	if err := json.Unmarshal([]byte(blob), &profile); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode cached profile")
	}
	return &profile, nil
}

// Logout purges every session slot. It is purely local, mirroring the
// guard's purge path.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.slots.Clear(ctx); err != nil {
		return err
	}
	s.log.Info(ctx, "signed out")
	return nil
}
