package oauth

import (
	"errors"
	"fmt"
)

const (
	ProviderTikTok  = "tiktok"
	ProviderDiscord = "discord"
)

var (
	ErrUpstreamTimeout     = errors.New("upstream request timed out")
	ErrUpstreamUnavailable = errors.New("upstream request failed")
)

// ProviderDeniedError is returned when the provider redirected back with an
// error parameter instead of a code.
type ProviderDeniedError struct {
	Provider    string
	Code        string
	Description string
}

func (e *ProviderDeniedError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("%s authorization denied: %s (%s)", e.Provider, e.Code, e.Description)
	}
	return fmt.Sprintf("%s authorization denied: %s", e.Provider, e.Code)
}

// TokenExchangeError means the provider rejected the authorization code.
// Body holds the provider's response, truncated.
type TokenExchangeError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *TokenExchangeError) Error() string {
	return fmt.Sprintf("%s token exchange failed with status %d", e.Provider, e.StatusCode)
}

// ProfileFetchError means the TikTok user info call did not return a profile.
type ProfileFetchError struct {
	StatusCode int
	Code       string
	Body       string
}

func (e *ProfileFetchError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tiktok profile fetch failed: %s", e.Code)
	}
	return fmt.Sprintf("tiktok profile fetch failed with status %d", e.StatusCode)
}

// UserInfoError means the Discord identity call failed.
type UserInfoError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *UserInfoError) Error() string {
	return fmt.Sprintf("%s user info failed with status %d", e.Provider, e.StatusCode)
}
