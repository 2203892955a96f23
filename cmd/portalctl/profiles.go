package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"premier-open-group/pkg/middleware"
	"premier-open-group/pkg/session"

	"github.com/go-resty/resty/v2"
)

// portalProfiles reads the signed-in member's own profile from the portal.
type portalProfiles struct {
	rest  *resty.Client
	token func() string
}

func newPortalProfiles(baseURL, clientKey string, timeout time.Duration, token func() string) *portalProfiles {
	rest := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")+"/api/v1").
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if clientKey != "" {
		rest.SetHeader(middleware.ClientKeyHeader, clientKey)
	}
	return &portalProfiles{rest: rest, token: token}
}

// FetchProfile only serves the signed-in user; userID is checked against the
// returned row.
func (p *portalProfiles) FetchProfile(ctx context.Context, userID string) (*session.Profile, error) {
	token := p.token()
	if token == "" {
		return nil, fmt.Errorf("not signed in")
	}

	var profile session.Profile
	resp, err := p.rest.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&profile).
		Get("/me/profile")
	if err != nil {
		return nil, fmt.Errorf("portal GET /me/profile: %w", err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, nil
	case resp.IsError():
		return nil, fmt.Errorf("portal returned %d for /me/profile", resp.StatusCode())
	case profile.ID != "" && profile.ID != userID:
		return nil, fmt.Errorf("portal returned profile %s for user %s", profile.ID, userID)
	}
	return &profile, nil
}
