// Package authclient talks to the auth service over HTTP. The portal uses it
// to sign visitors in from its login form and portalctl uses it as its
// identity service.
package authclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"premier-open-group/pkg/access"
	"premier-open-group/pkg/middleware"
	"premier-open-group/pkg/session"

	"github.com/go-resty/resty/v2"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("email already registered")
)

// APIError is any other non-2xx answer from the auth service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("auth service returned %d: %s", e.Status, e.Message)
}

type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

type Tokens struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	ExpiresIn    int64            `json:"expires_in"`
	User         *User            `json:"user"`
	Profile      *session.Profile `json:"profile"`
}

type Me struct {
	User    *User            `json:"user"`
	Profile *session.Profile `json:"profile"`
}

// Identity converts the user to the access package's view.
func (u *User) Identity() *access.Identity {
	if u == nil {
		return nil
	}
	return &access.Identity{ID: u.ID, Email: u.Email, FullName: u.FullName}
}

type Client struct {
	rest *resty.Client
}

// New targets baseURL, the auth service root without /api/v1. An empty
// clientKey sends no client key header.
func New(baseURL, clientKey string, timeout time.Duration) *Client {
	rest := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")+"/api/v1").
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(time.Second)
	rest.AddRetryCondition(func(r *resty.Response, err error) bool {
		return err != nil || r.StatusCode() >= http.StatusInternalServerError
	})
	if clientKey != "" {
		rest.SetHeader(middleware.ClientKeyHeader, clientKey)
	}
	return &Client{rest: rest}
}

type errorBody struct {
	Error string `json:"error"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*Tokens, error) {
	var out Tokens
	err := c.do(c.rest.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&out), http.MethodPost, "/login")
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, email, password, fullName string) (*Tokens, error) {
	var out Tokens
	err := c.do(c.rest.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email, "password": password, "full_name": fullName}).
		SetResult(&out), http.MethodPost, "/register")
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	var out Tokens
	err := c.do(c.rest.R().
		SetContext(ctx).
		SetBody(map[string]string{"refresh_token": refreshToken}).
		SetResult(&out), http.MethodPost, "/refresh")
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	return c.do(c.rest.R().
		SetContext(ctx).
		SetBody(map[string]string{"refresh_token": refreshToken}), http.MethodPost, "/logout")
}

func (c *Client) Me(ctx context.Context, accessToken string) (*Me, error) {
	var out Me
	err := c.do(c.rest.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetResult(&out), http.MethodGet, "/me")
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(req *resty.Request, method, path string) error {
	req.SetError(&errorBody{})
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("auth service %s %s: %w", method, path, err)
	}
	if !resp.IsError() {
		return nil
	}

	message := http.StatusText(resp.StatusCode())
	if body, ok := resp.Error().(*errorBody); ok && body.Error != "" {
		message = body.Error
	}
	switch resp.StatusCode() {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, message)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrConflict, message)
	}
	return &APIError{Status: resp.StatusCode(), Message: message}
}
