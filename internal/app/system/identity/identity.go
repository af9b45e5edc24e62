// Package identity talks to the external identity provider that owns user
// accounts. Driftwood only needs one operation from it: deleting an account
// by UID at the end of a user-deletion cascade.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrNotFound is returned when the provider has no account for the UID.
// Callers treat it as "already deleted", not as a failure.
var ErrNotFound = errors.New("identity: account not found")

// Provider is the contract the deletion orchestrators depend on.
type Provider interface {
	DeleteAccount(ctx context.Context, uid string) error
}

// Client is a REST client for the identity provider's admin API.
type Client struct {
	http *resty.Client
}

// NewClient builds a client for the provider at baseURL, authenticating
// with the given admin API key.
func NewClient(baseURL, apiKey string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetTimeout(15 * time.Second)
	return &Client{http: c}
}

// DeleteAccount deletes the provider account for uid.
// A 404 from the provider maps to ErrNotFound; any other non-2xx status is
// an error.
func (c *Client) DeleteAccount(ctx context.Context, uid string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("uid", uid).
		Delete("/v1/accounts/{uid}")
	if err != nil {
		return fmt.Errorf("identity delete account: %w", err)
	}
	switch {
	case resp.IsSuccess():
		return nil
	case resp.StatusCode() == 404:
		return ErrNotFound
	default:
		return fmt.Errorf("identity delete account: provider returned %s", resp.Status())
	}
}

// Disabled is a Provider for deployments without a reachable identity admin
// API (local development). Deletions succeed without doing anything.
type Disabled struct{}

func (Disabled) DeleteAccount(ctx context.Context, uid string) error { return nil }
