package wiki

import (
	"context"
	"errors"
	"fmt"

	"cgt.name/pkg/go-mwclient"
	"go.uber.org/zap"
)

var (
	// ErrNoTarget is returned for an edit that names neither a title nor a page id.
	ErrNoTarget = errors.New("edit needs a title or a page id")

	// ErrNoGenerator is returned when a Generator selects no page source.
	ErrNoGenerator = errors.New("generator needs exactly one of category, category id, embedded-in or titles")

	// ErrEditConflict is returned when the page changed after it was read.
	ErrEditConflict = errors.New("edit conflict")
)

// Client talks to one MediaWiki API endpoint.
type Client struct {
	api    *mwclient.Client
	logger *zap.Logger
}

// NewClient creates a client for the api.php URL. The user agent should name
// the bot and a contact address.
func NewClient(apiURL, userAgent string, logger *zap.Logger) (*Client, error) {
	api, err := mwclient.New(apiURL, userAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	return &Client{
		api:    api,
		logger: logger,
	}, nil
}

// Login authenticates with a bot password. Anonymous use needs no login.
func (c *Client) Login(ctx context.Context, user, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := c.api.Login(user, password); err != nil {
		return fmt.Errorf("failed to log in as %s: %w", user, err)
	}

	c.logger.Info("logged in", zap.String("user", user))
	return nil
}

// Logout ends the session.
func (c *Client) Logout() {
	c.api.Logout()
}
