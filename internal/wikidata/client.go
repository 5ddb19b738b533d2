package wikidata

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cgt.name/pkg/go-mwclient"
	"cgt.name/pkg/go-mwclient/params"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

var (
	// ErrEntityNotFound is returned when no item is linked to the page.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrClaimsNotFound is returned when the response carries no claims.
	ErrClaimsNotFound = errors.New("claims not found")

	// ErrSiteLinkNotFound is returned when an item has no page on the site.
	ErrSiteLinkNotFound = errors.New("site link not found")
)

// APIError is an error object returned by the Wikibase API.
type APIError struct {
	Code string
	Info string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wikibase API error %s: %s", e.Code, e.Info)
}

// Client reads items from a Wikibase API anonymously.
type Client struct {
	api    *mwclient.Client
	site   string
	logger *zap.Logger

	mu        sync.RWMutex
	siteLinks map[string]string
}

// NewClient creates a client for the api.php URL. site is the global site id
// of the wiki being edited, e.g. "enwiki".
func NewClient(apiURL, site, userAgent string, logger *zap.Logger) (*Client, error) {
	api, err := mwclient.New(apiURL, userAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to create wikibase client: %w", err)
	}

	return &Client{
		api:       api,
		site:      site,
		logger:    logger,
		siteLinks: make(map[string]string),
	}, nil
}

// get runs a read-only query and decodes the raw body with gjson. The
// underlying client has no context support, so an abandoned call finishes in
// the background and its result is dropped.
func (c *Client) get(ctx context.Context, p params.Values) (gjson.Result, error) {
	if err := ctx.Err(); err != nil {
		return gjson.Result{}, err
	}

	type reply struct {
		body []byte
		err  error
	}
	done := make(chan reply, 1)
	go func() {
		body, err := c.api.GetRaw(p)
		done <- reply{body: body, err: err}
	}()

	var r reply
	select {
	case <-ctx.Done():
		return gjson.Result{}, ctx.Err()
	case r = <-done:
	}
	if r.err != nil {
		return gjson.Result{}, fmt.Errorf("failed to call %s: %w", p.Get("action"), r.err)
	}
	if !gjson.ValidBytes(r.body) {
		return gjson.Result{}, fmt.Errorf("invalid JSON from %s", p.Get("action"))
	}

	result := gjson.ParseBytes(r.body)
	if code := result.Get("error.code"); code.Exists() {
		return gjson.Result{}, &APIError{Code: code.String(), Info: result.Get("error.info").String()}
	}
	return result, nil
}

// EntityForTitle returns the id of the item linked to a page on the
// configured site.
func (c *Client) EntityForTitle(ctx context.Context, title string) (string, error) {
	if title == "" {
		return "", fmt.Errorf("%w: empty title", ErrEntityNotFound)
	}

	result, err := c.get(ctx, params.Values{
		"action": "wbgetentities",
		"sites":  c.site,
		"titles": title,
		"props":  "info",
	})
	if err != nil {
		return "", err
	}

	var entity string
	result.Get("entities").ForEach(func(key, _ gjson.Result) bool {
		entity = key.String()
		return false
	})
	if entity == "" || entity == "-1" {
		return "", fmt.Errorf("%w: %s", ErrEntityNotFound, title)
	}
	return entity, nil
}

// Claims returns the claims of an item.
func (c *Client) Claims(ctx context.Context, entity string) (Claims, error) {
	result, err := c.get(ctx, params.Values{
		"action": "wbgetclaims",
		"entity": entity,
	})
	if err != nil {
		return nil, err
	}

	claims := result.Get("claims")
	if !claims.IsObject() {
		return nil, fmt.Errorf("%w: %s", ErrClaimsNotFound, entity)
	}
	return parseClaims(claims), nil
}

// SiteLink returns the title of the item's page on the configured site.
// Results are cached for the life of the client.
func (c *Client) SiteLink(ctx context.Context, entity string) (string, error) {
	c.mu.RLock()
	title, ok := c.siteLinks[entity]
	c.mu.RUnlock()
	if ok {
		return title, nil
	}

	result, err := c.get(ctx, params.Values{
		"action":     "wbgetentities",
		"ids":        entity,
		"props":      "sitelinks",
		"sitefilter": c.site,
	})
	if err != nil {
		return "", err
	}

	title = result.Get("entities." + entity + ".sitelinks." + c.site + ".title").String()
	if title == "" {
		return "", fmt.Errorf("%w: %s on %s", ErrSiteLinkNotFound, entity, c.site)
	}

	c.mu.Lock()
	c.siteLinks[entity] = title
	c.mu.Unlock()
	return title, nil
}

// ClaimsForPage finds the item for a page and returns its claims. An entity
// id given in the page text as |param=Q... takes precedence over the title.
func (c *Client) ClaimsForPage(ctx context.Context, title, text, param string) (string, Claims, error) {
	entity := EntityFromText(text, param)
	if entity == "" {
		var err error
		entity, err = c.EntityForTitle(ctx, title)
		if err != nil {
			return "", nil, err
		}
	}

	claims, err := c.Claims(ctx, entity)
	if err != nil {
		return entity, nil, err
	}

	c.logger.Debug("claims loaded",
		zap.String("page_title", title),
		zap.String("entity", entity),
		zap.Int("properties", len(claims)),
	)
	return entity, claims, nil
}
