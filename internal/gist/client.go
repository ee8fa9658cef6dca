// Package gist creates and updates private GitHub Gists.
package gist

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"

	"github.com/starford/gistnote/internal/apperr"
	"github.com/starford/gistnote/internal/models"
)

const defaultTimeout = 30 * time.Second

// TokenSource supplies the current GitHub token; "" means none is configured.
type TokenSource interface {
	Token() string
}

// Client wraps the Gist endpoints of the GitHub REST API.
type Client struct {
	tokens     TokenSource
	baseURL    *url.URL
	httpClient *http.Client
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root (GitHub Enterprise, tests).
func WithBaseURL(u *url.URL) Option {
	return func(c *Client) {
		if u != nil {
			c.baseURL = u
		}
	}
}

// WithHTTPClient sets the transport used underneath the oauth2 layer.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each API call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewClient creates a client that reads the token from tokens on every call.
func NewClient(tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		tokens:     tokens,
		httpClient: http.DefaultClient,
		timeout:    defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ParseBaseURL normalises an API root so relative endpoint paths resolve under it.
func ParseBaseURL(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, nil
	}
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("gist: parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("gist: base url must be absolute: %s", raw)
	}
	return u, nil
}

// Create publishes content as a new private single-file gist named fileName.
func (c *Client) Create(ctx context.Context, fileName, content string) (models.SnippetMetadata, error) {
	gh, err := c.session(ctx)
	if err != nil {
		return models.SnippetMetadata{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	created, _, err := gh.Gists.Create(ctx, &github.Gist{
		Public: github.Ptr(false),
		Files: map[github.GistFilename]github.GistFile{
			github.GistFilename(fileName): {Content: github.Ptr(content)},
		},
	})
	if err != nil {
		return models.SnippetMetadata{}, &apperr.RemoteError{Op: "create", Err: err}
	}
	return metadataFrom("create", created)
}

// Update replaces the content of fileName in the existing gist id.
func (c *Client) Update(ctx context.Context, id, fileName, content string) (models.SnippetMetadata, error) {
	gh, err := c.session(ctx)
	if err != nil {
		return models.SnippetMetadata{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	edited, _, err := gh.Gists.Edit(ctx, id, &github.Gist{
		Files: map[github.GistFilename]github.GistFile{
			github.GistFilename(fileName): {Content: github.Ptr(content)},
		},
	})
	if err != nil {
		return models.SnippetMetadata{}, &apperr.RemoteError{Op: "update", Err: err}
	}
	return metadataFrom("update", edited)
}

// session builds an authenticated API client from the token current at call time.
func (c *Client) session(ctx context.Context) (*github.Client, error) {
	token := ""
	if c.tokens != nil {
		token = c.tokens.Token()
	}
	if token == "" {
		return nil, apperr.ErrMissingCredential
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	hc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))

	gh := github.NewClient(hc)
	if c.baseURL != nil {
		u := *c.baseURL
		gh.BaseURL = &u
	}
	return gh, nil
}

func metadataFrom(op string, g *github.Gist) (models.SnippetMetadata, error) {
	htmlURL := g.GetHTMLURL()
	if htmlURL == "" {
		return models.SnippetMetadata{}, &apperr.RemoteError{Op: op, Err: errors.New("response has no html_url")}
	}
	id, err := IDFromURL(htmlURL)
	if err != nil {
		return models.SnippetMetadata{}, &apperr.RemoteError{Op: op, Err: err}
	}
	return models.SnippetMetadata{ID: id, URL: htmlURL}, nil
}

// IDFromURL returns the final path segment of a gist web URL.
func IDFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse gist url: %w", err)
	}
	p := strings.TrimSuffix(u.Path, "/")
	id := path.Base(p)
	if p == "" || id == "/" || id == "." {
		return "", fmt.Errorf("gist url has no id: %s", raw)
	}
	return id, nil
}
