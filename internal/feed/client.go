package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sneakify/feed-adapter/internal/httpclient"
	"github.com/sneakify/feed-adapter/internal/rate"
)

// ErrEmptyPage marks a feed page whose objects array was empty. The upstream
// never serves empty pages for live markets, so one is treated as an upstream
// failure rather than an end-of-pages signal.
var ErrEmptyPage = errors.New("feed: page contained no objects")

// ErrPageLimit marks a cursor chain longer than the configured page bound.
var ErrPageLimit = errors.New("feed: page limit exceeded")

// StatusError is returned when the feed answers with a non-success HTTP status.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("feed: upstream returned %d", e.Status)
}

// Client wraps low-level HTTP communication with the product feed.
type Client struct {
	logger  *zap.Logger
	baseURL string
	exec    *httpclient.Executor
}

// NewClient constructs a feed HTTP client. retryMax is the transport retry
// budget for 5xx responses; the production default is zero, a failed page
// fails the channel and the next cycle retries.
func NewClient(logger *zap.Logger, baseURL string, rateMgr *rate.Manager, retryMax int) *Client {
	httpClient := &http.Client{Timeout: 15 * time.Second}
	exec := httpclient.New(logger, rateMgr, httpClient, retryMax, "feed", func(status int, body []byte) error {
		return &StatusError{Status: status}
	})
	return &Client{
		logger:  logger,
		baseURL: baseURL,
		exec:    exec,
	}
}

// GetPage performs a GET against path (relative to the feed host) and decodes
// the page body.
func (c *Client) GetPage(ctx context.Context, path string) (*Page, error) {
	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	var page Page
	if err := c.exec.DoJSON(ctx, req, "feed", &page); err != nil {
		return nil, err
	}
	return &page, nil
}
