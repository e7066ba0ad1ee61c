package feed

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/sneakify/feed-adapter/internal/market"
	"github.com/sneakify/feed-adapter/internal/metrics"
	"github.com/sneakify/feed-adapter/pkg/model"
)

const commerceStartDateSort = "productInfo.merchProduct.commerceStartDateAsc"

// Fetcher walks the cursor-linked feed to exhaustion for one (channel, country)
// pair. Pages are fetched strictly sequentially; each cursor depends on the
// previous page.
type Fetcher struct {
	logger   *zap.Logger
	client   *Client
	registry *market.Registry
	feedPath string
	pageSize int
	maxPages int
}

func NewFetcher(logger *zap.Logger, client *Client, registry *market.Registry, feedPath string, pageSize, maxPages int) *Fetcher {
	return &Fetcher{
		logger:   logger,
		client:   client,
		registry: registry,
		feedPath: feedPath,
		pageSize: pageSize,
		maxPages: maxPages,
	}
}

// FetchAll returns the concatenated thread records of every page, in page
// order. Any non-success status, an empty page, or a cursor chain past the
// page bound fails the whole fetch.
func (f *Fetcher) FetchAll(ctx context.Context, ch model.Channel, country string) ([]Thread, error) {
	prof, err := f.registry.Profile(country)
	if err != nil {
		return nil, err
	}

	path := f.firstPagePath(ch, prof)

	var threads []Thread
	for page := 0; ; page++ {
		if page >= f.maxPages {
			return nil, fmt.Errorf("%w: followed %d cursors for %s/%s", ErrPageLimit, page, ch.Slug, country)
		}

		p, err := f.client.GetPage(ctx, path)
		if err != nil {
			metrics.IncFeedPage(ch.Slug, country, "error")
			return nil, fmt.Errorf("page %d for %s/%s: %w", page, ch.Slug, country, err)
		}
		metrics.IncFeedPage(ch.Slug, country, "ok")

		if len(p.Objects) == 0 {
			// Kept from the observed upstream behavior: an empty objects
			// array is an upstream fault even mid-chain, never a legitimate
			// "no results".
			return nil, fmt.Errorf("page %d for %s/%s: %w", page, ch.Slug, country, ErrEmptyPage)
		}

		threads = append(threads, p.Objects...)

		if p.Pages.Next == "" {
			f.logger.Debug("feed.fetch_complete",
				zap.String("channel", ch.Slug),
				zap.String("country", country),
				zap.Int("pages", page+1),
				zap.Int("threads", len(threads)))
			return threads, nil
		}
		path = p.Pages.Next
	}
}

// firstPagePath builds the initial query path for a (channel, market) pair.
func (f *Fetcher) firstPagePath(ch model.Channel, prof market.Profile) string {
	q := url.Values{}
	q.Set("count", strconv.Itoa(f.pageSize))
	q.Add("filter", fmt.Sprintf("marketplace(%s)", prof.CountryCode))
	q.Add("filter", fmt.Sprintf("language(%s)", prof.FeedLanguageTag))
	q.Add("filter", "upcoming(true)")
	q.Add("filter", fmt.Sprintf("channelName(%s)", ch.Name))
	q.Add("filter", "exclusiveAccess(true,false)")
	q.Add("sort", commerceStartDateSort)

	return f.feedPath + "?" + q.Encode()
}
