package catalog

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sneakify/feed-adapter/internal/feed"
	"github.com/sneakify/feed-adapter/internal/market"
	"github.com/sneakify/feed-adapter/pkg/model"
)

// Normalizer turns raw feed threads into canonical products for one
// (channel, country) pair. Output is ordered non-decreasing by release time;
// feed order breaks ties.
type Normalizer struct {
	logger *zap.Logger
	prices *PriceFormatter
	images ImageResolver
}

func NewNormalizer(logger *zap.Logger, registry *market.Registry, images ImageResolver) *Normalizer {
	return &Normalizer{
		logger: logger,
		prices: NewPriceFormatter(registry),
		images: images,
	}
}

// Normalize assembles one product per eligible product entry. CLOSEOUT
// entries, threads without product info, and entries lacking a SKU or a
// resolvable release time are skipped; a price or image failure aborts the
// whole channel's batch.
func (n *Normalizer) Normalize(ctx context.Context, ch model.Channel, country string, threads []feed.Thread) ([]model.Product, error) {
	var products []model.Product

	for _, th := range threads {
		if len(th.ProductInfo) == 0 {
			continue
		}
		for _, info := range th.ProductInfo {
			status := model.Status(info.MerchProduct.Status)
			if status == model.StatusCloseout {
				continue
			}

			sku := info.MerchProduct.StyleColor
			if sku == "" {
				n.logger.Warn("catalog.missing_sku",
					zap.String("thread", th.ID),
					zap.String("country", country))
				continue
			}

			release, ok := releaseTime(info)
			if !ok {
				n.logger.Warn("catalog.release_time_unresolved",
					zap.String("sku", sku),
					zap.String("country", country))
				continue
			}

			// Single-product SNKRS threads carry richer published content
			// worth parsing; everything else keeps the feed's own title.
			name := info.ProductContent.FullTitle
			if ch == model.ChannelSNKRS && len(th.ProductInfo) == 1 {
				if resolved, found := ResolveDisplayName(country, sku, th.PublishedContent); found {
					name = resolved
				}
			}

			price, err := n.prices.Format(info.MerchPrice.CurrentPrice, country)
			if err != nil {
				return nil, err
			}

			imageURL, err := n.images.Resolve(ctx, ImageRef{SKU: sku, Channel: ch, Content: th.PublishedContent})
			if err != nil {
				return nil, err
			}

			products = append(products, model.Product{
				ID:              uuid.NewString(),
				Status:          status,
				Name:            name,
				SKU:             sku,
				Price:           price,
				ReleaseDateTime: release,
				ImageURL:        imageURL,
			})
		}
	}

	sort.SliceStable(products, func(i, j int) bool {
		return products[i].ReleaseDateTime.Before(products[j].ReleaseDateTime)
	})
	return products, nil
}

// releaseTime prefers the launch view's entry date and falls back to the
// commerce start date.
func releaseTime(info feed.ProductInfo) (time.Time, bool) {
	if info.LaunchView != nil && info.LaunchView.StartEntryDate != "" {
		if ts, err := time.Parse(time.RFC3339, info.LaunchView.StartEntryDate); err == nil {
			return ts, true
		}
	}
	if info.MerchProduct.CommerceStartDate != "" {
		if ts, err := time.Parse(time.RFC3339, info.MerchProduct.CommerceStartDate); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
