package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sneakify/feed-adapter/internal/feed"
	"github.com/sneakify/feed-adapter/internal/market"
	"github.com/sneakify/feed-adapter/pkg/model"
)

type staticImages struct {
	url string
	err error
}

func (s staticImages) Resolve(context.Context, ImageRef) (string, error) {
	return s.url, s.err
}

func newNormalizer(images ImageResolver) *Normalizer {
	return NewNormalizer(zap.NewNop(), market.NewRegistry(), images)
}

func productThread(sku, status, commerceStart string) feed.Thread {
	return feed.Thread{
		ID: "thread-" + sku,
		ProductInfo: []feed.ProductInfo{{
			MerchProduct: feed.MerchProduct{
				Status:            status,
				StyleColor:        sku,
				CommerceStartDate: commerceStart,
			},
			ProductContent: feed.ProductContent{FullTitle: "Full Title " + sku},
			MerchPrice:     feed.MerchPrice{CurrentPrice: decimal.NewFromFloat(129.99), Currency: "USD"},
		}},
	}
}

func TestNormalize_FiltersCloseoutAndSortsByRelease(t *testing.T) {
	threads := []feed.Thread{
		productThread("CC3333-003", "ACTIVE", "2024-05-03T10:00:00Z"),
		productThread("AA1111-001", "UPCOMING", "2024-05-01T10:00:00Z"),
		productThread("DD4444-004", "CLOSEOUT", "2024-05-02T09:00:00Z"),
		productThread("BB2222-002", "ACTIVE", "2024-05-02T10:00:00Z"),
	}

	products, err := newNormalizer(staticImages{url: "https://img.example.com/x.png"}).
		Normalize(context.Background(), model.ChannelCommerce, "US", threads)
	require.NoError(t, err)
	require.Len(t, products, 3)

	var skus []string
	for _, p := range products {
		skus = append(skus, p.SKU)
	}
	assert.Equal(t, []string{"AA1111-001", "BB2222-002", "CC3333-003"}, skus)

	for i := 1; i < len(products); i++ {
		assert.False(t, products[i].ReleaseDateTime.Before(products[i-1].ReleaseDateTime))
	}
}

func TestNormalize_SNKRSSingleProductUsesPublishedName(t *testing.T) {
	th := productThread("AB1234-001", "ACTIVE", "2024-05-01T10:00:00Z")
	th.PublishedContent = contentWithCoverCard("Panda", "Air Max")

	products, err := newNormalizer(staticImages{url: "u"}).
		Normalize(context.Background(), model.ChannelSNKRS, "US", []feed.Thread{th})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Air Max 'Panda'", products[0].Name)
}

func TestNormalize_CommerceChannelKeepsFullTitle(t *testing.T) {
	th := productThread("AB1234-001", "ACTIVE", "2024-05-01T10:00:00Z")
	th.PublishedContent = contentWithCoverCard("Panda", "Air Max")

	products, err := newNormalizer(staticImages{url: "u"}).
		Normalize(context.Background(), model.ChannelCommerce, "US", []feed.Thread{th})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Full Title AB1234-001", products[0].Name)
}

func TestNormalize_MultiProductThreadKeepsFullTitles(t *testing.T) {
	th := feed.Thread{
		ID:               "multi",
		PublishedContent: contentWithCoverCard("Panda", "Air Max"),
		ProductInfo: []feed.ProductInfo{
			productThread("AA1111-001", "ACTIVE", "2024-05-01T10:00:00Z").ProductInfo[0],
			productThread("BB2222-002", "ACTIVE", "2024-05-01T11:00:00Z").ProductInfo[0],
		},
	}

	products, err := newNormalizer(staticImages{url: "u"}).
		Normalize(context.Background(), model.ChannelSNKRS, "US", []feed.Thread{th})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Full Title AA1111-001", products[0].Name)
	assert.Equal(t, "Full Title BB2222-002", products[1].Name)
}

func TestNormalize_LaunchViewDatePreferred(t *testing.T) {
	th := productThread("AB1234-001", "ACTIVE", "2024-05-01T10:00:00Z")
	th.ProductInfo[0].LaunchView = &feed.LaunchView{StartEntryDate: "2024-06-15T08:00:00Z"}

	products, err := newNormalizer(staticImages{url: "u"}).
		Normalize(context.Background(), model.ChannelCommerce, "US", []feed.Thread{th})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC), products[0].ReleaseDateTime)
}

func TestNormalize_SkipsUnresolvableRecords(t *testing.T) {
	noProductInfo := feed.Thread{ID: "empty"}
	noSKU := productThread("", "ACTIVE", "2024-05-01T10:00:00Z")
	badDates := productThread("AB1234-001", "ACTIVE", "not-a-date")
	ok := productThread("CD5678-002", "ACTIVE", "2024-05-01T10:00:00Z")

	products, err := newNormalizer(staticImages{url: "u"}).
		Normalize(context.Background(), model.ChannelCommerce, "US", []feed.Thread{noProductInfo, noSKU, badDates, ok})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "CD5678-002", products[0].SKU)
}

func TestNormalize_ZeroPriceRendersSentinel(t *testing.T) {
	th := productThread("AB1234-001", "ACTIVE", "2024-05-01T10:00:00Z")
	th.ProductInfo[0].MerchPrice.CurrentPrice = decimal.Zero

	products, err := newNormalizer(staticImages{url: "u"}).
		Normalize(context.Background(), model.ChannelCommerce, "US", []feed.Thread{th})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "-", products[0].Price)
}

func TestNormalize_ImageFailureAbortsBatch(t *testing.T) {
	threads := []feed.Thread{
		productThread("AA1111-001", "ACTIVE", "2024-05-01T10:00:00Z"),
	}

	_, err := newNormalizer(staticImages{err: &ImageError{SKU: "AA1111-001", Err: errors.New("probe failed")}}).
		Normalize(context.Background(), model.ChannelCommerce, "US", threads)
	require.Error(t, err)

	var imgErr *ImageError
	assert.True(t, errors.As(err, &imgErr))
}

func TestNormalize_FreshIDsSameContentAcrossRuns(t *testing.T) {
	threads := []feed.Thread{
		productThread("AA1111-001", "ACTIVE", "2024-05-01T10:00:00Z"),
		productThread("BB2222-002", "ACTIVE", "2024-05-02T10:00:00Z"),
	}
	n := newNormalizer(staticImages{url: "u"})

	first, err := n.Normalize(context.Background(), model.ChannelCommerce, "US", threads)
	require.NoError(t, err)
	second, err := n.Normalize(context.Background(), model.ChannelCommerce, "US", threads)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.NotEqual(t, first[i].ID, second[i].ID, "ids are regenerated every run")
		assert.NotEmpty(t, first[i].ID)

		a, b := first[i], second[i]
		a.ID, b.ID = "", ""
		assert.Equal(t, a, b, "all fields other than id are identical")
	}
}
