package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sneakify/feed-adapter/internal/feed"
	"github.com/sneakify/feed-adapter/pkg/model"
)

func TestProbeResolver_RewritesResolvedVariant(t *testing.T) {
	var probedPath string
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/is/image/DotCom/", func(w http.ResponseWriter, r *http.Request) {
		probedPath = r.URL.Path
		http.Redirect(w, r, srv.URL+"/render?variant=rgb:FFFFFF,q_auto,h_400", http.StatusFound)
	})
	mux.HandleFunc("/render", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r := NewProbeResolver(zap.NewNop(), srv.URL, nil)
	got, err := r.Resolve(context.Background(), ImageRef{SKU: "AB1234-001"})
	require.NoError(t, err)

	assert.Equal(t, "/is/image/DotCom/AB1234_001", probedPath,
		"sku separator must be normalized to an underscore")
	assert.Equal(t, srv.URL+"/render?variant=rgb:D4D4D4,q_auto,h_720", got)
}

func TestProbeResolver_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	r := NewProbeResolver(zap.NewNop(), srv.URL, nil)
	_, err := r.Resolve(context.Background(), ImageRef{SKU: "AB1234-001"})
	require.Error(t, err)

	var imgErr *ImageError
	assert.True(t, errors.As(err, &imgErr))
}

func TestProbeResolver_MissingSKU(t *testing.T) {
	r := NewProbeResolver(zap.NewNop(), "http://images.invalid", nil)
	_, err := r.Resolve(context.Background(), ImageRef{})
	require.Error(t, err)
}

func TestEmbeddedResolver_SelectsCardPerChannel(t *testing.T) {
	content := &feed.PublishedContent{}
	content.Properties.CoverCard.SquarishURL = "https://img.example.com/cover.png"
	content.Properties.ProductCard.SquarishURL = "https://img.example.com/product.png"

	r := &EmbeddedResolver{}

	got, err := r.Resolve(context.Background(), ImageRef{SKU: "AB1234-001", Channel: model.ChannelSNKRS, Content: content})
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/cover.png", got)

	got, err = r.Resolve(context.Background(), ImageRef{SKU: "AB1234-001", Channel: model.ChannelCommerce, Content: content})
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/product.png", got)
}

func TestEmbeddedResolver_MissingField(t *testing.T) {
	r := &EmbeddedResolver{}

	_, err := r.Resolve(context.Background(), ImageRef{SKU: "AB1234-001", Channel: model.ChannelSNKRS, Content: &feed.PublishedContent{}})
	require.Error(t, err)

	_, err = r.Resolve(context.Background(), ImageRef{SKU: "AB1234-001", Channel: model.ChannelSNKRS})
	require.Error(t, err)
}

func TestNewImageResolver_StrategySelection(t *testing.T) {
	probe, err := NewImageResolver("probe", zap.NewNop(), "http://images.invalid", nil)
	require.NoError(t, err)
	assert.IsType(t, &ProbeResolver{}, probe)

	embedded, err := NewImageResolver("embedded", zap.NewNop(), "", nil)
	require.NoError(t, err)
	assert.IsType(t, &EmbeddedResolver{}, embedded)

	_, err = NewImageResolver("inline", zap.NewNop(), "", nil)
	require.Error(t, err)
}
