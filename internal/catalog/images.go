package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sneakify/feed-adapter/internal/feed"
	"github.com/sneakify/feed-adapter/internal/metrics"
	"github.com/sneakify/feed-adapter/internal/rate"
	"github.com/sneakify/feed-adapter/pkg/model"
)

// ImageError is returned when no representative image URL could be derived
// for a product entry.
type ImageError struct {
	SKU string
	Err error
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("image: resolving %q: %v", e.SKU, e.Err)
}

func (e *ImageError) Unwrap() error { return e.Err }

// ImageRef carries everything either resolution strategy may need.
type ImageRef struct {
	SKU     string
	Channel model.Channel
	Content *feed.PublishedContent
}

// ImageResolver derives a representative image URL for one product entry.
// Implementations are interchangeable; the strategy is picked at startup per
// feed version, never branched inside the normalizer.
type ImageResolver interface {
	Resolve(ctx context.Context, ref ImageRef) (string, error)
}

// NewImageResolver selects the configured strategy.
func NewImageResolver(strategy string, logger *zap.Logger, imageBaseURL string, rateMgr *rate.Manager) (ImageResolver, error) {
	switch strategy {
	case "probe":
		return NewProbeResolver(logger, imageBaseURL, rateMgr), nil
	case "embedded":
		return &EmbeddedResolver{}, nil
	default:
		return nil, fmt.Errorf("image: unknown strategy %q", strategy)
	}
}

// The image service answers a per-SKU probe with a redirect whose final URL
// carries a low-resolution white-background variant; swapping this token
// yields the grey 720px rendition.
const (
	probeVariantToken    = "rgb:FFFFFF,q_auto,h_400"
	probeUpgradedVariant = "rgb:D4D4D4,q_auto,h_720"
)

// ProbeResolver resolves images by probing the image service with the SKU and
// rewriting the redirect target. One blocking request per product; probes go
// through the shared request budget.
type ProbeResolver struct {
	logger  *zap.Logger
	baseURL string
	client  *http.Client
	rateMgr *rate.Manager
}

func NewProbeResolver(logger *zap.Logger, baseURL string, rateMgr *rate.Manager) *ProbeResolver {
	return &ProbeResolver{
		logger:  logger,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		rateMgr: rateMgr,
	}
}

func (r *ProbeResolver) Resolve(ctx context.Context, ref ImageRef) (string, error) {
	if ref.SKU == "" {
		return "", &ImageError{SKU: ref.SKU, Err: errors.New("missing sku")}
	}
	if r.rateMgr != nil {
		if err := r.rateMgr.Wait(ctx, "images"); err != nil {
			return "", err
		}
	}

	// The image service keys renditions on the style-color with an underscore
	// separator.
	url := r.baseURL + "/is/image/DotCom/" + strings.Replace(ref.SKU, "-", "_", 1)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &ImageError{SKU: ref.SKU, Err: err}
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	metrics.ObserveDuration(metrics.ImageProbeDuration, start)
	if err != nil {
		return "", &ImageError{SKU: ref.SKU, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return "", &ImageError{SKU: ref.SKU, Err: fmt.Errorf("image service returned %d", resp.StatusCode)}
	}

	resolved := resp.Request.URL.String()
	return strings.Replace(resolved, probeVariantToken, probeUpgradedVariant, 1), nil
}

// EmbeddedResolver reads the pre-rendered squarish URL straight from published
// content: the cover card for the SNKRS surface, the product card for the
// commerce surface.
type EmbeddedResolver struct{}

func (EmbeddedResolver) Resolve(_ context.Context, ref ImageRef) (string, error) {
	if ref.Content == nil {
		return "", &ImageError{SKU: ref.SKU, Err: errors.New("missing published content")}
	}

	var url string
	if ref.Channel == model.ChannelSNKRS {
		url = ref.Content.Properties.CoverCard.SquarishURL
	} else {
		url = ref.Content.Properties.ProductCard.SquarishURL
	}
	if url == "" {
		return "", &ImageError{SKU: ref.SKU, Err: fmt.Errorf("no squarish url for channel %s", ref.Channel.Slug)}
	}
	return url, nil
}
