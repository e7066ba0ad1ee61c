package ingest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/sneakify/feed-adapter/internal/feed"
	"github.com/sneakify/feed-adapter/internal/metrics"
	"github.com/sneakify/feed-adapter/internal/publisher"
	"github.com/sneakify/feed-adapter/internal/snapshot"
	"github.com/sneakify/feed-adapter/pkg/model"
)

// Fetcher pulls every feed page for one (channel, country) pair.
type Fetcher interface {
	FetchAll(ctx context.Context, ch model.Channel, country string) ([]feed.Thread, error)
}

// Normalizer turns fetched threads into canonical products.
type Normalizer interface {
	Normalize(ctx context.Context, ch model.Channel, country string, threads []feed.Thread) ([]model.Product, error)
}

// EventSink announces replaced collections on the bus.
type EventSink interface {
	PublishSnapshotReplaced(ctx context.Context, ch model.Channel, evt publisher.SnapshotReplaced) error
}

// RunSummary records the outcome of the most recent ingestion cycle.
type RunSummary struct {
	RunID      string    `json:"runId"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Replaced   []string  `json:"replaced"`
	Failed     []string  `json:"failed"`
}

// Orchestrator drives the full refresh cycle: countries in sequence, the two
// channels of each country concurrently. Cycles never overlap; a trigger that
// lands mid-cycle is dropped.
type Orchestrator struct {
	logger     *zap.Logger
	fetcher    Fetcher
	normalizer Normalizer
	store      snapshot.Store
	events     EventSink // nil when the bus is disabled
	countries  []string
	interval   time.Duration

	running atomic.Bool
	trigger chan struct{}

	mu   sync.Mutex
	last RunSummary
}

func NewOrchestrator(logger *zap.Logger, fetcher Fetcher, normalizer Normalizer, store snapshot.Store, events EventSink, countries []string, interval time.Duration) *Orchestrator {
	return &Orchestrator{
		logger:     logger,
		fetcher:    fetcher,
		normalizer: normalizer,
		store:      store,
		events:     events,
		countries:  countries,
		interval:   interval,
		trigger:    make(chan struct{}, 1),
	}
}

// Start runs one cycle immediately, then on every tick or manual trigger
// until the context is cancelled.
func (o *Orchestrator) Start(ctx context.Context) {
	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	o.RunCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			o.logger.Info("ingest.stopped")
			return
		case <-ticker.C:
			o.RunCycle(ctx)
		case <-o.trigger:
			o.RunCycle(ctx)
		}
	}
}

// TriggerRefresh queues an out-of-schedule cycle. It reports false when a
// cycle is already running or queued.
func (o *Orchestrator) TriggerRefresh() bool {
	if o.running.Load() {
		return false
	}
	select {
	case o.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// SubscribeRefresh wires TriggerRefresh to a bus subject so other services
// can request an immediate refresh.
func (o *Orchestrator) SubscribeRefresh(nc *nats.Conn, subject string) (*nats.Subscription, error) {
	return nc.Subscribe(subject, func(msg *nats.Msg) {
		if o.TriggerRefresh() {
			o.logger.Info("ingest.refresh_requested", zap.String("subject", subject))
		} else {
			o.logger.Warn("ingest.refresh_skipped_busy", zap.String("subject", subject))
		}
	})
}

// LastRun returns the summary of the most recently finished cycle.
func (o *Orchestrator) LastRun() RunSummary {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.last
}

// RunCycle executes one full refresh. It reports false when another cycle
// holds the slot.
func (o *Orchestrator) RunCycle(ctx context.Context) bool {
	if !o.running.CompareAndSwap(false, true) {
		o.logger.Warn("ingest.cycle_skipped_overlap")
		return false
	}
	defer o.running.Store(false)

	start := time.Now()
	summary := RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: start.UTC(),
	}

	o.logger.Info("ingest.cycle_started",
		zap.String("run_id", summary.RunID),
		zap.Int("countries", len(o.countries)))

	for _, country := range o.countries {
		if ctx.Err() != nil {
			break
		}
		replaced, failed := o.ingestCountry(ctx, summary.RunID, country)
		summary.Replaced = append(summary.Replaced, replaced...)
		summary.Failed = append(summary.Failed, failed...)
	}

	summary.FinishedAt = time.Now().UTC()
	metrics.ObserveDuration(metrics.CycleDuration, start)

	o.mu.Lock()
	o.last = summary
	o.mu.Unlock()

	o.logger.Info("ingest.cycle_finished",
		zap.String("run_id", summary.RunID),
		zap.Int("replaced", len(summary.Replaced)),
		zap.Int("failed", len(summary.Failed)),
		zap.Duration("took", summary.FinishedAt.Sub(summary.StartedAt)))
	return true
}

// ingestCountry refreshes both channels of one country concurrently. A
// failure on one channel never blocks the other.
func (o *Orchestrator) ingestCountry(ctx context.Context, runID, country string) (replaced, failed []string) {
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, ch := range model.Channels {
		wg.Add(1)
		go func(ch model.Channel) {
			defer wg.Done()

			name := model.CollectionName(ch, country)
			done, err := o.ingestChannel(ctx, runID, ch, country)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, fmt.Sprintf("%s: %v", name, err))
			} else if done {
				replaced = append(replaced, name)
			}
		}(ch)
	}
	wg.Wait()
	return replaced, failed
}

// ingestChannel runs fetch, normalize, store for one (channel, country) pair.
// The collection is replaced only with a complete, non-empty batch; any
// earlier snapshot outlives a failed refresh.
func (o *Orchestrator) ingestChannel(ctx context.Context, runID string, ch model.Channel, country string) (bool, error) {
	log := o.logger.With(
		zap.String("run_id", runID),
		zap.String("channel", ch.Slug),
		zap.String("country", country),
	)

	threads, err := o.fetcher.FetchAll(ctx, ch, country)
	if err != nil {
		metrics.IncIngestFailure(ch.Slug, country, "fetch")
		log.Error("ingest.fetch_failed", zap.Error(err))
		return false, err
	}

	products, err := o.normalizer.Normalize(ctx, ch, country, threads)
	if err != nil {
		metrics.IncIngestFailure(ch.Slug, country, "normalize")
		log.Error("ingest.normalize_failed", zap.Error(err))
		return false, err
	}
	if len(products) == 0 {
		log.Warn("ingest.empty_batch_kept_previous")
		return false, nil
	}

	name := model.CollectionName(ch, country)
	if err := o.store.ReplaceCollection(ctx, name, products); err != nil {
		metrics.IncIngestFailure(ch.Slug, country, "store")
		log.Error("ingest.store_failed", zap.Error(err))
		return false, err
	}

	log.Info("ingest.collection_replaced",
		zap.String("collection", name),
		zap.Int("products", len(products)))

	if o.events != nil {
		evt := publisher.SnapshotReplaced{
			RunID:       runID,
			Channel:     ch.Name,
			Country:     country,
			Collection:  name,
			Products:    len(products),
			CompletedAt: time.Now().UTC(),
		}
		if err := o.events.PublishSnapshotReplaced(ctx, ch, evt); err != nil {
			log.Warn("ingest.event_publish_failed", zap.Error(err))
		}
	}
	return true, nil
}
