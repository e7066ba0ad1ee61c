package snapshot

import (
	"context"

	"github.com/sneakify/feed-adapter/pkg/model"
)

// Store defines the contract for persisting catalog snapshots. A snapshot
// replaces the named collection wholesale; readers never observe a partially
// written one.
type Store interface {
	ReplaceCollection(ctx context.Context, name string, products []model.Product) error
	HealthCheck(ctx context.Context) error
	Close() error
}
