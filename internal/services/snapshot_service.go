package services

import (
	"context"
	"errors"
	"fmt"
	"pcsd/internal/models"
	"pcsd/internal/providers"
	"pcsd/internal/storage"
)

var ErrUnableToGather = errors.New("unable to gather player counts")

const UnableToGatherMessage = "Unable to gather player counts right now."

type SnapshotServiceInterface interface {
	Record(ctx context.Context, ts *int64, counts map[string]int) (int64, error)
	EnsureLatest(ctx context.Context) error
	Poll(ctx context.Context) (int64, error)
}

type SnapshotService struct {
	store    storage.SnapshotStoreInterface
	acquirer AcquirerInterface
	cache    providers.CacheProviderInterface
	metrics  providers.MetricsProviderInterface
	logger   providers.Logger
}

func NewSnapshotService(store storage.SnapshotStoreInterface, acquirer AcquirerInterface, cache providers.CacheProviderInterface, metrics providers.MetricsProviderInterface, logger providers.Logger) SnapshotServiceInterface {
	return &SnapshotService{
		store:    store,
		acquirer: acquirer,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
	}
}

// Record stores counts at ts (now when nil) and drops cached charts.
func (ss *SnapshotService) Record(ctx context.Context, ts *int64, counts map[string]int) (int64, error) {
	at, err := ss.store.Record(ctx, ts, counts)
	if err != nil {
		return 0, err
	}
	ss.cache.Clear()
	ss.metrics.IncSnapshotsRecorded()

	latest, err := ss.store.Latest(ctx)
	if err != nil {
		ss.logger.Warnf(providers.TypeApp, "Unable to refresh player gauges: %s", err)
		return at, nil
	}
	if latest != nil {
		for _, cat := range models.Categories() {
			ss.metrics.SetPlayerCount(string(cat), latest.Counts[cat])
		}
	}
	return at, nil
}

// EnsureLatest acquires and records a snapshot only when the store is empty.
func (ss *SnapshotService) EnsureLatest(ctx context.Context) error {
	latest, err := ss.store.Latest(ctx)
	if err != nil {
		return err
	}
	if latest != nil {
		return nil
	}
	_, err = ss.Poll(ctx)
	return err
}

// Poll acquires a fresh mapping and records it at the current time.
func (ss *SnapshotService) Poll(ctx context.Context) (int64, error) {
	counts, err := ss.acquirer.Acquire(ctx)
	if err != nil {
		ss.logger.Warnf(providers.TypeApp, "Acquisition failed: %s", err)
		return 0, fmt.Errorf("%w: %w", ErrUnableToGather, err)
	}
	return ss.Record(ctx, nil, counts)
}
