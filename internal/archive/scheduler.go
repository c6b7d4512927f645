package archive

import (
	"context"
	"errors"
	"pcsd/internal/archive/interfaces"
	"pcsd/internal/providers"
	"pcsd/internal/services"
	"pcsd/internal/structures"
	"sync"
	"time"

	"github.com/roylee0704/gron"
)

const jobTimeout = time.Minute

type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	snapshots   services.SnapshotServiceInterface
	fileManager *FileManager
	metrics     providers.MetricsProviderInterface
	cron        *gron.Cron
	opsMu       sync.Mutex
}

// Init starts the periodic archive export and, when an acquisition source
// is configured, the periodic poll.
func (s *Scheduler) Init() {
	s.cron = gron.New()

	if s.config.Archive.FilePath != "" && s.config.Archive.SaveInterval > 0 {
		s.cron.AddFunc(gron.Every(s.config.Archive.SaveInterval), func() {
			_ = s.Persist()
		})
	}

	if s.config.Acquisition.URL != "" && s.config.Acquisition.Interval > 0 {
		s.cron.AddFunc(gron.Every(s.config.Acquisition.Interval), s.poll)
	}

	s.cron.Start()
}

func (s *Scheduler) poll() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	ts, err := s.snapshots.Poll(ctx)
	if err != nil {
		if !errors.Is(err, services.ErrUnableToGather) {
			s.logger.Errorf(providers.TypeApp, "Error while recording polled counts: %s", err)
		}
		return
	}
	s.logger.Debugf(providers.TypeApp, "Recorded polled snapshot at %d", ts)
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Restore imports the archive file into an empty store.
func (s *Scheduler) Restore() error {
	if s.config.Archive.FilePath == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.fileManager.LoadFromFile(ctx, s.config.Archive.FilePath)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Infof(providers.TypeApp, "Imported %d snapshots from %s", n, s.config.Archive.FilePath)
	}
	return nil
}

func (s *Scheduler) Persist() error {
	if s.config.Archive.FilePath == "" {
		return nil
	}
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	n, err := s.fileManager.SaveToFile(ctx, s.config.Archive.FilePath)
	s.metrics.ObserveArchiveDuration(time.Since(start))
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while archiving history: %s", err)
		return err
	}
	s.logger.Infof(providers.TypeApp, "Archived %d snapshots to %s", n, s.config.Archive.FilePath)
	return nil
}

// Close stops the jobs and releases the archive codec. Persist must not be
// called afterwards.
func (s *Scheduler) Close() {
	s.Stop()
	s.opsMu.Lock()
	defer s.opsMu.Unlock()
	s.fileManager.Close()
}

func NewScheduler(config *structures.Config, logger providers.Logger, snapshots services.SnapshotServiceInterface, fileManager *FileManager, metrics providers.MetricsProviderInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:      config,
		logger:      logger,
		snapshots:   snapshots,
		fileManager: fileManager,
		metrics:     metrics,
	}
}
