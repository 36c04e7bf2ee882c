// File: internal/jobs/listing_sync.go
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pawmart_web/internal/apiclient"
	"pawmart_web/internal/config"
	"pawmart_web/internal/domain"
	"pawmart_web/internal/listing/esutil"
	"pawmart_web/internal/platform/elasticsearch"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ErrMirrorDisabled is returned by RunOnce when ELASTICSEARCH_URL is empty.
var ErrMirrorDisabled = errors.New("listing mirror is disabled")

const defaultBatchSize = 100

// ListingSource reads listings from the marketplace backend.
type ListingSource interface {
	ListListings(ctx context.Context, q apiclient.ListingQuery) ([]domain.Listing, error)
}

// SyncOptions tunes one synchronisation run.
type SyncOptions struct {
	BatchSize int
	// Refresh is the bulk refresh policy: "true", "false" or "wait_for".
	Refresh string
}

// SyncResult summarises one run.
type SyncResult struct {
	Fetched int
	Indexed int
	Failed  int
	Batches int
}

// ListingSyncJob copies the backend's listings into the search mirror.
type ListingSyncJob struct {
	source        ListingSource
	es            *elasticsearch.ESClientWrapper
	logger        *zap.Logger
	cfg           *config.Config
	cronScheduler *cron.Cron
}

// NewListingSyncJob creates a new ListingSyncJob. es may be nil, in which
// case the job never runs.
func NewListingSyncJob(
	source ListingSource,
	es *elasticsearch.ESClientWrapper,
	logger *zap.Logger,
	cfg *config.Config,
) *ListingSyncJob {
	cl := NewCronLogger(logger.Named("cron"))
	scheduler := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	return &ListingSyncJob{
		source:        source,
		es:            es,
		logger:        logger.Named("ListingSyncJob"),
		cfg:           cfg,
		cronScheduler: scheduler,
	}
}

// SetupAndStart schedules and starts the cron job.
func (j *ListingSyncJob) SetupAndStart() error {
	if j.es == nil {
		j.logger.Info("Listing mirror disabled, sync job will not run.")
		return nil
	}
	jobSpec := j.cfg.ListingSyncJobSchedule
	if jobSpec == "" {
		j.logger.Warn("Listing sync job schedule not defined (LISTING_SYNC_JOB_SCHEDULE). Job will not run.")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(jobSpec, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule listing sync job", zap.String("spec", jobSpec), zap.Error(err))
		return err
	}

	j.logger.Info("Listing sync job scheduled", zap.String("spec", jobSpec), zap.Any("jobID", jobID))
	j.cronScheduler.Start()
	return nil
}

func (j *ListingSyncJob) runJob() {
	j.logger.Info("Starting listing sync job run...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := j.RunOnce(ctx, SyncOptions{})
	if err != nil {
		j.logger.Error("Listing sync job run failed", zap.Error(err), zap.Int("indexed", result.Indexed), zap.Int("failed", result.Failed))
		return
	}
	j.logger.Info("Listing sync job run completed",
		zap.Int("fetched", result.Fetched),
		zap.Int("indexed", result.Indexed),
		zap.Int("batches", result.Batches),
	)
}

// RunOnce fetches every listing and bulk-indexes them in batches, creating
// the index first when it is missing. A failed batch is counted and the run
// continues; the returned error reports failed documents.
func (j *ListingSyncJob) RunOnce(ctx context.Context, opts SyncOptions) (SyncResult, error) {
	var result SyncResult
	if j.es == nil {
		return result, ErrMirrorDisabled
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.Refresh == "" {
		opts.Refresh = "false"
	}

	if err := elasticsearch.CreateListingsIndexIfNotExists(ctx, j.es, j.logger); err != nil {
		return result, err
	}

	listings, err := j.source.ListListings(ctx, apiclient.ListingQuery{})
	if err != nil {
		return result, fmt.Errorf("fetch listings: %w", err)
	}
	result.Fetched = len(listings)

	docs, skipped := esutil.Documents(listings)
	for _, i := range skipped {
		j.logger.Warn("Skipping listing that cannot be mirrored", zap.String("name", listings[i].Name))
	}
	result.Failed += len(skipped)

	for start := 0; start < len(docs); start += opts.BatchSize {
		end := start + opts.BatchSize
		if end > len(docs) {
			end = len(docs)
		}
		result.Batches++
		batch, err := elasticsearch.BulkIndex(ctx, j.es, j.logger, docs[start:end], opts.Refresh)
		if err != nil {
			j.logger.Error("Bulk request failed", zap.Int("batchNumber", result.Batches), zap.Error(err))
		}
		result.Indexed += batch.Indexed
		result.Failed += batch.Failed
	}

	if result.Failed > 0 {
		return result, fmt.Errorf("%d listings failed to sync", result.Failed)
	}
	return result, nil
}

// Stop gracefully stops the cron scheduler.
func (j *ListingSyncJob) Stop() {
	if j.cronScheduler != nil {
		j.logger.Info("Stopping listing sync job scheduler...")
		stopCtx := j.cronScheduler.Stop()
		select {
		case <-stopCtx.Done():
			j.logger.Info("Listing sync job scheduler stopped gracefully.")
		case <-time.After(10 * time.Second):
			j.logger.Warn("Listing sync job scheduler stop timed out.")
		}
	}
}

// --- Cron Logger Adapter ---

// cronLogger adapts zap.Logger to cron.Logger interface.
type cronLogger struct {
	zl *zap.Logger
}

// NewCronLogger creates a new cronLogger.
func NewCronLogger(zl *zap.Logger) cron.Logger {
	return &cronLogger{zl: zl}
}

// Info logs routine messages from cron.
func (cl *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	cl.zl.Debug(msg, cl.parseKeysAndValues(keysAndValues...)...)
}

// Error logs error messages from cron.
func (cl *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := cl.parseKeysAndValues(keysAndValues...)
	fields = append(fields, zap.Error(err))
	cl.zl.Error(msg, fields...)
}

func (cl *cronLogger) parseKeysAndValues(keysAndValues ...interface{}) []zap.Field {
	var fields []zap.Field
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), keysAndValues[i+1]))
		} else {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), "MISSING_VALUE"))
		}
	}
	return fields
}
