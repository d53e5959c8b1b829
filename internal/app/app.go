// Package app provides the application bootstrap and runtime orchestration.
//
// The App type wires together the document fetcher, the image pool, the
// rotation scheduler and the Telegram publisher, and exposes two operational
// modes:
//
//   - Once mode: a single posting run, suitable for cron
//   - Loop mode: an immediate run followed by a ticker-driven loop
//
// Both modes guard each run with a Postgres advisory lock so overlapping
// deployments cannot double-post.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/maheshsv/telegram-doc-poster/internal/bot"
	"github.com/maheshsv/telegram-doc-poster/internal/content"
	"github.com/maheshsv/telegram-doc-poster/internal/platform/config"
	"github.com/maheshsv/telegram-doc-poster/internal/platform/observability"
	"github.com/maheshsv/telegram-doc-poster/internal/platform/worker"
	"github.com/maheshsv/telegram-doc-poster/internal/rotation"
	"github.com/maheshsv/telegram-doc-poster/internal/source"
	db "github.com/maheshsv/telegram-doc-poster/internal/storage"
)

const (
	// posterLockID is the advisory lock key for single-poster election.
	posterLockID = int64(52817)

	logFieldCorrelationID = "correlation_id"
	logFieldTrack         = "track"
	logFieldUnits         = "units"
	logFieldImages        = "images"

	msgRunFailed = "posting run failed"
)

// App holds the application dependencies and provides methods to run the
// posting modes.
type App struct {
	cfg      *config.Config
	database *db.DB
	logger   *zerolog.Logger
}

// New creates a new App instance with the given dependencies.
func New(cfg *config.Config, database *db.DB, logger *zerolog.Logger) *App {
	return &App{
		cfg:      cfg,
		database: database,
		logger:   logger,
	}
}

// StartHealthServer starts the health check and metrics server.
func (a *App) StartHealthServer(ctx context.Context) error {
	server := observability.NewServer(a.database.Pool, a.cfg.HealthPort, a.logger)

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("health server: %w", err)
	}

	return nil
}

// RunOnce performs a single posting run and returns.
func (a *App) RunOnce(ctx context.Context) error {
	poster, err := bot.New(a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("bot initialization failed: %w", err)
	}

	return a.runOnceWithLock(ctx, poster, true)
}

// Run starts the posting loop: one run immediately, then one per interval
// until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	poster, err := bot.New(a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("bot initialization failed: %w", err)
	}

	return worker.TickerLoop(ctx, worker.TickerConfig{ //nolint:wrapcheck
		Name:       "poster",
		Interval:   a.cfg.RunIntervalDuration(),
		RunOnStart: true,
		OnTick: func(ctx context.Context) {
			if err := a.runOnceWithLock(ctx, poster, false); err != nil {
				a.logger.Error().Err(err).Msg(msgRunFailed)
			}
		},
		Logger: a.logger,
	})
}

// runOnceWithLock executes one posting run under the advisory lock. In
// strict mode a lock held elsewhere is reported to the caller; the loop mode
// just skips the tick.
func (a *App) runOnceWithLock(ctx context.Context, poster *bot.Bot, strict bool) error {
	correlationID := uuid.New().String()
	logger := a.logger.With().Str(logFieldCorrelationID, correlationID).Logger()
	logger.Info().Msg("Starting posting run")

	if !a.cfg.LeaderElectionEnabled {
		return a.runPosting(ctx, &logger, poster)
	}

	lock, err := a.database.TryAcquireAdvisoryLock(ctx, posterLockID)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	if lock == nil {
		logger.Info().Msg("did not acquire lock, another instance is probably running. Skipping run.")

		if strict {
			return fmt.Errorf("poster lock %d held by another instance", posterLockID)
		}

		return nil
	}

	defer func() {
		if err := lock.Release(ctx); err != nil {
			logger.Warn().Err(err).Msg("failed to release advisory lock")
		}
	}()

	return a.runPosting(ctx, &logger, poster)
}

// runPosting gathers content and images, then hands them to the scheduler.
func (a *App) runPosting(ctx context.Context, logger *zerolog.Logger, poster *bot.Bot) error {
	start := time.Now()
	defer func() {
		observability.RunDuration.Observe(time.Since(start).Seconds())
	}()

	fetcher := source.NewDocFetcher(a.cfg.DocFetchTimeout, a.cfg.DocFetchRPS, logger)
	units := make(map[rotation.Track][]string, 2)

	trackDocs := map[rotation.Track]string{
		rotation.TrackPrimary:   a.cfg.PrimaryDocID,
		rotation.TrackSecondary: a.cfg.SecondaryDocID,
	}

	for track, docID := range trackDocs {
		fetchStart := time.Now()

		raw, err := fetcher.Fetch(ctx, docID)
		if err != nil {
			// An unavailable document leaves its track with zero units for
			// this run; the scheduler then skips the track's decisions while
			// the other track keeps posting.
			logger.Warn().Err(err).Str(logFieldTrack, track.String()).Msg("document unavailable, track empty for this run")
			a.notifyAdmins(ctx, poster, fmt.Sprintf("Document for %s track unavailable: %v", track, err))

			continue
		}

		observability.DocFetchDuration.WithLabelValues(track.String()).Observe(time.Since(fetchStart).Seconds())

		units[track] = content.Segment(raw, a.cfg.SplitDelimiter)
		observability.ContentUnits.WithLabelValues(track.String()).Set(float64(len(units[track])))

		logger.Info().
			Str(logFieldTrack, track.String()).
			Int(logFieldUnits, len(units[track])).
			Msg("Document segmented")
	}

	images := source.ListImages(a.cfg.ImageRoot)
	logger.Info().Int(logFieldImages, len(images)).Msg("Image pool gathered")

	policy, _ := content.ParseOverlongWordPolicy(a.cfg.OverlongWordPolicy)

	scheduler := rotation.NewScheduler(rotation.Options{
		Ratio:              rotation.Ratio{Primary: a.cfg.TrackRatio[0], Secondary: a.cfg.TrackRatio[1]},
		PostsPerRun:        a.cfg.PostsPerRun,
		PreferCaption:      a.cfg.PreferCaption,
		CaptionMaxLength:   a.cfg.CaptionMaxLength,
		MessageMaxLength:   a.cfg.MessageMaxLength,
		OverlongWordPolicy: policy,
	}, a.database, poster, logger)

	if err := scheduler.Run(ctx, units, images); err != nil {
		a.notifyAdmins(ctx, poster, fmt.Sprintf("Posting run failed: %v", err))

		return fmt.Errorf("scheduler run: %w", err)
	}

	return nil
}

// notifyAdmins reports a failure to the configured admins, best-effort.
func (a *App) notifyAdmins(ctx context.Context, poster *bot.Bot, text string) {
	if err := poster.SendNotification(ctx, text); err != nil {
		a.logger.Warn().Err(err).Msg("failed to notify admins")
	}
}
