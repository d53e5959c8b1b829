package rotation

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/maheshsv/telegram-doc-poster/internal/content"
	"github.com/maheshsv/telegram-doc-poster/internal/platform/observability"
)

const (
	errFmtLoadState   = "load rotation state: %w"
	errFmtSaveState   = "save rotation state: %w"
	errFmtPublishUnit = "publish %s unit %d: %w"
	errFmtSendChunk   = "send chunk %d of %d: %w"
	errFmtSendCover   = "send cover photo: %w"

	logFieldTrack   = "track"
	logFieldCursor  = "cursor"
	logFieldImage   = "image"
	logFieldCounter = "counter"
	logFieldUnits   = "units"
	logFieldChunks  = "chunks"

	msgTrackExhausted  = "Track exhausted, skipping decision"
	msgImagesExhausted = "Image pool exhausted, stopping run"
	msgUnitPosted      = "Unit posted"

	skipReasonContentExhausted = "content_exhausted"
	skipReasonImagesExhausted  = "images_exhausted"

	statusOK    = "ok"
	statusError = "error"
)

// Publisher delivers a single post to the channel. Implementations must be
// synchronous: a nil return means Telegram accepted every message of the
// post, so the cursor may advance.
type Publisher interface {
	SendPhoto(ctx context.Context, path, caption string) error
	SendText(ctx context.Context, text string) error
}

// StateStore persists the rotation cursor record between runs.
type StateStore interface {
	LoadState(ctx context.Context) (State, error)
	SaveState(ctx context.Context, state State) error
}

// Options holds the scheduling knobs resolved from configuration.
type Options struct {
	Ratio              Ratio
	PostsPerRun        int
	PreferCaption      bool
	CaptionMaxLength   int
	MessageMaxLength   int
	OverlongWordPolicy content.OverlongWordPolicy
}

// Scheduler walks the posting protocol: pick a track from the decision
// counter, publish its next unit with the next pool image, persist the
// advanced cursors. Content and images are gathered once per run by the
// caller and passed in as plain slices.
type Scheduler struct {
	opts      Options
	store     StateStore
	publisher Publisher
	logger    *zerolog.Logger
}

func NewScheduler(opts Options, store StateStore, publisher Publisher, logger *zerolog.Logger) *Scheduler {
	return &Scheduler{
		opts:      opts,
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

// Run executes up to PostsPerRun scheduling decisions against the given
// content. An exhausted track consumes its decision (the counter advances
// and persists) so the other track keeps rotating; an exhausted image pool
// ends the run without touching any cursor. A transmission failure aborts
// the run before the state write, which keeps delivery at-least-once.
func (s *Scheduler) Run(ctx context.Context, units map[Track][]string, images []string) error {
	state, err := s.store.LoadState(ctx)
	if err != nil {
		return fmt.Errorf(errFmtLoadState, err)
	}

	observability.ImagesAvailable.Set(float64(imagesRemaining(state, images)))

	for decision := 0; decision < s.opts.PostsPerRun; decision++ {
		track := SelectTrack(state.Counter, s.opts.Ratio)
		cursor := state.Cursor(track)
		sequence := units[track]

		if cursor >= uint64(len(sequence)) {
			s.logger.Info().
				Str(logFieldTrack, track.String()).
				Uint64(logFieldCursor, cursor).
				Int(logFieldUnits, len(sequence)).
				Msg(msgTrackExhausted)
			observability.SkipsTotal.WithLabelValues(skipReasonContentExhausted).Inc()

			state = state.WithSkip()
			if err = s.store.SaveState(ctx, state); err != nil {
				return fmt.Errorf(errFmtSaveState, err)
			}

			continue
		}

		if state.Image >= uint64(len(images)) {
			s.logger.Warn().
				Uint64(logFieldImage, state.Image).
				Int(logFieldUnits, len(images)).
				Msg(msgImagesExhausted)
			observability.SkipsTotal.WithLabelValues(skipReasonImagesExhausted).Inc()

			return nil
		}

		if err = s.publish(ctx, sequence[cursor], images[state.Image]); err != nil {
			observability.PostsTotal.WithLabelValues(track.String(), statusError).Inc()

			return fmt.Errorf(errFmtPublishUnit, track, cursor, err)
		}

		state = state.WithPosted(track)
		if err = s.store.SaveState(ctx, state); err != nil {
			return fmt.Errorf(errFmtSaveState, err)
		}

		observability.PostsTotal.WithLabelValues(track.String(), statusOK).Inc()
		s.logger.Info().
			Str(logFieldTrack, track.String()).
			Uint64(logFieldCursor, state.Cursor(track)).
			Uint64(logFieldImage, state.Image).
			Uint64(logFieldCounter, state.Counter).
			Msg(msgUnitPosted)
	}

	return nil
}

func imagesRemaining(state State, images []string) int {
	if state.Image >= uint64(len(images)) {
		return 0
	}

	return len(images) - int(state.Image)
}

// publish delivers one unit. Short units ride as the photo caption when the
// caption preference is enabled; everything else goes as a bare cover photo
// followed by the unit packed into length-bounded text messages.
func (s *Scheduler) publish(ctx context.Context, unit, image string) error {
	if s.opts.PreferCaption && utf8.RuneCountInString(unit) <= s.opts.CaptionMaxLength {
		return s.publisher.SendPhoto(ctx, image, unit)
	}

	if err := s.publisher.SendPhoto(ctx, image, ""); err != nil {
		return fmt.Errorf(errFmtSendCover, err)
	}

	chunks := content.Pack(unit, s.opts.MessageMaxLength, s.opts.OverlongWordPolicy)

	s.logger.Debug().Int(logFieldChunks, len(chunks)).Msg("Sending text chunks")

	for i, chunk := range chunks {
		if err := s.publisher.SendText(ctx, chunk); err != nil {
			return fmt.Errorf(errFmtSendChunk, i+1, len(chunks), err)
		}

		observability.ChunksSentTotal.Inc()
	}

	return nil
}
