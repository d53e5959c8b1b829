package rotation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/maheshsv/telegram-doc-poster/internal/content"
)

type memStore struct {
	state State
	saves int
}

func (m *memStore) LoadState(context.Context) (State, error) {
	return m.state, nil
}

func (m *memStore) SaveState(_ context.Context, s State) error {
	m.state = s
	m.saves++

	return nil
}

type sentPhoto struct {
	image   string
	caption string
}

type memPublisher struct {
	photos   []sentPhoto
	texts    []string
	photoErr error
	textErr  error
}

func (m *memPublisher) SendPhoto(_ context.Context, path, caption string) error {
	if m.photoErr != nil {
		return m.photoErr
	}

	m.photos = append(m.photos, sentPhoto{image: path, caption: caption})

	return nil
}

func (m *memPublisher) SendText(_ context.Context, text string) error {
	if m.textErr != nil {
		return m.textErr
	}

	m.texts = append(m.texts, text)

	return nil
}

func newTestScheduler(opts Options, store *memStore, pub *memPublisher) *Scheduler {
	logger := zerolog.Nop()

	return NewScheduler(opts, store, pub, &logger)
}

func TestSelectTrackRatio(t *testing.T) {
	tests := []struct {
		name    string
		ratio   Ratio
		pattern []Track
	}{
		{
			name:    "three to one",
			ratio:   Ratio{Primary: 3, Secondary: 1},
			pattern: []Track{TrackPrimary, TrackPrimary, TrackPrimary, TrackSecondary, TrackPrimary, TrackPrimary, TrackPrimary, TrackSecondary},
		},
		{
			name:    "one to one",
			ratio:   Ratio{Primary: 1, Secondary: 1},
			pattern: []Track{TrackPrimary, TrackSecondary, TrackPrimary, TrackSecondary},
		},
		{
			name:    "secondary only",
			ratio:   Ratio{Primary: 0, Secondary: 1},
			pattern: []Track{TrackSecondary, TrackSecondary, TrackSecondary},
		},
		{
			name:    "degenerate ratio falls back to primary",
			ratio:   Ratio{},
			pattern: []Track{TrackPrimary, TrackPrimary},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for counter, want := range tt.pattern {
				require.Equal(t, want, SelectTrack(uint64(counter), tt.ratio), "counter %d", counter)
			}
		})
	}
}

func TestStateAdvance(t *testing.T) {
	s := State{}

	s = s.WithPosted(TrackPrimary)
	require.Equal(t, State{Primary: 1, Image: 1, Counter: 1}, s)

	s = s.WithSkip()
	require.Equal(t, State{Primary: 1, Image: 1, Counter: 2}, s)

	s = s.WithPosted(TrackSecondary)
	require.Equal(t, State{Primary: 1, Secondary: 1, Image: 2, Counter: 3}, s)
}

func TestRunSkipAdvancesOnlyCounter(t *testing.T) {
	store := &memStore{}
	pub := &memPublisher{}
	sched := newTestScheduler(Options{
		Ratio:            Ratio{Primary: 1, Secondary: 1},
		PostsPerRun:      2,
		MessageMaxLength: 100,
	}, store, pub)

	units := map[Track][]string{
		TrackPrimary:   nil,
		TrackSecondary: {"secondary one"},
	}

	err := sched.Run(context.Background(), units, []string{"a.jpg", "b.jpg"})
	require.NoError(t, err)

	// Decision 0 skips the empty primary track, decision 1 posts from the
	// secondary one. The skip moves nothing but the counter.
	require.Equal(t, State{Secondary: 1, Image: 1, Counter: 2}, store.state)
	require.Len(t, pub.photos, 1)
	require.Equal(t, []string{"secondary one"}, pub.texts)
}

func TestRunEndToEndFinalState(t *testing.T) {
	store := &memStore{}
	pub := &memPublisher{}
	sched := newTestScheduler(Options{
		Ratio:            Ratio{Primary: 1, Secondary: 1},
		PostsPerRun:      4,
		MessageMaxLength: 100,
	}, store, pub)

	units := map[Track][]string{
		TrackPrimary:   {"p one", "p two"},
		TrackSecondary: {"s one"},
	}
	images := []string{"1.jpg", "2.jpg", "3.jpg", "4.jpg"}

	err := sched.Run(context.Background(), units, images)
	require.NoError(t, err)

	// P, S, P, then a skip once the secondary track runs dry.
	require.Equal(t, State{Primary: 2, Secondary: 1, Image: 3, Counter: 4}, store.state)
	require.Equal(t, []sentPhoto{
		{image: "1.jpg"},
		{image: "2.jpg"},
		{image: "3.jpg"},
	}, pub.photos)
	require.Equal(t, []string{"p one", "s one", "p two"}, pub.texts)
}

func TestRunImagesExhaustedStopsWithoutAdvance(t *testing.T) {
	store := &memStore{state: State{Primary: 1, Image: 2, Counter: 3}}
	pub := &memPublisher{}
	sched := newTestScheduler(Options{
		Ratio:            Ratio{Primary: 1, Secondary: 1},
		PostsPerRun:      3,
		MessageMaxLength: 100,
	}, store, pub)

	units := map[Track][]string{
		TrackPrimary:   {"a", "b", "c"},
		TrackSecondary: {"a", "b", "c"},
	}

	err := sched.Run(context.Background(), units, []string{"only.jpg", "two.jpg"})
	require.NoError(t, err)

	// The image cursor already points past the pool, so the run ends before
	// publishing or saving anything.
	require.Equal(t, State{Primary: 1, Image: 2, Counter: 3}, store.state)
	require.Zero(t, store.saves)
	require.Empty(t, pub.photos)
	require.Empty(t, pub.texts)
}

func TestRunCaptionPreference(t *testing.T) {
	store := &memStore{}
	pub := &memPublisher{}
	sched := newTestScheduler(Options{
		Ratio:            Ratio{Primary: 1, Secondary: 0},
		PostsPerRun:      1,
		PreferCaption:    true,
		CaptionMaxLength: 50,
		MessageMaxLength: 100,
	}, store, pub)

	units := map[Track][]string{TrackPrimary: {"short enough to ride as a caption"}}

	err := sched.Run(context.Background(), units, []string{"cover.jpg"})
	require.NoError(t, err)

	require.Equal(t, []sentPhoto{{image: "cover.jpg", caption: "short enough to ride as a caption"}}, pub.photos)
	require.Empty(t, pub.texts)
}

func TestRunLongUnitGetsCoverAndChunks(t *testing.T) {
	store := &memStore{}
	pub := &memPublisher{}
	sched := newTestScheduler(Options{
		Ratio:              Ratio{Primary: 1, Secondary: 0},
		PostsPerRun:        1,
		PreferCaption:      true,
		CaptionMaxLength:   10,
		MessageMaxLength:   30,
		OverlongWordPolicy: content.OverlongKeep,
	}, store, pub)

	unit := "first paragraph here\n\nsecond paragraph here"
	units := map[Track][]string{TrackPrimary: {unit}}

	err := sched.Run(context.Background(), units, []string{"cover.jpg"})
	require.NoError(t, err)

	require.Equal(t, []sentPhoto{{image: "cover.jpg"}}, pub.photos)
	require.Equal(t, []string{"first paragraph here", "second paragraph here"}, pub.texts)
	require.Equal(t, State{Primary: 1, Image: 1, Counter: 1}, store.state)
}

func TestRunPublishFailureDoesNotAdvance(t *testing.T) {
	store := &memStore{}
	pub := &memPublisher{photoErr: errors.New("telegram: 429")}
	sched := newTestScheduler(Options{
		Ratio:            Ratio{Primary: 1, Secondary: 0},
		PostsPerRun:      1,
		MessageMaxLength: 100,
	}, store, pub)

	units := map[Track][]string{TrackPrimary: {"will not make it"}}

	err := sched.Run(context.Background(), units, []string{"cover.jpg"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "publish primary unit 0")

	require.Equal(t, State{}, store.state)
	require.Zero(t, store.saves)
}

func TestRunResumesFromPersistedState(t *testing.T) {
	store := &memStore{state: State{Primary: 1, Image: 1, Counter: 2}}
	pub := &memPublisher{}
	sched := newTestScheduler(Options{
		Ratio:            Ratio{Primary: 1, Secondary: 1},
		PostsPerRun:      1,
		MessageMaxLength: 100,
	}, store, pub)

	units := map[Track][]string{
		TrackPrimary:   {"first", "second"},
		TrackSecondary: {"other"},
	}

	err := sched.Run(context.Background(), units, []string{"1.jpg", "2.jpg"})
	require.NoError(t, err)

	// Counter 2 with ratio 1:1 selects primary again, cursor 1.
	require.Equal(t, []string{"second"}, pub.texts)
	require.Equal(t, []sentPhoto{{image: "2.jpg"}}, pub.photos)
	require.Equal(t, State{Primary: 2, Secondary: 0, Image: 2, Counter: 3}, store.state)
}

func TestRunChunkFailureMidUnitAborts(t *testing.T) {
	store := &memStore{}
	pub := &memPublisher{textErr: errors.New("network down")}
	sched := newTestScheduler(Options{
		Ratio:            Ratio{Primary: 1, Secondary: 0},
		PostsPerRun:      1,
		MessageMaxLength: 100,
	}, store, pub)

	units := map[Track][]string{TrackPrimary: {strings.Repeat("word ", 10)}}

	err := sched.Run(context.Background(), units, []string{"cover.jpg"})
	require.Error(t, err)

	// The cover photo went out but the text did not; the cursor must stay
	// put so the whole unit is retried on the next run.
	require.Len(t, pub.photos, 1)
	require.Equal(t, State{}, store.state)
}
