// Package rotation implements the stateful posting scheduler: which content
// track, which post unit and which image to publish next, driven entirely by
// a persisted cursor record so behavior is reproducible across invocations.
package rotation

// Track identifies one of the two parallel content tracks. Tracks map to
// configured document ids rather than hard-coded language names, so adding a
// track is a matter of configuration surface, not new dispatch code.
type Track int

const (
	TrackPrimary Track = iota
	TrackSecondary
)

func (t Track) String() string {
	if t == TrackPrimary {
		return "primary"
	}

	return "secondary"
}

// Ratio is the configured interleave pair between the two tracks. A ratio of
// 3:1 yields the repeating pattern P,P,P,S,P,P,P,S,…
type Ratio struct {
	Primary   int
	Secondary int
}

// SelectTrack chooses the track for the given scheduling decision counter.
// It is a pure function of the counter and the ratio: the pattern repeats
// exactly every Primary+Secondary decisions, with no randomness.
func SelectTrack(counter uint64, r Ratio) Track {
	total := r.Primary + r.Secondary
	if total <= 0 || r.Primary < 0 || r.Secondary < 0 {
		return TrackPrimary
	}

	if counter%uint64(total) < uint64(r.Primary) {
		return TrackPrimary
	}

	return TrackSecondary
}
