package rotation

// State is the persisted cursor record. It is treated as an immutable value:
// scheduling operations return a new State, and all four fields only ever
// grow. The record is read once at run start and written back as a whole
// after each committed step, so a crash between a post and its write can at
// worst repost the same unit on the next run (at-least-once).
type State struct {
	Primary   uint64
	Secondary uint64
	Image     uint64
	Counter   uint64
}

// Cursor returns the message cursor for the given track.
func (s State) Cursor(t Track) uint64 {
	if t == TrackPrimary {
		return s.Primary
	}

	return s.Secondary
}

// WithSkip records a scheduling decision that produced no post. Only the
// decision counter advances, so an exhausted track does not stall the other
// track's rotation.
func (s State) WithSkip() State {
	s.Counter++

	return s
}

// WithPosted records a fully published unit on the given track: the track's
// message cursor, the shared image cursor and the decision counter each
// advance by one.
func (s State) WithPosted(t Track) State {
	if t == TrackPrimary {
		s.Primary++
	} else {
		s.Secondary++
	}

	s.Image++
	s.Counter++

	return s
}
