package jukebox

// Selector tracks the highlighted and the playing tune and decides when a
// change is committed. It is advanced once per 50Hz frame.
//
// Input only moves the highlight. The highlighted tune is loaded once
// input has been quiet for the change delay and the previous change is at
// least as old. A tune that has played for the maximum time moves the
// highlight on by one, which the next frame then commits.
type Selector struct {
	count       int
	changeDelay int
	maxPlay     int

	frame      int
	flashing   int
	playing    int
	lastChange int
	lastInput  int
}

// NewSelector creates a selector over count tunes with tune 0 playing.
// Non-positive timings select the defaults.
func NewSelector(count, changeDelay, maxPlay int) *Selector {
	if changeDelay <= 0 {
		changeDelay = DefaultChangeDelayFrames
	}
	if maxPlay <= 0 {
		maxPlay = DefaultMaxPlayFrames
	}
	return &Selector{count: count, changeDelay: changeDelay, maxPlay: maxPlay}
}

// Up moves the highlight one tune up, stopping at the first.
func (s *Selector) Up() {
	if s.flashing > 0 {
		s.flashing--
	}
	s.lastInput = s.frame
}

// Down moves the highlight one tune down, stopping at the last.
func (s *Selector) Down() {
	if s.flashing < s.count-1 {
		s.flashing++
	}
	s.lastInput = s.frame
}

// Select highlights tune i. Out of range indices are ignored.
func (s *Selector) Select(i int) {
	if i < 0 || i >= s.count {
		return
	}
	s.flashing = i
	s.lastInput = s.frame
}

// Force makes tune i the playing and highlighted tune immediately, as if
// the change had just been committed.
func (s *Selector) Force(i int) bool {
	if i < 0 || i >= s.count {
		return false
	}
	s.flashing = i
	s.playing = i
	s.lastChange = s.frame
	return true
}

// Frame advances one frame. It returns the tune to load when a change is
// committed on this frame.
func (s *Selector) Frame() (int, bool) {
	defer func() { s.frame++ }()

	if s.count == 0 {
		return 0, false
	}

	if s.frame-s.lastInput >= s.changeDelay &&
		s.playing != s.flashing &&
		s.frame-s.lastChange >= s.changeDelay {
		s.playing = s.flashing
		s.lastChange = s.frame
		return s.playing, true
	}

	if s.frame-s.lastChange >= s.maxPlay {
		s.flashing++
		if s.flashing == s.count {
			s.flashing = 0
		}
	}
	return 0, false
}

// Highlighted returns the highlighted tune.
func (s *Selector) Highlighted() int { return s.flashing }

// Playing returns the tune most recently committed.
func (s *Selector) Playing() int { return s.playing }

// FrameCount returns the number of frames advanced.
func (s *Selector) FrameCount() int { return s.frame }

// PlayedFrames returns the frames since the last committed change.
func (s *Selector) PlayedFrames() int { return s.frame - s.lastChange }

// MaxPlayFrames returns the automatic advance period.
func (s *Selector) MaxPlayFrames() int { return s.maxPlay }
