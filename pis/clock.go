package pis

// Ticker advances a sequencer by one tick.
type Ticker interface {
	Tick()
}

// Renderer produces mono samples.
type Renderer interface {
	Render(out []int16)
}

// Clock splits render requests at tick boundaries so the sequencer runs
// exactly every sampleRate/50 samples regardless of the request size.
type Clock struct {
	ticker         Ticker
	dev            Renderer
	samplesPerTick int
	countdown      int // Samples left until the next tick
}

// NewClock creates a clock ticking t at TickRate for output at sampleRate.
func NewClock(t Ticker, r Renderer, sampleRate int) *Clock {
	spt := sampleRate / TickRate
	if spt < 1 {
		spt = 1
	}
	return &Clock{
		ticker:         t,
		dev:            r,
		samplesPerTick: spt,
		countdown:      spt,
	}
}

// SamplesPerTick returns the number of samples between two ticks.
func (c *Clock) SamplesPerTick() int {
	return c.samplesPerTick
}

// Countdown returns the number of samples left before the next tick.
func (c *Clock) Countdown() int {
	return c.countdown
}

// Reset restarts the countdown at a full tick.
func (c *Clock) Reset() {
	c.countdown = c.samplesPerTick
}

// Render fills out, ticking the sequencer whenever a tick boundary is
// crossed. Chunks never straddle a boundary.
func (c *Clock) Render(out []int16) {
	for len(out) > 0 {
		n := min(len(out), c.countdown)
		c.dev.Render(out[:n])
		out = out[n:]

		c.countdown -= n
		if c.countdown == 0 {
			c.ticker.Tick()
			c.countdown = c.samplesPerTick
		}
	}
}
