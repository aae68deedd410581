package player

import "sync"

// Gate coordinates the audio thread with control threads. The audio
// thread brackets each render with Enter and Leave. A control thread
// calls Pause, which returns once no render is in flight, mutates shared
// state, then calls Resume. While paused, Enter fails and the audio thread
// renders silence instead of blocking.
type Gate struct {
	mu     sync.Mutex
	cond   *sync.Cond
	pauses int
	active int
	closed bool
}

// NewGate creates an open gate.
func NewGate() *Gate {
	g := &Gate{}
	g.cond = sync.NewCond(&g.mu)
	return g
}

// Enter is called by the audio thread before touching shared state.
// It never blocks. It returns false if the gate is paused or closed, in
// which case Leave must not be called.
func (g *Gate) Enter() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed || g.pauses > 0 {
		return false
	}
	g.active++
	return true
}

// Leave ends a render started by a successful Enter.
func (g *Gate) Leave() {
	g.mu.Lock()
	g.active--
	if g.active == 0 {
		g.cond.Broadcast()
	}
	g.mu.Unlock()
}

// Pause blocks until any in-flight render has left the gate. The wait is
// bounded by the length of one render. Pauses nest; each needs a Resume.
func (g *Gate) Pause() {
	g.mu.Lock()
	g.pauses++
	for g.active > 0 {
		g.cond.Wait()
	}
	g.mu.Unlock()
}

// Resume undoes one Pause.
func (g *Gate) Resume() {
	g.mu.Lock()
	if g.pauses > 0 {
		g.pauses--
	}
	g.mu.Unlock()
}

// Paused reports whether a pause is in effect.
func (g *Gate) Paused() bool {
	g.mu.Lock()
	p := g.pauses > 0
	g.mu.Unlock()
	return p
}

// Close shuts the gate for good and waits for any in-flight render.
func (g *Gate) Close() {
	g.mu.Lock()
	g.closed = true
	for g.active > 0 {
		g.cond.Wait()
	}
	g.mu.Unlock()
}

// Closed reports whether Close has been called.
func (g *Gate) Closed() bool {
	g.mu.Lock()
	c := g.closed
	g.mu.Unlock()
	return c
}
