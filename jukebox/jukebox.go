package jukebox

import (
	"fmt"
	"log"
	"sync"
)

// Controller plays tunes by path. *player.Player satisfies it.
type Controller interface {
	LoadAndPlay(path string) error
}

// Jukebox drives a controller from a playlist through a Selector. It is
// safe for use by a UI loop and remote control handlers at once.
type Jukebox struct {
	mu      sync.Mutex
	list    *Playlist
	sel     *Selector
	ctl     Controller
	lastErr error
}

// New creates a jukebox over a validated playlist.
func New(list *Playlist, ctl Controller) (*Jukebox, error) {
	if err := list.Validate(); err != nil {
		return nil, err
	}
	return &Jukebox{
		list: list,
		sel:  NewSelector(len(list.Tunes), list.ChangeDelayFrames, list.MaxPlayFrames),
		ctl:  ctl,
	}, nil
}

// Start loads the first tune.
func (j *Jukebox) Start() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.load(0)
}

// Up moves the highlight up.
func (j *Jukebox) Up() {
	j.mu.Lock()
	j.sel.Up()
	j.mu.Unlock()
}

// Down moves the highlight down.
func (j *Jukebox) Down() {
	j.mu.Lock()
	j.sel.Down()
	j.mu.Unlock()
}

// Select highlights tune i; it starts once input settles.
func (j *Jukebox) Select(i int) {
	j.mu.Lock()
	j.sel.Select(i)
	j.mu.Unlock()
}

// Play switches to tune i immediately.
func (j *Jukebox) Play(i int) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.sel.Force(i) {
		return fmt.Errorf("tune %d out of range (0-%d)", i, len(j.list.Tunes)-1)
	}
	return j.load(i)
}

// Frame advances the selector by one frame and loads the tune it commits.
// Load failures are logged and leave the previous tune playing.
func (j *Jukebox) Frame() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if i, ok := j.sel.Frame(); ok {
		if err := j.load(i); err != nil {
			log.Printf("Warning: %v", err)
		}
	}
}

func (j *Jukebox) load(i int) error {
	t := j.list.Tunes[i]
	err := j.ctl.LoadAndPlay(t.Path)
	if err != nil {
		err = fmt.Errorf("loading %q: %w", t.Title, err)
	}
	j.lastErr = err
	return err
}

// State is a snapshot of the jukebox for display.
type State struct {
	Highlighted  int   `json:"highlighted"`
	Playing      int   `json:"playing"`
	PlayedFrames int   `json:"played_frames"`
	MaxFrames    int   `json:"max_frames"`
	Err          error `json:"-"`
}

// State returns the current selection.
func (j *Jukebox) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return State{
		Highlighted:  j.sel.Highlighted(),
		Playing:      j.sel.Playing(),
		PlayedFrames: j.sel.PlayedFrames(),
		MaxFrames:    j.sel.MaxPlayFrames(),
		Err:          j.lastErr,
	}
}

// Tunes returns the playlist entries.
func (j *Jukebox) Tunes() []Tune {
	return j.list.Tunes
}

// Playlist returns the playlist.
func (j *Jukebox) Playlist() *Playlist {
	return j.list
}
