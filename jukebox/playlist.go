// Package jukebox holds the tune list and the selection logic shared by
// the windowed and terminal players.
package jukebox

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultChangeDelayFrames is how long input must settle, in 50Hz
	// frames, before the highlighted tune is loaded.
	DefaultChangeDelayFrames = 25

	// DefaultMaxPlayFrames is how long a tune plays before the jukebox
	// moves on, about 3.5 minutes.
	DefaultMaxPlayFrames = 10450

	// FrameRate is the selector frame rate in Hz.
	FrameRate = 50
)

// Tune is one playlist entry.
type Tune struct {
	Title string `yaml:"title"`
	Path  string `yaml:"path"`
}

// Playlist is an ordered list of tunes with the jukebox timing.
type Playlist struct {
	Name              string `yaml:"name,omitempty"`
	Tunes             []Tune `yaml:"tunes"`
	ChangeDelayFrames int    `yaml:"change_delay_frames,omitempty"`
	MaxPlayFrames     int    `yaml:"max_play_frames,omitempty"`
}

var defaultTunes = []Tune{
	{"Action", "tunes/ACTION.PIS"},
	{"At Peace with Myself", "tunes/ATPEACE.PIS"},
	{"Bentroit", "tunes/BENTROIT.PIS"},
	{"Bronix", "tunes/BRONIX.PIS"},
	{"So I Have Entered This Dark Cave Called Life", "tunes/CAVE.PIS"},
	{"Cannonball", "tunes/CNNNBALL.PIS"},
	{"Hope, Your Facial Expression Kills Me", "tunes/HOPE.PIS"},
	{"I Am an Implosive Man", "tunes/IMPLOSIV.PIS"},
	{"Inside Where I Remain", "tunes/INSIDE.PIS"},
	{"With a Little Imagination It Was an Island", "tunes/ISLAND.PIS"},
	{"Kip Kinkle Theme", "tunes/KKINKLE.PIS"},
	{"Lucifer, Don't Let Me Grow Bitter", "tunes/LUCIFER.PIS"},
	{"Malin in the Sea of Shining Tears", "tunes/MALIN3.PIS"},
	{"Malin in Her Secret Garden", "tunes/MALIN.PIS"},
	{"The Invisible Sun Is Far Away", "tunes/NVSBLSUN.PIS"},
	{"Salvatore", "tunes/SALVORE.PIS"},
	{"Satonic", "tunes/SATONIC.PIS"},
	{"On Sedatives and Alcohol She Died", "tunes/SEDATIV.PIS"},
	{"The Ones He Couldn't Have", "tunes/THEONES.PIS"},
	{"Trampling on the Light like Swine", "tunes/TRAMPLNG.PIS"},
	{"Zeldni", "tunes/ZELDNI.PIS"},
}

// DefaultPlaylist returns the built in tune list. Paths are relative to
// the working directory.
func DefaultPlaylist() *Playlist {
	return &Playlist{
		Name:              "pisplay",
		Tunes:             append([]Tune(nil), defaultTunes...),
		ChangeDelayFrames: DefaultChangeDelayFrames,
		MaxPlayFrames:     DefaultMaxPlayFrames,
	}
}

// FromPaths builds a playlist titled by file name.
func FromPaths(paths []string) *Playlist {
	pl := &Playlist{
		ChangeDelayFrames: DefaultChangeDelayFrames,
		MaxPlayFrames:     DefaultMaxPlayFrames,
	}
	for _, p := range paths {
		base := filepath.Base(p)
		pl.Tunes = append(pl.Tunes, Tune{
			Title: strings.TrimSuffix(base, filepath.Ext(base)),
			Path:  p,
		})
	}
	return pl
}

// LoadPlaylist reads a YAML playlist. Relative tune paths are resolved
// against the playlist's directory and missing timings get the defaults.
func LoadPlaylist(fs afero.Fs, path string) (*Playlist, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading playlist: %w", err)
	}

	var pl Playlist
	if err := yaml.Unmarshal(data, &pl); err != nil {
		return nil, fmt.Errorf("parsing playlist %s: %w", path, err)
	}
	if err := pl.Validate(); err != nil {
		return nil, fmt.Errorf("playlist %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i := range pl.Tunes {
		if !filepath.IsAbs(pl.Tunes[i].Path) {
			pl.Tunes[i].Path = filepath.Join(dir, pl.Tunes[i].Path)
		}
		if pl.Tunes[i].Title == "" {
			base := filepath.Base(pl.Tunes[i].Path)
			pl.Tunes[i].Title = strings.TrimSuffix(base, filepath.Ext(base))
		}
	}
	if pl.ChangeDelayFrames <= 0 {
		pl.ChangeDelayFrames = DefaultChangeDelayFrames
	}
	if pl.MaxPlayFrames <= 0 {
		pl.MaxPlayFrames = DefaultMaxPlayFrames
	}
	return &pl, nil
}

// Save writes the playlist as YAML.
func (pl *Playlist) Save(fs afero.Fs, path string) error {
	data, err := yaml.Marshal(pl)
	if err != nil {
		return err
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("writing playlist: %w", err)
	}
	return nil
}

// Validate checks that the playlist can be played.
func (pl *Playlist) Validate() error {
	if len(pl.Tunes) == 0 {
		return errors.New("no tunes")
	}
	for i, t := range pl.Tunes {
		if t.Path == "" {
			return fmt.Errorf("tune %d has no path", i)
		}
	}
	return nil
}
