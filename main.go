package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/afero"

	"github.com/user-none/pisplay/cli"
	"github.com/user-none/pisplay/jukebox"
	"github.com/user-none/pisplay/loader"
	"github.com/user-none/pisplay/pis"
	"github.com/user-none/pisplay/player"
)

func main() {
	playlistPath := flag.String("playlist", "", "YAML playlist (default: built in tune list)")
	volume := flag.Float64("volume", 1.0, "output volume, 0.0 to 1.0")
	rate := flag.Int("rate", 48000, "output sample rate in Hz")
	lowPass := flag.Float64("lowpass", 0, "output low-pass cutoff in Hz, 0 to disable")
	flag.Parse()

	fs := afero.NewOsFs()

	var list *jukebox.Playlist
	switch {
	case *playlistPath != "":
		var err error
		list, err = jukebox.LoadPlaylist(fs, *playlistPath)
		if err != nil {
			log.Fatalf("Failed to load playlist: %v", err)
		}
	case flag.NArg() > 0:
		list = jukebox.FromPaths(flag.Args())
	default:
		list = jukebox.DefaultPlaylist()
	}

	l, err := loader.New(fs, loader.DefaultCacheSize)
	if err != nil {
		log.Fatalf("Failed to create loader: %v", err)
	}

	cfg := player.DefaultConfig()
	cfg.SampleRate = *rate
	cfg.LowPassHz = *lowPass
	p := player.New(cfg, l)
	defer p.Close()

	jb, err := jukebox.New(list, p)
	if err != nil {
		log.Fatalf("Invalid playlist: %v", err)
	}
	if err := jb.Start(); err != nil {
		log.Printf("Warning: %v", err)
	}

	ebiten.SetWindowSize(cli.ScreenWidth, cli.ScreenHeight)
	ebiten.SetWindowTitle("pisplay")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(pis.TickRate)

	runner := cli.NewRunner(p, jb, *volume)
	defer runner.Close()

	if err := ebiten.RunGame(runner); err != nil {
		log.Fatal(err)
	}
}
