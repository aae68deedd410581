package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/user-none/pisplay/server"
	"github.com/user-none/pisplay/tui"
)

var (
	playFlags outputFlags
	playServe string
	playPlain bool
)

var playCmd = &cobra.Command{
	Use:   "play [files...]",
	Short: "Play modules as a terminal jukebox",
	Long: `Plays the given modules, a YAML playlist or the built in tune list.

On a terminal an interactive jukebox is shown. Otherwise the current
position is logged every few seconds until interrupted.`,
	RunE: runPlay,
}

func init() {
	playFlags.register(playCmd)
	playCmd.Flags().StringVar(&playServe, "serve", "", "also serve the HTTP API on this address")
	playCmd.Flags().BoolVar(&playPlain, "plain", false, "log status instead of showing the jukebox")
}

func runPlay(cmd *cobra.Command, args []string) error {
	s, err := openSession(&playFlags, args)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.drain(ctx) })

	if playServe != "" {
		srv := server.New(s.player, s.jukebox, s.loader)
		g.Go(func() error { return srv.Run(ctx, playServe) })
	}

	if !playPlain && term.IsTerminal(int(os.Stdout.Fd())) {
		g.Go(func() error {
			defer stop()
			return tui.Run(s.jukebox, s.player)
		})
	} else {
		g.Go(func() error { return s.runFrames(ctx) })
		g.Go(func() error { return logStatus(ctx, s) })
	}

	return g.Wait()
}

func logStatus(ctx context.Context, s *session) error {
	t := time.NewTicker(5 * time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			st := s.player.Status()
			tune := s.jukebox.Tunes()[s.jukebox.State().Playing]
			log.Printf("%s: pos %d/%d row %d speed %d playing=%v",
				tune.Title, st.Position, st.OrderLength, st.Row, st.Speed, st.Playing)
		}
	}
}
