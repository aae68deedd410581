package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/user-none/pisplay/server"
)

var (
	serveFlags outputFlags
	serveAddr  string
)

var serveCmd = &cobra.Command{
	Use:   "serve [files...]",
	Short: "Run the jukebox headless behind the HTTP API",
	RunE:  runServe,
}

func init() {
	serveFlags.register(serveCmd)
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", ":8080", "listen address")
}

func runServe(cmd *cobra.Command, args []string) error {
	s, err := openSession(&serveFlags, args)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(s.player, s.jukebox, s.loader)
	log.Printf("Serving on %s", serveAddr)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.drain(ctx) })
	g.Go(func() error { return s.runFrames(ctx) })
	g.Go(func() error { return srv.Run(ctx, serveAddr) })
	return g.Wait()
}
