// Command pisplay plays, inspects and exports PIS modules.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pisplay",
	Short: "Play and convert PIS FM modules",
	Long: `pisplay replays PIS tracker modules on an emulated OPL2 FM chip.

Examples:
  pisplay play tunes/ACTION.PIS
  pisplay play --playlist tunes.yaml --serve :8080
  pisplay render tunes/HOPE.PIS -o hope.wav
  pisplay midi tunes/HOPE.PIS -o hope.mid
  pisplay info tunes/*.PIS
  pisplay scan tunes -o tunes.yaml
  pisplay serve --addr :8080`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(midiCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(packCmd)
	rootCmd.AddCommand(scanCmd)
}
