package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/user-none/pisplay/export"
	"github.com/user-none/pisplay/loader"
	"github.com/user-none/pisplay/pis"
)

var (
	outputFile  string
	renderRate  int
	renderChans int
	renderFmt   string
	renderLPF   float64
	maxDuration time.Duration
	untilLoop   bool
)

var renderCmd = &cobra.Command{
	Use:   "render <module>",
	Short: "Render a module to a WAV file",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

var midiCmd = &cobra.Command{
	Use:   "midi <module>",
	Short: "Export the notes of a module as a MIDI file",
	Args:  cobra.ExactArgs(1),
	RunE:  runMIDI,
}

func init() {
	for _, c := range []*cobra.Command{renderCmd, midiCmd} {
		c.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default: module name with new extension)")
		c.Flags().DurationVar(&maxDuration, "max", export.DefaultMaxDuration, "maximum length")
		c.Flags().BoolVar(&untilLoop, "until-loop", true, "stop when the song starts repeating")
	}
	renderCmd.Flags().IntVar(&renderRate, "rate", 44100, "sample rate in Hz")
	renderCmd.Flags().IntVar(&renderChans, "channels", 2, "output channels")
	renderCmd.Flags().StringVar(&renderFmt, "format", "s16", "sample format: s16 or f32")
	renderCmd.Flags().Float64Var(&renderLPF, "lowpass", 0, "low-pass cutoff in Hz, 0 to disable")
}

func loadModule(path string) (*pis.Module, error) {
	l, err := loader.New(afero.NewOsFs(), 1)
	if err != nil {
		return nil, err
	}
	return l.Load(path)
}

func outputPath(in, ext string) string {
	if outputFile != "" {
		return outputFile
	}
	base := filepath.Base(in)
	for filepath.Ext(base) != "" {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return base + ext
}

func exportOptions() export.Options {
	return export.Options{
		SampleRate:  renderRate,
		LowPassHz:   renderLPF,
		MaxDuration: maxDuration,
		StopAtLoop:  untilLoop,
	}
}

func runRender(cmd *cobra.Command, args []string) error {
	format, err := pis.ParseFormat(renderFmt)
	if err != nil {
		return err
	}
	m, err := loadModule(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	opts := exportOptions()
	samples, sum, err := export.Render(ctx, m, opts)
	if err != nil {
		return err
	}

	out := outputPath(args[0], ".wav")
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	err = export.WriteWAV(f, samples, export.WAVFormat{SampleRate: renderRate, Channels: renderChans, Format: format})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}

	log.Printf("Wrote %s: %v (%s)", out, sum.Duration, sum.End)
	return nil
}

func runMIDI(cmd *cobra.Command, args []string) error {
	m, err := loadModule(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	out := outputPath(args[0], ".mid")
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	sum, err := export.WriteMIDI(ctx, w, m, exportOptions())
	if err == nil {
		err = w.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}

	log.Printf("Wrote %s: %v (%s)", out, sum.Duration, sum.End)
	return nil
}
