package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/user-none/pisplay/jukebox"
	"github.com/user-none/pisplay/loader"
	"github.com/user-none/pisplay/pis"
)

var infoJSON bool

var infoCmd = &cobra.Command{
	Use:   "info <module>...",
	Short: "Describe modules",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runInfo,
}

var packCmd = &cobra.Command{
	Use:   "pack <module>",
	Short: "Decompress and rewrite a module in canonical form",
	Long: `Reads a module, optionally from a compressed file or archive, validates
it and writes the plain .PIS encoding.`,
	Args: cobra.ExactArgs(1),
	RunE: runPack,
}

var scanCmd = &cobra.Command{
	Use:   "scan <dir>",
	Short: "Write a playlist of the modules found under a directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runScan,
}

func init() {
	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "print JSON")
	packCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default: module name with .PIS)")
	scanCmd.Flags().StringVarP(&outputFile, "output", "o", "", "playlist file (default: stdout)")
}

func runInfo(cmd *cobra.Command, args []string) error {
	l, err := loader.New(afero.NewOsFs(), 1)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var failed int
	for _, path := range args {
		m, err := l.Load(path)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
			failed++
			continue
		}
		info := m.Info()

		if infoJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(struct {
				Path string   `json:"path"`
				Info pis.Info `json:"info"`
			}{path, info}); err != nil {
				return err
			}
			continue
		}

		fmt.Fprintf(out, "%s\n", path)
		fmt.Fprintf(out, "  positions:   %d\n", info.OrderLength)
		fmt.Fprintf(out, "  patterns:    %d\n", info.Patterns)
		fmt.Fprintf(out, "  instruments: %d\n", info.Instruments)
		fmt.Fprintf(out, "  notes:       %d\n", info.Notes)
		fmt.Fprintf(out, "  length:      ~%.0fs at speed %d\n", info.Seconds, pis.DefaultSpeed)
		fmt.Fprintf(out, "  effects:     %s\n", formatEffects(info.Effects))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d modules could not be read", failed, len(args))
	}
	return nil
}

func formatEffects(effects map[string]int) string {
	if len(effects) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(effects))
	for k := range effects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%sxx=%d", k, effects[k])
	}
	return strings.Join(parts, " ")
}

func runPack(cmd *cobra.Command, args []string) error {
	m, err := loadModule(args[0])
	if err != nil {
		return err
	}
	data, err := m.MarshalBinary()
	if err != nil {
		return err
	}
	out := outputPath(args[0], ".PIS")
	if out == args[0] {
		return fmt.Errorf("refusing to overwrite %s", out)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", out, len(data))
	return nil
}

func runScan(cmd *cobra.Command, args []string) error {
	fs := afero.NewOsFs()
	l, err := loader.New(fs, 1)
	if err != nil {
		return err
	}
	paths, err := l.Scan(args[0])
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no modules found under %s", args[0])
	}

	pl := jukebox.FromPaths(paths)
	pl.Name = args[0]
	if outputFile != "" {
		return pl.Save(fs, outputFile)
	}
	out, err := yaml.Marshal(pl)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
