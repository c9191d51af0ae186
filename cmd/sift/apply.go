package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/siftkit/sift"
	"github.com/siftkit/sift/pkg/config"
)

var (
	applyManifests []string
	applyNoFilter  bool
)

var applyCmd = &cobra.Command{
	Use:   "apply <datasource> [file]",
	Short: "Filter line content as the collection pipeline would",
	Long: `Read line-oriented content from a file (or stdin) and print the lines a
consumer of the named datasource would observe, given the filters
declared in the supplied manifests.

The global toggle is resolved from ` + config.EnvFiltersEnabled + `;
--no-filter forces it off for this invocation.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringArrayVar(&applyManifests, "manifest", nil,
		"Filter manifest file (repeatable)")
	applyCmd.Flags().BoolVar(&applyNoFilter, "no-filter", false,
		"Disable filtering, print input unchanged")
}

func runApply(cmd *cobra.Command, args []string) error {
	datasource := args[0]

	cfg := config.FromEnv(logger)
	opts := []sift.Option{sift.WithConfig(cfg), sift.WithLogger(logger)}
	if applyNoFilter {
		opts = append(opts, sift.WithFiltersDisabled())
	}
	pipeline := sift.New(opts...)

	// Declare phase: manifests stand in for component setup code.
	for _, path := range applyManifests {
		if err := pipeline.LoadManifest(path); err != nil {
			return err
		}
	}
	pipeline.Freeze()

	lines, err := readLines(cmd, args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, line := range pipeline.Apply(lines, datasource) {
		fmt.Fprintln(out, line)
	}

	stats := pipeline.Stats()
	logger.Debug().
		Uint64("lines_seen", stats.LinesSeen).
		Uint64("lines_retained", stats.LinesRetained).
		Msg("Apply finished")
	return nil
}

// readLines reads the optional file argument, or stdin. Acquisition is
// the CLI's job; the library never opens files itself.
func readLines(cmd *cobra.Command, args []string) ([]string, error) {
	var r io.Reader = cmd.InOrStdin()
	if len(args) == 2 {
		f, err := os.Open(args[1])
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", args[1], err)
		}
		defer f.Close()
		r = f
	}

	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return lines, nil
}
