package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/siftkit/sift/pkg/filter"
	"github.com/siftkit/sift/pkg/manifest"
	"github.com/siftkit/sift/pkg/types"
)

var (
	filtersManifests []string
	filtersFormat    string
)

var filtersCmd = &cobra.Command{
	Use:   "filters",
	Short: "Inspect declared filters",
	Long:  "Commands for listing and inspecting the filters declared in manifests",
}

var filtersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List filtered datasources",
	Long:  "Display every datasource with declared filters and its pattern count",
	RunE:  runFiltersList,
}

var filtersShowCmd = &cobra.Command{
	Use:   "show <datasource>",
	Short: "Show the merged filters for a datasource",
	Long: `Display the merged, deduplicated pattern set a datasource is filtered by.
This reports what was declared, independent of the global filter toggle.`,
	Args: cobra.ExactArgs(1),
	RunE: runFiltersShow,
}

func init() {
	filtersCmd.AddCommand(filtersListCmd)
	filtersCmd.AddCommand(filtersShowCmd)

	filtersCmd.PersistentFlags().StringArrayVar(&filtersManifests, "manifest", nil,
		"Filter manifest file (repeatable)")
	filtersCmd.PersistentFlags().StringVar(&filtersFormat, "format", "table",
		"Output format: table, json")
}

// loadRegistry builds a registry from the manifests given on the
// command line.
func loadRegistry(paths []string) (*filter.Registry, error) {
	reg := filter.NewRegistryWithLogger(logger)
	for _, path := range paths {
		m, err := manifest.LoadFile(path)
		if err != nil {
			return nil, err
		}
		if err := m.ContributeTo(reg); err != nil {
			return nil, fmt.Errorf("manifest %s: %w", path, err)
		}
	}
	return reg, nil
}

func runFiltersList(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry(filtersManifests)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	datasources := reg.Datasources()

	switch filtersFormat {
	case "json":
		entries := make(map[string][]string, len(datasources))
		for _, ds := range datasources {
			entries[ds.String()] = reg.FiltersFor(ds)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)

	case "table":
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DATASOURCE\tPATTERNS")
		for _, ds := range datasources {
			fmt.Fprintf(w, "%s\t%d\n", ds, reg.Get(ds).Len())
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(out, "\n%d datasource(s)\n", len(datasources))
		return nil

	default:
		return fmt.Errorf("unknown format: %s", filtersFormat)
	}
}

func runFiltersShow(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry(filtersManifests)
	if err != nil {
		return err
	}

	ds := types.DatasourceID(args[0])
	patterns := reg.FiltersFor(ds)
	out := cmd.OutOrStdout()

	switch filtersFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"datasource": ds.String(),
			"patterns":   patterns,
		})

	case "table":
		header := color.New(color.Bold)
		header.Fprintf(out, "%s\n", ds)
		if len(patterns) == 0 {
			fmt.Fprintln(out, "  (no filters declared)")
			return nil
		}
		for _, p := range patterns {
			fmt.Fprintf(out, "  %s\n", p)
		}
		return nil

	default:
		return fmt.Errorf("unknown format: %s", filtersFormat)
	}
}
