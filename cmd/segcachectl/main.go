// Package main implements segcachectl, a small cobra-based CLI that
// exercises the segment cache subsystem: load a segment, locate
// segments, fetch one (with rollup fallback), and flush a provenance.
// Each subcommand opens its own Instance and closes it on exit; the
// index of a new Instance starts empty and is not filled from the
// provider's stored entries, so locate and flush see only headers
// admitted by the same invocation.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cubedata/segcache/internal/bitkey"
	"github.com/cubedata/segcache/internal/config"
	"github.com/cubedata/segcache/internal/segment"
	"github.com/cubedata/segcache/pkg/segcache"
)

type rootFlags struct {
	configPath string
	dataDir    string
	provider   string
}

func main() {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "segcachectl",
		Short: "Inspect and drive a segment cache subsystem instance",
	}
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to a TOML config file")
	rootCmd.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "override the configured data directory")
	rootCmd.PersistentFlags().StringVar(&flags.provider, "provider", "", "override the configured provider (disk, lru)")

	rootCmd.AddCommand(putCmd(flags))
	rootCmd.AddCommand(locateCmd(flags))
	rootCmd.AddCommand(getCmd(flags))
	rootCmd.AddCommand(flushCmd(flags))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openInstance(ctx context.Context, flags *rootFlags) (*segcache.Instance, error) {
	opts, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.dataDir != "" {
		opts.DataDir = flags.dataDir
	}
	if flags.provider != "" {
		name := flags.provider
		opts.ProviderOptions.SegmentCacheImpl = &name
	}
	return segcache.New(ctx, "segcachectl", opts)
}

type segmentSpec struct {
	Schema     string            `json:"schema"`
	Cube       string            `json:"cube"`
	Measure    string            `json:"measure"`
	FactTable  string            `json:"factTable"`
	Columns    map[string][]any  `json:"columns"`
	BitKey     []int             `json:"bitKey"`
	Values     []float64         `json:"values"`
}

func loadSegmentSpec(path string) (*segmentSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var spec segmentSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, err
	}
	return &spec, nil
}

func headerFromSpec(spec *segmentSpec) *segcache.Header {
	bk := bitkey.Of(spec.BitKey...)
	cols := make([]segment.Column, 0, len(spec.Columns))
	for expr, values := range spec.Columns {
		vals := make([]segment.Value, len(values))
		for i, v := range values {
			vals[i] = v
		}
		cols = append(cols, segment.NewColumn(expr, vals))
	}
	return segment.NewHeader(spec.Schema, []byte(spec.Schema), spec.Cube, spec.Measure, spec.FactTable, cols, nil, bk, nil)
}

func putCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "put <segment.json>",
		Short: "Load a segment spec from a JSON file and admit it into the cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			inst, err := openInstance(ctx, flags)
			if err != nil {
				return err
			}
			defer inst.Close(ctx)

			spec, err := loadSegmentSpec(args[0])
			if err != nil {
				return err
			}
			header := headerFromSpec(spec)
			axisSets := make([][]segment.Value, len(header.ConstrainedColumns))
			nullFlags := make([]bool, len(header.ConstrainedColumns))
			for i, col := range header.ConstrainedColumns {
				axisSets[i] = col.Values()
			}
			body := segment.NewDenseDoubleBody(axisSets, nullFlags, spec.Values, nil)

			if err := inst.Put(ctx, header, body); err != nil {
				return err
			}
			fmt.Println(header.UniqueIDHex())
			return nil
		},
	}
}

func locateCmd(flags *rootFlags) *cobra.Command {
	var schema, cube, measure, factTable string
	var bits []int

	cmd := &cobra.Command{
		Use:   "locate",
		Short: "Locate exact-dimensionality segments for a provenance and bitkey",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			inst, err := openInstance(ctx, flags)
			if err != nil {
				return err
			}
			defer inst.Close(ctx)

			prov := segcache.Provenance{SchemaName: schema, CubeName: cube, MeasureName: measure, RolapStarFactTableName: factTable}
			results, err := inst.Locate(ctx, prov, bitkey.Of(bits...), nil, nil)
			if err != nil {
				return err
			}
			for _, h := range results {
				fmt.Println(h.UniqueIDHex())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&schema, "schema", "", "schema name")
	cmd.Flags().StringVar(&cube, "cube", "", "cube name")
	cmd.Flags().StringVar(&measure, "measure", "", "measure name")
	cmd.Flags().StringVar(&factTable, "fact-table", "", "fact table name")
	cmd.Flags().IntSliceVar(&bits, "bits", nil, "constrained column bit positions")
	return cmd
}

func getCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <segment.json>",
		Short: "Fetch a segment's body, falling back to a rollup if not directly cached",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			inst, err := openInstance(ctx, flags)
			if err != nil {
				return err
			}
			defer inst.Close(ctx)

			spec, err := loadSegmentSpec(args[0])
			if err != nil {
				return err
			}
			header := headerFromSpec(spec)

			body, found, err := inst.Get(ctx, header)
			if err != nil {
				return err
			}
			if !found {
				fmt.Println("not found")
				return nil
			}
			fmt.Printf("cells: %d, density: %.2f\n", body.CellCount(), body.Density())
			return nil
		},
	}
}

func flushCmd(flags *rootFlags) *cobra.Command {
	var schema, cube, measure, factTable string

	cmd := &cobra.Command{
		Use:   "flush",
		Short: "Evict every segment of a provenance",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			inst, err := openInstance(ctx, flags)
			if err != nil {
				return err
			}
			defer inst.Close(ctx)

			prov := segcache.Provenance{SchemaName: schema, CubeName: cube, MeasureName: measure, RolapStarFactTableName: factTable}
			n, err := inst.FlushRegion(ctx, prov, nil)
			if err != nil {
				return err
			}
			fmt.Printf("flushed %d segments\n", n)
			return nil
		},
	}

	cmd.Flags().StringVar(&schema, "schema", "", "schema name")
	cmd.Flags().StringVar(&cube, "cube", "", "cube name")
	cmd.Flags().StringVar(&measure, "measure", "", "measure name")
	cmd.Flags().StringVar(&factTable, "fact-table", "", "fact table name")
	return cmd
}
