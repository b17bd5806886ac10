package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"wayfinder/core-go/internal/graphview"
	"wayfinder/core-go/internal/indoor"
)

func newRenderCmd() *cobra.Command {
	var (
		format string
		output string
		file   string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a map's routing graph or a floor grid",
		Long: `Render reads a map from DATABASE_URL, or from a seed document when no
database is configured, and writes DOT or SVG.`,
	}
	cmd.PersistentFlags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.PersistentFlags().StringVarP(&file, "file", "f", "", "seed document used without a database (default: built-in campus)")

	graphCmd := &cobra.Command{
		Use:   "graph <map-id>",
		Short: "Render the node graph, one cluster per floor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "dot" && format != "svg" {
				return fmt.Errorf("unknown format %q (want dot or svg)", format)
			}
			m, err := loadRenderMap(cmd.Context(), args[0], file)
			if err != nil {
				return err
			}

			dot := graphview.ToDOT(m)
			if format == "dot" {
				return writeOutput(output, cmd.OutOrStdout(), []byte(dot))
			}
			svg, err := graphview.RenderSVG(cmd.Context(), dot)
			if err != nil {
				return err
			}
			return writeOutput(output, cmd.OutOrStdout(), svg)
		},
	}
	graphCmd.Flags().StringVar(&format, "format", "dot", "output format: dot or svg")

	floorCmd := &cobra.Command{
		Use:   "floor <map-id> <floor>",
		Short: "Render a floor grid as SVG",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			floor, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid floor %q", args[1])
			}
			m, err := loadRenderMap(cmd.Context(), args[0], file)
			if err != nil {
				return err
			}
			f, err := m.Floors.Get(floor)
			if err != nil {
				return err
			}
			return writeOutput(output, cmd.OutOrStdout(), []byte(f.Grid.SVG()))
		},
	}

	cmd.AddCommand(graphCmd, floorCmd)
	return cmd
}

func loadRenderMap(ctx context.Context, rawID, seedFile string) (*indoor.Map, error) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("invalid map id %q", rawID)
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}
	// Rendered output may go to stdout.
	logger = logger.Output(os.Stderr)

	backend, err := openMapStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer backend.Close()

	if backend.pool == nil {
		if seedFile == "" {
			seedFile = cfg.SeedFile
		}
		if err := applySeed(ctx, backend.store, seedFile, logger); err != nil {
			return nil, err
		}
	}
	return backend.store.GetMap(ctx, id)
}

func writeOutput(path string, stdout io.Writer, data []byte) error {
	if path == "" {
		_, err := stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
