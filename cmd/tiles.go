package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/twpayne/go-geom"

	"github.com/kodujdlapolski/tree-research/internal/config"
	"github.com/kodujdlapolski/tree-research/internal/foi"
	"github.com/kodujdlapolski/tree-research/internal/tile"
)

var tilesCmd = &cobra.Command{
	Use:   "tiles",
	Short: "Print the tile plan without fetching",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		limit, err := limitFlag(cmd)
		if err != nil {
			return err
		}
		return printTiles(cmd.OutOrStdout(), cfg.Scan, limit)
	},
}

func init() {
	tilesCmd.Flags().Int("limit", 0, "print at most this many tiles (0 = all)")
	rootCmd.AddCommand(tilesCmd)
}

// limitFlag reads the --limit flag shared by the listing commands.
func limitFlag(cmd *cobra.Command) (int, error) {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return 0, eris.Wrapf(err, "%s: read --limit", cmd.Name())
	}
	return limit, nil
}

// printTiles writes one line per tile with its bbox request parameter,
// followed by the total count.
func printTiles(out io.Writer, sc config.ScanConfig, limit int) error {
	upper := geom.Coord{sc.UpperX, sc.UpperY}
	lower := geom.Coord{sc.LowerX, sc.LowerY}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "INDEX\tBBOX")
	for t := range tile.Enumerate(upper, lower, sc.TileSide) {
		if limit > 0 && t.Index >= limit {
			break
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\n", t.Index, foi.BBoxParam(t))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "total: %d tiles\n", tile.Count(upper, lower, sc.TileSide))
	return err
}
