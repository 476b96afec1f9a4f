package commands

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
	"github.com/teranos/folio/errors"
)

// LayoutCmd exports the settled layout.
var LayoutCmd = &cobra.Command{
	Use:   "layout <data-file>",
	Short: "Export the settled layout as JSON",
	Long: `Build a visualization and print its settled graph: node positions and
radii, edge paths, containers, bounds and category statistics.`,
	Args: cobra.ExactArgs(1),
	RunE: runLayout,
}

var layoutOpts struct {
	settleOptions
	Output  string
	Compact bool
}

func init() {
	f := LayoutCmd.Flags()
	f.StringVar(&layoutOpts.Viz, "viz", "", "Visualization: knowledge, skilltree or mermaid (default from the file type)")
	f.StringVarP(&layoutOpts.Output, "output", "o", "", "Output file (default stdout)")
	f.IntVar(&layoutOpts.Width, "width", 1280, "Viewport width in pixels")
	f.IntVar(&layoutOpts.Height, "height", 800, "Viewport height in pixels")
	f.StringArrayVar(&layoutOpts.Filters, "filter", nil, "Click a filter before exporting (axis=category, repeatable)")
	f.BoolVar(&layoutOpts.Compact, "compact", false, "Write compact JSON")
}

func runLayout(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	inst, err := settled(args[0], layoutOpts.settleOptions, cfg)
	if err != nil {
		return err
	}
	snap := inst.Graph().Snapshot()
	return writeOutput(layoutOpts.Output, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		if !layoutOpts.Compact {
			enc.SetIndent("", "  ")
		}
		if err := enc.Encode(snap); err != nil {
			return errors.Wrap(err, "failed to encode layout")
		}
		return nil
	})
}
