package commands

import (
	"io"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/teranos/folio/errors"
	"github.com/teranos/folio/render"
)

// RenderCmd renders a settled visualization.
var RenderCmd = &cobra.Command{
	Use:   "render <data-file>",
	Short: "Render a settled visualization as HTML or SVG",
	Long: `Build a visualization from a data file, run its entrance to the end and
write the result. HTML keeps the filter buttons and styles; SVG is the bare
settled graph.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

var renderOpts struct {
	settleOptions
	Format string
	Output string
}

func init() {
	f := RenderCmd.Flags()
	f.StringVar(&renderOpts.Viz, "viz", "", "Visualization: knowledge, skilltree or mermaid (default from the file type)")
	f.StringVar(&renderOpts.Format, "format", "html", "Output format: html or svg")
	f.StringVarP(&renderOpts.Output, "output", "o", "", "Output file (default stdout)")
	f.IntVar(&renderOpts.Width, "width", 1280, "Viewport width in pixels")
	f.IntVar(&renderOpts.Height, "height", 800, "Viewport height in pixels")
	f.StringArrayVar(&renderOpts.Filters, "filter", nil, "Click a filter before rendering (axis=category, repeatable)")
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	inst, err := settled(args[0], renderOpts.settleOptions, cfg)
	if err != nil {
		return err
	}
	return writeOutput(renderOpts.Output, func(w io.Writer) error {
		switch renderOpts.Format {
		case "html":
			return inst.Document().WriteHTML(w, render.PageOptions{
				Title:  inst.Title(),
				Width:  renderOpts.Width,
				Height: renderOpts.Height,
			})
		case "svg":
			return render.WriteSVG(w, inst.Graph().Snapshot(), render.SVGOptions{})
		default:
			return errors.Wrapf(errors.ErrInvalidRequest, "unsupported format %q (supported: html, svg)", renderOpts.Format)
		}
	})
}

// writeOutput runs write against path, or stdout when path is empty.
func writeOutput(path string, write func(io.Writer) error) error {
	if path == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	pterm.Success.Printfln("Wrote %s", path)
	return nil
}
