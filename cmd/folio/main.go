package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/teranos/folio/am"
	"github.com/teranos/folio/cmd/folio/commands"
	"github.com/teranos/folio/logger"
)

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "folio - portfolio visualizations",
	Long: `folio turns a portfolio data file into an animated, filterable visualization.

Available commands:
  render  - Render a settled visualization as HTML or SVG
  layout  - Export the settled layout as JSON
  serve   - Start the live preview server
  am      - Show the effective configuration ("I am")
  version - Show version information

Examples:
  folio render work.yaml -o work.html          # knowledge graph page
  folio render skills.toml --viz skilltree     # skill tree to stdout
  folio render arch.mmd --format svg -o a.svg  # mermaid diagram as SVG
  folio serve work.yaml arch.mmd --watch       # live preview with reload`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		if err := logger.InitializeWithLevel(jsonLogs, logger.VerbosityToLevel(verbosity)); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if path, _ := cmd.Flags().GetString("config"); path != "" {
			am.UseFile(path)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Write logs as JSON")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (overrides folio.toml discovery)")

	rootCmd.AddCommand(commands.RenderCmd)
	rootCmd.AddCommand(commands.LayoutCmd)
	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
