package commands

import (
	"encoding/json"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/teranos/folio/am"
	"github.com/teranos/folio/errors"
	"gopkg.in/yaml.v3"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: "Show folio configuration",
	Long: `am - Show folio configuration ("I am")

Configuration sources (in order of precedence):
1. Environment variables (FOLIO_* prefix)
2. --config file
3. Project config (folio.toml, searched upward from the working directory)
4. User config (~/.folio/folio.toml)
5. Default values

Examples:
  folio am show                    # Show current configuration
  folio am show --format json      # Show configuration in JSON format
  folio am where                   # Show which source set each value
  folio am validate                # Validate current configuration`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the effective folio configuration from all sources",
	RunE:  runAmShow,
}

var amWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where each setting comes from",
	RunE:  runAmWhere,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	RunE:  runAmValidate,
}

var configFormat string

func init() {
	amShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amWhereCmd)
	AmCmd.AddCommand(amValidateCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	switch configFormat {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to JSON")
		}
		fmt.Fprintln(out, string(data))
	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to YAML")
		}
		fmt.Fprintf(out, "# folio configuration\n%s", data)
	case "toml":
		data, err := am.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "# folio configuration\n%s", data)
	default:
		return errors.Wrapf(errors.ErrInvalidRequest, "unsupported format: %s (supported: toml, json, yaml)", configFormat)
	}
	return nil
}

func runAmWhere(cmd *cobra.Command, args []string) error {
	settings, err := am.Settings()
	if err != nil {
		return errors.Wrap(err, "failed to list settings")
	}
	rows := pterm.TableData{{"Key", "Value", "Source"}}
	for _, s := range settings {
		src := string(s.Source)
		if s.Path != "" {
			src += " (" + s.Path + ")"
		}
		rows = append(rows, []string{s.Key, fmt.Sprint(s.Value), src})
	}
	return pterm.DefaultTable.WithHasHeader().WithWriter(cmd.OutOrStdout()).WithData(rows).Render()
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	if _, err := loadConfig(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}
	pterm.Success.Println("Configuration is valid")
	return nil
}
