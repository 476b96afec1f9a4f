package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/teranos/folio/internal/version"
)

func printServeBanner(addr string, names []string, watching bool) {
	info := version.Get()
	pterm.DefaultBox.WithTitle("folio live preview").Println(
		fmt.Sprintf("Version:  %s (commit %s)\nProtocol: %s\nAddress:  http://%s", info.Version, info.Short(), info.Protocol, addr))

	rows := pterm.TableData{{"Visualization", "URL"}}
	for _, name := range names {
		rows = append(rows, []string{name, fmt.Sprintf("http://%s/v/%s", addr, name)})
	}
	pterm.DefaultTable.WithHasHeader().WithData(rows).Render()

	if watching {
		pterm.Info.Println("Watching data and config files for changes")
	}
	pterm.Info.Println("Press Ctrl+C to stop")
}
