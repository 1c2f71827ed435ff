package main

import (
	"github.com/spf13/cobra"

	"github.com/afishnamedqwerty/aime/internal/config"
	"github.com/afishnamedqwerty/aime/internal/monitor"
)

var watchURL string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow a running workflow in the terminal",
	Long: `Attach a live terminal view to a run started with --viz.

The view polls the dashboard endpoint once a second and renders the
current checklist, optimizer metrics and recent history.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		url := watchURL
		if url == "" {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			url = "http://" + cfg.Monitor.Addr
		}
		return monitor.Watch(url)
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchURL, "url", "", "Dashboard base URL (defaults to the configured monitor address)")
}
