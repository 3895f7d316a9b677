// ABOUTME: ui command launching the interactive terminal interface
// ABOUTME: Shares the session store with the other commands

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/markalston/cabdesk/internal/tui"
	"github.com/markalston/cabdesk/internal/tui/recentlogins"
	"github.com/spf13/cobra"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Launch the interactive terminal interface",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		d, err := setup(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(exitError)
		}

		err = tui.Run(ctx, d.manager, d.client, tui.WithRecentLogins(recentlogins.New(d.cfg.ConfigDir)))
		d.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(exitError)
		}
	},
}

func init() {
	rootCmd.AddCommand(uiCmd)
}
