// ABOUTME: Entry point for the cabdesk CLI
// ABOUTME: Terminal client for signing in and working the cab booking dashboards

package main

import (
	"fmt"
	"os"

	"github.com/markalston/cabdesk/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
