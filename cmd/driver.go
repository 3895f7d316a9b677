// ABOUTME: Driver commands: list my trips, complete a trip
// ABOUTME: Only available when the stored session routes to the driver dashboard

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/markalston/cabdesk/internal/client"
	"github.com/markalston/cabdesk/internal/router"
	"github.com/spf13/cobra"
)

var driverCmd = &cobra.Command{
	Use:   "driver",
	Short: "Driver commands (requires the DRIVER role)",
	Long: `Driver commands. Sign in with a DRIVER account first.

Exit codes:
  0 - Success
  1 - Not logged in, or not a driver
  2 - Error (connectivity, invalid input, backend failure)`,
}

var driverTripsCmd = &cobra.Command{
	Use:   "trips",
	Short: "List your active and completed trips",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runDriverTrips(ctx, os.Stdout, time.Now())
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var driverCompleteCmd = &cobra.Command{
	Use:   "complete <booking-id>",
	Short: "Mark a trip as completed",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runCompleteTrip(ctx, os.Stdout, args[0])
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(driverCmd)
	driverCmd.AddCommand(driverTripsCmd, driverCompleteCmd)
}

// runDriverTrips lists the driver's trips and returns exit code
func runDriverTrips(ctx context.Context, w io.Writer, now time.Time) int {
	return withDeps(ctx, w, func(d *deps) int {
		user, code := authorize(ctx, w, d, router.ViewDriver)
		if code != exitOK {
			return code
		}

		trips, err := d.client.MyTrips(ctx, user.Email)
		if err != nil {
			fmt.Fprintf(w, "Error: Failed to load trips: %v\n", err)
			return exitCodeFor(err)
		}

		active, completed := client.SplitTrips(trips)
		if IsJSONOutput() {
			printJSON(w, map[string]any{
				"active":    bookingsOrEmpty(active),
				"completed": bookingsOrEmpty(completed),
			})
			return exitOK
		}

		fmt.Fprintf(w, "Active Trips (%d)\n", len(active))
		if len(active) == 0 {
			fmt.Fprintln(w, "No active trips")
		} else {
			fmt.Fprintln(w, formatBookings(active, tripStatus(now)))
		}
		fmt.Fprintf(w, "\nCompleted Trips (%d)\n", len(completed))
		if len(completed) == 0 {
			fmt.Fprintln(w, "No completed trips yet")
		} else {
			fmt.Fprintln(w, formatBookings(completed, tripStatus(now)))
		}
		return exitOK
	})
}

// runCompleteTrip marks booking rawID completed and returns exit code
func runCompleteTrip(ctx context.Context, w io.Writer, rawID string) int {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		fmt.Fprintf(w, "Error: invalid booking id %q\n", rawID)
		return exitError
	}

	return withDeps(ctx, w, func(d *deps) int {
		if _, code := authorize(ctx, w, d, router.ViewDriver); code != exitOK {
			return code
		}

		ack, err := d.client.CompleteTrip(ctx, id)
		if err != nil {
			fmt.Fprintf(w, "Error: Failed to complete trip: %v\n", err)
			return exitCodeFor(err)
		}

		if IsJSONOutput() {
			printJSON(w, map[string]any{"id": id, "status": "completed", "message": ack})
			return exitOK
		}
		fmt.Fprintln(w, "Trip marked as completed!")
		return exitOK
	})
}
