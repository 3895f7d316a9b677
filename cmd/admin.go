// ABOUTME: Admin commands: list bookings, list drivers, add a driver
// ABOUTME: Only available when the stored session routes to the admin dashboard

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/markalston/cabdesk/internal/client"
	"github.com/markalston/cabdesk/internal/forms"
	"github.com/markalston/cabdesk/internal/router"
	"github.com/spf13/cobra"
)

var (
	driverName    string
	driverEmail   string
	driverCabType string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Admin commands (requires the ADMIN role)",
	Long: `Admin commands. Sign in with an ADMIN account first.

Exit codes:
  0 - Success
  1 - Not logged in, or not an admin
  2 - Error (connectivity, invalid input, backend failure)`,
}

var adminBookingsCmd = &cobra.Command{
	Use:   "bookings",
	Short: "List every booking",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runAdminBookings(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var adminDriversCmd = &cobra.Command{
	Use:   "drivers",
	Short: "List registered drivers",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runAdminDrivers(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var adminAddDriverCmd = &cobra.Command{
	Use:   "add-driver",
	Short: "Register a new driver",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runAddDriver(ctx, os.Stdout, forms.Driver{
			Name:    driverName,
			Email:   driverEmail,
			CabType: driverCabType,
		})
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(adminBookingsCmd, adminDriversCmd, adminAddDriverCmd)

	adminAddDriverCmd.Flags().StringVar(&driverName, "name", "", "Driver name")
	adminAddDriverCmd.Flags().StringVar(&driverEmail, "email", "", "Driver email")
	adminAddDriverCmd.Flags().StringVar(&driverCabType, "cab-type", "", "Cab type, e.g. Sedan, SUV, Luxury")
}

// runAdminBookings lists all bookings and returns exit code
func runAdminBookings(ctx context.Context, w io.Writer) int {
	return withDeps(ctx, w, func(d *deps) int {
		if _, code := authorize(ctx, w, d, router.ViewAdmin); code != exitOK {
			return code
		}

		bookings, err := d.client.ListBookings(ctx)
		if err != nil {
			fmt.Fprintf(w, "Error: Failed to load bookings: %v\n", err)
			return exitCodeFor(err)
		}

		if IsJSONOutput() {
			printJSON(w, bookingsOrEmpty(bookings))
			return exitOK
		}
		if len(bookings) == 0 {
			fmt.Fprintln(w, "No bookings found")
			return exitOK
		}
		fmt.Fprintln(w, formatBookings(bookings, adminStatus))
		fmt.Fprintf(w, "%d booking(s)\n", len(bookings))
		return exitOK
	})
}

// runAdminDrivers lists drivers and returns exit code
func runAdminDrivers(ctx context.Context, w io.Writer) int {
	return withDeps(ctx, w, func(d *deps) int {
		if _, code := authorize(ctx, w, d, router.ViewAdmin); code != exitOK {
			return code
		}

		drivers, err := d.client.ListDrivers(ctx)
		if err != nil {
			fmt.Fprintf(w, "Error: Failed to load drivers: %v\n", err)
			return exitCodeFor(err)
		}

		if IsJSONOutput() {
			if drivers == nil {
				drivers = []client.Driver{}
			}
			printJSON(w, drivers)
			return exitOK
		}
		if len(drivers) == 0 {
			fmt.Fprintln(w, "No drivers found")
			return exitOK
		}
		fmt.Fprintln(w, formatDrivers(drivers))
		fmt.Fprintf(w, "%d driver(s), %d available\n", len(drivers), client.CountAvailable(drivers))
		return exitOK
	})
}

// runAddDriver validates and submits a new driver and returns exit code
func runAddDriver(ctx context.Context, w io.Writer, form forms.Driver) int {
	if err := form.Validate(); err != nil {
		fmt.Fprintf(w, "Error: %s\n", errorMessage(err))
		return exitError
	}

	return withDeps(ctx, w, func(d *deps) int {
		if _, code := authorize(ctx, w, d, router.ViewAdmin); code != exitOK {
			return code
		}

		ack, err := d.client.AddDriver(ctx, form.Client())
		if err != nil {
			fmt.Fprintf(w, "Error: Failed to add driver: %v\n", err)
			return exitCodeFor(err)
		}

		if IsJSONOutput() {
			printJSON(w, map[string]string{"status": "added", "message": ack})
			return exitOK
		}
		fmt.Fprintln(w, "Driver added successfully")
		return exitOK
	})
}

// bookingsOrEmpty keeps JSON output an array when the backend returns null
func bookingsOrEmpty(b []client.Booking) []client.Booking {
	if b == nil {
		return []client.Booking{}
	}
	return b
}
