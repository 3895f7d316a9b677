// ABOUTME: HR commands: list my bookings, book a cab
// ABOUTME: Bookings are always made on behalf of the signed-in HR user

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

var bookingForm forms.Booking

var hrCmd = &cobra.Command{
	Use:   "hr",
	Short: "HR commands (requires the HR role)",
	Long: `HR commands. Sign in with an HR account first.

Exit codes:
  0 - Success
  1 - Not logged in, or not an HR user
  2 - Error (connectivity, invalid input, backend failure)`,
}

var hrBookingsCmd = &cobra.Command{
	Use:   "bookings",
	Short: "List bookings you made",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runHRBookings(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

var hrBookCmd = &cobra.Command{
	Use:   "book",
	Short: "Book a cab for an employee",
	Long: `Book a cab for an employee.

--time takes a local timestamp such as 2026-03-01T09:30 and must be in the future.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runHRBook(ctx, os.Stdout, bookingForm)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(hrCmd)
	hrCmd.AddCommand(hrBookingsCmd, hrBookCmd)

	f := hrBookCmd.Flags()
	f.StringVar(&bookingForm.EmployeeName, "employee", "", "Employee name")
	f.StringVar(&bookingForm.Pickup, "pickup", "", "Pickup location")
	f.StringVar(&bookingForm.DropLocation, "drop", "", "Drop location")
	f.StringVar(&bookingForm.PickupTime, "time", "", "Pickup time (YYYY-MM-DDTHH:MM)")
	f.StringVar(&bookingForm.CabType, "cab-type", "", "Cab type, e.g. Sedan, SUV, Luxury")
	f.IntVar(&bookingForm.DurationMin, "duration", forms.DefaultDurationMin, "Trip duration in minutes")
}

// runHRBookings lists the HR user's bookings and returns exit code
func runHRBookings(ctx context.Context, w io.Writer) int {
	return withDeps(ctx, w, func(d *deps) int {
		user, code := authorize(ctx, w, d, router.ViewHR)
		if code != exitOK {
			return code
		}

		bookings, err := d.client.MyBookings(ctx, user.Email)
		if err != nil {
			fmt.Fprintf(w, "Error: Failed to load bookings: %v\n", err)
			return exitCodeFor(err)
		}

		stats := client.SummarizeBookings(bookings)
		if IsJSONOutput() {
			printJSON(w, map[string]any{
				"bookings": bookingsOrEmpty(bookings),
				"stats":    stats,
			})
			return exitOK
		}
		if len(bookings) == 0 {
			fmt.Fprintln(w, "No bookings yet")
			return exitOK
		}
		fmt.Fprintln(w, formatBookings(bookings, hrStatus))
		fmt.Fprintf(w, "Total: %d  Completed: %d  Pending: %d\n", stats.Total, stats.Completed, stats.Pending)
		return exitOK
	})
}

// runHRBook validates and submits a booking and returns exit code
func runHRBook(ctx context.Context, w io.Writer, form forms.Booking) int {
	if err := form.Validate(); err != nil {
		fmt.Fprintf(w, "Error: %s\n", errorMessage(err))
		return exitError
	}

	return withDeps(ctx, w, func(d *deps) int {
		user, code := authorize(ctx, w, d, router.ViewHR)
		if code != exitOK {
			return code
		}

		ack, err := d.client.CreateBooking(ctx, form.Client(user.Email))
		if err != nil {
			fmt.Fprintf(w, "Error: Failed to create booking: %v\n", err)
			return exitCodeFor(err)
		}

		if IsJSONOutput() {
			printJSON(w, map[string]string{"status": "created", "message": ack})
			return exitOK
		}
		fmt.Fprintln(w, "Booking created successfully!")
		return exitOK
	})
}
