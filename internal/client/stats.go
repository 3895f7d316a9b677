package client

// BookingStats summarises a list of bookings for dashboard headers
type BookingStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

// SummarizeBookings counts bookings by their completed flag
func SummarizeBookings(bookings []Booking) BookingStats {
	s := BookingStats{Total: len(bookings)}
	for _, b := range bookings {
		if b.Completed {
			s.Completed++
		}
	}
	s.Pending = s.Total - s.Completed
	return s
}

// CountAvailable returns how many drivers are free for assignment
func CountAvailable(drivers []Driver) int {
	n := 0
	for _, d := range drivers {
		if d.Available {
			n++
		}
	}
	return n
}

// SplitTrips separates active trips from completed ones, keeping order
func SplitTrips(trips []Booking) (active, completed []Booking) {
	for _, t := range trips {
		if t.Completed {
			completed = append(completed, t)
		} else {
			active = append(active, t)
		}
	}
	return active, completed
}
