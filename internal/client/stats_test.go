package client

import "testing"

func TestSummarizeBookings(t *testing.T) {
	s := SummarizeBookings([]Booking{{Completed: true}, {}, {}, {Completed: true}, {}})
	if s.Total != 5 || s.Completed != 2 || s.Pending != 3 {
		t.Errorf("unexpected stats %+v", s)
	}

	if empty := SummarizeBookings(nil); empty != (BookingStats{}) {
		t.Errorf("expected zero stats, got %+v", empty)
	}
}

func TestCountAvailable(t *testing.T) {
	drivers := []Driver{{Available: true}, {}, {Available: true}}
	if got := CountAvailable(drivers); got != 2 {
		t.Errorf("expected 2 available, got %d", got)
	}
}

func TestSplitTrips(t *testing.T) {
	active, completed := SplitTrips([]Booking{{ID: 1}, {ID: 2, Completed: true}, {ID: 3}})
	if len(active) != 2 || active[0].ID != 1 || active[1].ID != 3 {
		t.Errorf("unexpected active trips %+v", active)
	}
	if len(completed) != 1 || completed[0].ID != 2 {
		t.Errorf("unexpected completed trips %+v", completed)
	}
}
