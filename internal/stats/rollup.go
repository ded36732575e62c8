package stats

import (
	"math"
	"slices"
	"time"

	"github.com/nekogravitycat/camp-booking-backend/internal/booking"
)

// Summarize counts paid bookings as the booking total; unpaid ones are pending.
func Summarize(rows []Row) Stats {
	var s Stats
	for _, r := range rows {
		if !r.IsPaid {
			s.PendingBookings++
			continue
		}
		s.PaidBookings++
		s.TotalRevenue += r.Total
	}
	s.TotalBookings = s.PaidBookings
	s.TotalRevenue = round2(s.TotalRevenue)
	return s
}

// Charts rolls paid bookings up by month of stay and by location.
// Months are chronological; locations keep their canonical order and are
// omitted when they have no paid bookings.
func Charts(rows []Row) ChartData {
	type monthKey struct {
		year  int
		month time.Month
	}

	var (
		months     []monthKey
		byMonth    = map[monthKey]*MonthlyRollup{}
		byLocation = map[booking.Location]*LocationRollup{}
		summary    Stats
	)

	for _, r := range rows {
		if !r.IsPaid {
			continue
		}
		summary.PaidBookings++
		summary.TotalRevenue += r.Total

		k := monthKey{r.BookingDate.Year(), r.BookingDate.Month()}
		m, ok := byMonth[k]
		if !ok {
			m = &MonthlyRollup{Month: r.BookingDate.Format(MonthLayout)}
			byMonth[k] = m
			months = append(months, k)
		}
		m.Bookings++
		m.Revenue += r.Total

		l, ok := byLocation[r.Location]
		if !ok {
			l = &LocationRollup{Location: r.Location}
			byLocation[r.Location] = l
		}
		l.Bookings++
		l.Revenue += r.Total
	}

	slices.SortFunc(months, func(a, b monthKey) int {
		if a.year != b.year {
			return a.year - b.year
		}
		return int(a.month) - int(b.month)
	})

	out := ChartData{
		MonthlyBookings: make([]MonthlyRollup, 0, len(months)),
		LocationStats:   []LocationRollup{},
	}
	for _, k := range months {
		m := byMonth[k]
		m.Revenue = round2(m.Revenue)
		out.MonthlyBookings = append(out.MonthlyBookings, *m)
	}
	for _, loc := range booking.Locations() {
		if l, ok := byLocation[loc]; ok {
			l.Revenue = round2(l.Revenue)
			out.LocationStats = append(out.LocationStats, *l)
		}
	}

	summary.TotalBookings = summary.PaidBookings
	summary.TotalRevenue = round2(summary.TotalRevenue)
	out.Stats = summary
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
