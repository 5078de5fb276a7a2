package placements

import (
	"math"
	"time"
)

// Summary totals the full-time-equivalent service across placements.
type Summary struct {
	Count  int     `json:"count"`
	Days   int     `json:"days"`
	Months float64 `json:"months"`
}

// FTEDays is the inclusive calendar length of p scaled by its attendance,
// rounded to whole days and never negative. Unparseable dates count as zero.
func FTEDays(p Placement) int {
	start, end, ok := period(p)
	if !ok {
		return 0
	}
	days := end.Sub(start).Hours()/24 + 1
	return max(0, int(math.Round(days*float64(p.Attendance)/100)))
}

// FTEMonths sums, for each calendar month p touches, the share of that
// month covered scaled by attendance.
func FTEMonths(p Placement) float64 {
	start, end, ok := period(p)
	if !ok || end.Before(start) {
		return 0
	}

	attend := float64(p.Attendance) / 100
	total := 0.0

	for cursor := monthStart(start); !cursor.After(end); cursor = cursor.AddDate(0, 1, 0) {
		mEnd := cursor.AddDate(0, 1, -1)

		from := cursor
		if start.After(from) {
			from = start
		}
		to := mEnd
		if end.Before(to) {
			to = end
		}
		if to.Before(from) {
			continue
		}

		overlap := to.Sub(from).Hours()/24 + 1
		inMonth := mEnd.Sub(cursor).Hours()/24 + 1
		total += overlap / inMonth * attend
	}
	return total
}

// Summarize totals FTE days and months over ps.
func Summarize(ps []Placement) Summary {
	s := Summary{Count: len(ps)}
	for _, p := range ps {
		s.Days += FTEDays(p)
		s.Months += FTEMonths(p)
	}
	return s
}

func period(p Placement) (time.Time, time.Time, bool) {
	start, err := time.Parse(time.DateOnly, p.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err := time.Parse(time.DateOnly, p.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
