// Package stats holds the descriptive views of a call dataset. Every function
// is a pure aggregation over the records and can run independently of the
// others.
package stats

import (
	"cdr-analyzer/models"
	"cmp"
	"slices"
	"time"
)

// DefaultShortCallSeconds is the conversation time under which a call is
// reported as short.
const DefaultShortCallSeconds = 5

// Field selects the descriptive column TopN counts.
type Field int

const (
	Caller Field = iota
	Destination
	Status
)

func (f Field) String() string {
	switch f {
	case Caller:
		return "caller"
	case Destination:
		return "destination"
	case Status:
		return "status"
	default:
		return "unknown"
	}
}

func (f Field) value(r models.CallRecord) string {
	switch f {
	case Caller:
		return r.Caller
	case Destination:
		return r.Destination
	case Status:
		return r.Status
	default:
		return ""
	}
}

// localize converts t to loc, leaving it untouched when loc is nil.
func localize(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		return t
	}
	return t.In(loc)
}

// CallsByDay counts call starts per calendar day in loc, ordered by day.
// A nil loc uses each record's own location.
func CallsByDay(records []models.CallRecord, loc *time.Location) []models.DayCount {
	counts := make(map[string]int)
	for _, r := range records {
		counts[localize(r.Start, loc).Format(time.DateOnly)]++
	}

	days := make([]models.DayCount, 0, len(counts))
	for day, n := range counts {
		days = append(days, models.DayCount{Day: day, Calls: n})
	}
	slices.SortFunc(days, func(a, b models.DayCount) int {
		return cmp.Compare(a.Day, b.Day)
	})
	return days
}

// CallsByHour counts call starts per hour of the day in loc. The result always
// has 24 entries, hour 0 first.
func CallsByHour(records []models.CallRecord, loc *time.Location) []models.HourCount {
	hours := make([]models.HourCount, 24)
	for h := range hours {
		hours[h].Hour = h
	}
	for _, r := range records {
		hours[localize(r.Start, loc).Hour()].Calls++
	}
	return hours
}

// TopN returns the n most frequent non-empty values of field, most frequent
// first. Equal counts are ordered by value. n <= 0 returns every value.
func TopN(records []models.CallRecord, field Field, n int) []models.ValueCount {
	counts := make(map[string]int)
	for _, r := range records {
		if v := field.value(r); v != "" {
			counts[v]++
		}
	}

	values := make([]models.ValueCount, 0, len(counts))
	for v, c := range counts {
		values = append(values, models.ValueCount{Value: v, Count: c})
	}
	slices.SortFunc(values, func(a, b models.ValueCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Value, b.Value)
	})

	if n > 0 && len(values) > n {
		values = values[:n]
	}
	return values
}

// Averages returns mean conversation, ring and total times. Empty input
// yields zeros.
func Averages(records []models.CallRecord) models.Averages {
	if len(records) == 0 {
		return models.Averages{}
	}

	var conversation, ring, total int
	for _, r := range records {
		conversation += r.DurationSeconds
		ring += r.RingSeconds
		total += r.TotalSeconds
	}

	n := float64(len(records))
	return models.Averages{
		ConversationSeconds: float64(conversation) / n,
		RingSeconds:         float64(ring) / n,
		TotalSeconds:        float64(total) / n,
	}
}

// ShortCalls returns the calls whose conversation lasted less than threshold
// seconds, in input order. Calls that were never answered are included.
// limit <= 0 returns all of them.
func ShortCalls(records []models.CallRecord, threshold, limit int) []models.CallRecord {
	var short []models.CallRecord
	for _, r := range records {
		if r.DurationSeconds >= threshold {
			continue
		}
		short = append(short, r)
		if limit > 0 && len(short) == limit {
			break
		}
	}
	return short
}

// CountShortCalls is ShortCalls without the limit, counted only.
func CountShortCalls(records []models.CallRecord, threshold int) int {
	n := 0
	for _, r := range records {
		if r.DurationSeconds < threshold {
			n++
		}
	}
	return n
}

// Period returns the first and last call start. Empty input yields a zero
// period.
func Period(records []models.CallRecord) models.Period {
	if len(records) == 0 {
		return models.Period{}
	}

	p := models.Period{From: records[0].Start, To: records[0].Start}
	for _, r := range records[1:] {
		if r.Start.Before(p.From) {
			p.From = r.Start
		}
		if r.Start.After(p.To) {
			p.To = r.Start
		}
	}
	return p
}
