package stats_test

import (
	"cdr-analyzer/models"
	"cdr-analyzer/stats"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func sampleRecords() []models.CallRecord {
	return []models.CallRecord{
		{Start: time.Date(2025, 3, 14, 9, 5, 0, 0, time.UTC), DurationSeconds: 120, RingSeconds: 6, TotalSeconds: 126, Caller: "101", Destination: "0612345678", Status: "Answered"},
		{Start: time.Date(2025, 3, 14, 9, 40, 0, 0, time.UTC), DurationSeconds: 3, RingSeconds: 4, TotalSeconds: 7, Caller: "102", Destination: "0612345678", Status: "Answered"},
		{Start: time.Date(2025, 3, 14, 23, 30, 0, 0, time.UTC), DurationSeconds: 0, RingSeconds: 20, TotalSeconds: 20, Caller: "101", Destination: "0700000000", Status: "Unanswered"},
		{Start: time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC), DurationSeconds: 45, RingSeconds: 2, TotalSeconds: 47, Caller: "101", Destination: "0800000000", Status: "Answered"},
		{Start: time.Date(2025, 3, 13, 8, 0, 0, 0, time.UTC), DurationSeconds: 4, RingSeconds: 8, TotalSeconds: 12, Caller: "", Destination: "0700000000", Status: "Answered"},
	}
}

func TestCallsByDay(t *testing.T) {
	tests := map[string]struct {
		loc      *time.Location
		expected []models.DayCount
	}{
		"RecordLocation": {
			loc: nil,
			expected: []models.DayCount{
				{Day: "2025-03-13", Calls: 1},
				{Day: "2025-03-14", Calls: 3},
				{Day: "2025-03-15", Calls: 1},
			},
		},
		"Paris_MovesLateCallToNextDay": {
			loc: mustLoadLocation("Europe/Paris"),
			expected: []models.DayCount{
				{Day: "2025-03-13", Calls: 1},
				{Day: "2025-03-14", Calls: 2},
				{Day: "2025-03-15", Calls: 2},
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.expected, stats.CallsByDay(sampleRecords(), tt.loc))
		})
	}

	assert.Empty(t, stats.CallsByDay(nil, nil))
}

func TestCallsByHour(t *testing.T) {
	hours := stats.CallsByHour(sampleRecords(), time.UTC)

	assert.Len(t, hours, 24)
	assert.Equal(t, models.HourCount{Hour: 9, Calls: 2}, hours[9])
	assert.Equal(t, models.HourCount{Hour: 23, Calls: 1}, hours[23])
	assert.Equal(t, models.HourCount{Hour: 0, Calls: 0}, hours[0])

	total := 0
	for _, h := range hours {
		total += h.Calls
	}
	assert.Equal(t, 5, total)
}

func TestTopN(t *testing.T) {
	tests := map[string]struct {
		field    stats.Field
		n        int
		expected []models.ValueCount
	}{
		"Callers_SkipsEmpty": {
			field: stats.Caller,
			n:     10,
			expected: []models.ValueCount{
				{Value: "101", Count: 3},
				{Value: "102", Count: 1},
			},
		},
		"Destinations_TiesByValue": {
			field: stats.Destination,
			n:     2,
			expected: []models.ValueCount{
				{Value: "0612345678", Count: 2},
				{Value: "0700000000", Count: 2},
			},
		},
		"Statuses_All": {
			field: stats.Status,
			n:     0,
			expected: []models.ValueCount{
				{Value: "Answered", Count: 4},
				{Value: "Unanswered", Count: 1},
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.expected, stats.TopN(sampleRecords(), tt.field, tt.n))
		})
	}
}

func TestAverages(t *testing.T) {
	avg := stats.Averages(sampleRecords())

	assert.InDelta(t, 34.4, avg.ConversationSeconds, 1e-9)
	assert.InDelta(t, 8.0, avg.RingSeconds, 1e-9)
	assert.InDelta(t, 42.4, avg.TotalSeconds, 1e-9)

	assert.Equal(t, models.Averages{}, stats.Averages(nil))
}

func TestShortCalls(t *testing.T) {
	records := sampleRecords()

	short := stats.ShortCalls(records, stats.DefaultShortCallSeconds, 10)
	assert.Equal(t, []models.CallRecord{records[1], records[2], records[4]}, short)

	assert.Equal(t, []models.CallRecord{records[1]}, stats.ShortCalls(records, stats.DefaultShortCallSeconds, 1))
	assert.Equal(t, 3, stats.CountShortCalls(records, stats.DefaultShortCallSeconds))
	assert.Empty(t, stats.ShortCalls(records, 0, 0))
}

func TestPeriod(t *testing.T) {
	p := stats.Period(sampleRecords())

	assert.Equal(t, time.Date(2025, 3, 13, 8, 0, 0, 0, time.UTC), p.From)
	assert.Equal(t, time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC), p.To)
	assert.Equal(t, models.Period{}, stats.Period(nil))
}

func TestFieldString(t *testing.T) {
	assert.Equal(t, "caller", stats.Caller.String())
	assert.Equal(t, "destination", stats.Destination.String())
	assert.Equal(t, "status", stats.Status.String())
	assert.Equal(t, "unknown", stats.Field(9).String())
}
