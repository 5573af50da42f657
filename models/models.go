package models

import "time"

// CallRecord is one normalized call from a PBX export.
// It is shared across packages and treated as read-only once built.
type CallRecord struct {
	Start time.Time
	// DurationSeconds is the conversation time. Zero means the call never
	// occupied a channel.
	DurationSeconds int

	Caller       string
	Destination  string
	Status       string
	RingSeconds  int
	TotalSeconds int
}

// End returns the instant the call released its channel.
func (c CallRecord) End() time.Time {
	return c.Start.Add(time.Duration(c.DurationSeconds) * time.Second)
}

// Event is a channel being taken (+1) or released (-1).
type Event struct {
	Time  time.Time
	Delta int
}

// OccupancyPoint is the active channel count right after an event.
type OccupancyPoint struct {
	Time           time.Time `json:"time"`
	ActiveChannels int       `json:"active_channels"`
}

// Occupancy is the channel step function of a dataset and its peak.
type Occupancy struct {
	Points []OccupancyPoint `json:"points"`
	Peak   int              `json:"peak"`
}

// PeakAt returns the first time the peak was reached, or the zero time when
// there are no points.
func (o Occupancy) PeakAt() time.Time {
	for _, p := range o.Points {
		if p.ActiveChannels == o.Peak {
			return p.Time
		}
	}
	return time.Time{}
}

// DayCount is the number of calls started on a calendar day.
type DayCount struct {
	Day   string `json:"day"`
	Calls int    `json:"calls"`
}

// HourCount is the number of calls started in an hour of the day (0-23).
type HourCount struct {
	Hour  int `json:"hour"`
	Calls int `json:"calls"`
}

// ValueCount pairs a field value with how often it occurs.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Averages holds mean durations in seconds.
type Averages struct {
	ConversationSeconds float64 `json:"conversation_seconds"`
	RingSeconds         float64 `json:"ring_seconds"`
	TotalSeconds        float64 `json:"total_seconds"`
}

// Period is the span between the first and last call start.
type Period struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Report gathers everything computed for one dataset.
type Report struct {
	RunID       string         `json:"run_id"`
	Dataset     string         `json:"dataset"`
	Calls       int            `json:"calls"`
	Period      Period         `json:"period"`
	Occupancy   Occupancy      `json:"occupancy"`
	ByDay       []DayCount     `json:"by_day"`
	ByHour      []HourCount    `json:"by_hour"`
	TopCallers  []ValueCount   `json:"top_callers"`
	TopDests    []ValueCount   `json:"top_destinations"`
	Statuses    []ValueCount   `json:"statuses"`
	Averages    Averages       `json:"averages"`
	ShortCutoff int            `json:"short_call_threshold_seconds"`
	ShortCalls  []ShortCallRow `json:"short_calls"`
}

// ShortCallRow is the display form of a short call.
type ShortCallRow struct {
	Start           time.Time `json:"start"`
	Caller          string    `json:"caller"`
	Destination     string    `json:"destination"`
	DurationSeconds int       `json:"duration_seconds"`
}
