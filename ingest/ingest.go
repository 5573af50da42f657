// Package ingest loads normalized call records handed off by the PBX export
// pipeline and enforces the preconditions of the occupancy computation.
//
// The hand-off format is CSV with a header row. Columns may appear in any
// order; "start" (RFC 3339) and "duration_seconds" are required, while
// "caller", "destination", "status", "ring_seconds" and "total_seconds" are
// optional. Lines starting with '#' are comments.
package ingest

import (
	"cdr-analyzer/errors"
	"cdr-analyzer/metrics"
	"cdr-analyzer/models"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Column names of the hand-off format.
const (
	ColStart        = "start"
	ColDuration     = "duration_seconds"
	ColCaller       = "caller"
	ColDestination  = "destination"
	ColStatus       = "status"
	ColRingSeconds  = "ring_seconds"
	ColTotalSeconds = "total_seconds"
)

// Load reads CSV data from the reader and returns the call records in input
// order. The first violation stops loading and is returned as an
// *errors.RecordError.
func Load(r io.Reader) ([]models.CallRecord, error) {
	timer := metricsTimer()
	defer timer()

	records, err := load(r)
	if err != nil {
		metrics.IngestErrorsTotal.WithLabelValues(errors.Type(err)).Inc()
		return nil, err
	}
	metrics.IngestRecordsTotal.Add(float64(len(records)))
	return records, nil
}

func metricsTimer() func() {
	start := time.Now()
	return func() {
		metrics.IngestDurationSeconds.Observe(time.Since(start).Seconds())
	}
}

func load(r io.Reader) ([]models.CallRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.Comment = '#'

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &errors.RecordError{Line: 1, Err: errors.ErrMissingHeader}
	}
	if err != nil {
		return nil, fmt.Errorf("error reading CSV header: %w", err)
	}

	cols, err := indexColumns(header)
	if err != nil {
		line, _ := reader.FieldPos(0)
		return nil, &errors.RecordError{Line: line, Record: header, Err: err}
	}

	var data []models.CallRecord
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		line, _ := reader.FieldPos(0)

		if len(record) != len(header) {
			return nil, &errors.RecordError{
				Line:   line,
				Record: record,
				Err:    errors.ErrInvalidFieldCount,
			}
		}

		cr, err := cols.decode(record)
		if err != nil {
			return nil, &errors.RecordError{Line: line, Record: record, Err: err}
		}
		data = append(data, cr)
	}

	return data, nil
}

// columns maps hand-off column names to their positions; -1 means absent.
type columns struct {
	start, duration, caller, destination, status, ring, total int
}

func indexColumns(header []string) (columns, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.ToLower(strings.TrimSpace(h))] = i
	}
	lookup := func(name string) int {
		if i, ok := pos[name]; ok {
			return i
		}
		return -1
	}

	c := columns{
		start:       lookup(ColStart),
		duration:    lookup(ColDuration),
		caller:      lookup(ColCaller),
		destination: lookup(ColDestination),
		status:      lookup(ColStatus),
		ring:        lookup(ColRingSeconds),
		total:       lookup(ColTotalSeconds),
	}
	if c.start < 0 {
		return c, fmt.Errorf("%w: %s", errors.ErrMissingColumn, ColStart)
	}
	if c.duration < 0 {
		return c, fmt.Errorf("%w: %s", errors.ErrMissingColumn, ColDuration)
	}
	return c, nil
}

func (c columns) decode(record []string) (models.CallRecord, error) {
	field := func(i int) string {
		if i < 0 {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var cr models.CallRecord
	var err error

	cr.Start, err = time.Parse(time.RFC3339, field(c.start))
	if err != nil {
		return cr, fmt.Errorf("%w: %v", errors.ErrInvalidStart, err)
	}

	cr.DurationSeconds, err = strconv.Atoi(field(c.duration))
	if err != nil {
		return cr, fmt.Errorf("%w: %v", errors.ErrInvalidDuration, err)
	}
	if cr.DurationSeconds < 0 {
		return cr, fmt.Errorf("%w: %d", errors.ErrNegativeDuration, cr.DurationSeconds)
	}

	cr.RingSeconds, err = optionalSeconds(field(c.ring))
	if err != nil {
		return cr, fmt.Errorf("%w: %v", errors.ErrInvalidRing, err)
	}
	cr.TotalSeconds, err = optionalSeconds(field(c.total))
	if err != nil {
		return cr, fmt.Errorf("%w: %v", errors.ErrInvalidTotal, err)
	}

	cr.Caller = field(c.caller)
	cr.Destination = field(c.destination)
	cr.Status = field(c.status)
	return cr, nil
}

// optionalSeconds parses a non-negative integer, treating an empty value as 0.
func optionalSeconds(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative value %d", n)
	}
	return n, nil
}

// Validate checks records built outside Load. It reports the first record
// with a zero start time or a negative duration, with Line set to the
// record's index.
func Validate(records []models.CallRecord) error {
	for i, r := range records {
		if r.Start.IsZero() {
			return &errors.RecordError{Line: i, Err: errors.ErrInvalidStart}
		}
		if r.DurationSeconds < 0 {
			return &errors.RecordError{
				Line: i,
				Err:  fmt.Errorf("%w: %d", errors.ErrNegativeDuration, r.DurationSeconds),
			}
		}
	}
	return nil
}
