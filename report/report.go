// Package report assembles the channel occupancy and the descriptive views of
// a call dataset into a models.Report.
package report

import (
	"cdr-analyzer/logging"
	"cdr-analyzer/metrics"
	"cdr-analyzer/models"
	"cdr-analyzer/occupancy"
	"cdr-analyzer/stats"
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Options tunes the descriptive part of a report.
type Options struct {
	// Top is the size of the caller and destination rankings; 0 lists all.
	Top int
	// ShortThreshold is the conversation time under which a call is short.
	ShortThreshold int
	// ShortLimit caps the listed short calls; 0 lists all.
	ShortLimit int
	// Location is the zone for day and hour buckets; nil keeps record zones.
	Location *time.Location
	// Parallelism bounds BuildAll; values below 1 mean one dataset at a time.
	Parallelism int
}

// DefaultOptions mirrors the CLI defaults.
func DefaultOptions() Options {
	return Options{
		Top:            10,
		ShortThreshold: stats.DefaultShortCallSeconds,
		ShortLimit:     10,
		Parallelism:    4,
	}
}

// Build computes the report of one dataset. records is only read.
func Build(dataset string, records []models.CallRecord, opts Options) *models.Report {
	start := time.Now()
	log := logging.WithComponent("report")

	occ := occupancy.Analyze(records)

	short := stats.ShortCalls(records, opts.ShortThreshold, opts.ShortLimit)
	shortRows := make([]models.ShortCallRow, len(short))
	for i, r := range short {
		shortRows[i] = models.ShortCallRow{
			Start:           r.Start,
			Caller:          r.Caller,
			Destination:     r.Destination,
			DurationSeconds: r.DurationSeconds,
		}
	}

	rep := &models.Report{
		RunID:       uuid.NewString(),
		Dataset:     dataset,
		Calls:       len(records),
		Period:      stats.Period(records),
		Occupancy:   occ,
		ByDay:       stats.CallsByDay(records, opts.Location),
		ByHour:      stats.CallsByHour(records, opts.Location),
		TopCallers:  stats.TopN(records, stats.Caller, opts.Top),
		TopDests:    stats.TopN(records, stats.Destination, opts.Top),
		Statuses:    stats.TopN(records, stats.Status, 0),
		Averages:    stats.Averages(records),
		ShortCutoff: opts.ShortThreshold,
		ShortCalls:  shortRows,
	}

	idle := 0
	for _, r := range records {
		if r.DurationSeconds <= 0 {
			idle++
		}
	}
	shortCount := stats.CountShortCalls(records, opts.ShortThreshold)

	metrics.PeakChannels.WithLabelValues(dataset).Set(float64(occ.Peak))
	metrics.CallsAnalyzed.WithLabelValues(dataset).Set(float64(len(records)))
	metrics.CallsWithoutConversation.WithLabelValues(dataset).Set(float64(idle))
	metrics.ShortCalls.WithLabelValues(dataset).Set(float64(shortCount))
	metrics.AverageConversationSeconds.WithLabelValues(dataset).Set(rep.Averages.ConversationSeconds)
	metrics.OccupancyEvents.Observe(float64(len(occ.Points)))
	metrics.DatasetsAnalyzed.Inc()
	metrics.AnalysisDurationSeconds.Observe(time.Since(start).Seconds())

	log.Info().
		Str("run_id", rep.RunID).
		Str("dataset", dataset).
		Int("calls", rep.Calls).
		Int("peak_channels", occ.Peak).
		Time("peak_at", occ.PeakAt()).
		Int("short_calls", shortCount).
		Dur("elapsed", time.Since(start)).
		Msg("dataset analyzed")

	return rep
}

// BuildAll builds one report per dataset, running up to opts.Parallelism
// builds at once. Each build works on its own copy of the dataset's records.
// It stops scheduling new builds once ctx is done and returns ctx's error.
func BuildAll(ctx context.Context, datasets map[string][]models.CallRecord, opts Options) (map[string]*models.Report, error) {
	limit := max(opts.Parallelism, 1)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	names := make([]string, 0, len(datasets))
	for name := range datasets {
		names = append(names, name)
	}
	reports := make([]*models.Report, len(names))

	for i, name := range names {
		i, name := i, name
		records := append([]models.CallRecord(nil), datasets[name]...)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			reports[i] = Build(name, records, opts)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]*models.Report, len(names))
	for i, name := range names {
		out[name] = reports[i]
	}
	return out, nil
}
