package formatter

import (
	"cdr-analyzer/models"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// timeLayout is used for every timestamp in text and CSV output.
const timeLayout = time.RFC3339

// FormatText returns the text representation of the report
func FormatText(report *models.Report) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Dataset: %s\n", report.Dataset)
	fmt.Fprintf(&sb, "Calls: %d\n", report.Calls)
	if report.Calls > 0 {
		fmt.Fprintf(&sb, "Period: %s to %s\n",
			report.Period.From.Format(timeLayout), report.Period.To.Format(timeLayout))
	}

	sb.WriteString("\n== Concurrent channels ==\n")
	occ := report.Occupancy
	if len(occ.Points) == 0 {
		sb.WriteString("Peak concurrent channels: 0 (no answered calls)\n")
	} else {
		fmt.Fprintf(&sb, "Peak concurrent channels: %d (first reached %s)\n",
			occ.Peak, occ.PeakAt().Format(timeLayout))
		for _, p := range occ.Points {
			fmt.Fprintf(&sb, "  %s  %3d %s\n", p.Time.Format(timeLayout), p.ActiveChannels, bar(p.ActiveChannels))
		}
	}

	sb.WriteString("\n== Calls per day ==\n")
	if len(report.ByDay) == 0 {
		sb.WriteString("  none\n")
	}
	for _, d := range report.ByDay {
		fmt.Fprintf(&sb, "  %s : %d\n", d.Day, d.Calls)
	}

	sb.WriteString("\n== Calls per hour ==\n")
	for _, h := range report.ByHour {
		if h.Calls == 0 {
			continue
		}
		fmt.Fprintf(&sb, "  %02d:00 : %d\n", h.Hour, h.Calls)
	}

	writeRanking(&sb, "Top callers", report.TopCallers)
	writeRanking(&sb, "Top destinations", report.TopDests)
	writeRanking(&sb, "Call statuses", report.Statuses)

	sb.WriteString("\n== Average durations ==\n")
	fmt.Fprintf(&sb, "  Conversation: %.2f sec\n", report.Averages.ConversationSeconds)
	fmt.Fprintf(&sb, "  Ring: %.2f sec\n", report.Averages.RingSeconds)
	fmt.Fprintf(&sb, "  Total: %.2f sec\n", report.Averages.TotalSeconds)

	fmt.Fprintf(&sb, "\n== Short calls (< %ds) ==\n", report.ShortCutoff)
	if len(report.ShortCalls) == 0 {
		sb.WriteString("  none\n")
	}
	for _, c := range report.ShortCalls {
		fmt.Fprintf(&sb, "  %s  %s -> %s  %ds\n",
			c.Start.Format(timeLayout), orDash(c.Caller), orDash(c.Destination), c.DurationSeconds)
	}

	return sb.String()
}

// FormatJSON returns the JSON array representation of the reports
func FormatJSON(reports ...*models.Report) string {
	if reports == nil {
		reports = []*models.Report{}
	}
	jsonBytes, _ := json.MarshalIndent(reports, "", "  ")
	return string(jsonBytes)
}

// FormatCSV returns the occupancy series of the reports as CSV, one row per
// change point, under a single header
func FormatCSV(reports ...*models.Report) string {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	// Write header
	writer.Write([]string{"dataset", "time", "active_channels"})

	for _, report := range reports {
		for _, p := range report.Occupancy.Points {
			writer.Write([]string{
				report.Dataset,
				p.Time.Format(timeLayout),
				strconv.Itoa(p.ActiveChannels),
			})
		}
	}

	writer.Flush()
	return sb.String()
}

// writeRanking writes a titled value/count table
func writeRanking(sb *strings.Builder, title string, values []models.ValueCount) {
	fmt.Fprintf(sb, "\n== %s ==\n", title)
	if len(values) == 0 {
		sb.WriteString("  none\n")
		return
	}
	for i, v := range values {
		fmt.Fprintf(sb, "  %2d. %s : %d\n", i+1, v.Value, v.Count)
	}
}

// bar draws the channel count as a row of '#', capped to keep lines short
func bar(n int) string {
	const maxWidth = 60
	if n > maxWidth {
		return strings.Repeat("#", maxWidth) + "+"
	}
	return strings.Repeat("#", n)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
