package main

import (
	"cdr-analyzer/config"
	"cdr-analyzer/formatter"
	"cdr-analyzer/ingest"
	"cdr-analyzer/logging"
	"cdr-analyzer/metrics"
	"cdr-analyzer/models"
	"cdr-analyzer/report"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/spf13/cobra"
)

const pushJobName = "cdr_analyzer"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log := logging.Base()
		log.Error().Err(err).Msg("cdr-analyzer failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cdr-analyzer",
		Short:         "Analyze PBX call-detail records",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newAnalyzeCmd())
	return root
}

func newAnalyzeCmd() *cobra.Command {
	v := config.New()

	cmd := &cobra.Command{
		Use:   "analyze FILE...",
		Short: "Report concurrent channels and call statistics",
		Long: `Loads normalized call records (CSV with start and duration_seconds
columns) and reports, per file:
- Peak concurrent channels and the channel occupancy over time
- Calls per day and per hour
- Top callers, top destinations and call statuses
- Average conversation, ring and total durations
- Short calls

Every flag can also be set through the environment, e.g. CDR_FORMAT=json.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return runAnalyze(cmd.Context(), cfg, args, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.String(config.KeyFormat, "text", "Output format: text|json|csv")
	f.Int(config.KeyTop, 10, "Number of entries in the caller and destination rankings (0 = all)")
	f.Int(config.KeyShortThreshold, 5, "Conversation time in seconds under which a call is short")
	f.Int(config.KeyShortLimit, 10, "Maximum number of short calls listed (0 = all)")
	f.String(config.KeyTimezone, "", "IANA timezone for day and hour buckets (default: keep record times)")
	f.Int(config.KeyParallelism, 4, "Number of files analyzed concurrently")
	f.String(config.KeyMetricsAddr, "", "Address to expose Prometheus metrics (e.g., :9090)")
	f.String(config.KeyPushURL, "", "Pushgateway URL to push metrics to (e.g., http://localhost:9091)")
	f.Bool(config.KeyWait, false, "Keep process running after completion to allow for metric scraping")
	f.String(config.KeyLogLevel, "info", "Log level: debug|info|warn|error")
	f.Bool(config.KeyLogConsole, false, "Human-readable logs instead of JSON")
	f.String(config.KeyConfigFile, "", "Optional config file (yaml, json or toml)")
	cobra.CheckErr(v.BindPFlags(f))

	return cmd
}

func runAnalyze(ctx context.Context, cfg *config.Config, files []string, out io.Writer) error {
	logging.Configure(logging.Config{Level: cfg.LogLevel, Console: cfg.LogConsole})
	log := logging.WithComponent("cli")

	if cfg.MetricsAddr != "" {
		srv := startMetricsServer(cfg.MetricsAddr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	metrics.ResetDatasetGauges()

	datasets := make(map[string][]models.CallRecord, len(files))
	for _, path := range files {
		records, err := loadFile(path)
		if err != nil {
			return err
		}
		log.Debug().Str("file", path).Int("records", len(records)).Msg("file loaded")
		datasets[path] = records
	}

	opts := report.Options{
		Top:            cfg.Top,
		ShortThreshold: cfg.ShortThreshold,
		ShortLimit:     cfg.ShortLimit,
		Location:       cfg.Location(),
		Parallelism:    cfg.Parallelism,
	}
	built, err := report.BuildAll(ctx, datasets, opts)
	if err != nil {
		return err
	}

	// Keep the command-line order of files in the output.
	reports := make([]*models.Report, len(files))
	for i, path := range files {
		reports[i] = built[path]
	}

	switch cfg.Format {
	case "json":
		fmt.Fprintln(out, formatter.FormatJSON(reports...))
	case "csv":
		fmt.Fprint(out, formatter.FormatCSV(reports...))
	default: // "text"
		texts := make([]string, len(reports))
		for i, r := range reports {
			texts[i] = formatter.FormatText(r)
		}
		fmt.Fprint(out, strings.Join(texts, "\n"))
	}

	if cfg.PushURL != "" {
		if err := push.New(cfg.PushURL, pushJobName).Gatherer(metrics.Registry).PushContext(ctx); err != nil {
			log.Error().Err(err).Str("url", cfg.PushURL).Msg("pushing metrics to Pushgateway")
		} else {
			log.Info().Str("url", cfg.PushURL).Msg("metrics pushed to Pushgateway")
		}
	}

	if cfg.Wait {
		log.Info().Str("addr", cfg.MetricsAddr).Msg("process kept alive for metric scraping, press Ctrl+C to exit")
		<-ctx.Done()
		log.Info().Msg("exiting")
	}
	return nil
}

func loadFile(path string) ([]models.CallRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	records, err := ingest.Load(file)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return records, nil
}

func startMetricsServer(addr string) *http.Server {
	log := logging.WithComponent("metrics")

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info().Str("addr", addr).Msg("metrics server listening on /metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server error")
		}
	}()
	return srv
}
