package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/espinosaluis/estepona-agenda-calendar/internal/agenda"
	"github.com/espinosaluis/estepona-agenda-calendar/internal/config"
	"github.com/espinosaluis/estepona-agenda-calendar/internal/fetch"
	"github.com/espinosaluis/estepona-agenda-calendar/internal/ics"
	appLog "github.com/espinosaluis/estepona-agenda-calendar/internal/log"
	"github.com/espinosaluis/estepona-agenda-calendar/internal/normalize"
)

var (
	flagConfig   string
	flagDaemon   bool
	flagDryRun   bool
	flagFromFile string
	flagVerbose  bool
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agendacal",
		Short: "Generate an ICS calendar from the Estepona tourism agenda",
		Long: `agendacal fetches the public events listing at turismo.estepona.es/agenda,
parses the rendered text into discrete calendar events and writes them to
an .ics file. By default it runs one fetch+parse+write cycle and exits.`,
		SilenceUsage: true,
		RunE:         run,
	}

	cmd.Flags().StringVar(&flagConfig, "config", "agendacal.yaml", "Path to config file (created with defaults on first run)")
	cmd.Flags().BoolVar(&flagDaemon, "daemon", false, "Keep running and regenerate on the configured cron schedule")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Parse and log the run summary without writing the output file")
	cmd.Flags().StringVar(&flagFromFile, "from-file", "", "Read saved page HTML from this file instead of fetching")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	if flagVerbose {
		appLog.SetLevel(appLog.LevelDebug)
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	appLog.Info("effective config",
		"url", cfg.URL,
		"output", cfg.Output,
		"timezone", cfg.Timezone,
		"fetch_mode", cfg.Fetch.Mode,
		"daemon", flagDaemon,
		"dry_run", flagDryRun,
	)

	// Root context canceled on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !flagDaemon {
		return runOnce(ctx, cfg)
	}

	// Daemon mode: run immediately, then on the configured schedule. A
	// failed cycle is logged and retried at the next tick; the previous
	// output file stays in place.
	if err := runOnce(ctx, cfg); err != nil {
		appLog.Error("initial run failed", err)
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.RefreshCron, func() {
		if err := runOnce(ctx, cfg); err != nil {
			appLog.Error("scheduled run failed", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", cfg.RefreshCron, err)
	}

	c.Start()
	<-ctx.Done()
	appLog.Info("signal received, shutting down")
	<-c.Stop().Done()

	return nil
}

// runOnce executes one fetch -> normalize -> parse -> serialize -> write
// cycle. Any fetch or normalize failure aborts before the output path is
// touched, so a bad run never overwrites a previously good calendar.
func runOnce(ctx context.Context, cfg *config.Config) error {
	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("loading timezone %q: %w", cfg.Timezone, err)
	}

	html, err := fetchPage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("fetching agenda page: %w", err)
	}

	lines, err := normalize.Lines(html, cfg.GarbagePrefixes)
	if err != nil {
		return fmt.Errorf("normalizing page: %w", err)
	}
	if len(lines) == 0 {
		return errors.New("agenda page produced no text lines")
	}
	appLog.Debug("page normalized", "lines", len(lines))

	events := agenda.Parse(lines, agenda.Options{
		Location:         loc,
		Today:            time.Now().In(loc),
		SourceLine:       cfg.SourceLine,
		ExcludeTitles:    cfg.ExcludeTitles,
		GarbagePrefixes:  cfg.GarbagePrefixes,
		SectionHeaders:   cfg.SectionHeaders,
		LocationKeywords: cfg.LocationKeywords,
		DefaultDuration:  time.Duration(cfg.DefaultDurationMinutes) * time.Minute,
	})

	appLog.Info("agenda parsed", "events", len(events))

	if flagDryRun {
		for _, ev := range events {
			appLog.Info("event",
				"start", ev.Start.Format("2006-01-02 15:04"),
				"end", ev.End.Format("2006-01-02 15:04"),
				"title", ev.Title,
				"location", ev.Location,
			)
		}
		return nil
	}

	data, err := ics.Build(events, time.Now())
	if err != nil {
		return fmt.Errorf("building calendar: %w", err)
	}
	if err := ics.WriteFile(cfg.Output, data); err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}

	appLog.Info("calendar written", "path", cfg.Output, "events", len(events))
	return nil
}

func fetchPage(ctx context.Context, cfg *config.Config) (string, error) {
	if flagFromFile != "" {
		data, err := os.ReadFile(flagFromFile)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	var fetcher fetch.PageFetcher
	switch cfg.Fetch.Mode {
	case "http":
		fetcher = fetch.NewHTTPFetcher(cfg.Fetch.CacheDir, cfg.FetchTimeout())
	default:
		fetcher = fetch.NewRenderer(cfg.FetchTimeout())
	}
	return fetcher.Fetch(ctx, cfg.URL)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		appLog.Error("agendacal failed", err)
		os.Exit(1)
	}
}
