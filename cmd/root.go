package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/freshtrack/internal/collector"
	"github.com/Tiliavir/freshtrack/internal/config"
	"github.com/Tiliavir/freshtrack/internal/model"
	"github.com/Tiliavir/freshtrack/internal/timecalc"
	"github.com/Tiliavir/freshtrack/internal/tracker"
)

var (
	trackAfter    string
	trackBefore   string
	trackAging    bool
	trackFormat   string
	trackUnbilled bool
	trackDryRun   bool
	verbose       bool
)

var logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "freshtrack"})

var rootCmd = &cobra.Command{
	Use:   "freshtrack <project>",
	Short: "Book punch-clock time as FreshBooks time entries",
	Long: `freshtrack collects punched work time for a project, condenses it into one
entry per day and creates the matching time entries in FreshBooks.
Settings are read from ~/.freshtrack.yml.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.SetLevel(log.DebugLevel)
		}
	},
	RunE: runTrack,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output")

	rootCmd.Flags().StringVar(&trackAfter, "after", "", "Only time after this date or datetime")
	rootCmd.Flags().StringVar(&trackBefore, "before", "", "Only time before this date or datetime")
	rootCmd.Flags().BoolVar(&trackAging, "aging", false, "Report open invoices by age instead of tracking")
	rootCmd.Flags().StringVar(&trackFormat, "format", "md", "Aging report format: md, csv, json")
	rootCmd.Flags().BoolVar(&trackUnbilled, "unbilled", false, "Report the project's unbilled hours instead of tracking")
	rootCmd.Flags().BoolVar(&trackDryRun, "dry-run", false, "Show the day summaries without creating entries")

	rootCmd.AddCommand(inCmd)
	rootCmd.AddCommand(outCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(loginCmd)
}

func runTrack(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if trackAging {
		t := newTracker()
		rows, err := t.InvoiceAging(ctx)
		if err != nil {
			fail(err)
		}
		if err := printAging(os.Stdout, rows, trackFormat); err != nil {
			fail(err)
		}
		return nil
	}

	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, cmd.UsageString())
		os.Exit(1)
	}
	project := args[0]

	opts, err := windowOptions(trackAfter, trackBefore)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if trackDryRun {
		days, err := dryRun(ctx, project, opts)
		if err != nil {
			fail(err)
		}
		printSummaries(days)
		return nil
	}

	t := newTracker()
	switch {
	case trackUnbilled:
		hours, err := t.UnbilledHours(ctx, project)
		if err != nil {
			fail(err)
		}
		fmt.Printf("%s: %.2f unbilled hours\n", project, hours)
	default:
		res, err := t.Track(ctx, project, opts)
		if err != nil {
			fail(err)
		}
		fmt.Printf("Created %d, failed %d.\n", res.Created, res.Failed)
	}
	return nil
}

func newTracker() *tracker.Tracker {
	cfg, err := config.Load()
	if err != nil {
		fail(err)
	}
	return tracker.New(cfg, logger, os.Stdout)
}

// dryRun collects the day summaries that Track would book. It needs no
// remote credentials.
func dryRun(ctx context.Context, project string, opts collector.Options) ([]model.DaySummary, error) {
	cfg, err := config.LoadLocal()
	if err != nil {
		return nil, err
	}
	return tracker.New(cfg, logger, os.Stdout).Collect(ctx, project, opts)
}

// fail prints err and exits: 1 for configuration and lookup problems,
// 2 for everything else.
func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	if errors.Is(err, config.ErrConfiguration) || errors.Is(err, tracker.ErrResolution) {
		os.Exit(1)
	}
	os.Exit(2)
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// parseBound parses a date or datetime in local time. A bare date means the
// start of that day, or its end when endOfDay is set.
func parseBound(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if d, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		if endOfDay {
			d = timecalc.EndOfDay(d)
		} else {
			d = timecalc.StartOfDay(d)
		}
		return &d, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid date or datetime %q", s)
}

func windowOptions(after, before string) (collector.Options, error) {
	a, err := parseBound(after, false)
	if err != nil {
		return collector.Options{}, fmt.Errorf("--after: %w", err)
	}
	b, err := parseBound(before, true)
	if err != nil {
		return collector.Options{}, fmt.Errorf("--before: %w", err)
	}
	return collector.Options{After: a, Before: b}, nil
}
