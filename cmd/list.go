package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/freshtrack/internal/collector"
	"github.com/Tiliavir/freshtrack/internal/config"
	"github.com/Tiliavir/freshtrack/internal/model"
	"github.com/Tiliavir/freshtrack/internal/timecalc"
)

var (
	listAfter  string
	listBefore string
	listWeek   bool
)

var listCmd = &cobra.Command{
	Use:   "list <project>",
	Short: "Show the day summaries that would be tracked",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listAfter, "after", "", "Only time after this date or datetime")
	listCmd.Flags().StringVar(&listBefore, "before", "", "Only time before this date or datetime")
	listCmd.Flags().BoolVar(&listWeek, "week", false, "Only this week's time")
}

func runList(cmd *cobra.Command, args []string) error {
	opts, err := windowOptions(listAfter, listBefore)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if listWeek {
		from, to := timecalc.WeekRange(time.Now())
		opts = collector.Options{After: &from, Before: &to}
	}

	cfg, err := config.LoadLocal()
	if err != nil {
		fail(err)
	}
	c, err := collector.New(cfg)
	if err != nil {
		fail(err)
	}
	days, err := c.GetTimeData(cmd.Context(), args[0], opts)
	if err != nil {
		fail(err)
	}

	printSummaries(days)
	return nil
}

// printSummaries prints one block per day: date, hours, indented notes.
func printSummaries(days []model.DaySummary) {
	if len(days) == 0 {
		fmt.Println("No time found.")
		return
	}

	var total float64
	for _, d := range days {
		fmt.Printf("%s  %.2fh\n", d.Date.Format("2006-01-02"), d.Hours)
		if d.Notes != "" {
			fmt.Println("  " + strings.ReplaceAll(d.Notes, "\n", "\n  "))
		}
		total += d.Hours
	}
	fmt.Printf("Total: %.2fh\n", timecalc.RoundHours(total))
}
