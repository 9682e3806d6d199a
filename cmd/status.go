package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/freshtrack/internal/model"
	"github.com/Tiliavir/freshtrack/internal/storage"
	"github.com/Tiliavir/freshtrack/internal/timecalc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the open punch and today's total",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	now := time.Now()
	base := punchDir()

	open, err := storage.FindOpenPunch(base, "", now)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if open != nil {
		elapsed := int64(now.Sub(open.In).Seconds())
		fmt.Println("Punched in:")
		fmt.Printf("  Project: %s\n", open.Project)
		since := open.In.Format("15:04")
		if !timecalc.SameDay(open.In, now) {
			since = open.In.Format("2006-01-02 15:04")
		}
		fmt.Printf("  Since: %s\n", since)
		fmt.Printf("  Elapsed: %s\n", timecalc.FormatDurationHHMMSS(elapsed))
	} else {
		fmt.Println("Not punched in.")
	}

	df, err := storage.LoadDay(base, now)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	fmt.Printf("Today: %s logged.\n", timecalc.FormatDuration(closedSeconds(df.Punches)))
	return nil
}

// closedSeconds sums the length of the closed punches.
func closedSeconds(punches []model.Punch) int64 {
	var total int64
	for _, p := range punches {
		if p.Out != nil {
			total += int64(p.Out.Sub(p.In).Seconds())
		}
	}
	return total
}
