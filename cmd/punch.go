package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/freshtrack/internal/config"
	"github.com/Tiliavir/freshtrack/internal/model"
	"github.com/Tiliavir/freshtrack/internal/storage"
)

var (
	inMessage  string
	outMessage string
)

var inCmd = &cobra.Command{
	Use:   "in <project>",
	Short: "Punch in to a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runIn,
}

var outCmd = &cobra.Command{
	Use:   "out [project]",
	Short: "Punch out of a project (the most recent open punch by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runOut,
}

func init() {
	inCmd.Flags().StringVarP(&inMessage, "message", "m", "", "Note for the punch log")
	outCmd.Flags().StringVarP(&outMessage, "message", "m", "", "Note for the punch log")
}

// punchDir returns the local punch store directory.
func punchDir() string {
	cfg, err := config.LoadLocal()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return cfg.DataDir
}

func runIn(cmd *cobra.Command, args []string) error {
	project := args[0]
	now := time.Now()
	base := punchDir()

	open, err := storage.FindOpenPunch(base, project, now)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if open != nil {
		fmt.Fprintf(os.Stderr, "Warning: punching out of the open punch for project %q first\n", project)
		if err := punchOut(base, open, now, ""); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}

	punch := model.Punch{
		ID:      uuid.NewString(),
		Project: project,
		In:      now,
		Log:     []string{},
	}
	if inMessage != "" {
		punch.Log = append(punch.Log, inMessage)
	}
	if err := storage.SavePunch(base, punch); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	fmt.Printf("Punched in to %q at %s\n", project, now.Format("15:04:05"))
	return nil
}

func runOut(cmd *cobra.Command, args []string) error {
	project := ""
	if len(args) == 1 {
		project = args[0]
	}
	now := time.Now()
	base := punchDir()

	open, err := storage.FindOpenPunch(base, project, now)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if open == nil {
		fmt.Fprintln(os.Stderr, "No open punch.")
		os.Exit(1)
	}

	if err := punchOut(base, open, now, outMessage); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	elapsed := int64(now.Sub(open.In).Seconds())
	fmt.Printf("Punched out of %q. Elapsed: %s\n", open.Project, formatElapsed(elapsed))
	return nil
}

// punchOut closes a punch. The punch stays in the day file of its In time,
// so work past midnight counts for the day it started.
func punchOut(base string, punch *model.Punch, at time.Time, message string) error {
	out := at
	punch.Out = &out
	if message != "" {
		punch.Log = append(punch.Log, message)
	}
	return storage.SavePunch(base, *punch)
}

func formatElapsed(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
