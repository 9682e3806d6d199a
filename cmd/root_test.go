package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Tiliavir/freshtrack/internal/collector"
	"github.com/Tiliavir/freshtrack/internal/model"
	"github.com/Tiliavir/freshtrack/internal/storage"
)

func TestParseBound(t *testing.T) {
	tests := []struct {
		input    string
		endOfDay bool
		want     time.Time
	}{
		{"2026-03-02", false, time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)},
		{"2026-03-02", true, time.Date(2026, 3, 2, 23, 59, 59, 0, time.Local)},
		{"2026-03-02 14:30", false, time.Date(2026, 3, 2, 14, 30, 0, 0, time.Local)},
		{"2026-03-02T14:30:15", true, time.Date(2026, 3, 2, 14, 30, 15, 0, time.Local)},
		{"2026-03-02T14:30:15Z", false, time.Date(2026, 3, 2, 14, 30, 15, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := parseBound(tt.input, tt.endOfDay)
		if err != nil {
			t.Errorf("parseBound(%q) error: %v", tt.input, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("parseBound(%q, %v) = %v, want %v", tt.input, tt.endOfDay, got, tt.want)
		}
	}

	if got, err := parseBound("", false); err != nil || got != nil {
		t.Errorf("parseBound(\"\") = %v, %v; want nil, nil", got, err)
	}
	if _, err := parseBound("last tuesday", false); err == nil {
		t.Error("expected an error for an unparseable bound")
	}
}

func TestWindowOptions(t *testing.T) {
	opts, err := windowOptions("2026-03-01", "")
	if err != nil {
		t.Fatal(err)
	}
	if opts.After == nil || opts.Before != nil {
		t.Fatalf("unexpected options %+v", opts)
	}
	if _, err := windowOptions("", "soon"); err == nil {
		t.Error("expected an error for an invalid --before")
	}
}

func TestClosedSeconds(t *testing.T) {
	in := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	out := in.Add(90 * time.Minute)
	punches := []model.Punch{
		{In: in, Out: &out},
		{In: out},
	}
	if got := closedSeconds(punches); got != 5400 {
		t.Errorf("closedSeconds = %d, want 5400", got)
	}
}

func TestDryRunNeedsNoCredentials(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "freshtrack.yml")
	body := "collector: local\ndata_dir: " + filepath.Join(dir, "punches") + "\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FRESHTRACK_CONFIG", path)
	t.Setenv("FRESHTRACK_COMPANY", "")
	t.Setenv("FRESHTRACK_TOKEN", "")

	in := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	out := in.Add(90 * time.Minute)
	punch := model.Punch{ID: "p1", Project: "site", In: in, Out: &out, Log: []string{"setup"}}
	if err := storage.SavePunch(filepath.Join(dir, "punches"), punch); err != nil {
		t.Fatal(err)
	}

	days, err := dryRun(context.Background(), "site", collector.Options{})
	if err != nil {
		t.Fatalf("dryRun: %v", err)
	}
	if len(days) != 1 || days[0].Hours != 1.5 || days[0].Notes != "setup" {
		t.Errorf("unexpected summaries %+v", days)
	}
}
