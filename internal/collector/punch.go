package collector

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/freshtrack/internal/model"
	"github.com/Tiliavir/freshtrack/internal/timecalc"
)

// Punch runs the punch command-line tool and parses its YAML listing.
type Punch struct {
	Command string
}

// punchRecord is one list item as printed by the tool. Timestamps stay
// text because the tool writes them with a space before the offset.
type punchRecord struct {
	In  string   `yaml:"in"`
	Out string   `yaml:"out"`
	Log []string `yaml:"log"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999 -07:00",
	"2006-01-02 15:04:05.999999999 -0700",
	"2006-01-02 15:04:05.999999999 Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// Args returns the command line arguments for listing project.
func (c *Punch) Args(project string, opts Options) []string {
	args := []string{"list", project}
	if opts.After != nil {
		args = append(args, "--after", opts.After.Format(TimestampLayout))
	}
	if opts.Before != nil {
		args = append(args, "--before", opts.Before.Format(TimestampLayout))
	}
	return args
}

// GetTimeData runs "<command> list <project> [--after T] [--before T]".
func (c *Punch) GetTimeData(ctx context.Context, project string, opts Options) ([]model.DaySummary, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Command, c.Args(project, opts)...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && stderr.Len() > 0 {
			return nil, fmt.Errorf("%w: %s: %s", ErrCollector, c.Command, strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrCollector, c.Command, err)
	}

	punches, err := ParsePunchList(out)
	if err != nil {
		return nil, err
	}
	return timecalc.CondenseTimeData(punches), nil
}

// ParsePunchList decodes the YAML list printed by the punch tool.
func ParsePunchList(data []byte) ([]model.Punch, error) {
	var records []punchRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: parsing punch output: %v", ErrCollector, err)
	}

	punches := make([]model.Punch, 0, len(records))
	for i, r := range records {
		in, err := parseTimestamp(r.In)
		if err != nil {
			return nil, fmt.Errorf("%w: punch %d: in: %v", ErrCollector, i, err)
		}
		p := model.Punch{In: in, Log: r.Log}
		if r.Out != "" {
			out, err := parseTimestamp(r.Out)
			if err != nil {
				return nil, fmt.Errorf("%w: punch %d: out: %v", ErrCollector, i, err)
			}
			p.Out = &out
		}
		punches = append(punches, p)
	}
	return punches, nil
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
