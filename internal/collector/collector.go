// Package collector fetches punches for a project from a time source and
// condenses them into day summaries.
package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Tiliavir/freshtrack/internal/config"
	"github.com/Tiliavir/freshtrack/internal/model"
)

// ErrCollector is returned when the time source cannot be read.
var ErrCollector = errors.New("time source unavailable")

// TimestampLayout is how window bounds are passed to external tools.
const TimestampLayout = "2006-01-02T15:04:05-0700"

// Options narrows the punches to a time window. A nil bound is open.
type Options struct {
	After  *time.Time
	Before *time.Time
}

// Contains reports whether a punch lies inside the window. The start of
// the punch is checked against After, its end (or start while still open)
// against Before.
func (o Options) Contains(p model.Punch) bool {
	if o.After != nil && p.In.Before(*o.After) {
		return false
	}
	end := p.In
	if p.Out != nil {
		end = *p.Out
	}
	if o.Before != nil && end.After(*o.Before) {
		return false
	}
	return true
}

// Collector returns the day summaries of one project.
type Collector interface {
	GetTimeData(ctx context.Context, project string, opts Options) ([]model.DaySummary, error)
}

// New returns the collector named by cfg.Collector.
func New(cfg *config.Config) (Collector, error) {
	switch cfg.Collector {
	case "punch":
		return &Punch{Command: cfg.PunchCommand}, nil
	case "local", "one_inch_punch":
		return &Local{Dir: cfg.DataDir}, nil
	default:
		return nil, fmt.Errorf("%w: unknown collector %q", config.ErrConfiguration, cfg.Collector)
	}
}
