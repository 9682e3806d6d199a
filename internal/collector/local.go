package collector

import (
	"context"
	"fmt"

	"github.com/Tiliavir/freshtrack/internal/model"
	"github.com/Tiliavir/freshtrack/internal/storage"
	"github.com/Tiliavir/freshtrack/internal/timecalc"
)

// Local reads punches recorded by 'freshtrack in' and 'freshtrack out'.
type Local struct {
	Dir string
}

// GetTimeData loads the project's punches inside the window. A closed
// window only reads the day files it covers.
func (c *Local) GetTimeData(_ context.Context, project string, opts Options) ([]model.DaySummary, error) {
	var all []model.Punch
	var err error
	if opts.After != nil && opts.Before != nil {
		all, err = storage.LoadRange(c.Dir, *opts.After, *opts.Before)
	} else {
		all, err = storage.LoadAll(c.Dir)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCollector, err)
	}
	var punches []model.Punch
	for _, p := range all {
		if p.Project == project && opts.Contains(p) {
			punches = append(punches, p)
		}
	}
	return timecalc.CondenseTimeData(punches), nil
}
