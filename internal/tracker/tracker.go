// Package tracker books collected work time as remote time entries and
// reports on open invoices.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/Tiliavir/freshtrack/internal/collector"
	"github.com/Tiliavir/freshtrack/internal/config"
	"github.com/Tiliavir/freshtrack/internal/freshbooks"
	"github.com/Tiliavir/freshtrack/internal/model"
	"github.com/Tiliavir/freshtrack/internal/record"
	"github.com/Tiliavir/freshtrack/internal/timecalc"
)

// ErrResolution is returned when a mapped project or task name does not
// exist remotely.
var ErrResolution = errors.New("cannot resolve remote name")

// Tracker ties configuration, a collector and the remote service together.
// The function fields default to the real implementations and are replaced
// in tests.
type Tracker struct {
	cfg    *config.Config
	logger *log.Logger
	out    io.Writer

	Dial         func(ctx context.Context, auth config.Auth) (freshbooks.Caller, error)
	NewCollector func(cfg *config.Config) (collector.Collector, error)
	Now          func() time.Time
}

// New returns a Tracker that prints progress to out.
func New(cfg *config.Config, logger *log.Logger, out io.Writer) *Tracker {
	return &Tracker{
		cfg:    cfg,
		logger: logger,
		out:    out,
		Dial: func(ctx context.Context, auth config.Auth) (freshbooks.Caller, error) {
			return freshbooks.Dial(ctx, auth)
		},
		NewCollector: collector.New,
		Now:          time.Now,
	}
}

// Target is a local project resolved to its remote project and task.
type Target struct {
	Service *freshbooks.Service
	Project *freshbooks.Project
	Task    *freshbooks.Task
}

// Result counts the outcome of a Track run.
type Result struct {
	Days    []model.DaySummary
	Created int
	Failed  int
}

func (t *Tracker) service(ctx context.Context, auth config.Auth) (*freshbooks.Service, error) {
	api, err := t.Dial(ctx, auth)
	if err != nil {
		return nil, err
	}
	return freshbooks.NewService(api), nil
}

// ResolveProject looks up the remote project and task mapped to project.
func (t *Tracker) ResolveProject(ctx context.Context, project string) (*Target, error) {
	mapping, err := t.cfg.Mapping(project)
	if err != nil {
		return nil, err
	}
	auth, err := t.cfg.AuthFor(project)
	if err != nil {
		return nil, err
	}
	svc, err := t.service(ctx, auth)
	if err != nil {
		return nil, err
	}

	p, err := svc.Projects.FindByName(ctx, mapping.Project)
	if err != nil {
		return nil, resolutionError("project", mapping.Project, err)
	}
	task, err := svc.Tasks.FindByName(ctx, mapping.Task)
	if err != nil {
		return nil, resolutionError("task", mapping.Task, err)
	}
	t.logger.Debug("resolved project", "project", project, "project_id", p.ID(), "task_id", task.ID())
	return &Target{Service: svc, Project: p, Task: task}, nil
}

func resolutionError(kind, name string, err error) error {
	if errors.Is(err, freshbooks.ErrNotFound) || errors.Is(err, freshbooks.ErrRemoteCall) {
		return fmt.Errorf("%w: %s %q: %v", ErrResolution, kind, name, err)
	}
	return err
}

// Collect returns the day summaries of project from the configured
// collector.
func (t *Tracker) Collect(ctx context.Context, project string, opts collector.Options) ([]model.DaySummary, error) {
	c, err := t.NewCollector(t.cfg)
	if err != nil {
		return nil, err
	}
	return c.GetTimeData(ctx, project, opts)
}

// Track creates one remote time entry per collected day. A failed entry is
// logged with its date and does not stop the remaining ones.
func (t *Tracker) Track(ctx context.Context, project string, opts collector.Options) (Result, error) {
	logger := t.logger.With("run", uuid.NewString())

	target, err := t.ResolveProject(ctx, project)
	if err != nil {
		return Result{}, err
	}
	days, err := t.Collect(ctx, project, opts)
	if err != nil {
		return Result{}, err
	}

	result := Result{Days: days}
	fmt.Fprintf(t.out, "Tracking %d day(s) for %q → %s / %s\n",
		len(days), project, target.Project.Name(), target.Task.Name())

	for _, day := range days {
		date := day.Date.Format(record.DateLayout)
		entry, err := newTimeEntry(target, day)
		if err == nil {
			_, err = target.Service.TimeEntries.Create(ctx, entry)
		}
		if err != nil {
			logger.Warn("unsuccessful time entry creation", "date", date, "err", err)
			result.Failed++
			continue
		}
		fmt.Fprintf(t.out, "  ✓ Created: %s (%s) #%d\n",
			date, timecalc.FormatDuration(int64(day.Hours*3600)), entry.ID())
		result.Created++
	}

	logger.Debug("track finished", "created", result.Created, "failed", result.Failed)
	return result, nil
}

func newTimeEntry(target *Target, day model.DaySummary) (*freshbooks.TimeEntry, error) {
	entry := target.Service.TimeEntries.New()
	fields := []struct {
		name  string
		value any
	}{
		{"project_id", target.Project.ID()},
		{"task_id", target.Task.ID()},
		{"date", day.Date},
		{"hours", day.Hours},
		{"notes", day.Notes},
	}
	for _, f := range fields {
		if err := entry.Set(f.name, f.value); err != nil {
			return nil, err
		}
	}
	return entry, nil
}

// UnbilledHours sums the hours of the project's time entries that have not
// been billed yet.
func (t *Tracker) UnbilledHours(ctx context.Context, project string) (float64, error) {
	target, err := t.ResolveProject(ctx, project)
	if err != nil {
		return 0, err
	}
	entries, err := target.Service.TimeEntries.List(ctx, freshbooks.Params{
		"project_id": target.Project.ID(),
		"task_id":    target.Task.ID(),
	})
	if err != nil {
		return 0, err
	}
	var total float64
	for _, e := range entries {
		if !e.Billed() {
			total += e.Hours()
		}
	}
	return timecalc.RoundHours(total), nil
}
