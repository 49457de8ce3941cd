// Package retention prunes showcase images of previous days on a cron
// schedule evaluated in the café's time zone.
package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/davka-nysa/davka/internal/daily"
	"github.com/davka-nysa/davka/internal/media"
)

// DefaultSchedule runs the job at 03:00 local time.
const DefaultSchedule = "0 3 * * *"

type Job struct {
	pruner media.Pruner
	clock  daily.Clock
	days   int
	parser cron.Parser
}

// New returns a job for store, or nil when retention is disabled: days <= 0
// or a store that cannot prune itself.
func New(store media.Store, clock daily.Clock, days int) *Job {
	if days <= 0 {
		return nil
	}
	p, ok := store.(media.Pruner)
	if !ok {
		slog.Info("Retention disabled, media store does not support pruning")
		return nil
	}
	return &Job{
		pruner: p,
		clock:  clock,
		days:   days,
		parser: cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
	}
}

// Cutoff is local midnight `days` days before today. Day tags older than
// that go.
func (j *Job) Cutoff() time.Time {
	local := j.clock.Local()
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
	return midnight.AddDate(0, 0, -j.days)
}

// Run prunes once. Only tags that parse as a day tag are considered.
func (j *Job) Run(ctx context.Context) (int, error) {
	cutoff := j.Cutoff()
	tags, err := j.pruner.Tags(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list media tags: %w", err)
	}

	n := 0
	for _, tag := range tags {
		day, ok := j.clock.ParseTag(tag)
		if !ok || !day.Before(cutoff) {
			continue
		}
		removed, err := j.pruner.PruneTag(ctx, tag)
		n += removed
		if err != nil {
			return n, fmt.Errorf("failed to prune %s: %w", tag, err)
		}
		slog.Debug("Pruned day tag", "tag", tag, "count", removed)
	}
	slog.Info("Pruned old showcase images", "count", n, "cutoff", cutoff.Format(time.DateOnly))
	return n, nil
}

// Start runs the job on schedule until ctx is done.
func (j *Job) Start(ctx context.Context, schedule string) error {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	loc := j.clock.Location
	if loc == nil {
		loc = time.Local
	}

	c := cron.New(cron.WithParser(j.parser), cron.WithLocation(loc))
	if _, err := c.AddFunc(schedule, func() {
		if _, err := j.Run(ctx); err != nil {
			slog.Error("Retention run failed", "err", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid retention schedule %q: %w", schedule, err)
	}

	c.Start()
	slog.Info("Retention scheduled", "schedule", schedule, "days", j.days, "location", loc.String())
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
