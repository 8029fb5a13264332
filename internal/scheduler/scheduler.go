package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/andrei-iacobb/neatplan-sub001/internal/cycle"
	"github.com/andrei-iacobb/neatplan-sub001/internal/metrics"
	"github.com/andrei-iacobb/neatplan-sub001/internal/models"
	"github.com/andrei-iacobb/neatplan-sub001/internal/notify"
	"github.com/robfig/cron/v3"
)

// AssignmentStore is the part of repo.AssignmentRepo the sweep needs.
type AssignmentStore interface {
	ListSweepCandidates(ctx context.Context, now time.Time) ([]models.Assignment, error)
	// UpdateStatus applies to only if the row is unchanged since it was listed.
	UpdateStatus(ctx context.Context, listed models.Assignment, to cycle.Status) (bool, error)
}

// Sweeper persists derived statuses so that list endpoints and reports see OVERDUE
// without recomputing it, and hands newly overdue assignments to the notifier.
type Sweeper struct {
	Stores   []AssignmentStore
	Notifier notify.Notifier
	Now      func() time.Time
}

// SweepResult summarizes one run.
type SweepResult struct {
	Checked     int
	Transitions int
	NewOverdue  []models.Assignment
}

func (s *Sweeper) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Run sweeps every store once at a single instant. Running it again with the same
// clock changes nothing. A failing notifier is logged and does not fail the run.
func (s *Sweeper) Run(ctx context.Context) (SweepResult, error) {
	now := s.now()
	var res SweepResult
	overdue := map[models.SubjectKind]int{models.SubjectRoom: 0, models.SubjectEquipment: 0}
	for _, store := range s.Stores {
		if err := s.sweepStore(ctx, store, now, &res, overdue); err != nil {
			metrics.ObserveSweep(err)
			return res, err
		}
	}
	metrics.ObserveSweep(nil)
	for kind, n := range overdue {
		metrics.SetOverdue(string(kind), n)
	}

	if len(res.NewOverdue) > 0 && s.Notifier != nil {
		if err := s.Notifier.NotifyOverdue(ctx, res.NewOverdue); err != nil {
			slog.ErrorContext(ctx, "sweep: notify overdue", "count", len(res.NewOverdue), "error", err)
		}
	}
	slog.InfoContext(ctx, "sweep finished",
		"checked", res.Checked,
		"transitions", res.Transitions,
		"new_overdue", len(res.NewOverdue))
	return res, nil
}

func (s *Sweeper) sweepStore(ctx context.Context, store AssignmentStore, now time.Time, res *SweepResult, overdue map[models.SubjectKind]int) error {
	list, err := store.ListSweepCandidates(ctx, now)
	if err != nil {
		return fmt.Errorf("list sweep candidates: %w", err)
	}

	for _, a := range list {
		res.Checked++
		to := cycle.DeriveStatus(a.State(), now)
		if to == cycle.Overdue {
			overdue[a.Kind]++
		}
		if to == a.Status {
			continue
		}
		changed, err := store.UpdateStatus(ctx, a, to)
		if err != nil {
			return fmt.Errorf("update status of %s assignment %d: %w", a.Kind, a.ID, err)
		}
		if !changed {
			// completed or edited since it was listed
			continue
		}
		res.Transitions++
		metrics.AddSweepTransition(string(a.Kind), string(to))
		if to == cycle.Overdue {
			a.Status = to
			res.NewOverdue = append(res.NewOverdue, a)
		}
	}
	return nil
}

// RunCron runs the sweep on spec until ctx is cancelled. An empty spec disables it.
// extra jobs share the same cron instance.
func RunCron(ctx context.Context, spec string, s *Sweeper, extra ...func()) error {
	if spec == "" {
		slog.Info("sweep: disabled (empty SWEEP_CRON)")
		return nil
	}
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if _, err := s.Run(ctx); err != nil {
			slog.Error("sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid SWEEP_CRON %q: %w", spec, err)
	}
	for _, job := range extra {
		if _, err := c.AddFunc("@hourly", job); err != nil {
			return err
		}
	}

	c.Start()
	slog.Info("sweep scheduled", "cron", spec)
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
