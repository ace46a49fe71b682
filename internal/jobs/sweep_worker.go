package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloo-solutions/docqa/internal/telemetry"
)

// Sweeper drops expired state. The answer cache and the retention manager
// both implement it.
type Sweeper interface {
	Sweep(ctx context.Context) error
}

// SweepWorker runs every registered sweeper once per poll.
type SweepWorker struct {
	names    []string
	sweepers []Sweeper
}

// NewSweepWorker creates an empty SweepWorker
func NewSweepWorker() *SweepWorker {
	return &SweepWorker{}
}

// Register adds a named sweeper. Sweepers run in registration order.
func (w *SweepWorker) Register(name string, s Sweeper) *SweepWorker {
	w.names = append(w.names, name)
	w.sweepers = append(w.sweepers, s)
	return w
}

// ProcessJobs implements the JobProcessor interface. A failing sweeper does
// not prevent the others from running.
func (w *SweepWorker) ProcessJobs(ctx context.Context) error {
	ctx, span := telemetry.StartTransaction(ctx, "jobs.sweep", "task")
	defer span.End()

	var errs []error
	for i, s := range w.sweepers {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Sweep(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s sweep: %w", w.names[i], err))
		}
	}

	err := errors.Join(errs...)
	if err != nil {
		span.SetError(err)
	}
	return err
}
