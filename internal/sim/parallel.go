package sim

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/threebody/internal/dynamo"
)

// Job is one independent batch run.
type Job struct {
	Name       string
	Field      dynamo.Field
	Integrator dynamo.Integrator
	Initial    dynamo.SimulationState
	Config     dynamo.Config
}

// Outcome pairs a job with what its run produced. Err is set for halted or
// canceled runs; Result still holds the partial trajectory in that case.
type Outcome struct {
	Job    Job
	Result *dynamo.Result
	Err    error
}

// Ensemble runs jobs concurrently with at most limit in flight. A halted run
// does not stop the others; only invalid input or cancellation fails the
// whole ensemble.
type Ensemble struct {
	limit int
}

func NewEnsemble(limit int) *Ensemble {
	return &Ensemble{limit: limit}
}

func (e *Ensemble) Run(ctx context.Context, jobs []Job) ([]Outcome, error) {
	outcomes := make([]Outcome, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}

	for i, job := range jobs {
		g.Go(func() error {
			s := New(job.Field, job.Integrator)
			res, err := s.Run(ctx, job.Initial, job.Config)
			outcomes[i] = Outcome{Job: job, Result: res, Err: err}

			if err != nil && (res == nil || errors.Is(err, dynamo.ErrContextCanceled)) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}
