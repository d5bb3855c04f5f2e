package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/integrators"
	"github.com/san-kum/threebody/internal/physics"
)

func TestEnsembleKeepsOrderAndHalts(t *testing.T) {
	collided := binary(3, 1.5, 1)
	collided.Bodies[1].State = collided.Bodies[0].State

	cfg := dynamo.Config{Duration: 0.5, ValidateState: true}
	jobs := []Job{
		{Name: "rk4", Field: physics.Derivative, Integrator: integrators.NewRK4(), Initial: binary(3, 1.5, 0), Config: cfg},
		{Name: "collided", Field: physics.Derivative, Integrator: integrators.NewRK4(), Initial: collided, Config: cfg},
		{Name: "euler", Field: physics.Derivative, Integrator: integrators.NewEuler(), Initial: binary(3, 1.5, 0), Config: cfg},
	}

	outcomes, err := NewEnsemble(2).Run(context.Background(), jobs)
	if err != nil {
		t.Fatalf("a halted run should not fail the ensemble: %v", err)
	}
	if len(outcomes) != len(jobs) {
		t.Fatalf("expected %d outcomes, got %d", len(jobs), len(outcomes))
	}

	for i, o := range outcomes {
		if o.Job.Name != jobs[i].Name {
			t.Errorf("outcome %d: expected %s, got %s", i, jobs[i].Name, o.Job.Name)
		}
	}
	if !errors.Is(outcomes[1].Err, dynamo.ErrSingular) {
		t.Errorf("expected ErrSingular for the collided run, got %v", outcomes[1].Err)
	}
	for _, i := range []int{0, 2} {
		if outcomes[i].Err != nil {
			t.Errorf("%s: unexpected error %v", outcomes[i].Job.Name, outcomes[i].Err)
		}
		if outcomes[i].Result.StepsTaken != 50 {
			t.Errorf("%s: expected 50 steps, got %d", outcomes[i].Job.Name, outcomes[i].Result.StepsTaken)
		}
	}
}

func TestEnsembleInvalidJobFails(t *testing.T) {
	bad := binary(3, 1.5, 0)
	bad.Bodies[0].Mass = -1

	jobs := []Job{
		{Name: "bad", Field: physics.Derivative, Integrator: integrators.NewRK4(), Initial: bad, Config: dynamo.DefaultConfig()},
	}
	if _, err := NewEnsemble(0).Run(context.Background(), jobs); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}
