package sim

import (
	"github.com/rs/zerolog"

	"github.com/san-kum/threebody/internal/dynamo"
)

// Driver owns the single live SimulationState. It is not safe for
// concurrent use; other goroutines talk to it through Updates.
type Driver struct {
	stepper *Stepper
	updates *Updates
	logger  zerolog.Logger

	initial dynamo.SimulationState
	current dynamo.SimulationState
	steps   int
	halted  error
}

func NewDriver(stepper *Stepper, initial dynamo.SimulationState, updates *Updates, logger zerolog.Logger) (*Driver, error) {
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	initial.T = 0
	return &Driver{
		stepper: stepper,
		updates: updates,
		logger:  logger,
		initial: initial,
		current: initial,
	}, nil
}

func (d *Driver) State() dynamo.SimulationState   { return d.current }
func (d *Driver) Initial() dynamo.SimulationState { return d.initial }
func (d *Driver) Steps() int                      { return d.steps }

// Halted returns the error that stopped the run, or nil.
func (d *Driver) Halted() error { return d.halted }

// ApplyPending drains the update queue. It reports whether the body
// positions were replaced, which tells the shell to clear its trails.
func (d *Driver) ApplyPending() (restarted bool) {
	for _, u := range d.updates.Drain() {
		initial, current, err := u.Apply(d.initial, d.current)
		if err != nil {
			d.logger.Warn().Err(err).Str("kind", u.Kind.String()).Msg("update rejected")
			continue
		}
		d.initial, d.current = initial, current
		d.logger.Info().Str("kind", u.Kind.String()).Msg("update applied")

		if u.Kind == SetInitialConditions || u.Kind == Reset {
			d.steps = 0
			d.halted = nil
			restarted = true
		}
	}
	return restarted
}

// Tick applies pending updates and then advances one step unless the run
// has halted. A non-finite result halts the run with a *dynamo.SimulationError
// wrapping dynamo.ErrSingular and leaves the last finite state in place.
func (d *Driver) Tick() (restarted bool, err error) {
	restarted = d.ApplyPending()
	if d.halted != nil {
		return restarted, d.halted
	}

	next := d.stepper.Step(d.current)
	if !next.IsValid() {
		d.halted = &dynamo.SimulationError{
			Step:    d.steps,
			Time:    d.current.T,
			State:   d.current,
			Wrapped: dynamo.ErrSingular,
		}
		d.logger.Warn().Err(d.halted).Msg("simulation halted")
		return restarted, d.halted
	}

	d.current = next
	d.steps++
	return restarted, nil
}
