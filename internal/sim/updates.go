package sim

import (
	"errors"
	"fmt"
)

// ErrUpdatesFull is returned by Send when the driver has fallen behind.
var ErrUpdatesFull = errors.New("sim: update queue full")

// Updates carries reconfiguration from the shell to the driver. The shell
// sends at any time; the driver drains between ticks, so a step never sees a
// half-applied change.
type Updates struct {
	ch chan Update
}

func NewUpdates(size int) *Updates {
	if size < 1 {
		size = 1
	}
	return &Updates{ch: make(chan Update, size)}
}

// Send validates u and queues it without blocking.
func (q *Updates) Send(u Update) error {
	if err := u.Validate(); err != nil {
		return fmt.Errorf("rejected %s update: %w", u.Kind, err)
	}
	select {
	case q.ch <- u:
		return nil
	default:
		return ErrUpdatesFull
	}
}

// Drain returns every queued update in send order.
func (q *Updates) Drain() []Update {
	var out []Update
	for {
		select {
		case u := <-q.ch:
			out = append(out, u)
		default:
			return out
		}
	}
}

func (q *Updates) Len() int {
	return len(q.ch)
}
