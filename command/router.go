package command

import (
	"fmt"
	"log"

	"object-scale-control/scale_state"
)

const queueSize = 16

type event struct {
	cmd    Command
	source Source
}

// Gate lets a source veto its own queued commands at apply time. The speech
// session manager registers its listening flag here so that a callback still
// in flight when the user stops listening is dropped instead of applied.
type Gate func() bool

type routerImpl struct {
	state  scale_state.Interface
	gates  map[Source]Gate
	events chan event
	done   chan struct{}
}

type Config struct {
	State scale_state.Interface
	Gates map[Source]Gate
}

func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.State == nil {
		return nil, fmt.Errorf("state is nil")
	}

	router := &routerImpl{
		state:  cfg.State,
		gates:  cfg.Gates,
		events: make(chan event, queueSize),
		done:   make(chan struct{}),
	}

	go router.dispatch()

	return router, nil
}

// Apply queues a command for the dispatch goroutine. Safe to call from any
// producer goroutine; events from one producer are applied in arrival order
// because they all pass through the same channel.
func (r *routerImpl) Apply(cmd Command, source Source) {
	if cmd == None {
		return
	}

	select {
	case <-r.done:
	case r.events <- event{cmd: cmd, source: source}:
	}
}

func (r *routerImpl) Close() {
	close(r.done)
}

// dispatch is the single writer to the shared scale state. All three trigger
// sources funnel through here, so no two scale mutations can race.
func (r *routerImpl) dispatch() {
	for {
		select {
		case <-r.done:
			return
		case ev := <-r.events:
			if gate, ok := r.gates[ev.source]; ok && !gate() {
				log.Printf("dropping %s command from %s: source disabled", ev.cmd, ev.source)

				continue
			}

			policy := PolicyFor(ev.source)

			delta := policy.Step
			if ev.cmd == Decrease {
				delta = -policy.Step
			}

			scale := r.state.Apply(delta, policy.Bounds)

			log.Printf("applied %s from %s: scale now (%.2f, %.2f, %.2f)",
				ev.cmd, ev.source, scale.X, scale.Y, scale.Z)
		}
	}
}
