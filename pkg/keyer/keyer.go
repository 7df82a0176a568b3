package keyer

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/echocat/slf4g"

	"github.com/blaubaer/cw-keyer/pkg/common"
)

var ErrEventsClosed = errors.New("event channel closed")

// Tone plays the sidetone of an element. It must not block until the tone
// has been played.
type Tone interface {
	Play(State)
}

// Trace prints the symbol of a state and returns once it is flushed.
type Trace interface {
	Print(State)
}

// Listener is notified synchronously about every state the Keyer enters.
// It must not block.
type Listener interface {
	OnState(State)
}

func New(settings Settings, bufferSize uint32, tone Tone, trace Trace) (*Keyer, error) {
	if bufferSize < 1 {
		return nil, fmt.Errorf("%w: %d", ErrIllegalBufferSize, bufferSize)
	}
	return &Keyer{
		settings: settings,
		tone:     tone,
		trace:    trace,
		queue:    common.NewRing[Side](bufferSize),
		after:    time.After,
	}, nil
}

// Keyer turns paddle events into timed dit and dah elements. All of its
// state is owned by the goroutine executing Run.
type Keyer struct {
	Listeners []Listener

	settings Settings
	tone     Tone
	trace    Trace

	state  State
	paddle PaddleState
	queue  *common.Ring[Side]

	after func(time.Duration) <-chan time.Time
}

func (this *Keyer) Settings() Settings {
	return this.settings
}

// Run consumes events until the channel is closed (ErrEventsClosed) or ctx is
// done. ctx is only respected while idle or between two elements; an element
// which has been started always runs its full window. If the channel is closed
// while an element is emitted, the decision after that element is still made.
func (this *Keyer) Run(ctx context.Context, events <-chan Event) error {
	log.With("mode", this.settings.Mode).
		With("dit", this.settings.Dit).
		With("dah", this.settings.Dah).
		With("buffer", this.queue.Capacity()).
		Debug("Keyer started.")

	for {
		var err error
		switch this.state {
		case StateIdle:
			err = this.awaitContact(ctx, events)
		case StateDit, StateDah:
			err = this.emit(ctx, events)
		default:
			panic(fmt.Errorf("illegal keyer state: %v", this.state))
		}
		if err != nil {
			return err
		}
	}
}

func (this *Keyer) awaitContact(ctx context.Context, events <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-events:
			if !ok {
				return ErrEventsClosed
			}
			this.paddle.Apply(e)
			if e.Pressed {
				this.enter(e.Side.State())
				return nil
			}
		}
	}
}

func (this *Keyer) emit(ctx context.Context, events <-chan Event) error {
	current := this.state
	this.tone.Play(current)
	this.trace.Print(current)

	window := this.after(this.settings.Window(current))
	closed := false
	for {
		select {
		case <-window:
			if this.drain(events) {
				closed = true
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			this.enter(this.next(current))
			if closed {
				return fmt.Errorf("%w after emitting %v", ErrEventsClosed, current)
			}
			return nil
		case e, ok := <-events:
			if !ok {
				events, closed = nil, true
				continue
			}
			this.receive(e)
		}
	}
}

// receive handles an event while an element is emitted.
func (this *Keyer) receive(e Event) {
	this.paddle.Apply(e)
	if !e.Pressed {
		return
	}
	if dropped, overwritten := this.queue.Enqueue(e.Side); overwritten {
		log.With("dropped", dropped).
			With("side", e.Side).
			Debug("Element queue full, oldest contact dropped.")
	}
}

// drain receives all events which are already waiting without blocking. It
// reports whether the channel has been closed.
func (this *Keyer) drain(events <-chan Event) (closed bool) {
	for events != nil {
		select {
		case e, ok := <-events:
			if !ok {
				return true
			}
			this.receive(e)
		default:
			return false
		}
	}
	return false
}

// next decides which state follows the element last.
func (this *Keyer) next(last State) State {
	if side, ok := this.queue.Dequeue(); ok {
		return side.State()
	}
	switch {
	case this.paddle.Squeezed():
		return this.settings.Mode.Squeezed(last)
	case this.paddle.Dit:
		return StateDit
	case this.paddle.Dah:
		return StateDah
	default:
		return StateIdle
	}
}

func (this *Keyer) enter(state State) {
	log.With("from", this.state).
		With("to", state).
		Trace("Keyer state changed.")

	this.state = state
	if state == StateIdle {
		this.trace.Print(StateIdle)
	}
	for _, l := range this.Listeners {
		l.OnState(state)
	}
}
