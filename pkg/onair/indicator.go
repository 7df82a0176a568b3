package onair

import (
	"context"
	"sync/atomic"
	"time"

	log "github.com/echocat/slf4g"

	"github.com/blaubaer/cw-keyer/pkg/keyer"
)

func NewIndicator(signal Signal, hangTime, refreshInterval time.Duration) *Indicator {
	return &Indicator{
		signal:          signal,
		hangTime:        hangTime,
		refreshInterval: refreshInterval,
		notify:          make(chan struct{}, 1),
		after:           time.After,
	}
}

// Indicator drives a Signal from the activity of a keyer: on as soon as an
// element is emitted, off once the keyer has been idle for the hang time.
type Indicator struct {
	signal          Signal
	hangTime        time.Duration
	refreshInterval time.Duration

	latest     atomic.Uint32
	sawElement atomic.Bool
	notify     chan struct{}

	after func(time.Duration) <-chan time.Time
}

// OnState implements keyer.Listener. It never blocks; only the latest state
// and whether an element was seen since are kept until the indicator catches
// up.
func (this *Indicator) OnState(state keyer.State) {
	if state.IsElement() {
		this.sawElement.Store(true)
	}
	this.latest.Store(uint32(state))
	select {
	case this.notify <- struct{}{}:
	default:
	}
}

// Run switches the signal until ctx is done. The signal is switched off
// before Run returns.
func (this *Indicator) Run(ctx context.Context) {
	current := StateOff
	ensure := func(target State, force bool) {
		if target == current && !force {
			return
		}
		if err := this.signal.Ensure(target); err != nil {
			log.WithError(err).
				With("state", target).
				With("type", this.signal.GetType()).
				Warn("Cannot switch on-air signal.")
			return
		}
		log.With("state", target).
			Debug("On-air signal switched.")
		current = target
	}

	var refresh <-chan time.Time
	if this.refreshInterval > 0 {
		ticker := time.NewTicker(this.refreshInterval)
		defer ticker.Stop()
		refresh = ticker.C
	}

	var hang <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			ensure(StateOff, false)
			return
		case <-this.notify:
			latest := keyer.State(this.latest.Load())
			if this.sawElement.Swap(false) || latest.IsElement() {
				hang = nil
				ensure(StateOn, false)
			}
			if !latest.IsElement() && hang == nil && current == StateOn {
				hang = this.after(this.hangTime)
			}
		case <-hang:
			hang = nil
			ensure(StateOff, false)
		case <-refresh:
			if err := this.signal.Update(); err != nil {
				log.WithError(err).
					Warn("Cannot refresh on-air signal.")
				continue
			}
			// Someone else might have switched the targets meanwhile.
			ensure(current, true)
		}
	}
}
