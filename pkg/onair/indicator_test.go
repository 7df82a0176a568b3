package onair

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/blaubaer/cw-keyer/pkg/keyer"
)

func TestIndicator_Run(t *testing.T) {
	signal := &recordingSignal{}
	instance, hang, stop := runTestIndicator(t, signal)

	instance.OnState(keyer.StateDit)
	signal.expect(t, StateOn)

	instance.OnState(keyer.StateDah)
	instance.OnState(keyer.StateIdle)
	fire(t, hang)
	signal.expect(t, StateOn, StateOff)

	instance.OnState(keyer.StateDah)
	signal.expect(t, StateOn, StateOff, StateOn)

	instance.OnState(keyer.StateIdle)
	instance.OnState(keyer.StateDit)
	stop()

	signal.expect(t, StateOn, StateOff, StateOn, StateOff)
}

func TestIndicator_Run_retriesAfterFailure(t *testing.T) {
	signal := &recordingSignal{failures: 1}
	instance, _, stop := runTestIndicator(t, signal)

	instance.OnState(keyer.StateDit)
	signal.expect(t, StateOn)

	instance.OnState(keyer.StateDit)
	signal.expect(t, StateOn, StateOn)

	stop()
	signal.expect(t, StateOn, StateOn, StateOff)
}

func TestIndicator_Run_shortElementWhileSwitching(t *testing.T) {
	switching := make(chan struct{}, 1)
	release := make(chan struct{})
	signal := &recordingSignal{gate: func(s State) {
		if s == StateOff {
			select {
			case switching <- struct{}{}:
			default:
			}
			<-release
		}
	}}
	instance, hang, stop := runTestIndicator(t, signal)

	instance.OnState(keyer.StateDit)
	signal.expect(t, StateOn)
	instance.OnState(keyer.StateIdle)
	fire(t, hang)

	select {
	case <-switching:
	case <-time.After(2 * time.Second):
		t.Fatal("indicator did not switch off")
	}
	instance.OnState(keyer.StateDit)
	instance.OnState(keyer.StateIdle)
	close(release)

	signal.expect(t, StateOn, StateOff, StateOn)

	stop()
	signal.expect(t, StateOn, StateOff, StateOn, StateOff)
}

func TestIndicator_Run_idleWithoutKeying(t *testing.T) {
	signal := &recordingSignal{}
	instance, _, stop := runTestIndicator(t, signal)

	instance.OnState(keyer.StateIdle)
	stop()

	assert.Empty(t, signal.recorded())
}

func runTestIndicator(t testing.TB, signal Signal) (*Indicator, chan time.Time, func()) {
	instance := NewIndicator(signal, time.Second, time.Hour)
	hang := make(chan time.Time)
	instance.after = func(time.Duration) <-chan time.Time {
		return hang
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		instance.Run(ctx)
	}()

	stop := func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("indicator did not stop")
		}
	}
	t.Cleanup(cancel)
	return instance, hang, stop
}

func fire(t testing.TB, c chan time.Time) {
	select {
	case c <- time.Now():
	case <-time.After(2 * time.Second):
		t.Fatal("indicator did not wait for the hang time")
	}
}

type recordingSignal struct {
	mutex    sync.Mutex
	ensured  []State
	failures int
	gate     func(State)
}

func (this *recordingSignal) Ensure(s State) error {
	if gate := this.gate; gate != nil {
		gate(s)
	}
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.ensured = append(this.ensured, s)
	if this.failures > 0 {
		this.failures--
		return errors.New("expected")
	}
	return nil
}

func (this *recordingSignal) Update() error {
	return nil
}

func (this *recordingSignal) Dispose() error {
	return nil
}

func (this *recordingSignal) GetType() Type {
	return TypeNone
}

func (this *recordingSignal) recorded() []State {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return append([]State{}, this.ensured...)
}

func (this *recordingSignal) expect(t testing.TB, expected ...State) {
	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual(expected, this.recorded())
	}, 2*time.Second, time.Millisecond)
}
