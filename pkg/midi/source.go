package midi

import (
	"errors"
	"fmt"
	"sync"

	log "github.com/echocat/slf4g"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/blaubaer/cw-keyer/pkg/common"
	"github.com/blaubaer/cw-keyer/pkg/keyer"
)

var ErrNoPort = errors.New("no matching MIDI input port")

func NewSource(conf Configuration) *Source {
	return &Source{
		conf:   conf,
		events: make(chan keyer.Event, conf.QueueSize),
	}
}

// Source delivers the paddle events of a MIDI input port. The channel
// returned by Events is closed once the Source is closed or the port is
// lost.
type Source struct {
	conf   Configuration
	events chan keyer.Event

	driver *rtmididrv.Driver
	port   drivers.In
	stop   func()
	closed bool
	mutex  sync.Mutex
}

func (this *Source) Events() <-chan keyer.Event {
	return this.events
}

func (this *Source) Open() (rErr error) {
	success := false
	defer func() {
		if !success {
			if err := this.Close(); err != nil && rErr == nil {
				rErr = err
			}
		}
	}()

	driver, err := rtmididrv.New()
	if err != nil {
		return fmt.Errorf("cannot initialize MIDI driver: %w", err)
	}
	this.hold(func() { this.driver = driver })

	ports, err := driver.Ins()
	if err != nil {
		return fmt.Errorf("cannot list MIDI input ports: %w", err)
	}
	port, err := this.selectPort(ports)
	if err != nil {
		return err
	}
	if err := port.Open(); err != nil {
		return fmt.Errorf("cannot open MIDI input port %q: %w", port.String(), err)
	}
	this.hold(func() { this.port = port })

	stop, err := midi.ListenTo(port, func(msg midi.Message, _ int32) {
		this.deliver(msg)
	}, midi.HandleError(func(err error) {
		log.WithError(err).
			With("port", port.String()).
			Error("MIDI input failed. Paddle is lost.")
		go func() { _ = this.Close() }()
	}))
	if err != nil {
		return fmt.Errorf("cannot listen to MIDI input port %q: %w", port.String(), err)
	}
	this.hold(func() { this.stop = stop })

	log.With("port", port.String()).
		With("dit", this.conf.DitNote).
		With("dah", this.conf.DahNote).
		Info("Listening for paddle events.")

	success = true
	return nil
}

func (this *Source) selectPort(ports []drivers.In) (drivers.In, error) {
	names := make([]string, len(ports))
	for i, p := range ports {
		names[i] = p.String()
	}
	candidates := this.conf.matchingPorts(names)

	switch len(candidates) {
	case 0:
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrNoPort, this.conf.Port, names)
	case 1:
		return ports[candidates[0]], nil
	}

	options := make([]string, len(candidates))
	for i, c := range candidates {
		options[i] = names[c]
	}
	chosen, err := common.RequestChoiceFromTerminal(options, "MIDI input port")
	if err != nil {
		log.WithError(err).
			With("port", options[0]).
			Warn("Several MIDI input ports match and none could be chosen. Using the first one.")
		chosen = 0
	}
	return ports[candidates[chosen]], nil
}

// matchingPorts returns the indexes of all names matching the configured
// port expression.
func (this Configuration) matchingPorts(names []string) (result []int) {
	for i, name := range names {
		if this.Port.HasContent() && this.Port.MatchString(name) {
			result = append(result, i)
		}
	}
	return
}

func (this *Source) deliver(msg midi.Message) {
	e, ok := this.conf.Decode(msg)
	if !ok {
		return
	}

	this.mutex.Lock()
	defer this.mutex.Unlock()
	if this.closed {
		return
	}

	select {
	case this.events <- e:
	default:
		log.With("event", e).
			Warn("Keyer does not keep up. Paddle event dropped.")
	}
}

func (this *Source) Close() (rErr error) {
	this.mutex.Lock()
	if this.closed {
		this.mutex.Unlock()
		return nil
	}
	this.closed = true
	close(this.events)
	stop, port, driver := this.stop, this.port, this.driver
	this.stop, this.port, this.driver = nil, nil, nil
	this.mutex.Unlock()

	// Outside the lock: stopping waits for a running deliver.
	if stop != nil {
		stop()
	}
	if port != nil {
		if err := port.Close(); err != nil && rErr == nil {
			rErr = fmt.Errorf("cannot close MIDI input port %q: %w", port.String(), err)
		}
	}
	if driver != nil {
		if err := driver.Close(); err != nil && rErr == nil {
			rErr = fmt.Errorf("cannot close MIDI driver: %w", err)
		}
	}
	return rErr
}

func (this *Source) hold(fn func()) {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	fn()
}
