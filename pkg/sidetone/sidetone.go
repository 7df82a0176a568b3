package sidetone

import (
	"fmt"
	"sync"

	log "github.com/echocat/slf4g"

	"github.com/blaubaer/cw-keyer/pkg/keyer"
)

// New opens the default audio output and prepares the dit and dah tones.
func New(conf Configuration, settings keyer.Settings) (*Sidetone, error) {
	output, err := OpenOutput(conf.SampleRate)
	if err != nil {
		return nil, err
	}
	return NewWith(conf, settings, output), nil
}

func NewWith(conf Configuration, settings keyer.Settings, output Output) *Sidetone {
	queueSize := conf.QueueSize
	if queueSize < 1 {
		queueSize = 1
	}
	result := &Sidetone{
		output: output,
		dit:    Encode(Waveform(settings.Frequency, settings.Dit, conf.SampleRate, conf.Volume)),
		dah:    Encode(Waveform(settings.Frequency, settings.Dah, conf.SampleRate, conf.Volume)),
		queue:  make(chan []byte, queueSize),
		done:   make(chan struct{}),
	}
	go result.run()
	return result
}

// Sidetone plays pre-rendered element tones strictly in the order they were
// requested.
type Sidetone struct {
	output Output
	dit    []byte
	dah    []byte

	queue    chan []byte
	done     chan struct{}
	disposed bool
	mutex    sync.RWMutex
}

// Play schedules the tone of the given element and returns immediately.
// StateIdle is ignored.
func (this *Sidetone) Play(state keyer.State) {
	var samples []byte
	switch state {
	case keyer.StateDit:
		samples = this.dit
	case keyer.StateDah:
		samples = this.dah
	default:
		return
	}

	this.mutex.RLock()
	defer this.mutex.RUnlock()
	if this.disposed {
		return
	}

	select {
	case this.queue <- samples:
	default:
		log.With("element", state).
			Warn("Sidetone queue is full. Element will not be sounded.")
	}
}

func (this *Sidetone) run() {
	defer close(this.done)
	for samples := range this.queue {
		if err := this.output.Play(samples); err != nil {
			log.WithError(err).
				Warn("Cannot play sidetone.")
		}
	}
}

func (this *Sidetone) Dispose() error {
	this.mutex.Lock()
	if this.disposed {
		this.mutex.Unlock()
		return nil
	}
	this.disposed = true
	close(this.queue)
	this.mutex.Unlock()

	<-this.done
	if err := this.output.Close(); err != nil {
		return fmt.Errorf("cannot close sidetone output: %w", err)
	}
	return nil
}
