package facade

import (
	"fmt"
	"sync"

	"github.com/blaubaer/cw-keyer/pkg/onair"
	"github.com/blaubaer/cw-keyer/pkg/onair/homeassistant"
	"github.com/blaubaer/cw-keyer/pkg/onair/hue"
)

// Facade is the configured on-air Signal. Without a configured type every
// operation is a no-op.
type Facade struct {
	onair.Signal

	lock sync.RWMutex
}

func (this *Facade) Initialize(conf *Configuration, saveConfFunc func() error) error {
	this.lock.Lock()
	defer this.lock.Unlock()

	if this.Signal != nil {
		return nil
	}

	switch conf.Type {
	case onair.TypeNone:
		return nil
	case onair.TypeHue:
		var buf hue.Hue
		if err := buf.Initialize(&conf.Hue, saveConfFunc); err != nil {
			return err
		}
		this.Signal = &buf
	case onair.TypeHomeAssistant:
		var buf homeassistant.HomeAssistant
		if err := buf.Initialize(&conf.HomeAssistant, saveConfFunc); err != nil {
			return err
		}
		this.Signal = &buf
	default:
		return fmt.Errorf("unsupported onair type: %v", conf.Type)
	}

	return nil
}

func (this *Facade) IsActive() bool {
	this.lock.RLock()
	defer this.lock.RUnlock()
	return this.Signal != nil
}

func (this *Facade) Ensure(state onair.State) error {
	this.lock.RLock()
	defer this.lock.RUnlock()

	if v := this.Signal; v != nil {
		return v.Ensure(state)
	}
	return nil
}

func (this *Facade) Update() error {
	this.lock.RLock()
	defer this.lock.RUnlock()

	if v := this.Signal; v != nil {
		return v.Update()
	}
	return nil
}

func (this *Facade) Dispose() error {
	this.lock.Lock()
	defer this.lock.Unlock()

	defer func() {
		this.Signal = nil
	}()

	if v := this.Signal; v != nil {
		return v.Dispose()
	}
	return nil
}

func (this *Facade) GetType() onair.Type {
	this.lock.RLock()
	defer this.lock.RUnlock()

	if v := this.Signal; v != nil {
		return v.GetType()
	}
	return onair.TypeNone
}
