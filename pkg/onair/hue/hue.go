package hue

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/amimof/huego"
	log "github.com/echocat/slf4g"

	"github.com/blaubaer/cw-keyer/pkg/common"
	"github.com/blaubaer/cw-keyer/pkg/credentials"
	"github.com/blaubaer/cw-keyer/pkg/onair"
)

const (
	appName = "github.com/blaubaer/cw-keyer"

	linkButtonNotPressed = 101
	pairingRetryInterval = time.Second
	pairingTimeout       = 2 * time.Minute
)

var ErrNotPaired = errors.New("not paired with hue bridge")

// Hue signals on air using every light or group of a hue bridge which
// matches Configuration.Name.
type Hue struct {
	conf         *Configuration
	saveConfFunc func() error

	targets     []target
	credentials credentials.Credentials
	mutex       sync.Mutex
}

type target struct {
	kind  Kind
	id    int
	name  string
	state huego.State
}

func (this target) String() string {
	return fmt.Sprintf("%v %q#%d", this.kind, this.name, this.id)
}

func (this *Hue) Initialize(conf *Configuration, saveConfFunc func() error) error {
	this.conf = conf
	this.saveConfFunc = saveConfFunc

	v, err := this.resolveCredentials()
	if err != nil {
		return err
	}
	this.credentials = v

	return this.Update()
}

func (this *Hue) Update() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	bridge, err := this.bridge()
	if err != nil {
		return err
	}

	var targets []target
	if this.conf.Kinds.Has(KindLight) {
		candidates, err := bridge.GetLights()
		if err != nil {
			return fmt.Errorf("cannot discover lights of bridge %s: %w", bridge.Host, err)
		}
		for _, candidate := range candidates {
			targets = this.appendTarget(targets, KindLight, candidate.ID, candidate.Name, candidate.State)
		}
	}
	if this.conf.Kinds.Has(KindGroup) {
		candidates, err := bridge.GetGroups()
		if err != nil {
			return fmt.Errorf("cannot discover groups of bridge %s: %w", bridge.Host, err)
		}
		for _, candidate := range candidates {
			targets = this.appendTarget(targets, KindGroup, candidate.ID, candidate.Name, candidate.State)
		}
	}

	if len(targets) == 0 {
		log.With("bridge", bridge.Host).
			With("name", this.conf.Name).
			Warn("No hue light or group matches; nothing will signal on air.")
	}

	this.targets = targets
	return nil
}

func (this *Hue) appendTarget(to []target, kind Kind, id int, name string, state *huego.State) []target {
	if !this.conf.Name.MatchString(name) {
		return to
	}
	result := target{kind: kind, id: id, name: name}
	if state != nil {
		result.state = *state
	}
	return append(to, result)
}

func (this *Hue) Ensure(state onair.State) error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	bridge, err := this.bridge()
	if err != nil {
		return err
	}

	for i, t := range this.targets {
		desired, change, err := this.conf.desiredState(state, t.state)
		if err != nil {
			return fmt.Errorf("cannot ensure state of %v: %w", t, err)
		}
		if !change {
			continue
		}
		switch t.kind {
		case KindGroup:
			_, err = bridge.SetGroupState(t.id, desired)
		default:
			_, err = bridge.SetLightState(t.id, desired)
		}
		if err != nil {
			return fmt.Errorf("cannot switch %v to %v: %w", t, state, err)
		}
		this.targets[i].state = desired
	}

	return nil
}

// desiredState returns the hue state for the given on-air state and
// whether it differs from current.
func (this Configuration) desiredState(state onair.State, current huego.State) (huego.State, bool, error) {
	switch state {
	case onair.StateOn:
		if current.On && current.Bri == this.Brightness && current.Hue == this.Hue && current.Sat == this.Saturation {
			return current, false, nil
		}
		return huego.State{
			On:  true,
			Bri: this.Brightness,
			Hue: this.Hue,
			Sat: this.Saturation,
		}, true, nil
	case onair.StateOff:
		if !current.On {
			return current, false, nil
		}
		return huego.State{On: false}, true, nil
	default:
		return current, false, fmt.Errorf("illegal on-air state: %v", state)
	}
}

func (this *Hue) bridge() (*huego.Bridge, error) {
	v := this.credentials
	if v.IsHueZero() {
		return nil, ErrNotPaired
	}
	return huego.New(v.HueBridge, v.HueUser), nil
}

func (this *Hue) resolveCredentials() (credentials.Credentials, error) {
	if u := this.conf.User; u != "" && !this.conf.Pair {
		bridge, err := this.discoverBridge()
		if err != nil {
			return credentials.Credentials{}, err
		}
		return credentials.Credentials{
			HueBridge: bridge.Host,
			HueUser:   u,
		}, nil
	}

	if this.conf.Pair {
		return this.pair()
	}

	v, err := this.readCredentials()
	if err != nil {
		return credentials.Credentials{}, err
	}
	if !v.IsHueZero() {
		return v, nil
	}

	return this.pair()
}

func (this *Hue) discoverBridge() (*huego.Bridge, error) {
	if this.conf.Bridge != "" {
		return &huego.Bridge{
			Host: this.conf.Bridge,
		}, nil
	}

	bridge, err := huego.Discover()
	if err != nil {
		return nil, fmt.Errorf("cannot discover hue bridge: %w", err)
	}
	return bridge, nil
}

func (this *Hue) pair() (credentials.Credentials, error) {
	bridge, err := this.discoverBridge()
	if err != nil {
		return credentials.Credentials{}, err
	}

	log.With("bridge", bridge.Host).
		Info("Press the link button of the hue bridge to pair...")

	deadline := time.Now().Add(pairingTimeout)
	for {
		user, err := bridge.CreateUser(appName)
		if apiErr, ok := common.AsError[*huego.APIError](err); ok && apiErr.Type == linkButtonNotPressed && time.Now().Before(deadline) {
			time.Sleep(pairingRetryInterval)
			continue
		}
		if err != nil {
			return credentials.Credentials{}, fmt.Errorf("cannot pair with hue bridge %s: %w", bridge.Host, err)
		}

		v := credentials.Credentials{
			HueBridge: bridge.Host,
			HueUser:   user,
		}
		if err := this.storeCredentials(v); err != nil {
			log.WithError(err).
				Warn("Cannot store hue credentials; pairing might be required again next time.")
		}

		log.With("bridge", bridge.Host).
			Info("Successfully paired with hue bridge.")
		return v, nil
	}
}

func (this *Hue) readCredentials() (credentials.Credentials, error) {
	var v credentials.Credentials
	if _, err := v.ReadFromStore(); err != nil {
		return credentials.Credentials{}, err
	}

	if v.HueBridge == "" {
		v.HueBridge = this.conf.Bridge
	}
	if v.HueUser == "" {
		v.HueUser = this.conf.User
	}

	return v, nil
}

func (this *Hue) storeCredentials(v credentials.Credentials) error {
	var existing credentials.Credentials
	if _, err := existing.ReadFromStore(); err != nil {
		log.WithError(err).
			Debug("Cannot read existing credentials; they will be replaced.")
	}
	existing.Merge(v)

	supported, err := existing.WriteToStore()
	if err != nil {
		return err
	}
	if supported {
		return nil
	}

	this.conf.Bridge = v.HueBridge
	this.conf.User = v.HueUser
	this.conf.Pair = false
	if this.saveConfFunc == nil {
		return nil
	}
	return this.saveConfFunc()
}

func (this *Hue) Dispose() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	this.targets = nil
	this.saveConfFunc = nil
	return nil
}

func (this *Hue) GetType() onair.Type {
	return onair.TypeHue
}
