package app

import (
	"os"
	"path/filepath"
	"reflect"

	"github.com/blaubaer/cw-keyer/pkg/common"
	"github.com/blaubaer/cw-keyer/pkg/keyer"
	"github.com/blaubaer/cw-keyer/pkg/midi"
	"github.com/blaubaer/cw-keyer/pkg/onair/facade"
	"github.com/blaubaer/cw-keyer/pkg/sidetone"
)

func NewConfiguration() Configuration {
	return Configuration{
		Frequency:  523.25,
		Wpm:        20,
		Mode:       keyer.ModeDefault,
		BufferSize: 1,

		Midi:     midi.NewConfiguration(),
		Sidetone: sidetone.NewConfiguration(),
		OnAir:    facade.NewConfiguration(),
	}
}

type Configuration struct {
	PreventAutoSave bool `yaml:"preventAutoSave"`

	Frequency  float64    `yaml:"frequency"`
	Wpm        uint       `yaml:"wpm"`
	Mode       keyer.Mode `yaml:"mode"`
	BufferSize uint32     `yaml:"bufferSize"`

	Midi     midi.Configuration     `yaml:"midi"`
	Sidetone sidetone.Configuration `yaml:"sidetone"`
	OnAir    facade.Configuration   `yaml:"onAir"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("preventAutoSave", "If provided configuration will NOT automatically be saved upon changes.").
		Envar("CK_PREVENT_AUTO_SAVE").
		BoolVar(&this.PreventAutoSave)

	using.Flag("freq", "Frequency of the sidetone in Hz.").
		Short('f').
		Envar("CK_FREQ").
		Float64Var(&this.Frequency)
	using.Flag("wpm", "Speed in words per minute (PARIS).").
		Short('w').
		Envar("CK_WPM").
		UintVar(&this.Wpm)
	using.Flag("mode", "Keyer mode. Possible values: "+keyer.AllModes.String()+" (or a, u)").
		Short('m').
		Envar("CK_MODE").
		SetValue(&this.Mode)
	using.Flag("buffer", "How many paddle contacts are remembered while an element is emitted.").
		Short('b').
		Envar("CK_BUFFER").
		Uint32Var(&this.BufferSize)

	this.Midi.SetupConfiguration(using)
	this.Sidetone.SetupConfiguration(using)
	this.OnAir.SetupConfiguration(using)
}

func (this Configuration) settings() (keyer.Settings, error) {
	return keyer.NewSettings(this.Mode, this.Frequency, this.Wpm)
}

func (this Configuration) Validate() error {
	if _, err := this.settings(); err != nil {
		return err
	}
	if this.BufferSize < 1 {
		return keyer.ErrIllegalBufferSize
	}
	if err := this.Midi.Validate(); err != nil {
		return err
	}
	if err := this.Sidetone.Validate(); err != nil {
		return err
	}
	return nil
}

func defaultConfigurationFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "configuration.yml"
	}
	return filepath.Join(dir, "cw-keyer", "configuration.yml")
}

// configurationTransformers prevents unset values from the command line which
// are not recognized as empty by mergo from replacing the values of the
// configuration file.
type configurationTransformers struct{}

var regexpType = reflect.TypeOf(common.Regexp{})

func (this configurationTransformers) Transformer(t reflect.Type) func(dst, src reflect.Value) error {
	if t != regexpType {
		return nil
	}
	return func(dst, src reflect.Value) error {
		if !dst.CanSet() {
			return nil
		}
		if v, ok := src.Interface().(common.Regexp); ok && v.HasContent() {
			dst.Set(src)
		}
		return nil
	}
}
