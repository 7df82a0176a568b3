package midi

import (
	"fmt"

	"github.com/blaubaer/cw-keyer/pkg/common"
)

func NewConfiguration() Configuration {
	return Configuration{
		common.MustNewRegexp("MidiStomp"),
		1,
		2,
		32,
	}
}

type Configuration struct {
	Port      common.Regexp `yaml:"port"`
	DitNote   uint8         `yaml:"ditNote,omitempty"`
	DahNote   uint8         `yaml:"dahNote,omitempty"`
	QueueSize uint16        `yaml:"queueSize,omitempty"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("midi.port", "Name as regex of the MIDI input port the paddle is connected to.").
		Envar("CK_MIDI_PORT").
		SetValue(&this.Port)
	using.Flag("midi.dit", "MIDI note sent by the dit contact of the paddle.").
		Envar("CK_MIDI_DIT").
		Uint8Var(&this.DitNote)
	using.Flag("midi.dah", "MIDI note sent by the dah contact of the paddle.").
		Envar("CK_MIDI_DAH").
		Uint8Var(&this.DahNote)
	using.Flag("midi.queue", "How many paddle events can wait for the keyer before new ones are dropped.").
		Envar("CK_MIDI_QUEUE").
		Uint16Var(&this.QueueSize)
}

func (this Configuration) Validate() error {
	if this.DitNote == this.DahNote {
		return fmt.Errorf("dit and dah must use different MIDI notes, but both use %d", this.DitNote)
	}
	if this.DitNote > 127 || this.DahNote > 127 {
		return fmt.Errorf("MIDI notes must be between 0 and 127, got dit=%d and dah=%d", this.DitNote, this.DahNote)
	}
	if this.QueueSize < 1 {
		return fmt.Errorf("MIDI queue size must be at least 1")
	}
	return nil
}
