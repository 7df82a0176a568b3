package sidetone

import (
	"fmt"

	"github.com/blaubaer/cw-keyer/pkg/common"
)

func NewConfiguration() Configuration {
	return Configuration{
		44100,
		0.5,
		8,
	}
}

type Configuration struct {
	SampleRate uint32  `yaml:"sampleRate,omitempty"`
	Volume     float64 `yaml:"volume,omitempty"`
	QueueSize  uint16  `yaml:"queueSize,omitempty"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("sidetone.sampleRate", "Sample rate in Hz of the sidetone output.").
		Envar("CK_SIDETONE_SAMPLE_RATE").
		Uint32Var(&this.SampleRate)
	using.Flag("sidetone.volume", "Volume of the sidetone between 0.0 (silent) and 1.0 (full scale).").
		Envar("CK_SIDETONE_VOLUME").
		Float64Var(&this.Volume)
	using.Flag("sidetone.queue", "How many elements can wait for playback before new ones are dropped.").
		Envar("CK_SIDETONE_QUEUE").
		Uint16Var(&this.QueueSize)
}

func (this Configuration) Validate() error {
	if this.SampleRate < 1 {
		return fmt.Errorf("sidetone sample rate must be at least 1 Hz")
	}
	if !(this.Volume >= 0 && this.Volume <= 1) {
		return fmt.Errorf("sidetone volume must be between 0.0 and 1.0, got %v", this.Volume)
	}
	if this.QueueSize < 1 {
		return fmt.Errorf("sidetone queue size must be at least 1")
	}
	return nil
}
