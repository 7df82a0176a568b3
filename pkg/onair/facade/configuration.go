package facade

import (
	"time"

	"github.com/blaubaer/cw-keyer/pkg/common"
	"github.com/blaubaer/cw-keyer/pkg/onair"
	"github.com/blaubaer/cw-keyer/pkg/onair/homeassistant"
	"github.com/blaubaer/cw-keyer/pkg/onair/hue"
)

func NewConfiguration() Configuration {
	return Configuration{
		Type:            onair.TypeDefault,
		HangTime:        2 * time.Second,
		RefreshInterval: 5 * time.Minute,
		Hue:             hue.NewConfiguration(),
		HomeAssistant:   homeassistant.NewConfiguration(),
	}
}

type Configuration struct {
	Type            onair.Type                  `yaml:"type"`
	HangTime        time.Duration               `yaml:"hangTime,omitempty"`
	RefreshInterval time.Duration               `yaml:"refreshInterval,omitempty"`
	Hue             hue.Configuration           `yaml:"hue,omitempty"`
	HomeAssistant   homeassistant.Configuration `yaml:"homeAssistant,omitempty"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("onair.type", "How to signal that you are on air. Possible values: "+onair.AllTypes.String()).
		Envar("CK_ONAIR_TYPE").
		SetValue(&this.Type)
	using.Flag("onair.hangTime", "How long the keyer has to be idle before the on-air signal is switched off.").
		Envar("CK_ONAIR_HANG_TIME").
		DurationVar(&this.HangTime)
	using.Flag("onair.refreshInterval", "How often the targets of the on-air signal are discovered again.").
		Envar("CK_ONAIR_REFRESH_INTERVAL").
		DurationVar(&this.RefreshInterval)

	this.Hue.SetupConfiguration(using)
	this.HomeAssistant.SetupConfiguration(using)
}
