package hue

import "github.com/blaubaer/cw-keyer/pkg/common"

func NewConfiguration() Configuration {
	return Configuration{
		Name:       common.MustNewRegexp("^OnAir"),
		Brightness: 254,
		Hue:        0,
		Saturation: 254,
	}
}

type Configuration struct {
	Pair   bool   `yaml:"pair,omitempty"`
	Bridge string `yaml:"bridge,omitempty"`
	User   string `yaml:"user,omitempty"`

	Name  common.Regexp `yaml:"target"`
	Kinds Kinds         `yaml:"kinds,omitempty"`

	Brightness uint8  `yaml:"brightness"`
	Hue        uint16 `yaml:"hue"`
	Saturation uint8  `yaml:"saturation"`
}

func (this *Configuration) SetupConfiguration(using common.FlagHolder) {
	using.Flag("onair.hue.pair", "Pair again with the hue bridge. Happens implicitly if there is no pairing yet.").
		Envar("CK_ONAIR_HUE_PAIR").
		BoolVar(&this.Pair)
	using.Flag("onair.hue.bridge", "Host of the hue bridge. Discovered if empty; only used while pairing.").
		Envar("CK_ONAIR_HUE_BRIDGE").
		StringVar(&this.Bridge)
	using.Flag("onair.hue.user", "User on the hue bridge. Usually created while pairing; if set it will not be persisted.").
		Envar("CK_ONAIR_HUE_USER").
		StringVar(&this.User)
	using.Flag("onair.hue.name", "Name as regex of the lights/groups which signal that you are on air.").
		Envar("CK_ONAIR_HUE_NAME").
		SetValue(&this.Name)
	using.Flag("onair.hue.kind", "Kind(s) of resources to use. Possible values: "+AllKinds.String()).
		Envar("CK_ONAIR_HUE_KIND").
		SetValue(&this.Kinds)

	using.Flag("onair.hue.brightness", "Brightness while on air, from 1 (minimum) to 254 (maximum).").
		Envar("CK_ONAIR_HUE_BRIGHTNESS").
		Uint8Var(&this.Brightness)
	using.Flag("onair.hue.hue", "Hue while on air, wrapping from 0 to 65535. 0 is red, 25500 green, 46920 blue.").
		Envar("CK_ONAIR_HUE_HUE").
		Uint16Var(&this.Hue)
	using.Flag("onair.hue.saturation", "Saturation while on air, from 0 (white) to 254 (most colored).").
		Envar("CK_ONAIR_HUE_SATURATION").
		Uint8Var(&this.Saturation)
}
