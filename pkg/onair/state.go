package onair

import (
	"fmt"
	"strings"
)

// State of an on-air indicator: on while the operator is keying.
type State uint8

const (
	StateOff = State(0)
	StateOn  = State(1)
)

func (this *State) Set(plain string) error {
	switch strings.TrimSpace(strings.ToLower(plain)) {
	case "off", "0", "false", "no":
		*this = StateOff
		return nil
	case "on", "1", "true", "yes":
		*this = StateOn
		return nil
	default:
		return fmt.Errorf("illegal-onair-state: %s", plain)
	}
}

func (this State) String() string {
	v, err := this.MarshalText()
	if err != nil {
		return fmt.Sprintf("illegal-onair-state-%d", this)
	}
	return string(v)
}

func (this State) MarshalText() (text []byte, err error) {
	switch this {
	case StateOff:
		return []byte("off"), nil
	case StateOn:
		return []byte("on"), nil
	default:
		return nil, fmt.Errorf("illegal onair state: %d", this)
	}
}

func (this *State) UnmarshalText(text []byte) error {
	return this.Set(string(text))
}
