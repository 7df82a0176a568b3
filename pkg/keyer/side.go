package keyer

import (
	"fmt"
	"strings"
)

// Side identifies one of the two paddle contacts.
type Side uint8

const (
	SideDit = Side(0)
	SideDah = Side(1)
)

var (
	AllSides = Sides{
		SideDit,
		SideDah,
	}
)

func (this *Side) Set(plain string) error {
	switch strings.TrimSpace(strings.ToLower(plain)) {
	case "dit", ".":
		*this = SideDit
		return nil
	case "dah", "-":
		*this = SideDah
		return nil
	default:
		return fmt.Errorf("illegal-side: %s", plain)
	}
}

func (this Side) String() string {
	v, err := this.MarshalText()
	if err != nil {
		return fmt.Sprintf("illegal-side-%d", this)
	}
	return string(v)
}

func (this Side) MarshalText() (text []byte, err error) {
	switch this {
	case SideDit:
		return []byte("dit"), nil
	case SideDah:
		return []byte("dah"), nil
	default:
		return nil, fmt.Errorf("illegal side: %d", this)
	}
}

func (this *Side) UnmarshalText(text []byte) error {
	return this.Set(string(text))
}

// State returns the element which is emitted for this side.
func (this Side) State() State {
	switch this {
	case SideDit:
		return StateDit
	case SideDah:
		return StateDah
	default:
		panic(fmt.Errorf("illegal-side-%d", this))
	}
}

type Sides []Side

func (this Sides) Strings() []string {
	result := make([]string, len(this))
	for i, v := range this {
		result[i] = v.String()
	}
	return result
}

func (this Sides) String() string {
	return strings.Join(this.Strings(), ",")
}
