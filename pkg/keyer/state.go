package keyer

import (
	"fmt"
)

// State is the current activity of the Keyer. StateIdle waits for the first
// contact, StateDit and StateDah are emitting the corresponding element
// including its trailing inter-element space.
type State uint8

const (
	StateIdle = State(0)
	StateDit  = State(1)
	StateDah  = State(2)
)

func (this State) String() string {
	switch this {
	case StateIdle:
		return "idle"
	case StateDit:
		return "dit"
	case StateDah:
		return "dah"
	default:
		return fmt.Sprintf("illegal-keyer-state-%d", this)
	}
}

// IsElement reports whether this state emits a tone.
func (this State) IsElement() bool {
	return this == StateDit || this == StateDah
}

// Opposite returns the other element. Calling it on StateIdle is a
// programming error.
func (this State) Opposite() State {
	switch this {
	case StateDit:
		return StateDah
	case StateDah:
		return StateDit
	default:
		panic(fmt.Errorf("there is no opposite of keyer state %v", this))
	}
}

// Side returns the paddle side producing this element. Calling it on
// StateIdle is a programming error.
func (this State) Side() Side {
	switch this {
	case StateDit:
		return SideDit
	case StateDah:
		return SideDah
	default:
		panic(fmt.Errorf("there is no side of keyer state %v", this))
	}
}

// Symbol returns the printable trace representation.
func (this State) Symbol() string {
	switch this {
	case StateDit:
		return "."
	case StateDah:
		return "-"
	default:
		return " "
	}
}
