package keyer

import "fmt"

// Event is a contact change of one paddle side as delivered by an event
// source. Pressed is true on contact-down and false on contact-up.
type Event struct {
	Side    Side
	Pressed bool
}

func Press(side Side) Event {
	return Event{side, true}
}

func Release(side Side) Event {
	return Event{side, false}
}

func (this Event) String() string {
	if this.Pressed {
		return fmt.Sprintf("%v+", this.Side)
	}
	return fmt.Sprintf("%v-", this.Side)
}
