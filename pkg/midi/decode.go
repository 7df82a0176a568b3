package midi

import (
	"gitlab.com/gomidi/midi/v2"

	"github.com/blaubaer/cw-keyer/pkg/keyer"
)

// Decode translates a MIDI message into a paddle event. Note on is a press,
// note off (or note on with velocity 0) is a release. Messages for other
// notes and all other message types are ignored.
func (this Configuration) Decode(msg midi.Message) (keyer.Event, bool) {
	var ch, key, vel uint8
	var pressed bool
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		pressed = true
	case msg.GetNoteEnd(&ch, &key):
		pressed = false
	default:
		return keyer.Event{}, false
	}

	switch key {
	case this.DitNote:
		return keyer.Event{Side: keyer.SideDit, Pressed: pressed}, true
	case this.DahNote:
		return keyer.Event{Side: keyer.SideDah, Pressed: pressed}, true
	default:
		return keyer.Event{}, false
	}
}
