package keyer

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrIllegalMode       = errors.New("illegal keyer mode")
	ErrIllegalWpm        = errors.New("words per minute must be at least 1")
	ErrIllegalFrequency  = errors.New("frequency must be greater than 0")
	ErrIllegalBufferSize = errors.New("buffer size must be at least 1")
)

// DitsPerMinuteFactor is the number of milliseconds of one dit at one word
// per minute (PARIS = 50 dits).
const DitsPerMinuteFactor = 1200.0

// Settings are fixed for the whole lifetime of a Keyer.
type Settings struct {
	Mode      Mode
	Frequency float64
	Dit       time.Duration
	Dah       time.Duration
}

func NewSettings(mode Mode, frequency float64, wpm uint) (Settings, error) {
	if !mode.IsValid() {
		return Settings{}, fmt.Errorf("%w: %d", ErrIllegalMode, mode)
	}
	if wpm < 1 {
		return Settings{}, fmt.Errorf("%w: %d", ErrIllegalWpm, wpm)
	}
	if !(frequency > 0) || math.IsInf(frequency, 0) {
		return Settings{}, fmt.Errorf("%w: %v", ErrIllegalFrequency, frequency)
	}
	dit := DitLength(wpm)
	return Settings{
		Mode:      mode,
		Frequency: frequency,
		Dit:       dit,
		Dah:       dit * 3,
	}, nil
}

// DitLength returns round(1200/wpm) milliseconds.
func DitLength(wpm uint) time.Duration {
	return time.Duration(math.Round(DitsPerMinuteFactor/float64(wpm))) * time.Millisecond
}

// Length returns how long the tone of the given element lasts.
func (this Settings) Length(state State) time.Duration {
	switch state {
	case StateDit:
		return this.Dit
	case StateDah:
		return this.Dah
	default:
		return 0
	}
}

// Window returns how long the given element occupies the keyer: the element
// itself plus one inter-element space of one dit.
func (this Settings) Window(state State) time.Duration {
	switch state {
	case StateDit, StateDah:
		return this.Length(state) + this.Dit
	default:
		panic(fmt.Errorf("keyer state %v has no emission window", state))
	}
}
