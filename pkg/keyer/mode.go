package keyer

import (
	"fmt"
	"strings"
)

// Mode decides which element follows when both paddles are squeezed and no
// contact was queued during the last element. The zero value is not a valid
// mode; it marks a mode which was not configured.
type Mode uint8

const (
	// ModeIambicA alternates the elements while squeezed.
	ModeIambicA = Mode(1)
	// ModeUltimatic repeats the last element while squeezed.
	ModeUltimatic = Mode(2)

	ModeDefault = ModeUltimatic
)

var (
	AllModes = Modes{
		ModeIambicA,
		ModeUltimatic,
	}
)

func (this *Mode) Set(plain string) error {
	switch strings.TrimSpace(strings.ToLower(plain)) {
	case "a", "iambic-a", "iambica":
		*this = ModeIambicA
		return nil
	case "u", "ultimatic":
		*this = ModeUltimatic
		return nil
	default:
		return fmt.Errorf("illegal-mode: %s", plain)
	}
}

func (this Mode) String() string {
	v, err := this.MarshalText()
	if err != nil {
		return fmt.Sprintf("illegal-mode-%d", this)
	}
	return string(v)
}

func (this Mode) MarshalText() (text []byte, err error) {
	switch this {
	case ModeIambicA:
		return []byte("iambic-a"), nil
	case ModeUltimatic:
		return []byte("ultimatic"), nil
	default:
		return nil, fmt.Errorf("illegal mode: %d", this)
	}
}

func (this Mode) IsValid() bool {
	return this == ModeIambicA || this == ModeUltimatic
}

func (this *Mode) UnmarshalText(text []byte) error {
	return this.Set(string(text))
}

// Squeezed resolves the next element when both paddles are held after
// the element last has been emitted.
func (this Mode) Squeezed(last State) State {
	switch this {
	case ModeIambicA:
		return last.Opposite()
	case ModeUltimatic:
		return last
	default:
		panic(fmt.Errorf("illegal-mode-%d", this))
	}
}

type Modes []Mode

func (this Modes) Strings() []string {
	result := make([]string, len(this))
	for i, v := range this {
		result[i] = v.String()
	}
	return result
}

func (this Modes) String() string {
	return strings.Join(this.Strings(), ",")
}
