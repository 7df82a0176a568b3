package keyer

// PaddleState is the physical contact state of both paddle sides.
type PaddleState struct {
	Dit bool
	Dah bool
}

func (this *PaddleState) Apply(e Event) {
	switch e.Side {
	case SideDit:
		this.Dit = e.Pressed
	case SideDah:
		this.Dah = e.Pressed
	}
}

func (this PaddleState) Squeezed() bool {
	return this.Dit && this.Dah
}

func (this PaddleState) IsZero() bool {
	return !this.Dit && !this.Dah
}
