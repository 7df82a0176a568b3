package trace

import (
	"bufio"
	"io"
	"sync"

	log "github.com/echocat/slf4g"

	"github.com/blaubaer/cw-keyer/pkg/keyer"
)

func New(w io.Writer) *Trace {
	return &Trace{
		target: w,
		out:    bufio.NewWriter(w),
	}
}

// Trace writes the symbol of every keyer state to the target and flushes it
// immediately. Failures are logged and do not reach the keyer.
type Trace struct {
	target io.Writer
	out    *bufio.Writer
	mutex  sync.Mutex
}

func (this *Trace) Print(state keyer.State) {
	if err := this.print(state.Symbol()); err != nil {
		log.WithError(err).
			With("symbol", state.Symbol()).
			Warn("Cannot write trace symbol.")
	}
}

func (this *Trace) print(symbol string) error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	_, err := this.out.WriteString(symbol)
	if err == nil {
		err = this.out.Flush()
	}
	if err != nil {
		// A failed bufio.Writer keeps failing; start over with the next symbol.
		this.out.Reset(this.target)
		return err
	}
	return nil
}
