package sidetone

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"
)

var ErrOutputUnavailable = errors.New("audio output unavailable")

// tailPollInterval is used once the samples should have been played but the
// device still drains its buffer.
const tailPollInterval = time.Millisecond

// Output plays encoded samples. Play returns once the samples are played.
type Output interface {
	Play(samples []byte) error
	Close() error
}

// OpenOutput opens the default audio device as a mono float32 output.
func OpenOutput(sampleRate uint32) (Output, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(sampleRate),
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutputUnavailable, err)
	}
	<-ready
	return &otoOutput{ctx, sampleRate}, nil
}

type otoOutput struct {
	context    *oto.Context
	sampleRate uint32
}

// duration of the given encoded samples at the sample rate of the output.
func (this *otoOutput) duration(samples []byte) time.Duration {
	if this.sampleRate == 0 {
		return 0
	}
	n := int64(len(samples) / BytesPerSample)
	return time.Duration(n * int64(time.Second) / int64(this.sampleRate))
}

func (this *otoOutput) Play(samples []byte) error {
	p := this.context.NewPlayer(bytes.NewReader(samples))
	defer func() {
		_ = p.Close()
	}()

	p.Play()
	time.Sleep(this.duration(samples))
	for p.IsPlaying() {
		time.Sleep(tailPollInterval)
	}
	return p.Err()
}

func (this *otoOutput) Close() error {
	return this.context.Suspend()
}
