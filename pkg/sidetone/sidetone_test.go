package sidetone

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blaubaer/cw-keyer/pkg/keyer"
)

func TestSidetone_Play(t *testing.T) {
	output := newFakeOutput(false)
	instance := newTestSidetone(t, output, 8)

	instance.Play(keyer.StateDit)
	instance.Play(keyer.StateIdle)
	instance.Play(keyer.StateDah)
	instance.Play(keyer.StateDit)

	require.NoError(t, instance.Dispose())
	assert.True(t, output.closed)
	assert.Equal(t, [][]byte{instance.dit, instance.dah, instance.dit}, output.recorded())
	assert.Len(t, instance.dit, 60*8000/1000*4)
	assert.Len(t, instance.dah, 3*len(instance.dit))
}

func TestSidetone_Play_queueFull(t *testing.T) {
	output := newFakeOutput(true)
	instance := newTestSidetone(t, output, 1)

	instance.Play(keyer.StateDah)
	select {
	case <-output.started:
	case <-time.After(2 * time.Second):
		t.Fatal("output did not start playing")
	}

	instance.Play(keyer.StateDit)
	instance.Play(keyer.StateDah)
	close(output.release)

	require.NoError(t, instance.Dispose())
	assert.Equal(t, [][]byte{instance.dah, instance.dit}, output.recorded())
}

func TestSidetone_Play_afterDispose(t *testing.T) {
	output := newFakeOutput(false)
	instance := newTestSidetone(t, output, 1)

	require.NoError(t, instance.Dispose())
	require.NoError(t, instance.Dispose())
	instance.Play(keyer.StateDit)

	assert.Empty(t, output.recorded())
}

func TestSidetone_Play_outputFailure(t *testing.T) {
	output := newFakeOutput(false)
	output.err = errors.New("expected")
	instance := newTestSidetone(t, output, 2)

	instance.Play(keyer.StateDit)
	instance.Play(keyer.StateDah)

	require.NoError(t, instance.Dispose())
	assert.Len(t, output.recorded(), 2)
}

func newTestSidetone(t testing.TB, output Output, queueSize uint16) *Sidetone {
	settings, err := keyer.NewSettings(keyer.ModeIambicA, 700, 20)
	require.NoError(t, err)
	return NewWith(Configuration{SampleRate: 8000, Volume: 0.5, QueueSize: queueSize}, settings, output)
}

func newFakeOutput(blocking bool) *fakeOutput {
	result := &fakeOutput{
		started: make(chan struct{}, 16),
		release: make(chan struct{}),
	}
	if !blocking {
		close(result.release)
	}
	return result
}

type fakeOutput struct {
	mutex   sync.Mutex
	played  [][]byte
	closed  bool
	err     error
	started chan struct{}
	release chan struct{}
}

func (this *fakeOutput) Play(samples []byte) error {
	this.mutex.Lock()
	this.played = append(this.played, samples)
	this.mutex.Unlock()

	this.started <- struct{}{}
	<-this.release
	return this.err
}

func (this *fakeOutput) Close() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.closed = true
	return nil
}

func (this *fakeOutput) recorded() [][]byte {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return append([][]byte{}, this.played...)
}

func TestConfiguration_Validate(t *testing.T) {
	assert.NoError(t, NewConfiguration().Validate())

	conf := NewConfiguration()
	conf.Volume = 1.5
	assert.Error(t, conf.Validate())

	conf = NewConfiguration()
	conf.SampleRate = 0
	assert.Error(t, conf.Validate())

	conf = NewConfiguration()
	conf.QueueSize = 0
	assert.Error(t, conf.Validate())
}
