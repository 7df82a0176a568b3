package app

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blaubaer/cw-keyer/pkg/keyer"
	"github.com/blaubaer/cw-keyer/pkg/onair"
)

func TestConfiguration_defaults(t *testing.T) {
	actual := NewConfiguration()

	assert.Equal(t, 523.25, actual.Frequency)
	assert.Equal(t, uint(20), actual.Wpm)
	assert.Equal(t, keyer.ModeUltimatic, actual.Mode)
	assert.Equal(t, uint32(1), actual.BufferSize)
	assert.Equal(t, "MidiStomp", actual.Midi.Port.String())
	assert.Equal(t, uint8(1), actual.Midi.DitNote)
	assert.Equal(t, uint8(2), actual.Midi.DahNote)
	assert.Equal(t, uint16(32), actual.Midi.QueueSize)
	assert.Equal(t, uint32(44100), actual.Sidetone.SampleRate)
	assert.Equal(t, onair.TypeNone, actual.OnAir.Type)
	assert.NoError(t, actual.Validate())
}

func TestConfiguration_saveAndLoad(t *testing.T) {
	given := NewConfiguration()
	given.Mode = keyer.ModeIambicA
	given.Wpm = 28
	given.OnAir.Type = onair.TypeHue
	given.OnAir.HangTime = 3 * time.Second
	fn := filepath.Join(t.TempDir(), "sub", "configuration.yml")

	require.NoError(t, given.saveToFile(fn))

	actual := NewConfiguration()
	require.NoError(t, actual.loadFromFile(fn, false))
	assert.Equal(t, given.Mode, actual.Mode)
	assert.Equal(t, given.Wpm, actual.Wpm)
	assert.Equal(t, given.OnAir.Type, actual.OnAir.Type)
	assert.Equal(t, given.OnAir.HangTime, actual.OnAir.HangTime)
	assert.Equal(t, given.Midi.Port.String(), actual.Midi.Port.String())
}

func TestConfiguration_loadFrom_unknownField(t *testing.T) {
	actual := NewConfiguration()

	assert.Error(t, actual.loadFrom(strings.NewReader("speed: 20\n")))
}

func TestConfiguration_loadFrom_empty(t *testing.T) {
	actual := NewConfiguration()

	require.NoError(t, actual.loadFrom(bytes.NewReader(nil)))
	assert.Equal(t, uint(20), actual.Wpm)
}

func TestConfiguration_loadFromFile_missing(t *testing.T) {
	actual := NewConfiguration()
	fn := filepath.Join(t.TempDir(), "absent.yml")

	assert.NoError(t, actual.loadFromFile(fn, true))
	assert.Error(t, actual.loadFromFile(fn, false))
}

func TestConfiguration_Validate(t *testing.T) {
	cases := map[string]func(*Configuration){
		"wpm":       func(c *Configuration) { c.Wpm = 0 },
		"frequency": func(c *Configuration) { c.Frequency = -1 },
		"mode":      func(c *Configuration) { c.Mode = keyer.Mode(0) },
		"buffer":    func(c *Configuration) { c.BufferSize = 0 },
		"midi":      func(c *Configuration) { c.Midi.DahNote = c.Midi.DitNote },
		"sidetone":  func(c *Configuration) { c.Sidetone.Volume = 2 },
	}
	for name, modify := range cases {
		t.Run(name, func(t *testing.T) {
			actual := NewConfiguration()
			modify(&actual)
			assert.Error(t, actual.Validate())
		})
	}
}

func newParsedApp(t *testing.T, fileContent string, args ...string) *App {
	instance := NewApp()
	instance.ConfigurationFile = filepath.Join(t.TempDir(), "configuration.yml")
	if fileContent != "" {
		require.NoError(t, os.WriteFile(instance.ConfigurationFile, []byte(fileContent), 0600))
	}

	cmd := kingpin.New("test", "")
	instance.SetupConfiguration(cmd)
	_, err := cmd.Parse(append([]string{"--configuration", instance.ConfigurationFile}, args...))
	require.NoError(t, err)
	return instance
}

func TestApp_resolveConfiguration_fileOnly(t *testing.T) {
	instance := newParsedApp(t, "wpm: 25\nmode: iambic-a\nmidi:\n  port: Keyer\n")

	require.NoError(t, instance.resolveConfiguration())

	assert.Equal(t, uint(25), instance.config.Wpm)
	assert.Equal(t, keyer.ModeIambicA, instance.config.Mode)
	assert.Equal(t, "Keyer", instance.config.Midi.Port.String())
	assert.Equal(t, 523.25, instance.config.Frequency)
}

func TestApp_resolveConfiguration_flagsWin(t *testing.T) {
	instance := newParsedApp(t, "wpm: 25\nmode: iambic-a\nmidi:\n  port: Keyer\n",
		"-w", "30", "-m", "u", "--midi.port", "Paddle", "-f", "700")

	require.NoError(t, instance.resolveConfiguration())

	assert.Equal(t, uint(30), instance.config.Wpm)
	assert.Equal(t, keyer.ModeUltimatic, instance.config.Mode)
	assert.Equal(t, "Paddle", instance.config.Midi.Port.String())
	assert.Equal(t, 700.0, instance.config.Frequency)
}

func TestApp_resolveConfiguration_iambicAOverridesSavedDefault(t *testing.T) {
	instance := newParsedApp(t, "mode: ultimatic\n", "-m", "a")

	require.NoError(t, instance.resolveConfiguration())

	assert.Equal(t, keyer.ModeIambicA, instance.config.Mode)
}

func TestApp_resolveConfiguration_zeroWpm(t *testing.T) {
	instance := newParsedApp(t, "", "-w", "0")

	require.NoError(t, instance.resolveConfiguration(), "an unset zero does not override the default")
	assert.Equal(t, uint(20), instance.config.Wpm)

	instance = newParsedApp(t, "wpm: 0\n")
	assert.ErrorIs(t, instance.resolveConfiguration(), keyer.ErrIllegalWpm)
}

func TestApp_resolveConfiguration_illegalMode(t *testing.T) {
	instance := NewApp()
	cmd := kingpin.New("test", "")
	instance.SetupConfiguration(cmd)

	_, err := cmd.Parse([]string{"-m", "b"})
	assert.Error(t, err)
}
