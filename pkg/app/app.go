package app

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"

	"dario.cat/mergo"
	log "github.com/echocat/slf4g"

	"github.com/blaubaer/cw-keyer/pkg/common"
	"github.com/blaubaer/cw-keyer/pkg/keyer"
	"github.com/blaubaer/cw-keyer/pkg/midi"
	"github.com/blaubaer/cw-keyer/pkg/onair"
	"github.com/blaubaer/cw-keyer/pkg/onair/facade"
	"github.com/blaubaer/cw-keyer/pkg/sidetone"
	"github.com/blaubaer/cw-keyer/pkg/trace"
)

func NewApp() *App {
	return &App{
		config:    NewConfiguration(),
		TraceOut:  os.Stdout,
		openTone:  openSidetone,
		openInput: openMidiSource,
	}
}

// App wires the paddle input, the keyer, its sidetone, the trace and the
// on-air signal together.
type App struct {
	ConfigurationFile string
	TraceOut          io.Writer

	configFromFlags Configuration
	config          Configuration

	keyer     *keyer.Keyer
	tone      tone
	input     input
	onAir     facade.Facade
	indicator *onair.Indicator

	openTone  func(sidetone.Configuration, keyer.Settings) (tone, error)
	openInput func(midi.Configuration) (input, error)
}

type tone interface {
	keyer.Tone
	Dispose() error
}

type input interface {
	Events() <-chan keyer.Event
	Close() error
}

func openSidetone(conf sidetone.Configuration, settings keyer.Settings) (tone, error) {
	result, err := sidetone.New(conf, settings)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func openMidiSource(conf midi.Configuration) (input, error) {
	result := midi.NewSource(conf)
	if err := result.Open(); err != nil {
		return nil, err
	}
	return result, nil
}

func (this *App) SetupConfiguration(using common.FlagHolder) {
	this.configFromFlags.SetupConfiguration(using)

	using.Flag("configuration", "Defines the file from which the configuration should be loaded and/or stored to.").
		Short('c').
		Envar("CK_CONFIGURATION").
		StringVar(&this.ConfigurationFile)
}

func (this *App) configurationFile() string {
	if v := this.ConfigurationFile; v != "" {
		return v
	}
	return defaultConfigurationFile()
}

// resolveConfiguration merges defaults, the configuration file and the
// command line (in this order, later wins).
func (this *App) resolveConfiguration() error {
	if err := this.config.loadFromFile(this.configurationFile(), true); err != nil {
		return err
	}
	if err := mergo.Merge(&this.config, this.configFromFlags, mergo.WithOverride, mergo.WithTransformers(configurationTransformers{})); err != nil {
		return err
	}
	return this.config.Validate()
}

func (this *App) Initialize() (rErr error) {
	success := false
	defer func() {
		if !success {
			if err := this.Dispose(); err != nil && rErr == nil {
				rErr = err
			}
		}
	}()

	if err := this.resolveConfiguration(); err != nil {
		return err
	}
	settings, err := this.config.settings()
	if err != nil {
		return err
	}

	if this.tone, err = this.openTone(this.config.Sidetone, settings); err != nil {
		this.tone = nil
		return err
	}
	if this.keyer, err = keyer.New(settings, this.config.BufferSize, this.tone, trace.New(this.TraceOut)); err != nil {
		return err
	}

	if err := this.onAir.Initialize(&this.config.OnAir, this.alwaysSaveConf); err != nil {
		return err
	}
	if this.onAir.IsActive() {
		this.indicator = onair.NewIndicator(&this.onAir, this.config.OnAir.HangTime, this.config.OnAir.RefreshInterval)
		this.keyer.Listeners = append(this.keyer.Listeners, this.indicator)
	}

	if this.input, err = this.openInput(this.config.Midi); err != nil {
		this.input = nil
		return err
	}

	if err := this.saveConf(false); err != nil {
		return err
	}

	log.With("mode", settings.Mode).
		With("wpm", this.config.Wpm).
		With("frequency", settings.Frequency).
		With("dit", settings.Dit).
		With("dah", settings.Dah).
		With("buffer", this.config.BufferSize).
		With("onAir", this.onAir.GetType()).
		Info("Keyer ready.")

	success = true
	return nil
}

// Run keys until ctx is done or the paddle input is closed.
func (this *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	if v := this.indicator; v != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v.Run(ctx)
		}()
	}

	err := this.keyer.Run(ctx, this.input.Events())
	cancel()
	wg.Wait()

	switch {
	case errors.Is(err, keyer.ErrEventsClosed):
		log.WithError(err).
			Info("Paddle input closed.")
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil
	default:
		return err
	}
}

func (this *App) alwaysSaveConf() error {
	return this.saveConf(true)
}

func (this *App) saveConf(always bool) error {
	if this.config.PreventAutoSave {
		log.Debug("Automatically save of configuration disabled.")
		return nil
	}

	fn := this.configurationFile()
	if !always {
		_, err := os.Stat(fn)
		if os.IsNotExist(err) {
			log.With("file", fn).Info("Configuration absent.")
		} else if err != nil {
			return err
		} else {
			return nil
		}
	}

	if err := this.config.saveToFile(fn); err != nil {
		return err
	}

	log.With("file", fn).Info("Configuration saved.")

	return nil
}

func (this *App) Dispose() (rErr error) {
	keep := func(err error) {
		if err != nil && rErr == nil {
			rErr = err
		}
	}

	if v := this.input; v != nil {
		keep(v.Close())
		this.input = nil
	}
	if v := this.tone; v != nil {
		keep(v.Dispose())
		this.tone = nil
	}
	keep(this.onAir.Dispose())
	this.indicator = nil

	return
}
