package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	log "github.com/echocat/slf4g"
	"github.com/echocat/slf4g/native"
	"github.com/echocat/slf4g/native/consumer"
	"github.com/echocat/slf4g/native/facade/value"
	"github.com/echocat/slf4g/native/formatter"

	"github.com/blaubaer/cw-keyer/pkg/app"
)

var version = "development"

func main() {
	// Trace symbols own stdout.
	consumer.Default = consumer.NewWriter(os.Stderr)

	lv := value.NewProvider(native.DefaultProvider)
	lv.Consumer.Formatter.Codec = value.MappingFormatterCodec{
		"text": formatter.NewText(),
		"json": formatter.NewJson(),
	}

	a := app.NewApp()

	cmd := kingpin.New("cw-keyer", "Iambic CW keyer for MIDI paddles with sidetone and on-air signal.").
		Version(version).
		Action(func(*kingpin.ParseContext) error {
			if err := a.Initialize(); err != nil {
				return err
			}
			defer func() {
				if err := a.Dispose(); err != nil {
					log.WithError(err).
						Warn("Cannot dispose the keyer cleanly.")
				}
			}()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			err := a.Run(ctx)
			if ctx.Err() != nil {
				log.Info("Terminated. Going down...")
			}
			return err
		})
	a.SetupConfiguration(cmd)

	cmd.Flag("log.level", "Minimum level of log messages.").
		SetValue(lv.Level)
	cmd.Flag("log.format", "Format of log messages. Possible values: text, json").
		Default("text").
		SetValue(lv.Consumer.Formatter)
	cmd.Flag("log.color", "When log messages are colored. Possible values: auto, always, never").
		Default("auto").
		SetValue(lv.Consumer.Formatter.ColorMode)

	kingpin.MustParse(cmd.Parse(os.Args[1:]))
}
