package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"regexp"
	"runtime"
	"syscall"

	"github.com/mdouchement/logger"
	"github.com/spf13/cobra"
	"github.com/thoukydides/fantasiad"
	showcodes "github.com/thoukydides/fantasiad/cmd/fantasiad/show_codes"
	showwaveform "github.com/thoukydides/fantasiad/cmd/fantasiad/show_waveform"
	"github.com/thoukydides/fantasiad/environment"
	"github.com/thoukydides/fantasiad/pilight"
	"github.com/thoukydides/fantasiad/serialtx"
)

var (
	version  = "dev"
	revision = "none"
	date     = "unknown"

	cpath string
	dummy bool
)

func main() {
	cmd := &cobra.Command{
		Use:     "fantasiad",
		Short:   "A controller for Fantasia ceiling fans through an OOK transmitter",
		Version: fmt.Sprintf("%s - build %.7s @ %s - %s", version, revision, date, runtime.Version()),
		Args:    cobra.NoArgs,
		RunE:    daemon,
	}
	cmd.Flags().StringVarP(&cpath, "config", "c", environment.GetEnvPath(environment.KeyConfig, "/etc/fantasiad/fantasiad.yml"), "Configfile path")
	cmd.Flags().BoolVarP(&dummy, "dummy", "", false, "Start fantasiad with a dummy transmitter")
	cmd.AddCommand(showcodes.Command())
	cmd.AddCommand(showwaveform.Command())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Version for fantasiad",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(cmd.Version)
		},
	})

	if err := cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func daemon(_ *cobra.Command, args []string) error {
	cfg, err := fantasiad.Load(cpath)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	h := logger.NewSlogTextHandler(os.Stdout, &logger.SlogTextOption{
		Level:            level,
		ForceColors:      true,
		ForceFormatting:  true,
		PrefixRE:         regexp.MustCompile(`^(\[.*?\])\s`),
		DisableTimestamp: true, // Provided by journalctl
	})
	log := logger.WrapSlogHandler(h)
	ctx := logger.WithLogger(context.Background(), log)

	log.Infof("fantasiad version %s", version)

	transmitters, closer, err := setupTransmitters(cfg, log)
	if err != nil {
		return err
	}
	defer closer()

	devices := make([]*fantasiad.Device, 0, len(cfg.Fans))
	for _, id := range cfg.FanIDs() {
		fan := cfg.Fans[id]
		devices = append(devices, fantasiad.NewDevice(ctx, *fan, transmitters(fan), cfg.UpdateDelay.Duration))
	}

	ctx, cancel := context.WithCancel(ctx)

	controller, err := fantasiad.New(cfg, devices...)
	if err != nil {
		cancel()
		return err
	}
	stopped := controller.Launch(ctx)

	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-sctx.Done()
	cancel()
	<-stopped

	log.Info("Gracefully shutdown")
	return nil
}

// setupTransmitters returns the transmitter to use for each fan.
func setupTransmitters(cfg fantasiad.Config, log logger.Logger) (func(*fantasiad.Fan) fantasiad.Transmitter, func() error, error) {
	noop := func() error { return nil }

	if dummy {
		tx := fantasiad.NewDummyTransmitter()
		tx.SetLogger(log)
		return func(*fantasiad.Fan) fantasiad.Transmitter { return tx }, noop, nil
	}

	switch cfg.Transmitter {
	case fantasiad.TransmitterSerial:
		var tx *serialtx.Transmitter
		var err error
		if cfg.Serial.Port == "" {
			tx, err = serialtx.OpenAuto(cfg.Serial.VID, cfg.Serial.PID)
		} else {
			tx, err = serialtx.Open(cfg.Serial.Port)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("serialtx: %w", err)
		}
		if cfg.Debug {
			tx.SetLogger(log)
		}

		log.Infof("Transmitter port `%s`", tx.Port())
		if v, err := tx.Version(); err != nil {
			log.WithError(err).Warn("Could not read transmitter version")
		} else {
			log.Infof("Transmitter firmware %s", v)
		}

		return func(*fantasiad.Fan) fantasiad.Transmitter { return tx }, tx.Close, nil
	default:
		clients := map[string]*pilight.Client{}
		return func(fan *fantasiad.Fan) fantasiad.Transmitter {
			c := pilight.New(fan.Host, fan.Port)
			if existing, ok := clients[c.Addr()]; ok {
				return existing
			}

			c.SetLogger(log)
			clients[c.Addr()] = c
			return c
		}, noop, nil
	}
}
