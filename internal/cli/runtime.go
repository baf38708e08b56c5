package cli

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"bloodcell/config"
	"bloodcell/internal/container"
	"bloodcell/internal/infrastructure/storage"
	"bloodcell/internal/infrastructure/vision"
	"bloodcell/internal/logging"
)

// loadConfig читает конфиг и накладывает явно заданные флаги.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("model") {
		cfg.ModelPath = opts.ModelPath
	}
	if flags.Changed("labels") {
		cfg.LabelsPath = opts.LabelsPath
	}
	if flags.Changed("conf") {
		cfg.Confidence = opts.Confidence
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.LogLevel
	}
	if flags.Changed("addr") {
		addr, _ := flags.GetString("addr")
		cfg.Addr = addr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func detectorOptions(cfg *config.Config) vision.Options {
	return vision.Options{
		ModelPath:     cfg.ModelPath,
		LabelsPath:    cfg.LabelsPath,
		InputSize:     cfg.InputSize,
		Confidence:    cfg.Confidence,
		NMSThreshold:  cfg.NMSThreshold,
		MaxDetections: cfg.MaxDetections,
	}
}

// appRuntime общие для команд зависимости: логгер, модель и сервисы
type appRuntime struct {
	cfg      *config.Config
	log      *logrus.Logger
	detector *vision.YOLODetector
	app      *container.Container
}

func newRuntime(cfg *config.Config, logOut io.Writer) (*appRuntime, error) {
	log := logging.New(cfg.LogLevel, cfg.LogFormat, logOut)

	detector, err := vision.NewYOLODetector(detectorOptions(cfg), log)
	if err != nil {
		return nil, err
	}

	return &appRuntime{
		cfg:      cfg,
		log:      log,
		detector: detector,
		app:      container.New(detector, storage.NewMemorySessionRepository(), cfg.Thresholds, log),
	}, nil
}

func (r *appRuntime) Close() {
	if err := r.detector.Close(); err != nil {
		r.log.WithError(err).Warn("close detector")
	}
}
