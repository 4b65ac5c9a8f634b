package app

import (
	"fmt"
	"log/slog"

	"baktgo/internal/domain"
	"baktgo/internal/infra"
	"baktgo/internal/infra/storage"
)

// Bootstrap wires config, logging, the tape and result storage before
// the simulation core runs. Any failure here aborts before the first
// window is ever processed.
type Bootstrap struct {
	Config  *infra.Config
	Storage *storage.Storage
	Ticks   []domain.Tick
}

func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize loads the config, installs the logger, opens the results
// database and reads the tape.
func (b *Bootstrap) Initialize(configPath, tapePath string) error {
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	b.Config = cfg

	slog.SetDefault(infra.NewLogger(cfg))

	if cfg.Report.DBPath != "" {
		store, err := storage.NewStorage(cfg.Report.DBPath)
		if err != nil {
			return err
		}
		b.Storage = store
		slog.Info("results database ready", slog.String("path", cfg.Report.DBPath))
	}

	ticks, err := infra.LoadTape(tapePath)
	if err != nil {
		return err
	}
	b.Ticks = ticks
	slog.Info("tape loaded",
		slog.String("path", tapePath),
		slog.Int("ticks", len(ticks)),
		slog.Time("since", ticks[0].ExecDate),
		slog.Time("until", ticks[len(ticks)-1].ExecDate))
	return nil
}
