package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"baktgo/internal/app"
	"baktgo/internal/engine"
	"baktgo/internal/report"
	"baktgo/internal/service"
	"baktgo/internal/strategy"
)

func main() {
	tapePath := flag.String("f", "", "execution tape CSV file")
	configPath := flag.String("c", "config.yaml", "config YAML file")
	flag.Parse()

	if err := run(*tapePath, *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "bakt: %v\n", err)
		os.Exit(1)
	}
}

func run(tapePath, configPath string) error {
	if tapePath == "" {
		return fmt.Errorf("a tape file is required (-f)")
	}
	// Fail on missing inputs before anything else runs.
	for _, p := range []string{tapePath, configPath} {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("file not found: %s", p)
		}
	}

	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(configPath, tapePath); err != nil {
		return err
	}
	cfg := bootstrap.Config

	strat, err := strategy.New(cfg.Backtest.Strategy, strategy.Params{
		OrderDelaySec:  cfg.User.OrderDelaySec,
		OrderExpireSec: cfg.User.OrderExpireSec,
		OrderSize:      cfg.User.OrderSize,
		PosLimitSize:   cfg.User.PosLimitSize,
		Extra:          cfg.User.Params,
	}, bootstrap.Ticks)
	if err != nil {
		return err
	}

	bt, err := engine.New(engine.Params{
		TimeframeSec: cfg.Backtest.TimeframeSec,
		NumOfTrade:   cfg.Backtest.NumOfTrade,
	}, strat, slog.Default())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bt.Run(ctx, bootstrap.Ticks); err != nil {
		return err
	}

	orderStats := bt.Orders.Stats()
	tradeStats := bt.Trades.Stats()

	if err := report.Write(os.Stdout, orderStats, tradeStats); err != nil {
		return err
	}

	if bootstrap.Storage != nil {
		runID, err := bootstrap.Storage.SaveRun(
			cfg.Backtest.Strategy,
			cfg.Backtest.TimeframeSec,
			cfg.Backtest.NumOfTrade,
			bt.Orders.Get(service.OrderFilter{}),
			bt.Trades.List(),
			bt.History.List(),
			tradeStats,
		)
		if err != nil {
			return err
		}
		slog.Info("run persisted", slog.String("run_id", runID))
	}
	return nil
}
