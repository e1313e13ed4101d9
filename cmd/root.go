// Package cmd implements the vehiclepass command line interface.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/vehiclepass/config"
	"github.com/kilianp07/vehiclepass/core/status"
	"github.com/kilianp07/vehiclepass/infra/logger"
	"github.com/kilianp07/vehiclepass/infra/metrics"
	"github.com/kilianp07/vehiclepass/vehicle"
)

var (
	cfgPath  string
	noVerify bool
	cmdWait  time.Duration
	rootCmd  = &cobra.Command{
		Use:          "vehiclepass",
		Short:        "Remote vehicle status and commands",
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (defaults to environment-only configuration)")
	rootCmd.PersistentFlags().BoolVar(&noVerify, "no-verify", false, "send commands without waiting for confirmation")
	rootCmd.PersistentFlags().DurationVar(&cmdWait, "timeout", 0, "override the verification timeout")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func loadConfig() (*config.Config, error) {
	if cfgPath != "" {
		return config.Load(cfgPath)
	}
	return config.LoadEnv()
}

// withVehicle loads the configuration, connects and runs fn with session
// teardown on every exit path.
func withVehicle(fn func(ctx context.Context, v *vehicle.Vehicle) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Credentials.Validate(); err != nil {
		return fmt.Errorf("credentials: %w", err)
	}
	sink, err := metrics.NewSink(cfg.Metrics)
	if err != nil {
		return fmt.Errorf("metrics sink: %w", err)
	}
	return vehicle.With(ctx, cfg, func(v *vehicle.Vehicle) error {
		return fn(ctx, v)
	}, vehicle.WithMetricsSink(sink), vehicle.WithLogger(logger.New("vehicle")))
}

func commandOptions() []vehicle.CommandOption {
	var opts []vehicle.CommandOption
	if noVerify {
		opts = append(opts, vehicle.NoVerify())
	}
	if cmdWait > 0 {
		opts = append(opts, vehicle.WithTimeout(cmdWait))
	}
	return opts
}

func reportOutcome(log logger.Logger, action string, snap *status.Snapshot) {
	if snap == nil {
		log.Infof("%s requested, confirmation skipped", action)
		return
	}
	log.Infof("%s confirmed", action)
}
