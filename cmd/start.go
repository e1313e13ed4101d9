package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kilianp07/vehiclepass/infra/logger"
	"github.com/kilianp07/vehiclepass/vehicle"
)

var extendShutoff bool

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Remote start the engine",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withVehicle(func(ctx context.Context, v *vehicle.Vehicle) error {
			opts := commandOptions()
			if extendShutoff {
				opts = append(opts, vehicle.ExtendShutoff())
			}
			snap, err := v.Start(ctx, opts...)
			if err != nil {
				return err
			}
			log := logger.New("cli")
			reportOutcome(log, "remote start", snap)
			if snap != nil {
				if cd, err := snap.ShutoffCountdown(); err == nil {
					log.Infof("engine shuts off in %s", cd)
				}
			}
			return nil
		})
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Cancel a remote start",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withVehicle(func(ctx context.Context, v *vehicle.Vehicle) error {
			snap, err := v.CancelStart(ctx, commandOptions()...)
			if err != nil {
				return err
			}
			reportOutcome(logger.New("cli"), "cancel start", snap)
			return nil
		})
	},
}

func init() {
	startCmd.Flags().BoolVar(&extendShutoff, "extend", false, "request a second remote start to extend the shutoff time")
	rootCmd.AddCommand(startCmd, stopCmd)
}
