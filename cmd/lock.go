package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kilianp07/vehiclepass/infra/logger"
	"github.com/kilianp07/vehiclepass/vehicle"
)

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Lock the vehicle",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withVehicle(func(ctx context.Context, v *vehicle.Vehicle) error {
			snap, err := v.Lock(ctx, commandOptions()...)
			if err != nil {
				return err
			}
			reportOutcome(logger.New("cli"), "lock", snap)
			return nil
		})
	},
}

var unlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Unlock the vehicle",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withVehicle(func(ctx context.Context, v *vehicle.Vehicle) error {
			snap, err := v.Unlock(ctx, commandOptions()...)
			if err != nil {
				return err
			}
			reportOutcome(logger.New("cli"), "unlock", snap)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(lockCmd, unlockCmd)
}
