package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/vehiclepass/core/status"
	"github.com/kilianp07/vehiclepass/core/units"
	"github.com/kilianp07/vehiclepass/vehicle"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Fetch and print the vehicle status",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withVehicle(func(ctx context.Context, v *vehicle.Vehicle) error {
			snap, err := v.Refresh(ctx)
			if err != nil {
				return err
			}
			printStatus(snap)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func printStatus(s *status.Snapshot) {
	printBool("locked", s.IsLocked)
	printBool("running", s.IsRunning)
	printBool("remotely started", s.IsRemotelyStarted)
	printQuantity("outside temp", s.OutsideTemp)
	printQuantity("coolant temp", s.CoolantTemp)
	printQuantity("odometer", s.Odometer)
	printQuantity("fuel level", s.FuelLevel)
	printQuantity("fuel range", s.FuelRange)
	printQuantity("battery charge", s.BatteryCharge)
	printQuantity("battery voltage", s.BatteryVoltage)
	printQuantity("shutoff in", s.ShutoffCountdown)
	if pressures, err := s.TirePressures(); err == nil {
		for wheel, p := range pressures {
			fmt.Printf("%-18s %s\n", "tire "+wheel, p)
		}
	}
}

func printBool(label string, read func() (bool, error)) {
	v, err := read()
	if err != nil {
		return
	}
	fmt.Printf("%-18s %t\n", label, v)
}

func printQuantity(label string, read func() (units.Quantity, error)) {
	q, err := read()
	if err != nil {
		return
	}
	fmt.Printf("%-18s %s\n", label, q)
}
