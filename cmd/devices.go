package cmd

import (
	"fmt"

	"github.com/FluidXR/questwatch/internal/adb"
	"github.com/FluidXR/questwatch/internal/config"

	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List connected devices once",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		if err := adb.NewServer(cfg.ADBPath).StartServer(cmd.Context()); err != nil {
			return err
		}
		devices, err := adb.NewClient(cfg.ServerAddr).Devices(cmd.Context())
		if err != nil {
			return err
		}

		if len(devices) == 0 {
			fmt.Println("No devices connected.")
			return nil
		}

		for _, d := range devices {
			printDevice(cfg, d)
		}
		return nil
	},
}

// printDevice prints one device line with its nickname and state.
func printDevice(cfg *config.Config, d adb.Device) {
	nickname := ""
	if n := cfg.Nickname(d.Serial); n != "" {
		nickname = fmt.Sprintf(" (%s)", n)
	}

	status := d.State.String()
	if !d.IsOnline() {
		status = "OFFLINE: " + status
	}

	fmt.Printf("%-20s %s  [%s] [%s]%s\n",
		d.Serial, d.Model, d.ConnType, status, nickname)
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}
