package cmd

import (
	"fmt"
	"os"

	"github.com/FluidXR/questwatch/internal/adb"
	"github.com/FluidXR/questwatch/internal/config"

	"github.com/spf13/cobra"
)

const defaultWiFiPort = 5555

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect to every device with a configured WiFi IP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := adb.NewServer(cfg.ADBPath).StartServer(cmd.Context()); err != nil {
			return err
		}
		client := adb.NewClient(cfg.ServerAddr)

		attempted := 0
		for serial, dc := range cfg.Devices {
			if dc.WiFiIP == "" {
				continue
			}
			attempted++
			port := dc.WiFiPort
			if port == 0 {
				port = defaultWiFiPort
			}
			label := serial
			if dc.Nickname != "" {
				label = fmt.Sprintf("%s (%s)", serial, dc.Nickname)
			}
			if err := client.Connect(cmd.Context(), dc.WiFiIP, port); err != nil {
				fmt.Fprintf(os.Stderr, "  %s: %v\n", label, err)
				continue
			}
			fmt.Printf("  %s: connected to %s:%d\n", label, dc.WiFiIP, port)
		}
		if attempted == 0 {
			fmt.Println("No WiFi devices configured — use 'questwatch config set-wifi' first.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)
}
