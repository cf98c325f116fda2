package cmd

import (
	"fmt"
	"net"
	"strconv"

	"github.com/FluidXR/questwatch/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage questwatch configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		fmt.Printf("Config file: %s\n\n", config.ConfigPath())
		fmt.Printf("ADB binary: %s\n", cfg.ADBPath)
		fmt.Printf("ADB server: %s\n", cfg.ServerAddr)
		fmt.Printf("Tracking request: %s\n", cfg.TrackRequest())
		fmt.Printf("History: %t\n", cfg.History)
		if cfg.NATS.URL != "" {
			fmt.Printf("NATS: %s (subjects %s.*)\n", cfg.NATS.URL, cfg.NATS.SubjectPrefix)
		} else {
			fmt.Println("NATS: (disabled)")
		}
		fmt.Printf("\nDevices:\n")
		if len(cfg.Devices) == 0 {
			fmt.Println("  (none configured)")
		}
		for serial, dc := range cfg.Devices {
			fmt.Printf("  - %s", serial)
			if dc.Nickname != "" {
				fmt.Printf(" (%s)", dc.Nickname)
			}
			if dc.WiFiIP != "" {
				fmt.Printf(" [wifi: %s]", dc.WiFiIP)
			}
			fmt.Println()
		}
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.DefaultConfig()
		if err := config.Save(cfg); err != nil {
			return err
		}
		fmt.Printf("Config created at %s\n", config.ConfigPath())
		return nil
	},
}

var configNicknameCmd = &cobra.Command{
	Use:   "nickname <serial> <name>",
	Short: "Set a nickname for a device",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		serial := args[0]
		name := args[1]

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		dc := cfg.Devices[serial]
		dc.Nickname = name
		cfg.Devices[serial] = dc
		if err := config.Save(cfg); err != nil {
			return err
		}
		fmt.Printf("Set nickname for %s: %s\n", serial, name)
		return nil
	},
}

var configSetWiFiCmd = &cobra.Command{
	Use:   "set-wifi <serial> <ip[:port]>",
	Short: "Set WiFi address for a device (for wireless ADB)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		serial := args[0]
		ip, port := args[1], 0
		if host, p, err := net.SplitHostPort(args[1]); err == nil {
			n, err := strconv.Atoi(p)
			if err != nil {
				return fmt.Errorf("invalid port %q", p)
			}
			ip, port = host, n
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		dc := cfg.Devices[serial]
		dc.WiFiIP = ip
		dc.WiFiPort = port
		cfg.Devices[serial] = dc
		if err := config.Save(cfg); err != nil {
			return err
		}
		fmt.Printf("Set WiFi address for %s: %s\n", serial, args[1])
		return nil
	},
}

var configNATSCmd = &cobra.Command{
	Use:   "set-nats <url> [subject-prefix]",
	Short: "Publish device transitions to a NATS server (empty url disables)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		cfg.NATS.URL = args[0]
		if len(args) == 2 {
			cfg.NATS.SubjectPrefix = args[1]
		}
		if err := config.Save(cfg); err != nil {
			return err
		}
		if cfg.NATS.URL == "" {
			fmt.Println("NATS publishing disabled")
			return nil
		}
		fmt.Printf("Publishing to %s as %s.*\n", cfg.NATS.URL, cfg.NATS.SubjectPrefix)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configNicknameCmd)
	configCmd.AddCommand(configSetWiFiCmd)
	configCmd.AddCommand(configNATSCmd)
	rootCmd.AddCommand(configCmd)
}
