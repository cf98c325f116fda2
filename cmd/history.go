package cmd

import (
	"fmt"
	"time"

	"github.com/FluidXR/questwatch/internal/config"
	"github.com/FluidXR/questwatch/internal/history"
	"github.com/FluidXR/questwatch/internal/logger"

	"github.com/spf13/cobra"
)

var (
	historyLimit   int
	historyDevices bool
)

var historyCmd = &cobra.Command{
	Use:   "history [serial]",
	Short: "Show recorded device transitions",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		db, err := history.Open(config.ConfigDir(), logger.WithComponent("history"))
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer db.Close()

		if historyDevices {
			devices, err := db.KnownDevices()
			if err != nil {
				return err
			}
			if len(devices) == 0 {
				fmt.Println("No devices recorded yet.")
			}
			for _, d := range devices {
				conn := "gone"
				if d.Connected {
					conn = "present"
				}
				nickname := ""
				if n := cfg.Nickname(d.Serial); n != "" {
					nickname = fmt.Sprintf(" (%s)", n)
				}
				fmt.Printf("%-20s %-12s %-8s last seen %s%s\n",
					d.Serial, d.State, conn, d.LastSeen.Format(time.DateTime), nickname)
			}
			return nil
		}

		serial := ""
		if len(args) > 0 {
			serial = args[0]
		}
		transitions, err := db.ListTransitions(serial, historyLimit)
		if err != nil {
			return err
		}
		if len(transitions) == 0 {
			fmt.Println("No transitions recorded yet.")
			return nil
		}
		for _, t := range transitions {
			detail := t.NewState
			if t.OldState != "" {
				detail = t.OldState + " -> " + t.NewState
			}
			fmt.Printf("%s  %-12s %-20s %s\n",
				t.ObservedAt.Format(time.DateTime), t.Kind, t.Serial, detail)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 50, "Number of transitions to show (0 for all)")
	historyCmd.Flags().BoolVar(&historyDevices, "devices", false, "List every device seen instead of transitions")
	rootCmd.AddCommand(historyCmd)
}
