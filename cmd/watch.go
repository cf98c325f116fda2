package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/FluidXR/questwatch/internal/adb"
	"github.com/FluidXR/questwatch/internal/config"
	"github.com/FluidXR/questwatch/internal/history"
	"github.com/FluidXR/questwatch/internal/logger"
	"github.com/FluidXR/questwatch/internal/monitor"
	"github.com/FluidXR/questwatch/internal/notify"

	"github.com/spf13/cobra"
)

var (
	watchNoHistory bool
	watchNATSURL   string
)

var watchCmd = &cobra.Command{
	Use:               "watch",
	Short:             "Follow device connects, disconnects and state changes",
	PersistentPreRunE: requireDeps(),
	Long: `Keeps a tracking connection to the ADB server open and prints every
device transition until interrupted. If the ADB server dies it is restarted
and tracking resumes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		log := logger.WithComponent("monitor")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		server := adb.NewServer(cfg.ADBPath)
		if err := server.StartServer(ctx); err != nil {
			return err
		}
		socket, err := adb.Dial(ctx, cfg.ServerAddr)
		if err != nil {
			return err
		}

		mon, err := monitor.New(socket, server,
			monitor.WithLogger(log),
			monitor.WithTrackRequest(cfg.TrackRequest()),
		)
		if err != nil {
			socket.Close()
			return err
		}
		defer mon.Close()

		mon.Subscribe(&printer{cfg: cfg})

		if cfg.History && !watchNoHistory {
			db, err := history.Open(config.ConfigDir(), logger.WithComponent("history"))
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			// the monitor must stop before its subscribers are released
			defer func() {
				mon.Close()
				db.Close()
			}()
			mon.Subscribe(db)
		}

		natsURL := cfg.NATS.URL
		if watchNATSURL != "" {
			natsURL = watchNATSURL
		}
		if natsURL != "" {
			nc, err := notify.Connect(natsURL, logger.WithComponent("nats"))
			if err != nil {
				return err
			}
			defer func() {
				mon.Close()
				nc.Drain()
			}()
			mon.Subscribe(notify.NewPublisher(nc, cfg.NATS.SubjectPrefix, logger.WithComponent("nats")))
		}

		fmt.Printf("Watching devices on %s (Ctrl+C to stop)...\n", cfg.ServerAddr)
		if err := mon.Start(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("start monitor: %w", err)
		}

		err = mon.Wait(ctx)
		if errors.Is(err, context.Canceled) {
			fmt.Println("\nStopped.")
			return nil
		}
		return err
	},
}

// printer writes device transitions to stdout.
type printer struct {
	cfg *config.Config
}

func (p *printer) label(d adb.Device) string {
	if n := p.cfg.Nickname(d.Serial); n != "" {
		return fmt.Sprintf("%s (%s)", d.Serial, n)
	}
	return d.Serial
}

func (p *printer) DeviceConnected(e monitor.DeviceEvent) {
	fmt.Printf("+ %s %s [%s]\n", p.label(e.Device), e.Device.Model, e.Device.State)
}

func (p *printer) DeviceDisconnected(e monitor.DeviceEvent) {
	fmt.Printf("- %s\n", p.label(e.Device))
}

func (p *printer) DeviceChanged(e monitor.ChangeEvent) {
	fmt.Printf("~ %s %s -> %s\n", p.label(e.Device), e.OldState, e.NewState)
}

func (p *printer) DeviceNotified(monitor.NotifyEvent) {}

func init() {
	watchCmd.Flags().BoolVar(&watchNoHistory, "no-history", false, "Do not record transitions")
	watchCmd.Flags().StringVar(&watchNATSURL, "nats", "", "Publish transitions to this NATS server")
	rootCmd.AddCommand(watchCmd)
}
