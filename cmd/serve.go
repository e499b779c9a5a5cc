package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pulsedeck/host/internal/bridge"
	"github.com/pulsedeck/host/internal/config"
	"github.com/pulsedeck/host/internal/logging"
	"github.com/pulsedeck/host/internal/power"
	"github.com/pulsedeck/host/internal/ui"
	"github.com/pulsedeck/host/internal/vault"
)

var (
	flagListen   string
	flagToken    string
	flagService  string
	flagLogLevel string
)

func init() {
	serveCmd.Flags().StringVar(&flagListen, "listen", "", "Bridge listen address (default "+config.DefaultListen+")")
	serveCmd.Flags().StringVar(&flagToken, "token", "", "Connection token the shell must present (default: none)")
	serveCmd.Flags().StringVar(&flagService, "service", "", "Keychain service name (default "+config.DefaultService+")")
	serveCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the host bridge for the dashboard shell",
	Long: `Starts the local WebSocket bridge the Pulsedeck shell connects to.

The bridge exposes the keep-alive and credential commands. It binds to
loopback only and keeps no state of its own: credentials live in the
OS keychain, and the keep-alive handle dies with the process, so a new
host always starts with sleep behavior untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ui.Banner(version)

		cfg, err := config.Load(flagListen, flagToken, flagService, flagLogLevel)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		log := logging.New(cfg.LogLevel)

		keepAlive := power.NewManager(power.NewBackend(), logging.Component(log, "keepalive"))
		store := vault.New(cfg.Service, logging.Component(log, "vault"))

		srv := bridge.New(bridge.Config{
			Addr:      cfg.Listen,
			Token:     cfg.Token,
			Version:   version,
			KeepAlive: keepAlive,
			Vault:     store,
			Log:       logging.Component(log, "bridge"),
		})

		addr, err := srv.Start()
		if err != nil {
			return err
		}

		fmt.Fprintln(os.Stderr)
		ui.KeyValue("Bridge", "ws://"+addr+"/ws")
		ui.KeyValue("Service", store.Service())
		ui.Separator()
		ui.Info("Waiting for the shell to connect...")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		fmt.Fprintln(os.Stderr)
		ui.Warn("Shutting down...")

		// Release the inhibition before exit so sleep behavior is
		// restored even if the OS would not reap the handle promptly.
		if _, err := keepAlive.Disable(); err != nil {
			log.WithError(err).Warn("failed to release keep-alive")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	},
}
