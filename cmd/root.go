package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pulsedeck",
	Short: "Pulsedeck Host — native OS services for the trading dashboard shell",
	Long: `Pulsedeck Host runs beside the Pulsedeck dashboard shell and provides
the native integrations the webview cannot do itself: keeping the
machine awake while a trading session runs, and storing exchange API
keys in the operating system's secure credential store.

The shell connects over a local WebSocket and invokes host commands
synchronously; results come back as plain strings for display.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
