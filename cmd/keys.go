package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pulsedeck/host/internal/config"
	"github.com/pulsedeck/host/internal/logging"
	"github.com/pulsedeck/host/internal/vault"
)

var flagKeyService string

func init() {
	keyCmd.PersistentFlags().StringVar(&flagKeyService, "service", "", "Keychain service name (default "+config.DefaultService+")")
	keyCmd.AddCommand(keySetCmd, keyGetCmd, keyDeleteCmd)
	rootCmd.AddCommand(keyCmd)
}

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage credentials in the OS keychain",
	Long: `Reads and writes the same keychain entries the dashboard shell uses,
so API keys can be provisioned or rotated from a terminal without the
GUI running.`,
}

func cliVault() (*vault.Vault, error) {
	cfg, err := config.Load("", "", flagKeyService, "")
	if err != nil {
		return nil, err
	}
	log := logging.New("warn")
	return vault.New(cfg.Service, logging.Component(log, "vault")), nil
}

var keySetCmd = &cobra.Command{
	Use:   "set <name> [value]",
	Short: "Store a credential",
	Long:  `Stores a secret under the given key name, overwriting any prior value. When the value is omitted it is read from the terminal without echo.`,
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := cliVault()
		if err != nil {
			return err
		}

		var value string
		if len(args) == 2 {
			value = args[1]
		} else {
			fmt.Fprintf(os.Stderr, "Value for '%s': ", args[0])
			b, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Fprintln(os.Stderr)
			if err != nil {
				return fmt.Errorf("failed to read value: %w", err)
			}
			value = strings.TrimSpace(string(b))
		}

		msg, err := v.Store(args[0], value)
		if err != nil {
			return err
		}
		fmt.Println(msg)
		return nil
	},
}

var keyGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Print a stored credential",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := cliVault()
		if err != nil {
			return err
		}

		secret, err := v.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Println(secret)
		return nil
	},
}

var keyDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a stored credential",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := cliVault()
		if err != nil {
			return err
		}

		msg, err := v.Delete(args[0])
		if err != nil {
			return err
		}
		fmt.Println(msg)
		return nil
	},
}
