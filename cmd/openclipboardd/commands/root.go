// Package commands implements the openclipboardd CLI: start a node, drive
// pairing, and inspect/recall clipboard history.
package commands

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"openclipboard/internal/app"
)

var (
	home           string
	deviceName     string
	listenPort     int
	pollInterval   time.Duration
	historyLimit   int
	historyPersist bool

	wire *app.Wire
)

// Execute builds and runs the root cobra command.
func Execute() error {
	root := &cobra.Command{
		Use:   "openclipboardd",
		Short: "Local-first clipboard sync daemon and pairing tool",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".openclipboard")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}

			cfg := app.Config{
				DataDir:        home,
				ListenPort:     listenPort,
				DeviceName:     deviceName,
				PollInterval:   pollInterval,
				HistoryLimit:   historyLimit,
				HistoryPersist: historyPersist,
			}
			w, err := app.Build(cfg)
			if err != nil {
				return err
			}
			wire = w
			return nil
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "config dir (default ~/.openclipboard)")
	root.PersistentFlags().StringVar(&deviceName, "name", "", "device display name advertised to peers")
	root.PersistentFlags().IntVar(&listenPort, "port", 0, "TCP listen port (0 = default)")
	root.PersistentFlags().DurationVar(&pollInterval, "poll", 0, "clipboard poll interval (0 = default 250ms)")
	root.PersistentFlags().IntVar(&historyLimit, "history-limit", 0, "clipboard history size (0 = default 50)")
	root.PersistentFlags().BoolVar(&historyPersist, "history-persist", false, "persist history to a bbolt-backed file instead of memory")

	root.AddCommand(startCmd(), pairCmd(), historyCmd(), recallCmd(), peersCmd())
	return root.Execute()
}
