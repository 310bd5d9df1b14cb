package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	var limit int
	var peer string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent clipboard history, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer wire.Close()
			entries := wire.Node.GetClipboardHistory(wire.Hist, limit)
			if peer != "" {
				entries = wire.Node.GetClipboardHistoryForPeer(wire.Hist, peer, limit)
			}
			for _, e := range entries {
				ts := time.UnixMilli(e.TimestampMS).Format(time.RFC3339)
				fmt.Printf("%s  %-10s  %s  %q\n", e.ID, e.SourcePeer, ts, e.Content)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries to show")
	cmd.Flags().StringVar(&peer, "peer", "", "filter to a single source peer display name")
	return cmd
}
