package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"openclipboard/internal/domain/types"
)

func peersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "peers",
		Short: "List every known peer, online or not (list_known_peers)",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer wire.Close()
			for _, p := range wire.Node.ListKnownPeers() {
				fmt.Printf("%s  %-10s  %-8s  %s\n", p.PeerID, p.DisplayName, statusLabel(p.Status), p.LastAddr)
			}
			return nil
		},
	}
}

func statusLabel(s types.PeerStatus) string {
	if s == types.PeerOnline {
		return "online"
	}
	return "offline"
}
