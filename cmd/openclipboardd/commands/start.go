package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

type stderrSink struct{}

func (stderrSink) OnClipboardText(peerID, text string, tsMS int64) {
	fmt.Printf("[clipboard] %s -> %q\n", peerID, text)
}
func (stderrSink) OnFileReceived(peerID, name, dataPath string) {
	fmt.Printf("[file] %s sent %s (%s)\n", peerID, name, dataPath)
}
func (stderrSink) OnPeerConnected(peerID string)    { fmt.Printf("[peer] connected: %s\n", peerID) }
func (stderrSink) OnPeerDisconnected(peerID string) { fmt.Printf("[peer] disconnected: %s\n", peerID) }
func (stderrSink) OnError(message string)           { fmt.Fprintf(os.Stderr, "[error] %s\n", message) }

func startCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start listening, LAN discovery, and the clipboard sync engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer wire.Close()

			if err := wire.StartMesh(stderrSink{}); err != nil {
				return err
			}
			fmt.Printf("openclipboardd running as %s (%s)\n", wire.Node.PeerID(), deviceName)

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			<-sig
			fmt.Println("shutting down")
			return nil
		},
	}
}
