package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func recallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recall <entry-id>",
		Short: "Write a history entry back to the local clipboard without broadcasting it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer wire.Close()
			if err := wire.Node.RecallFromHistory(wire.Hist, wire.Clip, args[0]); err != nil {
				return err
			}
			fmt.Println("recalled")
			return nil
		},
	}
}
