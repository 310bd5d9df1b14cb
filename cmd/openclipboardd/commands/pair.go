package commands

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"openclipboard/internal/domain"
	"openclipboard/internal/pairing"
)

func pairCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pair",
		Short: "Pair with another device (explicit two-string flow or QR auto-trust)",
	}
	cmd.AddCommand(pairInitCmd(), pairRespondCmd(), pairFinalizeCmd(), pairScanCmd())
	return cmd
}

func pairInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate a pairing payload to show as a QR code or copy to the other device",
		RunE: func(cmd *cobra.Command, args []string) error {
			addrs, err := lanAddrs()
			if err != nil {
				return err
			}
			payload, err := pairing.CreatePayload(wire.Node.PeerID(), deviceName, wire.Node.IdentityPublic(), effectivePort(), addrs)
			if err != nil {
				return err
			}
			fmt.Println(pairing.ToQRString(payload))
			return nil
		},
	}
}

func pairRespondCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "respond <init-qr-string>",
		Short: "Respond to an initiator's pairing payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			init, err := pairing.FromQRString(args[0])
			if err != nil {
				return err
			}
			addrs, err := lanAddrs()
			if err != nil {
				return err
			}
			resp := pairing.RespondToInit(init, wire.Node.PeerID(), deviceName, wire.Node.IdentityPublic(), effectivePort(), addrs)
			code, err := pairing.Finalize(init, resp)
			if err != nil {
				return err
			}
			fmt.Println(pairing.ToQRString(resp))
			fmt.Printf("confirmation code: %s\n", code)
			fmt.Println("run 'pair finalize' after both sides confirm the code matches")
			return nil
		},
	}
}

func pairFinalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "finalize <init-qr-string> <resp-qr-string>",
		Short: "Confirm a pairing and write the counterparty into the trust store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			init, err := pairing.FromQRString(args[0])
			if err != nil {
				return err
			}
			resp, err := pairing.FromQRString(args[1])
			if err != nil {
				return err
			}
			code, err := pairing.Finalize(init, resp)
			if err != nil {
				return err
			}

			var other domain.PairingPayload
			switch wire.Node.PeerID() {
			case init.PeerID:
				other = resp
			case resp.PeerID:
				other = init
			default:
				return fmt.Errorf("neither payload names this node (%s)", wire.Node.PeerID())
			}

			if err := pairing.ConfirmTrust(wire.Node.TrustStore(), other); err != nil {
				return err
			}
			fmt.Printf("trusted %s (%s), confirmation code %s\n", other.PeerID, other.Name, code)
			return nil
		},
	}
}

func pairScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan <qr-string>",
		Short: "Scan a peer's QR payload, trust it, and dial it (QR auto-trust flow)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wire.Node.PairViaQR(args[0]); err != nil {
				return err
			}
			fmt.Println("paired and connected")
			return nil
		},
	}
}

func lanAddrs() ([]string, error) {
	ifaceAddrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil, err
	}
	var out []string
	for _, a := range ifaceAddrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		ip4 := ipNet.IP.To4()
		if ip4 == nil {
			continue
		}
		out = append(out, ip4.String())
	}
	return out, nil
}

func effectivePort() uint16 {
	if listenPort <= 0 || listenPort > 65535 {
		return 18455
	}
	return uint16(listenPort)
}
