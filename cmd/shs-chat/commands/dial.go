package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inlet-labs/shs"
)

func dialCmd() *cobra.Command {
	var keySeedHex string
	var serverPubHex string

	cmd := &cobra.Command{
		Use:   "dial <addr>",
		Short: "Perform a handshake against a listening peer and chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := resolveProfile()
			if err != nil {
				return err
			}
			seed, err := shs.SecretKeySeedFromHex(keySeedHex)
			if err != nil {
				return fmt.Errorf("--key: %w", err)
			}
			serverPub, err := shs.PublicKeyFromHex(serverPubHex)
			if err != nil {
				return fmt.Errorf("--server-key: %w", err)
			}
			ctx := shs.Context{
				AppID:     shs.AppIDFromString(appIDFlag),
				SecretKey: shs.SecretKeyFromSeed(seed),
			}

			raw, err := dialTCP(args[0])
			if err != nil {
				return err
			}

			conn, err := shs.WrapClient(raw, ctx, serverPub, profile)
			if err != nil {
				return fmt.Errorf("handshake: %w", err)
			}
			fmt.Printf("connected to %s\n", conn.Session().PeerPublicKey)

			return runChat(conn)
		},
	}

	cmd.Flags().StringVar(&keySeedHex, "key", "", "our secret key seed (hex)")
	cmd.Flags().StringVar(&serverPubHex, "server-key", "", "the server's long-term public key (hex)")
	_ = cmd.MarkFlagRequired("key")
	_ = cmd.MarkFlagRequired("server-key")
	return cmd
}
