package commands

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/inlet-labs/shs"
)

func listenCmd() *cobra.Command {
	var keySeedHex string
	var authorizeHex []string

	cmd := &cobra.Command{
		Use:   "listen <addr>",
		Short: "Accept one incoming handshake and chat over the box-stream",
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
			ctx := shs.Context{
				AppID:     shs.AppIDFromString(appIDFlag),
				SecretKey: shs.SecretKeyFromSeed(seed),
			}

			var authorizer shs.ClientAuthorizer
			if len(authorizeHex) > 0 {
				allowed := make(map[shs.PublicKey]bool, len(authorizeHex))
				for _, h := range authorizeHex {
					pub, err := shs.PublicKeyFromHex(h)
					if err != nil {
						return fmt.Errorf("--authorize: %w", err)
					}
					allowed[pub] = true
				}
				authorizer = func(pub shs.PublicKey) bool { return allowed[pub] }
			}

			listener, err := net.Listen("tcp", args[0])
			if err != nil {
				return err
			}
			defer listener.Close()

			fmt.Printf("listening on %s as %s\n", args[0], ctx.SecretKey.PublicKey())
			raw, err := listener.Accept()
			if err != nil {
				return err
			}

			conn, err := shs.WrapServer(raw, ctx, profile, authorizer)
			if err != nil {
				return fmt.Errorf("handshake: %w", err)
			}
			fmt.Printf("peer authenticated as %s\n", conn.Session().PeerPublicKey)

			return runChat(conn)
		},
	}

	cmd.Flags().StringVar(&keySeedHex, "key", "", "our secret key seed (hex)")
	cmd.Flags().StringSliceVar(&authorizeHex, "authorize", nil, "client public keys (hex) to allow; if unset, any authenticated client is allowed")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}
