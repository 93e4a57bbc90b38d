// Package commands defines the shs-chat CLI.
//
// Commands
//
//   - keygen   Generate a new long-term secret key
//   - listen   Accept one incoming handshake and chat over the box-stream
//   - dial     Perform a handshake against a listening peer and chat
//
// Every subcommand that needs an AppID or a profile reads it from a
// persistent flag, so keygen/listen/dial agree on both without a config
// file: the caller is responsible for sharing those two values out of
// band, exactly as the core package's Non-goals require.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/inlet-labs/shs"
)

var (
	appIDFlag   string
	profileFlag string
)

func Execute() error {
	root := &cobra.Command{
		Use:   "shs-chat",
		Short: "Secret Handshake + box-stream demo chat client",
	}

	root.PersistentFlags().StringVar(&appIDFlag, "app-id", "shs-chat", "application ID both peers must share")
	root.PersistentFlags().StringVar(&profileFlag, "profile", "compact", "wire profile: compact or boxstream")

	root.AddCommand(keygenCmd(), listenCmd(), dialCmd())
	return root.Execute()
}

func resolveProfile() (shs.Profile, error) {
	switch profileFlag {
	case "compact", "":
		return shs.ProfileCompact, nil
	case "boxstream":
		return shs.ProfileBoxStreamCompatible, nil
	default:
		return 0, errUnknownProfile(profileFlag)
	}
}

type errUnknownProfile string

func (e errUnknownProfile) Error() string {
	return "shs-chat: unknown --profile " + string(e) + " (want compact or boxstream)"
}
