package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inlet-labs/shs"
)

func keygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a new long-term secret key",
		RunE: func(cmd *cobra.Command, args []string) error {
			sk, err := shs.GenerateSecretKey()
			if err != nil {
				return err
			}
			fmt.Printf("secret key seed: %s\n", sk.Seed())
			fmt.Printf("public key:      %s\n", sk.PublicKey())
			return nil
		},
	}
}
