package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/storegate/storegate/internal/domain/auth"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print the Argon2id hash of a password",
	Long: `Derive the salted Argon2id hash of a password, using the same
parameters the server uses, and print the PHC-encoded result.

Useful for seeding accounts directly in a backing store.

Example:
  storegate hash-password "correct-horse"

Security note: The password will appear in shell history.
Consider clearing history after use or using an environment variable:
  storegate hash-password "$MY_PASSWORD"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vault := auth.NewVault(1)
		hash, err := vault.Hash(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(hash)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hashPasswordCmd)
}
