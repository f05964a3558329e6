package cmd

import (
	"github.com/spf13/cobra"
)

// tokenCmd represents the token command
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Interact with GitHub Actions OIDC tokens",
	Long:  `Utilities for decoding and verifying the OIDC tokens GitHub Actions issues to workflows`,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}
