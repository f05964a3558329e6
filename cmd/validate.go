package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/wifctl/internal/config"
)

// validateCmd checks a spec file without emitting anything.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a federation spec file",
	Long: `Validates the identifiers and structure of a federation spec.
	Validation is atomic: a single malformed field fails the whole file, so a
	partially-provisioned trust graph can never result from a bad spec.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := config.Load(specFile); err != nil {
			return err
		}
		log.Info().Msg("Spec is valid.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	bindSpecFlag(validateCmd)
}
