package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/darmiel/wifctl/internal/buildinfo"
	"github.com/darmiel/wifctl/internal/logging"
)

// specFile is the federation spec shared by all spec-consuming commands.
var specFile string

var rootCmd = &cobra.Command{
	Use:   "wifctl",
	Short: fmt.Sprintf("wifctl (version: %s, commit: %s)", buildinfo.Version, buildinfo.CommitHash),
	Long: `wifctl compiles a declarative GitHub Actions workload identity federation
	spec into the trust configuration and IAM bindings an apply engine needs:
	one identity pool/provider gated on a repository owner, one service account
	per workflow role, and a flat, deterministically-keyed grant set.`,
	Version: buildinfo.Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init()
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		log.Fatal().Err(err).Msg("execution failed")
		os.Exit(1)
	}
}

func init() {
	// setup pre-flag logger
	logging.InitDefault()

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	_ = viper.BindPFlag(logging.LevelKey, rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.PersistentFlags().String("log-format", "console", "Log format (console, json)")
	_ = viper.BindPFlag(logging.FormatKey, rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.PersistentFlags().Bool("no-color", false, "Disable color output")
	_ = viper.BindPFlag(logging.NoColorKey, rootCmd.PersistentFlags().Lookup("no-color"))

	viper.SetEnvPrefix("WIFCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))

	viper.AutomaticEnv()

	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
}

// bindSpecFlag attaches the shared spec file flag to a command.
func bindSpecFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&specFile, "spec", "f", "", "The federation spec file to use")
	_ = cmd.MarkFlagRequired("spec")
}
