package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/wifctl/internal/audit"
	"github.com/darmiel/wifctl/internal/compiler"
	"github.com/darmiel/wifctl/internal/config"
)

var (
	compileOutput string
	compileFormat string
	compileAudit  string
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile a federation spec into an apply plan",
	Long: `Compiles the spec into the full resource plan: pool, provider, service
	accounts, trust bindings and the flattened grant set. The plan is
	deterministic - compiling the same spec twice yields identical keys - so
	the consuming apply engine can treat every resource as idempotent.`,
	Example: `  # print the plan as JSON
  wifctl compile -f federation.yaml

  # write a YAML plan and record the run
  wifctl compile -f federation.yaml -o plan.yaml --format yaml --audit compile.log`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(specFile)
		if err != nil {
			return fmt.Errorf("reading spec file: %w", err)
		}
		spec, err := config.Parse(data)
		if err != nil {
			return err
		}

		plan, err := compiler.Compile(spec)
		if err != nil {
			return err
		}

		log.Info().
			Int("service_accounts", len(plan.ServiceAccounts)).
			Int("trust_bindings", len(plan.TrustBindings)).
			Int("grants", len(plan.Grants)).
			Msg("compiled plan")

		// the recorder must open before any output is emitted
		recorder, err := buildRecorder()
		if err != nil {
			return err
		}
		defer func() {
			_ = recorder.Close()
		}()

		var out []byte
		switch compileFormat {
		case "json":
			out, err = json.MarshalIndent(plan, "", "  ")
		case "yaml":
			out, err = yaml.Marshal(plan)
		default:
			return fmt.Errorf("unknown output format %q (expected json or yaml)", compileFormat)
		}
		if err != nil {
			return fmt.Errorf("encoding plan: %w", err)
		}

		if compileOutput == "" || compileOutput == "-" {
			fmt.Println(string(out))
		} else if err := os.WriteFile(compileOutput, out, 0644); err != nil {
			return fmt.Errorf("writing plan: %w", err)
		}

		entry := audit.NewEntry(specFile, data)
		entry.ServiceAccounts = len(plan.ServiceAccounts)
		entry.TrustBindings = len(plan.TrustBindings)
		entry.Grants = len(plan.Grants)
		entry.Lints = len(plan.Lints)
		if err := recorder.Record(entry); err != nil {
			log.Warn().Err(err).Msg("failed to record compile run")
		}

		return nil
	},
}

func buildRecorder() (audit.Recorder, error) {
	if compileAudit == "" {
		return audit.NewNoopRecorder(), nil
	}
	return audit.NewFileRecorder(compileAudit)
}

func init() {
	rootCmd.AddCommand(compileCmd)
	bindSpecFlag(compileCmd)

	compileCmd.Flags().StringVarP(&compileOutput, "output", "o", "", "Write the plan to this file instead of stdout")
	compileCmd.Flags().StringVar(&compileFormat, "format", "json", "Plan output format (json, yaml)")
	compileCmd.Flags().StringVar(&compileAudit, "audit", "", "Append a compile record to this file")
}
