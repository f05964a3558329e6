package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/darmiel/wifctl/internal/compiler"
	"github.com/darmiel/wifctl/internal/config"
	"github.com/darmiel/wifctl/internal/core"
)

var outputsFormat string

// outputsCmd surfaces the two values a CI workflow needs for federated auth.
var outputsCmd = &cobra.Command{
	Use:   "outputs",
	Short: "Show the workflow-facing outputs of a spec",
	Long: `Prints the provider resource name and the logical-name to email map for
	all service accounts. These two values are the entire contract a calling
	workflow needs for its auth step.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := config.Load(specFile)
		if err != nil {
			return err
		}
		plan, err := compiler.Compile(spec)
		if err != nil {
			return err
		}

		if outputsFormat == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(plan.Outputs)
		}

		printOutputs(plan.Outputs, plan.TrustBindings)
		return nil
	},
}

func printOutputs(outputs core.WorkflowOutputs, bindings []core.TrustBinding) {
	fmt.Println(bold("\n── Workload Identity Provider ──"))
	fmt.Printf("  %s\n\n", outputs.WorkloadIdentityProvider)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Name", "Service Account", "Trusted By"})

	for _, b := range bindings {
		trusted := "all repositories of owner"
		if b.Scope == core.ScopeRepository {
			trusted = b.Repository
		}
		t.AppendRow(table.Row{
			bold(b.Principal),
			outputs.ServiceAccountEmails[b.Principal],
			trusted,
		})
	}

	applyTableFormat(t)
	t.Render()
}

func init() {
	rootCmd.AddCommand(outputsCmd)
	bindSpecFlag(outputsCmd)

	outputsCmd.Flags().StringVar(&outputsFormat, "format", "table", "Output format (table, json)")
}
