package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/darmiel/wifctl/internal/compiler"
	"github.com/darmiel/wifctl/internal/config"
	"github.com/darmiel/wifctl/internal/core"
	"github.com/darmiel/wifctl/internal/simulate"
)

var (
	whyRepository string
	whyActor      string
	whyRef        string
	whyPrincipal  string
)

var whyCmd = &cobra.Command{
	Use:   "why",
	Short: "Explain which service accounts a workflow could impersonate",
	Long: `Simulates the claims of a GitHub Actions workflow against the compiled
	trust configuration and prints a detailed trace: the provider's owner gate
	first, then every principal's trust binding.
	Useful for debugging why a workflow is denied or admitted by the wrong
	account.`,
	Example: `  # which accounts does acme/widgets get?
  wifctl why -f federation.yaml --repository acme/widgets

  # why is it not admitted by the 'deploy' account?
  wifctl why -f federation.yaml --repository acme/widgets --principal deploy`,
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, _, ok := strings.Cut(whyRepository, "/")
		if !ok {
			return fmt.Errorf("repository %q must be of the form owner/name", whyRepository)
		}

		spec, err := config.Load(specFile)
		if err != nil {
			return err
		}
		plan, err := compiler.Compile(spec)
		if err != nil {
			return err
		}

		claims := core.GitHubClaims{
			Subject:         fmt.Sprintf("repo:%s:ref:%s", whyRepository, whyRef),
			Actor:           whyActor,
			Repository:      whyRepository,
			RepositoryOwner: owner,
			Ref:             whyRef,
		}

		trace, err := simulate.Evaluate(plan, claims)
		if err != nil {
			return err
		}

		printTrace(trace)
		return nil
	},
}

func printTrace(trace *simulate.Trace) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	fmt.Printf("\n%s for repository %s (actor: %s, ref: %s)\n",
		bold("Trust Evaluation"),
		bold(trace.Claims.Repository),
		trace.Claims.Actor,
		trace.Claims.Ref)

	fmt.Println(faint("---------------------------------------------------"))

	gateIcon := redCross
	if trace.Gate.Matched {
		gateIcon = greenCheck
	}
	fmt.Printf("%s %s %s\n", gateIcon, cyan("[provider gate]"), trace.Gate.Expression)
	if trace.Gate.Reason != "" {
		fmt.Printf("      ↳ %s\n", yellow(trace.Gate.Reason))
	}
	fmt.Println()

	for _, res := range trace.Bindings {
		if whyPrincipal != "" && res.Principal != whyPrincipal {
			continue
		}

		icon := redCross
		if res.Matched {
			icon = greenCheck
		}

		fmt.Printf("%s Principal: %s\n", icon, bold(res.Principal))
		fmt.Printf("  %s\n", faint(truncate(res.Member, 100)))

		for _, check := range res.Checks {
			checkIcon := redCross
			if check.Matched {
				checkIcon = greenCheck
			}
			fmt.Printf("    %s %s\n", checkIcon, check.Expression)
			if check.Reason != "" {
				reason := check.Reason
				if check.Matched {
					reason = faint(reason)
				} else {
					reason = yellow(reason)
				}
				fmt.Printf("      ↳ %s\n", reason)
			}
		}

		fmt.Println()
	}

	fmt.Println("---------------------------------------------------")
	if len(trace.Admitted) > 0 {
		fmt.Printf("Decision: %s as %s\n", bold(green("admitted")), bold(strings.Join(trace.Admitted, ", ")))
	} else {
		fmt.Printf("Decision: %s\n", bold(red("denied")))
	}
	fmt.Println()
}

func init() {
	rootCmd.AddCommand(whyCmd)
	bindSpecFlag(whyCmd)

	whyCmd.Flags().StringVarP(&whyRepository, "repository", "r", "", "Repository the simulated token comes from (owner/name)")
	whyCmd.Flags().StringVar(&whyActor, "actor", "octocat", "Simulated actor claim (optional)")
	whyCmd.Flags().StringVar(&whyRef, "ref", "refs/heads/main", "Simulated ref claim (optional)")
	whyCmd.Flags().StringVar(&whyPrincipal, "principal", "", "Filter output to a specific principal (optional)")

	_ = whyCmd.MarkFlagRequired("repository")
}
