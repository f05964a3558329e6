package cmd

import (
	"fmt"
	"net/http"
	"os"

	"github.com/google/go-github/v80/github"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/wifctl/internal/config"
)

var doctorGitHubToken string

// doctorCmd runs advisory checks against the live GitHub API. None of its
// findings are validation errors: a filter naming an unknown repository is
// inert in IAM, not invalid, so compilation never depends on this command.
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run advisory checks against GitHub",
	Long: `Checks every repository_filter in the spec against the GitHub API and
	warns about repositories it cannot see (typo, deleted, or private to the
	token). Also flags accounts without a filter, which are trusted by every
	repository of the owner.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := config.Load(specFile)
		if err != nil {
			return err
		}

		token := doctorGitHubToken
		if token == "" {
			token = os.Getenv("GITHUB_TOKEN")
		}

		client := github.NewClient(nil)
		if token != "" {
			client = client.WithAuthToken(token)
		}

		var findings int
		for _, name := range spec.AccountNames() {
			sa := spec.ServiceAccounts[name]
			if sa.RepositoryFilter == "" {
				log.Warn().
					Str("account", name).
					Msgf("no repository_filter: '%s' can be impersonated by every repository of '%s'", sa.AccountID, spec.GitHubOwner)
				findings++
				continue
			}

			_, resp, err := client.Repositories.Get(cmd.Context(), spec.GitHubOwner, sa.RepositoryFilter)
			if err != nil {
				if resp != nil && resp.StatusCode == http.StatusNotFound {
					log.Warn().
						Str("account", name).
						Msgf("repository '%s/%s' not found; the trust binding will be inert until it exists", spec.GitHubOwner, sa.RepositoryFilter)
					findings++
					continue
				}
				return fmt.Errorf("checking repository '%s/%s': %w", spec.GitHubOwner, sa.RepositoryFilter, err)
			}

			log.Debug().
				Str("account", name).
				Msgf("repository '%s/%s' exists", spec.GitHubOwner, sa.RepositoryFilter)
		}

		if findings == 0 {
			log.Info().Msgf("All %d accounts look good.", len(spec.ServiceAccounts))
		} else {
			log.Info().Msgf("%d advisory finding(s); none of these block compilation.", findings)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	bindSpecFlag(doctorCmd)

	doctorCmd.Flags().StringVar(&doctorGitHubToken, "github-token", "", "GitHub token for API access (defaults to $GITHUB_TOKEN)")
}
