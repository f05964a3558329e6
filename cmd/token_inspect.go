package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/wifctl/internal/core"
)

var (
	tokenVerify   bool
	tokenAudience string
)

var tokenInspectCmd = &cobra.Command{
	Use:   "inspect JWT-TOKEN",
	Short: "Inspect the claims of a GitHub Actions OIDC token",
	Long: `Decodes the token and shows the five claims the provider's attribute
	mapping exposes (sub, actor, repository, repository_owner, ref) alongside
	the raw claim set. Without --verify, no signature validation is performed.`,
	Example: `  wifctl token inspect "$ACTIONS_ID_TOKEN"
  wifctl token inspect "$ACTIONS_ID_TOKEN" --verify --audience my-audience`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tokenInput := args[0]
		if tokenInput == "" {
			return fmt.Errorf("token cannot be empty")
		}

		var raw map[string]any
		if tokenVerify {
			claims, err := verifyToken(cmd, tokenInput)
			if err != nil {
				return err
			}
			raw = claims
			log.Info().Msg("Token signature verified against the GitHub issuer.")
		} else {
			parser := jwt.NewParser()
			token, _, err := parser.ParseUnverified(tokenInput, jwt.MapClaims{})
			if err != nil {
				return fmt.Errorf("parsing token: %w", err)
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return fmt.Errorf("invalid token claims")
			}
			raw = claims
			log.Warn().Msg("Token decoded without signature verification (use --verify).")
		}

		mapped, err := core.ClaimsFromMap(raw)
		if err != nil {
			return err
		}

		fmt.Println(bold("\n── Mapped Attributes ──"))
		fmt.Printf("  %s:  %s\n", faint("google.subject"), mapped.Subject)
		fmt.Printf("  %s:  %s\n", faint("attribute.actor"), mapped.Actor)
		fmt.Printf("  %s:  %s\n", faint("attribute.repository"), mapped.Repository)
		fmt.Printf("  %s:  %s\n", faint("attribute.repository_owner"), mapped.RepositoryOwner)
		fmt.Printf("  %s:  %s\n", faint("attribute.ref"), mapped.Ref)

		fmt.Println(bold("\n── Raw Claims ──"))
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(raw); err != nil {
			log.Warn().Err(err).Msg("failed to pretty-print claims")
		}

		// print & parse expiration if present and print remaining
		if expRaw, ok := raw["exp"]; ok {
			if expFloat, ok := expRaw.(float64); ok {
				expTime := time.Unix(int64(expFloat), 0)
				remaining := time.Until(expTime)
				log.Info().Msgf("Expiration (exp): %v (in %v)", expTime, remaining)
			}
		}

		return nil
	},
}

func verifyToken(cmd *cobra.Command, tokenInput string) (map[string]any, error) {
	ctx := cmd.Context()

	provider, err := oidc.NewProvider(ctx, core.GitHubIssuerURI)
	if err != nil {
		return nil, fmt.Errorf("creating oidc provider: %w", err)
	}

	verifierConfig := &oidc.Config{ClientID: tokenAudience}
	if tokenAudience == "" {
		verifierConfig = &oidc.Config{SkipClientIDCheck: true}
	}

	idToken, err := provider.Verifier(verifierConfig).Verify(ctx, tokenInput)
	if err != nil {
		return nil, fmt.Errorf("oidc verification failed: %w", err)
	}

	var claims map[string]any
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("extracting oidc claims: %w", err)
	}
	return claims, nil
}

func init() {
	tokenCmd.AddCommand(tokenInspectCmd)

	tokenInspectCmd.Flags().BoolVar(&tokenVerify, "verify", false, "Verify the token signature against the GitHub issuer")
	tokenInspectCmd.Flags().StringVar(&tokenAudience, "audience", "", "Expected audience when verifying (optional)")
}
