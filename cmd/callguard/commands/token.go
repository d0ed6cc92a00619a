package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/johnquangdev/voice-guard/pkg/config"
	"github.com/johnquangdev/voice-guard/pkg/jwt"
)

var (
	tokenScope  string
	tokenExpiry time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token <subject>",
	Short: "Issue an API service token",
	Long: `Issue a bearer token for the /v1 API, signed with JWT_SECRET. The
subject names the client, for example a team or an integration.

Examples:
  callguard token fraud-desk
  callguard token ivr-gateway --expiry 24h`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadRaw()
		if err != nil {
			return err
		}

		expiry := cfg.JWT.Expiry
		if tokenExpiry > 0 {
			expiry = tokenExpiry
		}
		m := jwt.NewManager(cfg.JWT.Secret, expiry, cfg.JWT.Issuer)

		token, err := m.GenerateToken(args[0], tokenScope)
		if err != nil {
			return err
		}
		return outputResult(map[string]any{
			"token":      token,
			"token_type": "Bearer",
			"subject":    args[0],
			"expires_at": time.Now().Add(m.GetExpiry()).UTC().Format(time.RFC3339),
		})
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenScope, "scope", jwt.DefaultScope, "token scope")
	tokenCmd.Flags().DurationVar(&tokenExpiry, "expiry", 0, "token lifetime (default JWT_EXPIRY)")
}
