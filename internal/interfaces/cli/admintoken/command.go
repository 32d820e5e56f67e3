package admintoken

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/orris-inc/zlpay/internal/infrastructure/auth"
	"github.com/orris-inc/zlpay/internal/infrastructure/config"
)

var (
	configPath string
	subject    string
	lifetime   time.Duration
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin-token",
		Short: "Issue a bearer token for the admin API",
		RunE:  run,
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.Flags().StringVarP(&subject, "subject", "s", "", "Operator the token is issued to (required)")
	cmd.Flags().DurationVar(&lifetime, "ttl", 0, "Token lifetime (default: admin.token_lifetime)")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFile(configPath, "")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ttl := cfg.Admin.TokenLifetime
	if lifetime > 0 {
		ttl = lifetime
	}

	token, expiresAt, err := auth.NewJWTService(cfg.Admin.JWTSecret, ttl).Generate(subject)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, token)
	fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.Format(time.RFC3339))
	return nil
}
