package endpoints

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/orris-inc/zlpay/internal/infrastructure/config"
	"github.com/orris-inc/zlpay/internal/interfaces/http/routes"
)

var configPath string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "endpoints",
		Short: "Print the URLs to register in the ZaloPay merchant portal",
		RunE:  run,
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFile(configPath, "")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	return Print(cmd.OutOrStdout(), cfg)
}

// Print writes the callback and redirect URLs for cfg.
func Print(w io.Writer, cfg *config.Config) error {
	mode := "live"
	if cfg.ZaloPay.SandboxMode {
		mode = "sandbox"
	}

	_, err := fmt.Fprintf(w, `Mode:             %s (app_id %d)
API endpoint:     %s
Callback URL:     %s
Redirect URL:     %s
Checkout URL:     %s
Merchant portal:  %s
`,
		mode, cfg.ZaloPay.AppID,
		cfg.ZaloPay.Endpoint(),
		cfg.Server.PublicURL(routes.CallbackPath),
		cfg.Server.PublicURL(routes.OrderReceivedPrefix),
		cfg.Server.PublicURL(routes.CheckoutPath),
		cfg.ZaloPay.MerchantPortal(),
	)
	return err
}
