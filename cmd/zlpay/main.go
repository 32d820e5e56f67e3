package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/orris-inc/zlpay/internal/interfaces/cli/admintoken"
	"github.com/orris-inc/zlpay/internal/interfaces/cli/endpoints"
	"github.com/orris-inc/zlpay/internal/interfaces/cli/migrate"
	"github.com/orris-inc/zlpay/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "zlpay",
		Short:        "zlpay - ZaloPay payment service",
		Long:         `zlpay takes ZaloPay payments for store orders: checkout, webhook and status reconciliation, refunds and an admin API.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		admintoken.NewCommand(),
		endpoints.NewCommand(),
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
