// Command shop is the SuperShop storefront client.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/safar/supershop/internal/api"
	"github.com/safar/supershop/internal/config"
	"github.com/safar/supershop/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose bool

	// shop is built by the root pre-run hook for every command.
	shop *app
)

var rootCmd = &cobra.Command{
	Use:   "shop",
	Short: "SuperShop storefront client",
	Long: `Browse the SuperShop catalog, manage your cart, place orders and,
for administrators, review sales and manage users.

The storefront address and the local session store come from the
environment (SHOP_API_URL, SHOP_STORE_URL) or a YAML file named by
SHOP_CONFIG.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		lg, err := logger.New(logger.Options{
			Level:   cfg.Log.Level,
			Format:  cfg.Log.Format,
			Verbose: verbose,
		})
		if err != nil {
			return err
		}

		shop, err = newApp(cmd.Context(), cfg, lg)
		if err != nil {
			lg.Sync()
			return err
		}
		lg.Debug("shop ready",
			zap.String("api", cfg.API.BaseURL),
			zap.String("store", cfg.Store.URL),
			zap.Bool("signed_in", shop.session.User() != nil))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(cartCmd)
	rootCmd.AddCommand(checkoutCmd)
	rootCmd.AddCommand(ordersCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(adminCmd)
}

// run executes the command tree and closes whatever the pre-run hook
// opened. Cobra skips post-run hooks when a command fails, so cleanup
// lives here.
func run(ctx context.Context, args []string) error {
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	if shop != nil {
		if cerr := shop.Close(); cerr != nil {
			shop.logger.Warn("close session store", zap.Error(cerr))
		}
		shop.logger.Sync()
		shop = nil
	}
	return err
}

// errorMessage is the single line printed for a failed command.
func errorMessage(err error) string {
	if errors.Is(err, context.Canceled) {
		return "Interrupted."
	}
	return api.UserMessage(err, "Request failed")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:])
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorMessage(err))
		os.Exit(1)
	}
}
