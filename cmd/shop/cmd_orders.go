package main

import (
	"fmt"

	"github.com/safar/supershop/internal/orders"
	"github.com/spf13/cobra"
)

var (
	ordersLocal  bool
	ordersCursor string
	ordersLimit  int
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Show your order history",
	Long: `Shows your orders from the storefront. When it can not be reached the
orders placed from this machine are shown instead.

--local pages through those locally saved orders directly.`,
	Args: cobra.NoArgs,
	RunE: runOrders,
}

func init() {
	ordersCmd.Flags().BoolVar(&ordersLocal, "local", false, "Read the locally saved orders only")
	ordersCmd.Flags().StringVar(&ordersCursor, "cursor", "", "Page cursor printed by a previous --local call")
	ordersCmd.Flags().IntVar(&ordersLimit, "limit", 20, "Orders per page with --local")
}

func runOrders(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if ordersLocal {
		page, err := shop.orders.Page(ctx, ordersCursor, ordersLimit)
		if err != nil {
			return err
		}
		title(out, "Saved orders")
		rows := make([][]string, 0, len(page.Items))
		for _, lo := range page.Items {
			o := orders.FromLocal(lo)
			rows = append(rows, []string{lo.ID, dateOf(o.CreatedAt), itoa(o.TotalItems), money(o.Total), o.Status, o.PaymentMethod})
		}
		renderTable(out, orderHeaders, rows)
		if page.HasMore {
			muted(out, fmt.Sprintf("More: shop orders --local --cursor %s", page.NextCursor))
		}
		return nil
	}

	h, err := shop.orders.History(ctx)
	if err != nil {
		return err
	}
	title(out, fmt.Sprintf("Orders (%d)", len(h.Orders)))
	if h.Source == orders.SourceLocal {
		warning(out, "Storefront unavailable; showing orders saved on this machine.")
	}
	if len(h.Orders) == 0 {
		muted(out, "No orders yet.")
		return nil
	}
	renderTable(out, orderHeaders, orderRows(h.Orders))
	return nil
}
