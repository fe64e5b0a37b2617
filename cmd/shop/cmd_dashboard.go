package main

import (
	"fmt"

	"github.com/safar/supershop/internal/orders"
	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Your orders, cart and what others are buying",
	Args:  cobra.NoArgs,
	RunE:  runDashboard,
}

func runDashboard(cmd *cobra.Command, args []string) error {
	d, err := shop.dashboard.Load(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	title(out, fmt.Sprintf("Welcome, %s", shop.session.User().Name))
	fmt.Fprintf(out, "Orders     %d\n", d.Orders.TotalOrders)
	fmt.Fprintf(out, "Spent      %s\n", money(d.Orders.TotalSpent))
	fmt.Fprintf(out, "Average    %s\n", money(d.Orders.AverageOrder))
	fmt.Fprintf(out, "Cart       %d items\n", d.CartCount)
	if d.Orders.FavoriteCategory != "" {
		fmt.Fprintf(out, "Favorite   %s\n", d.Orders.FavoriteCategory)
	}
	if d.Source == orders.SourceLocal {
		warning(out, "Storefront unavailable; order figures come from this machine.")
	}

	if len(d.Orders.Recent) > 0 {
		fmt.Fprintln(out)
		title(out, "Recent orders")
		renderTable(out, orderHeaders, orderRows(d.Orders.Recent))
	}
	if len(d.Popular) > 0 {
		fmt.Fprintln(out)
		title(out, "Popular right now")
		renderTable(out, productHeaders, productRows(d.Popular))
	}
	for _, w := range d.Warnings {
		warning(out, "Note: %v", w)
	}
	return nil
}
