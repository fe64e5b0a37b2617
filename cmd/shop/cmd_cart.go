package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/safar/supershop/internal/api"
	"github.com/safar/supershop/internal/cart"
	"github.com/spf13/cobra"
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show or change your cart",
	Args:  cobra.NoArgs,
	RunE:  runCartShow,
}

var cartAddCmd = &cobra.Command{
	Use:   "add [product-id]",
	Short: "Add one unit of a product",
	Args:  cobra.ExactArgs(1),
	RunE:  runCartAdd,
}

var cartUpdateCmd = &cobra.Command{
	Use:   "update [product-id] [quantity]",
	Short: "Set a line's quantity; zero removes it",
	Args:  cobra.ExactArgs(2),
	RunE:  runCartUpdate,
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove [product-id]",
	Short: "Remove a product from the cart",
	Args:  cobra.ExactArgs(1),
	RunE:  runCartRemove,
}

func init() {
	cartCmd.AddCommand(cartAddCmd)
	cartCmd.AddCommand(cartUpdateCmd)
	cartCmd.AddCommand(cartRemoveCmd)
}

func parseID(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return n, nil
}

func requireCartUser() error {
	if _, ok := shop.session.UserID(); !ok {
		return cart.ErrLoginRequired
	}
	return nil
}

// refreshWarning turns a change that went through but could not be
// re-read into a warning. Any other error is returned as is.
func refreshWarning(w io.Writer, err error) error {
	if errors.Is(err, cart.ErrRefreshFailed) {
		warning(w, "Cart updated, but it could not be refreshed: %s", api.UserMessage(err, "refresh failed"))
		return nil
	}
	return err
}

func runCartShow(cmd *cobra.Command, args []string) error {
	if err := requireCartUser(); err != nil {
		return err
	}
	if err := shop.cart.Reload(cmd.Context()); err != nil {
		return err
	}
	printCart(cmd.OutOrStdout())
	return nil
}

func runCartAdd(cmd *cobra.Command, args []string) error {
	productID, err := parseID(args[0])
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if err := shop.cart.Reload(ctx); err != nil {
		return err
	}
	if line, ok := shop.cart.Snapshot().Line(productID); ok && !shop.cart.CanIncrement(productID) {
		warning(cmd.OutOrStdout(), "Only %d of %s in stock.", line.Stock, line.Name)
	}
	if err := refreshWarning(cmd.OutOrStdout(), shop.cart.AddToCart(ctx, productID)); err != nil {
		return err
	}
	success(cmd.OutOrStdout(), "Added to cart.")
	printCart(cmd.OutOrStdout())
	return nil
}

func runCartUpdate(cmd *cobra.Command, args []string) error {
	productID, err := parseID(args[0])
	if err != nil {
		return err
	}
	quantity, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid quantity %q", args[1])
	}
	if err := requireCartUser(); err != nil {
		return err
	}
	ctx := cmd.Context()
	if err := shop.cart.Reload(ctx); err != nil {
		return err
	}
	if _, ok := shop.cart.Snapshot().Line(productID); !ok {
		return fmt.Errorf("product %d is not in your cart", productID)
	}
	if err := refreshWarning(cmd.OutOrStdout(), shop.cart.UpdateQuantity(ctx, productID, quantity)); err != nil {
		return err
	}
	printCart(cmd.OutOrStdout())
	return nil
}

func runCartRemove(cmd *cobra.Command, args []string) error {
	productID, err := parseID(args[0])
	if err != nil {
		return err
	}
	if err := requireCartUser(); err != nil {
		return err
	}
	ctx := cmd.Context()
	if err := shop.cart.Reload(ctx); err != nil {
		return err
	}
	if err := refreshWarning(cmd.OutOrStdout(), shop.cart.RemoveFromCart(ctx, productID)); err != nil {
		return err
	}
	printCart(cmd.OutOrStdout())
	return nil
}

func printCart(w io.Writer) {
	snap := shop.cart.Snapshot()
	title(w, fmt.Sprintf("Cart (%d items)", snap.Count()))
	if snap.Empty() {
		muted(w, "Your cart is empty.")
		return
	}

	lines := snap.Lines()
	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, []string{
			idStr(line.ProductID),
			line.Name,
			money(line.Price),
			itoa(line.Quantity),
			money(line.Subtotal()),
		})
	}
	renderTable(w, []string{"ID", "Name", "Price", "Qty", "Subtotal"}, rows)

	q := shop.checkout.Quote()
	fmt.Fprintf(w, "Subtotal %s  Tax %s  Total %s\n", money(q.Subtotal), money(q.Tax), money(q.Total))
}
