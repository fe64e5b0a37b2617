package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/safar/supershop/internal/checkout"
	"github.com/safar/supershop/internal/models"
	"github.com/spf13/cobra"
)

var (
	shipping      models.ShippingAddress
	paymentMethod string
	quoteOnly     bool
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Place an order for everything in your cart",
	Long: `Places an order for the current cart. Shipping fields left empty are
filled from your profile where possible; all of them must end up set.

Payment methods: card, cash, bkash, nagad.

Example:
  shop checkout --city Dhaka --state Dhaka --zip 1207 --payment bkash`,
	Args: cobra.NoArgs,
	RunE: runCheckout,
}

func init() {
	f := checkoutCmd.Flags()
	f.StringVar(&shipping.FirstName, "first-name", "", "First name")
	f.StringVar(&shipping.LastName, "last-name", "", "Last name")
	f.StringVar(&shipping.Email, "email", "", "Contact email")
	f.StringVar(&shipping.Phone, "phone", "", "Contact phone")
	f.StringVar(&shipping.Address, "address", "", "Street address")
	f.StringVar(&shipping.City, "city", "", "City")
	f.StringVar(&shipping.State, "state", "", "State or division")
	f.StringVar(&shipping.ZipCode, "zip", "", "Postal code")
	f.StringVar(&paymentMethod, "payment", models.PaymentCard, "Payment method")
	f.BoolVar(&quoteOnly, "quote", false, "Show the totals without ordering")
}

// prefill copies profile details into empty shipping fields.
func prefill(addr models.ShippingAddress, user *models.User) models.ShippingAddress {
	if user == nil {
		return addr
	}
	first, last, _ := strings.Cut(strings.TrimSpace(user.Name), " ")
	fill := func(dst *string, v string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = strings.TrimSpace(v)
		}
	}
	fill(&addr.FirstName, first)
	fill(&addr.LastName, last)
	fill(&addr.Email, user.Email)
	fill(&addr.Phone, user.Phone)
	fill(&addr.Address, user.Address)
	return addr
}

func runCheckout(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if _, ok := shop.session.UserID(); !ok {
		return checkout.ErrNotSignedIn
	}
	if err := shop.cart.Reload(ctx); err != nil {
		return err
	}

	if quoteOnly {
		printCart(out)
		return nil
	}

	form := checkout.Form{
		Shipping:      prefill(shipping, shop.session.User()),
		PaymentMethod: paymentMethod,
	}
	receipt, err := shop.checkout.PlaceOrder(ctx, form)
	if err != nil {
		var fe *checkout.FieldError
		if errors.As(err, &fe) {
			return fmt.Errorf("please fill in all required fields: %w", fe)
		}
		return err
	}

	success(out, "Order #%d placed successfully!", receipt.OrderID)
	fmt.Fprintf(out, "Subtotal %s  Tax %s  Total %s\n",
		money(receipt.Quote.Subtotal), money(receipt.Quote.Tax), money(receipt.Quote.Total))
	for _, w := range receipt.Warnings {
		warning(out, "Note: %v", w)
	}
	return nil
}
