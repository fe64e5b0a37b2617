package main

import (
	"fmt"
	"strconv"

	"github.com/safar/supershop/internal/api"
	"github.com/safar/supershop/internal/catalog"
	"github.com/safar/supershop/internal/models"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	usersQuery string
	usersRole  string
	usersSort  string

	newProduct api.NewProduct
	priceFlag  string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Store administration (admins only)",
	Long: `Administrative views. Running admin with no subcommand shows the
sales overview and the user list.`,
	Args: cobra.NoArgs,
	RunE: runAdminOverview,
}

var adminUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users",
	Args:  cobra.NoArgs,
	RunE:  runAdminUsers,
}

var adminRoleCmd = &cobra.Command{
	Use:   "role [user-id] [admin|user]",
	Short: "Change a user's role",
	Args:  cobra.ExactArgs(2),
	RunE:  runAdminRole,
}

var adminProductCmd = &cobra.Command{
	Use:   "add-product",
	Short: "Add a product to the catalog",
	Long: `Adds a product and prints the refreshed catalog.

Example:
  shop admin add-product --name Dates --price 6.25 --stock 30 --category-id 1`,
	Args: cobra.NoArgs,
	RunE: runAdminAddProduct,
}

var adminStockCmd = &cobra.Command{
	Use:   "stock [product-id] [change]",
	Short: "Adjust stock by a signed amount",
	Args:  cobra.ExactArgs(2),
	RunE:  runAdminStock,
}

var adminAnalysisCmd = &cobra.Command{
	Use:   "analysis [product-id]",
	Short: "Sales and co-purchase analysis for one product",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminAnalysis,
}

func init() {
	adminUsersCmd.Flags().StringVarP(&usersQuery, "query", "q", "", "Search name and email")
	adminUsersCmd.Flags().StringVar(&usersRole, "role", catalog.AllCategories, "Only users with this role")
	adminUsersCmd.Flags().StringVarP(&usersSort, "sort", "s", string(catalog.SortDateNew), "Sort key")

	f := adminProductCmd.Flags()
	f.StringVar(&newProduct.Name, "name", "", "Product name")
	f.StringVar(&newProduct.Description, "description", "", "Description")
	f.StringVar(&priceFlag, "price", "", "Unit price")
	f.IntVar(&newProduct.Stock, "stock", 0, "Initial stock")
	f.Int64Var(&newProduct.CategoryID, "category-id", 1, "Category id")
	f.StringVar(&newProduct.Barcode, "barcode", "", "Barcode")

	adminCmd.AddCommand(adminUsersCmd)
	adminCmd.AddCommand(adminRoleCmd)
	adminCmd.AddCommand(adminProductCmd)
	adminCmd.AddCommand(adminStockCmd)
	adminCmd.AddCommand(adminAnalysisCmd)
}

func runAdminOverview(cmd *cobra.Command, args []string) error {
	ov, err := shop.admin.Overview(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	a := ov.Analytics

	title(out, "Sales overview")
	fmt.Fprintf(out, "Revenue   %s\n", money(a.Stats.TotalRevenue))
	fmt.Fprintf(out, "Orders    %d\n", a.Stats.TotalOrders)
	fmt.Fprintf(out, "Products  %d (%s units in stock)\n", a.Stats.TotalProducts, a.Stats.TotalStock.String())
	fmt.Fprintf(out, "Users     %d\n", a.Stats.TotalUsers)

	if len(a.TopProducts) > 0 {
		fmt.Fprintln(out)
		title(out, "Top products")
		rows := make([][]string, 0, len(a.TopProducts))
		for _, p := range a.TopProducts {
			rows = append(rows, []string{idStr(p.ID), p.Name, p.TotalSold.String(), money(p.Revenue), stockLabel(p.Stock)})
		}
		renderTable(out, []string{"ID", "Name", "Sold", "Revenue", "Stock"}, rows)
	}
	if len(a.CategorySales) > 0 {
		fmt.Fprintln(out)
		title(out, "By category")
		rows := make([][]string, 0, len(a.CategorySales))
		for _, c := range a.CategorySales {
			rows = append(rows, []string{c.CategoryName, c.TotalSold.String(), money(c.Revenue)})
		}
		renderTable(out, []string{"Category", "Sold", "Revenue"}, rows)
	}
	if len(a.DailySales) > 0 {
		fmt.Fprintln(out)
		title(out, "Last 7 days")
		rows := make([][]string, 0, len(a.DailySales))
		for _, d := range a.DailySales {
			rows = append(rows, []string{d.SaleDate, itoa(d.OrdersCount), d.ItemsSold.String(), money(d.DailyRevenue)})
		}
		renderTable(out, []string{"Date", "Orders", "Items", "Revenue"}, rows)
	}

	fmt.Fprintln(out)
	return printUsers(cmd, ov.Users)
}

func runAdminUsers(cmd *cobra.Command, args []string) error {
	users, err := shop.admin.Users(cmd.Context())
	if err != nil {
		return err
	}
	return printUsers(cmd, users)
}

// printUsers applies the list filters; the role filter rides on the
// category facet.
func printUsers(cmd *cobra.Command, users []models.User) error {
	criteria := catalog.Criteria{
		Query:    usersQuery,
		Category: usersRole,
		Sort:     catalog.SortKey(usersSort),
		Fields:   []string{"name", "email"},
	}
	if !criteria.Sort.Valid() {
		return fmt.Errorf("unknown sort key %q", usersSort)
	}
	shown := catalog.FilterSort(users, criteria)

	out := cmd.OutOrStdout()
	title(out, fmt.Sprintf("Users (%d of %d)", len(shown), len(users)))
	rows := make([][]string, 0, len(shown))
	for _, u := range shown {
		rows = append(rows, []string{idStr(u.ID), u.Name, u.Email, u.Role, dateOf(u.CreatedAt)})
	}
	renderTable(out, []string{"ID", "Name", "Email", "Role", "Joined"}, rows)
	return nil
}

func runAdminRole(cmd *cobra.Command, args []string) error {
	userID, err := parseID(args[0])
	if err != nil {
		return err
	}
	role := args[1]
	ctx := cmd.Context()

	users, err := shop.admin.Users(ctx)
	if err != nil {
		return err
	}
	var target *models.User
	for i := range users {
		if users[i].ID == userID {
			target = &users[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("user %d not found", userID)
	}

	refreshed, err := shop.admin.ChangeRole(ctx, *target, role)
	if err != nil {
		return err
	}
	if refreshed == nil {
		muted(cmd.OutOrStdout(), fmt.Sprintf("%s is already %s.", target.Name, role))
		return nil
	}
	success(cmd.OutOrStdout(), "User role updated to %s.", role)
	return printUsers(cmd, refreshed)
}

func runAdminAddProduct(cmd *cobra.Command, args []string) error {
	p := newProduct
	if priceFlag != "" {
		price, err := decimal.NewFromString(priceFlag)
		if err != nil {
			return fmt.Errorf("invalid price %q", priceFlag)
		}
		p.Price = price
	}

	productID, products, err := shop.admin.CreateProduct(cmd.Context(), p)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	success(out, "Product %d added.", productID)
	renderTable(out, productHeaders, productRows(catalog.FilterSort(products, catalog.ClearCriteria())))
	return nil
}

func runAdminStock(cmd *cobra.Command, args []string) error {
	productID, err := parseID(args[0])
	if err != nil {
		return err
	}
	change, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid stock change %q", args[1])
	}

	stock, err := shop.admin.AdjustStock(cmd.Context(), productID, change)
	if err != nil {
		return err
	}
	success(cmd.OutOrStdout(), "Stock updated. Product %d now has %d.", productID, stock)
	return nil
}

func runAdminAnalysis(cmd *cobra.Command, args []string) error {
	productID, err := parseID(args[0])
	if err != nil {
		return err
	}
	a, err := shop.admin.ProductAnalysis(cmd.Context(), productID)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	title(out, a.Product.Name)
	fmt.Fprintf(out, "Orders          %d\n", a.Stats.TotalOrders)
	fmt.Fprintf(out, "Units sold      %s\n", a.Stats.TotalSold.String())
	fmt.Fprintf(out, "Revenue         %s\n", money(a.Stats.TotalRevenue))
	fmt.Fprintf(out, "Avg per order   %s\n", a.Stats.AvgQuantityPerOrder.StringFixed(2))

	if len(a.AssociatedProducts) > 0 {
		fmt.Fprintln(out)
		title(out, "Often bought with")
		rows := make([][]string, 0, len(a.AssociatedProducts))
		for _, ap := range a.AssociatedProducts {
			rows = append(rows, []string{idStr(ap.ProductID), ap.Name, itoa(ap.CoPurchaseCount), ap.Percentage.String() + "%"})
		}
		renderTable(out, []string{"ID", "Name", "Orders", "Share"}, rows)
	}
	if len(a.MonthlyTrend) > 0 {
		fmt.Fprintln(out)
		title(out, "Monthly trend")
		rows := make([][]string, 0, len(a.MonthlyTrend))
		for _, m := range a.MonthlyTrend {
			rows = append(rows, []string{m.Month, m.MonthlySold.String(), money(m.MonthlyRevenue)})
		}
		renderTable(out, []string{"Month", "Sold", "Revenue"}, rows)
	}
	return nil
}
