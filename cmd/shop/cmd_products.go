package main

import (
	"fmt"

	"github.com/safar/supershop/internal/catalog"
	"github.com/safar/supershop/internal/models"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
)

var (
	productQuery    string
	productCategory string
	productSort     string
	productPopular  bool
	productLocale   string
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List the catalog",
	Long: `Lists products filtered by a search query and category and ordered by
one of the sort keys:

  name-asc, name-desc, price-low, price-high,
  stock-low, stock-high, date-new, date-old

Example:
  shop products --query tea --sort price-low
  shop products --category Fruit`,
	Args: cobra.NoArgs,
	RunE: runProducts,
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List product categories",
	Args:  cobra.NoArgs,
	RunE:  runCategories,
}

func init() {
	productsCmd.Flags().StringVarP(&productQuery, "query", "q", "", "Search name and description")
	productsCmd.Flags().StringVarP(&productCategory, "category", "c", catalog.AllCategories, "Category name, or \"all\"")
	productsCmd.Flags().StringVarP(&productSort, "sort", "s", string(catalog.SortNameAsc), "Sort key")
	productsCmd.Flags().BoolVar(&productPopular, "popular", false, "Show the most ordered products instead")
	productsCmd.Flags().StringVar(&productLocale, "locale", "", "BCP 47 tag used to order names (default: root collation)")
	productsCmd.AddCommand(categoriesCmd)
}

func runProducts(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if productPopular {
		popular, err := shop.client.PopularProducts(ctx)
		if err != nil {
			return err
		}
		title(out, "Popular products")
		rows := make([][]string, 0, len(popular))
		for _, p := range popular {
			rows = append(rows, []string{idStr(p.ID), p.Name, p.Category, money(p.Price), itoa(p.Sales)})
		}
		renderTable(out, []string{"ID", "Name", "Category", "Price", "Orders"}, rows)
		return nil
	}

	criteria := catalog.Criteria{
		Query:    productQuery,
		Category: productCategory,
		Sort:     catalog.SortKey(productSort),
	}
	if !criteria.Sort.Valid() {
		return fmt.Errorf("unknown sort key %q", productSort)
	}
	if productLocale != "" {
		tag, err := language.Parse(productLocale)
		if err != nil {
			return fmt.Errorf("parse locale: %w", err)
		}
		criteria.Locale = tag
	}

	products, err := shop.client.ListProducts(ctx)
	if err != nil {
		return err
	}
	shown := catalog.FilterSort(products, criteria)

	title(out, fmt.Sprintf("Products (%d of %d)", len(shown), len(products)))
	if len(shown) == 0 {
		muted(out, "No products match. Try shop products with no filters.")
		return nil
	}
	renderTable(out, productHeaders, productRows(shown))
	return nil
}

// runCategories prefers the storefront's list and falls back to the
// categories present in the catalog.
func runCategories(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	var names []string
	categories, err := shop.client.ListCategories(ctx)
	if err == nil {
		for _, c := range categories {
			names = append(names, c.Name)
		}
	} else {
		products, perr := shop.client.ListProducts(ctx)
		if perr != nil {
			return err
		}
		names = catalog.Categories[models.Product](products)
	}

	title(out, "Categories")
	for _, name := range names {
		fmt.Fprintln(out, "  "+name)
	}
	return nil
}
