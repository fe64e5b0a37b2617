package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/safar/supershop/internal/models"
	"github.com/shopspring/decimal"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func title(w io.Writer, s string) {
	fmt.Fprintln(w, titleStyle.Render(s))
}

func success(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, okStyle.Render(fmt.Sprintf(format, args...)))
}

func warning(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf(format, args...)))
}

func muted(w io.Writer, s string) {
	fmt.Fprintln(w, mutedStyle.Render(s))
}

func renderTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func idStr(n int64) string {
	return strconv.FormatInt(n, 10)
}

func stockLabel(stock int) string {
	if stock <= 0 {
		return "out of stock"
	}
	return itoa(stock)
}

func dateOf(ts *models.Timestamp) string {
	if ts == nil || ts.IsZero() {
		return "-"
	}
	return ts.Format("2006-01-02")
}

func productRows(products []models.Product) [][]string {
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, []string{idStr(p.ID), p.Name, p.Category, money(p.Price), stockLabel(p.Stock)})
	}
	return rows
}

var productHeaders = []string{"ID", "Name", "Category", "Price", "Stock"}

func orderRows(orders []models.Order) [][]string {
	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, []string{
			idStr(o.ID),
			dateOf(o.CreatedAt),
			itoa(o.TotalItems),
			money(o.Total),
			o.Status,
			o.PaymentMethod,
		})
	}
	return rows
}

var orderHeaders = []string{"Order", "Date", "Items", "Total", "Status", "Payment"}
