// Package export renders admin reports as xlsx workbooks.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tealeg/xlsx"

	"jinstore-backend/models"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	moneyFormat = "#,##0.00"
	timeLayout  = "2006-01-02 15:04:05"
)

var (
	orderHeaders = []string{
		"Order Ref", "Created", "Customer", "Status", "Items", "Payment",
		"Shipping Method", "Items Total", "Shipping", "Total", "City", "Country",
	}
	productHeaders = []string{
		"ID", "Name", "Category", "Old Price", "New Price", "Stock",
		"Trending", "Rating", "Reviews", "Created", "Updated",
	}
)

func WriteOrders(w io.Writer, orders []models.Order) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}
	header(sheet, orderHeaders)

	for _, o := range orders {
		row := sheet.AddRow()
		row.AddCell().SetString(o.OrderRef)
		row.AddCell().SetString(formatTime(o.CreatedAt))
		row.AddCell().SetString(o.CustomerEmail)
		row.AddCell().SetString(string(o.Status))
		row.AddCell().SetString(lineSummary(o.Items))
		row.AddCell().SetString(string(o.PaymentMethod))
		row.AddCell().SetString(string(o.ShippingMethod))
		money(row, o.ItemsTotal)
		money(row, o.ShippingCost)
		money(row, o.TotalAmount)
		row.AddCell().SetString(o.DeliveryAddress.City)
		row.AddCell().SetString(o.DeliveryAddress.Country)
	}
	return file.Write(w)
}

func WriteProducts(w io.Writer, products []models.Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}
	header(sheet, productHeaders)

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetString(p.ID.Hex())
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(p.Category)
		money(row, p.OldPrice)
		money(row, p.NewPrice)
		row.AddCell().SetInt(p.Stock)
		row.AddCell().SetBool(p.Trending)
		row.AddCell().SetFloatWithFormat(p.Rating, "0.0")
		row.AddCell().SetInt(p.ReviewCount)
		row.AddCell().SetString(formatTime(p.CreatedAt))
		row.AddCell().SetString(formatTime(p.UpdatedAt))
	}
	return file.Write(w)
}

// Filename stamps a download name with the export date.
func Filename(kind string, now time.Time) string {
	return fmt.Sprintf("%s-%s.xlsx", kind, now.Format("20060102"))
}

func header(sheet *xlsx.Sheet, names []string) {
	row := sheet.AddRow()
	for _, h := range names {
		row.AddCell().SetString(h)
	}
}

func money(row *xlsx.Row, cents int64) {
	row.AddCell().SetFloatWithFormat(float64(cents)/100, moneyFormat)
}

func lineSummary(items []models.OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprintf("%s x%d", it.Name, it.Quantity))
	}
	return strings.Join(parts, "; ")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}
