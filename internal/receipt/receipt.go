// Package receipt builds the printable record of a completed sale. Building
// is pure: document in, document out, no I/O.
package receipt

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/scanline/pos-terminal/internal/domain/business"
	"github.com/scanline/pos-terminal/internal/domain/cart"
	"github.com/scanline/pos-terminal/internal/domain/sale"
)

// Line is one printed line item.
type Line struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// Document is the renderable receipt.
type Document struct {
	Business      business.Profile
	ReceiptNumber string
	IssuedAt      time.Time
	Lines         []Line
	Total         decimal.Decimal
	Customer      sale.CustomerInfo
}

// Build assembles a receipt from the cart that was just sold, the customer
// info it was sold to, and the merchant profile. The sale record supplies
// the receipt number and timestamp issued by the backend.
func Build(items []cart.Item, customer sale.CustomerInfo, total decimal.Decimal, profile business.Profile, rec *sale.Record) (Document, error) {
	if len(items) == 0 {
		return Document{}, errors.New("no items to print")
	}
	if rec == nil {
		return Document{}, errors.New("sale record required")
	}

	lines := make([]Line, len(items))
	for i, item := range items {
		lines[i] = Line{
			Name:      item.Product.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.Product.Price,
			LineTotal: item.Subtotal(),
		}
	}

	issuedAt := rec.CreatedAt
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}

	return Document{
		Business:      profile,
		ReceiptNumber: rec.ReceiptNumber,
		IssuedAt:      issuedAt,
		Lines:         lines,
		Total:         total.Round(2),
		Customer:      customer,
	}, nil
}

// renderWidth is the character width of a typical thermal printer roll.
const renderWidth = 42

// RenderText produces the fixed-width printable rendition.
func RenderText(doc Document) string {
	var b strings.Builder
	rule := strings.Repeat("-", renderWidth)

	if doc.Business.Name != "" {
		b.WriteString(center(doc.Business.Name))
	}
	if doc.Business.Address != "" {
		b.WriteString(center(doc.Business.Address))
	}
	if doc.Business.Phone != "" {
		b.WriteString(center(doc.Business.Phone))
	}
	b.WriteString(rule + "\n")

	fmt.Fprintf(&b, "Receipt: %s\n", doc.ReceiptNumber)
	fmt.Fprintf(&b, "Date:    %s\n", doc.IssuedAt.Format("2006-01-02 15:04"))
	if doc.Customer.Name != "" {
		fmt.Fprintf(&b, "Customer: %s\n", doc.Customer.Name)
	}
	b.WriteString(rule + "\n")

	for _, line := range doc.Lines {
		b.WriteString(truncate(line.Name) + "\n")
		qty := fmt.Sprintf("  %d x %s", line.Quantity, line.UnitPrice.StringFixed(2))
		amount := line.LineTotal.StringFixed(2)
		b.WriteString(padBetween(qty, amount) + "\n")
	}

	b.WriteString(rule + "\n")
	b.WriteString(padBetween("TOTAL", doc.Total.StringFixed(2)) + "\n")
	b.WriteString(rule + "\n")
	b.WriteString(center("Thank you for your purchase"))
	return b.String()
}

func center(s string) string {
	if len(s) >= renderWidth {
		return s + "\n"
	}
	pad := (renderWidth - len(s)) / 2
	return strings.Repeat(" ", pad) + s + "\n"
}

func truncate(s string) string {
	if len(s) <= renderWidth {
		return s
	}
	return s[:renderWidth-1] + "…"
}

func padBetween(left, right string) string {
	gap := renderWidth - len(left) - len(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}
