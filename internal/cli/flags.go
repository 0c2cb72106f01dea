package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iir20/amar-dokan-pos-system/internal/checkout"
	"github.com/iir20/amar-dokan-pos-system/internal/model"
)

func parseDecimal(name, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, model.Validation("cli", fmt.Sprintf("--%s is not a number", name),
			map[string]string{name: raw})
	}
	return d, nil
}

// parseDate reads YYYY-MM-DD as midnight UTC. Empty means the zero time.
func parseDate(name, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, model.Validation("cli", fmt.Sprintf("--%s must be YYYY-MM-DD", name),
			map[string]string{name: raw})
	}
	return t, nil
}

// parseDateRange reads --from/--to. The to date is inclusive, so the returned
// bound is the following midnight.
func parseDateRange(from, to string) (time.Time, time.Time, error) {
	start, err := parseDate("from", from)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseDate("to", to)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !end.IsZero() {
		end = end.AddDate(0, 0, 1)
	}
	return start, end, nil
}

// parseCartLine reads ITEM:QTY or ITEM:QTY@PRICE.
func parseCartLine(raw string) (checkout.CartLine, error) {
	invalid := model.Validation("cli", "--line must be ITEM:QTY or ITEM:QTY@PRICE",
		map[string]string{"line": raw})

	head, priceRaw, hasPrice := strings.Cut(raw, "@")
	i := strings.LastIndex(head, ":")
	if i <= 0 || i == len(head)-1 {
		return checkout.CartLine{}, invalid
	}
	qty, err := decimal.NewFromString(head[i+1:])
	if err != nil {
		return checkout.CartLine{}, invalid
	}
	line := checkout.CartLine{ItemID: head[:i], Quantity: qty}
	if hasPrice {
		price, err := decimal.NewFromString(priceRaw)
		if err != nil {
			return checkout.CartLine{}, invalid
		}
		line.Price = &price
	}
	return line, nil
}
