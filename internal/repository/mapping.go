package repository

import (
	"fmt"
	"time"

	"github.com/nikolayk812/pickup-checkout/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

func mapMoney(amount decimal.Decimal, cur string) (domain.Money, error) {
	parsedCurrency, err := currency.ParseISO(cur)
	if err != nil {
		return domain.Money{}, fmt.Errorf("currency[%s] is not valid: %w", cur, err)
	}

	return domain.Money{Amount: amount, Currency: parsedCurrency}, nil
}

// dayParam stores a calendar day as a UTC midnight DATE value.
func dayParam(d domain.Day) time.Time {
	return d.Time(time.UTC)
}
