package ssotica

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Installment is one accounts-receivable installment row as shown by SSÓtica.
// The json names are the ones the public API has always returned.
type Installment struct {
	CustomerName     string `json:"nome"`
	AmountText       string `json:"valor"`
	InstallmentLabel string `json:"parcela"`
	InstallmentIndex *int   `json:"numeroParcela"`
	InstallmentTotal *int   `json:"totalParcelas"`
	DueDate          string `json:"vencimento"`
}

// InstallmentKey identifies an installment for deduplication.
type InstallmentKey struct {
	CustomerName string
	HasIndex     bool
	Index        int
}

func (i Installment) Key() InstallmentKey {
	key := InstallmentKey{CustomerName: i.CustomerName}
	if i.InstallmentIndex != nil {
		key.HasIndex = true
		key.Index = *i.InstallmentIndex
	}
	return key
}

// Amount parses AmountText ("R$ 1.150,00") into a decimal.
func (i Installment) Amount() (decimal.Decimal, error) {
	text := strings.TrimSpace(i.AmountText)
	text = strings.TrimPrefix(text, "R$")
	text = strings.ReplaceAll(text, " ", "")
	text = strings.ReplaceAll(text, ".", "")
	text = strings.ReplaceAll(text, ",", ".")
	if text == "" {
		return decimal.Zero, fmt.Errorf("parse amount %q: empty", i.AmountText)
	}
	amount, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", i.AmountText, err)
	}
	return amount, nil
}

// DueTime parses DueDate (DD/MM/YYYY) as midnight in loc.
func (i Installment) DueTime(loc *time.Location) (time.Time, error) {
	if i.DueDate == "" {
		return time.Time{}, fmt.Errorf("installment has no due date")
	}
	return time.ParseInLocation("02/01/2006", i.DueDate, loc)
}
