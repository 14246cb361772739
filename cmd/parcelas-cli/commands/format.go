package commands

import (
	"time"

	"ssotica-backend/internal/components/chrono"
	"ssotica-backend/internal/scrapers/ssotica"

	"github.com/shopspring/decimal"
)

// sumAmounts adds up the amounts that can be parsed and counts the others.
func sumAmounts(installments []ssotica.Installment) (total decimal.Decimal, unparsed int) {
	total = decimal.Zero
	for _, installment := range installments {
		amount, err := installment.Amount()
		if err != nil {
			unparsed++
			continue
		}
		total = total.Add(amount)
	}
	return total, unparsed
}

// dueStatus says whether the installment is overdue on the calendar of clock.
func dueStatus(installment ssotica.Installment, clock chrono.API) string {
	due, err := installment.DueTime(clock.Location())
	if err != nil {
		return "-"
	}
	now := clock.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, clock.Location())
	switch {
	case due.Before(today):
		return "overdue"
	case due.Equal(today):
		return "due today"
	}
	return "open"
}
