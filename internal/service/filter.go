package service

import (
	"strings"

	"ssotica-backend/internal/scrapers/ssotica"
)

// installments outside this range are not part of a regular payment plan
const (
	minInstallmentIndex = 1
	maxInstallmentIndex = 6
)

// NormalizeCustomerName removes formatting inconsistencies from user input.
func NormalizeCustomerName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// SearchCriteria is the validated input of a single search.
type SearchCriteria struct {
	// RawName is sent to SSÓtica as typed, it does its own matching.
	RawName string
	// NormalizedName is trimmed and lower-cased, it is what results are filtered by.
	NormalizedName string
}

func NewSearchCriteria(rawName string) (SearchCriteria, error) {
	normalized := NormalizeCustomerName(rawName)
	if normalized == "" {
		return SearchCriteria{}, ssotica.NewInvalidInputError("customer name must not be empty")
	}
	return SearchCriteria{
		RawName:        rawName,
		NormalizedName: normalized,
	}, nil
}

// FilterInstallments keeps the installments of customers whose name contains
// normalizedName and whose installment number is known and within range. Only
// the first installment for each (customer, number) pair is kept, in order.
func FilterInstallments(records []ssotica.Installment, normalizedName string) []ssotica.Installment {
	seen := make(map[ssotica.InstallmentKey]struct{}, len(records))
	out := make([]ssotica.Installment, 0, len(records))
	for _, record := range records {
		if !strings.Contains(strings.ToLower(record.CustomerName), normalizedName) {
			continue
		}
		index := record.InstallmentIndex
		if index == nil || *index < minInstallmentIndex || *index > maxInstallmentIndex {
			continue
		}

		key := record.Key()
		if _, duplicate := seen[key]; duplicate {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, record)
	}
	return out
}
