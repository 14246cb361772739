package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"

	"ssotica-backend/internal/scrapers/ssotica"
)

type fakeSearcher struct {
	mutex sync.Mutex

	page     []byte
	loginErr error
	queryErr []error

	logins  int
	queries []string
}

func (f *fakeSearcher) EnsureAuthenticated(ctx context.Context) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.logins++
	return f.loginErr
}

func (f *fakeSearcher) QueryInstallments(ctx context.Context, rawName string) ([]byte, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.queries = append(f.queries, rawName)
	if len(f.queryErr) > 0 {
		err := f.queryErr[0]
		f.queryErr = f.queryErr[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.page, nil
}

func (f *fakeSearcher) Calls() (logins, queries int) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.logins, len(f.queries)
}

// renderListing produces a results page in SSÓtica's markup.
func renderListing(records []ssotica.Installment) []byte {
	var sb strings.Builder
	sb.WriteString(`<html><body><div class="container">`)
	for _, record := range records {
		label := record.InstallmentLabel
		if record.InstallmentIndex != nil && record.InstallmentTotal != nil {
			label = fmt.Sprintf("Parcela %d de %d", *record.InstallmentIndex, *record.InstallmentTotal)
		}
		fmt.Fprintf(
			&sb,
			`<div class="row"><div class="cliente-nome"><a href="#">%s</a></div>`+
				`<span class="info-parcela">%s</span>`+
				`<span class="valor-conta-a-receber">%s</span>`+
				`<span><i class="fa fa-clock-o"></i> %s</span></div>`,
			html.EscapeString(record.CustomerName),
			html.EscapeString(label),
			html.EscapeString(record.AmountText),
			html.EscapeString(record.DueDate),
		)
	}
	sb.WriteString(`</div></body></html>`)
	return []byte(sb.String())
}

func installment(name string, index, total int) ssotica.Installment {
	return ssotica.Installment{
		CustomerName:     name,
		AmountText:       "R$ 100,00",
		InstallmentLabel: fmt.Sprintf("Parcela %d de %d", index, total),
		InstallmentIndex: &index,
		InstallmentTotal: &total,
		DueDate:          "10/07/2024",
	}
}
