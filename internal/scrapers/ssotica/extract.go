package ssotica

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"

	"ssotica-backend/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// markup of the "contas a receber" listing
const (
	selectorRow             = ".row"
	selectorCustomerName    = ".cliente-nome a"
	selectorAmount          = ".valor-conta-a-receber"
	selectorInstallmentInfo = ".info-parcela"
	selectorDueDateIcon     = ".fa-clock-o"
)

var installmentLabelRegex = regexp.MustCompile(`(?i)Parcela\s*(\d+)\s*de\s*(\d+)`)
var dueDateRegex = regexp.MustCompile(`\d{2}/\d{2}/\d{4}`)

// Extraction is the result of extracting a listing page.
type Extraction struct {
	Installments []Installment
	// Rows is the amount of elements that matched the row selector.
	Rows int
	// Dropped is the amount of rows without a customer name or amount.
	Dropped int
}

// ExtractInstallments parses a search results page into candidate installments.
// It only fails when the document cannot be parsed at all.
func ExtractInstallments(body []byte) ([]Installment, error) {
	extraction, err := ExtractPage(body)
	if err != nil {
		return nil, err
	}
	return extraction.Installments, nil
}

// ExtractPage is ExtractInstallments with the row counts of the page.
func ExtractPage(body []byte) (Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Extraction{}, fmt.Errorf("parse search results: %w", err)
	}
	return ExtractFromDocument(doc), nil
}

func ExtractFromDocument(doc *goquery.Document) Extraction {
	rows := doc.Find(selectorRow)

	out := Extraction{Rows: rows.Length()}
	rows.Each(func(_ int, row *goquery.Selection) {
		installment, ok := parseRow(row)
		if !ok {
			out.Dropped++
			return
		}
		out.Installments = append(out.Installments, installment)
	})
	return out
}

// parseRow reads a single row, ok is false when the row is structurally
// invalid (no customer name or no amount).
func parseRow(row *goquery.Selection) (installment Installment, ok bool) {
	name := htmlutil.SelectionText(row.Find(selectorCustomerName).First())
	amount := htmlutil.SelectionText(row.Find(selectorAmount).First())
	if name == "" || amount == "" {
		return Installment{}, false
	}

	label := htmlutil.SelectionText(row.Find(selectorInstallmentInfo).First())
	index, total, label := parseInstallmentLabel(label)

	dueText := htmlutil.SelectionText(row.Find(selectorDueDateIcon).First().Parent())

	return Installment{
		CustomerName:     name,
		AmountText:       amount,
		InstallmentLabel: label,
		InstallmentIndex: index,
		InstallmentTotal: total,
		DueDate:          dueDateRegex.FindString(dueText),
	}, true
}

// parseInstallmentLabel extracts n and m out of "Parcela n de m", the label
// is normalized when it matches and returned untouched when it doesn't.
func parseInstallmentLabel(text string) (index, total *int, label string) {
	groups := installmentLabelRegex.FindStringSubmatch(text)
	if len(groups) < 3 {
		return nil, nil, text
	}
	n, err := strconv.Atoi(groups[1])
	if err != nil {
		return nil, nil, text
	}
	m, err := strconv.Atoi(groups[2])
	if err != nil {
		return nil, nil, text
	}
	return &n, &m, fmt.Sprintf("Parcela %d de %d", n, m)
}
