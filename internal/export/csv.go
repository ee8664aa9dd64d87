// Package export renders the financial summary download.
package export

import (
	"fmt"
	"strings"
	"time"

	"celengan/internal/core"
)

// CSV renders the two-section summary: a title line, the accounts table and
// the transactions table, separated by blank lines. Fields are joined with
// commas without quoting; commas inside descriptions shift columns, a known
// limitation of the format.
func CSV(accounts []core.Account, transactions []core.Transaction, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Celengan Financial Summary - %s %d\n", now.Month(), now.Year())
	b.WriteString("\n")

	b.WriteString("ACCOUNTS\n")
	b.WriteString("Name,Type,Category,Balance\n")
	for _, a := range accounts {
		fmt.Fprintf(&b, "%s,%s,%s,%d\n", a.Name, a.Type, a.Category, a.Balance)
	}
	b.WriteString("\n")

	b.WriteString("TRANSACTIONS\n")
	b.WriteString("Date,Description,Category,Amount\n")
	for _, t := range transactions {
		fmt.Fprintf(&b, "%s,%s,%s,%d\n", t.Date, t.Description, t.Category, t.Amount)
	}

	return b.String()
}

// Filename is the suggested download name, e.g. "celengan-2026-08.csv".
func Filename(now time.Time) string {
	return fmt.Sprintf("celengan-%s.csv", now.UTC().Format("2006-01"))
}
