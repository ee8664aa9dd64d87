// Package chat turns incoming messenger text into transactions, queries and
// balance updates. Command keywords are handled locally; everything else goes
// through an IntentParser (normally Gemini).
package chat

import (
	"context"
	"strings"

	"celengan/internal/core"
)

// Channel identifies the messenger a conversation happens on.
type Channel string

const (
	Telegram Channel = "telegram"
	WhatsApp Channel = "whatsapp"
)

type IntentType string

const (
	IntentSpending IntentType = "spending"
	IntentIncome   IntentType = "income"
	IntentQuery    IntentType = "query"
	IntentUnclear  IntentType = "unclear"
)

type QueryType string

const (
	QueryBalance      QueryType = "balance"
	QueryTransactions QueryType = "transactions"
	QueryHelp         QueryType = "help"
)

// Intent is the parsed meaning of one user message. Amount is whole rupiah.
type Intent struct {
	Type        IntentType
	Amount      int64
	Description string
	Category    string
	AccountName string
	QueryType   QueryType
	Language    core.Language
}

// IntentParser extracts an Intent from free-form text. Implementations must
// not invent a hard failure for text they cannot understand; they return an
// unclear intent instead. Errors are reserved for transport problems, and the
// handler degrades those to unclear as well.
type IntentParser interface {
	Parse(ctx context.Context, message string, accounts []core.Account) (Intent, error)
}

// FallbackParser is used when no Gemini API key is configured: every
// free-form message comes back unclear, so only command keywords work.
type FallbackParser struct{}

func (FallbackParser) Parse(_ context.Context, message string, _ []core.Account) (Intent, error) {
	return Intent{Type: IntentUnclear, Language: GuessLanguage(message)}, nil
}

// ResolveAccount matches a mentioned account name against the user's
// accounts: case-insensitive substring containment in either direction, first
// match wins.
func ResolveAccount(accounts []core.Account, name string) (core.Account, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return core.Account{}, false
	}
	for _, a := range accounts {
		haystack := strings.ToLower(a.Name)
		if strings.Contains(haystack, needle) || strings.Contains(needle, haystack) {
			return a, true
		}
	}
	return core.Account{}, false
}

// GuessLanguage mirrors the webhook heuristic: any latin letter means
// English, otherwise Indonesian.
func GuessLanguage(text string) core.Language {
	for _, r := range text {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return core.English
		}
	}
	return core.Indonesian
}
