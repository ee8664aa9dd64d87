package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"celengan/internal/core"
	"celengan/internal/services"
	"celengan/internal/store"
)

// Handler answers one user message with one reply text. It is transport
// agnostic; the webhook handlers own user lookup and delivery.
type Handler struct {
	store    store.Store
	balances *services.BalanceService
	parser   IntentParser
	now      func() time.Time
}

func NewHandler(st store.Store, balances *services.BalanceService, parser IntentParser) *Handler {
	return &Handler{store: st, balances: balances, parser: parser, now: time.Now}
}

// HandleMessage processes a message from an already-identified user and
// returns the reply to send back. Command keywords short-circuit the intent
// parser; free-form text goes to the model.
func (h *Handler) HandleMessage(ctx context.Context, userID, text string) (string, error) {
	accounts, err := h.store.ListAccounts(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("list accounts: %w", err)
	}

	if reply, handled := h.handleCommand(ctx, userID, text, accounts); handled {
		return reply, nil
	}

	intent, err := h.parser.Parse(ctx, text, accounts)
	if err != nil {
		// A broken parser is a clarification, not an outage.
		slog.ErrorContext(ctx, "Intent parse failed", "error", err)
		intent = Intent{Type: IntentUnclear, Language: GuessLanguage(text)}
	}

	lang := intent.Language
	if lang == "" {
		lang = GuessLanguage(text)
	}

	switch intent.Type {
	case IntentQuery:
		return h.handleQuery(ctx, userID, intent.QueryType, lang, accounts)
	case IntentSpending, IntentIncome:
		return h.recordTransaction(ctx, userID, intent, lang, accounts), nil
	default:
		return ClarificationRequest(lang), nil
	}
}

// handleCommand recognises the fixed keyword surface in both locales. The
// matched keyword decides the reply language.
func (h *Handler) handleCommand(ctx context.Context, userID, text string, accounts []core.Account) (string, bool) {
	fields := strings.Fields(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(text), "/")))
	if len(fields) == 0 {
		return "", false
	}

	lang := core.English
	switch fields[0] {
	case "saldo", "transaksi", "bantuan", "akun", "atur":
		lang = core.Indonesian
	}

	switch fields[0] {
	case "saldo", "balance":
		if len(fields) == 1 {
			return BalanceMessage(lang, accounts), true
		}
	case "transaksi", "transactions":
		if len(fields) == 1 {
			reply, err := h.monthTransactions(ctx, userID, lang)
			if err != nil {
				slog.ErrorContext(ctx, "List transactions failed", "error", err)
				return SaveFailed(lang), true
			}
			return reply, true
		}
	case "bantuan", "help":
		if len(fields) == 1 {
			return HelpMessage(lang, accounts), true
		}
	case "akun", "accounts", "account":
		if len(fields) == 1 {
			return AccountList(lang, accounts, h.defaultAccountID(ctx, userID)), true
		}
		if len(fields) == 2 {
			return h.setDefaultAccount(ctx, userID, fields[1], lang, accounts), true
		}
	case "atur", "set":
		if len(fields) >= 3 {
			name := strings.Join(fields[1:len(fields)-1], " ")
			return h.setBalanceByName(ctx, userID, name, fields[len(fields)-1], lang, accounts), true
		}
	}
	return "", false
}

func (h *Handler) handleQuery(ctx context.Context, userID string, q QueryType, lang core.Language, accounts []core.Account) (string, error) {
	switch q {
	case QueryBalance:
		return BalanceMessage(lang, accounts), nil
	case QueryTransactions:
		return h.monthTransactions(ctx, userID, lang)
	case QueryHelp:
		return HelpMessage(lang, accounts), nil
	default:
		return ClarificationRequest(lang), nil
	}
}

const recentTransactionLimit = 10

func (h *Handler) monthTransactions(ctx context.Context, userID string, lang core.Language) (string, error) {
	all, err := h.store.ListTransactions(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("list transactions: %w", err)
	}
	key := core.DateOf(h.now()).MonthKey()
	var month []core.Transaction
	for _, t := range all {
		if t.Date.MonthKey() != key {
			continue
		}
		month = append(month, t)
		if len(month) == recentTransactionLimit {
			break
		}
	}
	return TransactionsMessage(lang, month), nil
}

func (h *Handler) recordTransaction(ctx context.Context, userID string, in Intent, lang core.Language, accounts []core.Account) string {
	accountID, accountName := "", ""
	if a, ok := ResolveAccount(accounts, in.AccountName); ok {
		accountID, accountName = a.ID, a.Name
	} else if id := h.defaultAccountID(ctx, userID); id != "" {
		for _, a := range accounts {
			if a.ID == id {
				accountID, accountName = a.ID, a.Name
				break
			}
		}
	}

	kind := core.Spending
	if in.Type == IntentIncome {
		kind = core.Income
	}

	_, err := h.balances.CreateTransaction(ctx, core.Transaction{
		UserID:      userID,
		AccountID:   accountID,
		Description: in.Description,
		Amount:      in.Amount,
		Category:    in.Category,
		Date:        core.DateOf(h.now()),
		Type:        kind,
	})
	if err != nil {
		slog.ErrorContext(ctx, "Save chat transaction failed", "error", err)
		return SaveFailed(lang)
	}
	return TransactionSaved(lang, in, accountName)
}

func (h *Handler) setBalanceByName(ctx context.Context, userID, name, amountText string, lang core.Language, accounts []core.Account) string {
	a, ok := ResolveAccount(accounts, name)
	if !ok {
		return UnknownAccount(lang, name, accounts)
	}
	amount, err := core.ParseAmount(amountText)
	if err != nil {
		return BadAmount(lang, amountText)
	}
	snap, err := h.balances.SetBalance(ctx, userID, a.ID, amount)
	if err != nil {
		slog.ErrorContext(ctx, "Chat balance update failed", "account_id", a.ID, "error", err)
		return SaveFailed(lang)
	}
	return BalanceUpdated(lang, a.Name, snap.PreviousBalance, snap.BalanceAtTime)
}

func (h *Handler) setDefaultAccount(ctx context.Context, userID, indexText string, lang core.Language, accounts []core.Account) string {
	idx, err := strconv.Atoi(indexText)
	if err != nil || idx < 1 || idx > len(accounts) {
		return AccountList(lang, accounts, h.defaultAccountID(ctx, userID))
	}
	chosen := accounts[idx-1]

	settings, err := h.store.GetSettings(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		slog.ErrorContext(ctx, "Load settings failed", "error", err)
		return SaveFailed(lang)
	}
	settings.UserID = userID
	settings.TelegramDefaultAccountID = chosen.ID
	if err := h.store.UpsertSettings(ctx, settings); err != nil {
		slog.ErrorContext(ctx, "Save default account failed", "error", err)
		return SaveFailed(lang)
	}
	return DefaultAccountSet(lang, chosen.Name)
}

func (h *Handler) defaultAccountID(ctx context.Context, userID string) string {
	settings, err := h.store.GetSettings(ctx, userID)
	if err != nil {
		return ""
	}
	return settings.TelegramDefaultAccountID
}
