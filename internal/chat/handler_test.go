package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"celengan/internal/core"
	"celengan/internal/services"
	"celengan/internal/store/memory"
)

const testUser = "user-1"

type stubParser struct {
	intent Intent
	err    error
}

func (p stubParser) Parse(_ context.Context, _ string, _ []core.Account) (Intent, error) {
	return p.intent, p.err
}

func newTestHandler(t *testing.T, parser IntentParser) (*Handler, *memory.Memory, *services.BalanceService) {
	t.Helper()
	mem := memory.New()
	balances := services.NewBalanceService(mem)
	if parser == nil {
		parser = stubParser{intent: Intent{Type: IntentUnclear, Language: core.English}}
	}
	return NewHandler(mem, balances, parser), mem, balances
}

func seedAccount(t *testing.T, balances *services.BalanceService, name string, balance int64) core.Account {
	t.Helper()
	a, err := balances.CreateAccount(context.Background(), testUser, name, core.Cash, core.Core)
	if err != nil {
		t.Fatalf("CreateAccount(%q): %v", name, err)
	}
	if balance != 0 {
		if _, err := balances.SetBalance(context.Background(), testUser, a.ID, balance); err != nil {
			t.Fatalf("SetBalance(%q, %d): %v", name, balance, err)
		}
		a.Balance = balance
	}
	return a
}

func TestResolveAccount(t *testing.T) {
	accounts := []core.Account{
		{ID: "1", Name: "BCA Savings"},
		{ID: "2", Name: "GoPay"},
	}

	tests := []struct {
		name    string
		mention string
		wantID  string
		wantOK  bool
	}{
		{"exact", "GoPay", "2", true},
		{"case insensitive", "gopay", "2", true},
		{"mention inside name", "bca", "1", true},
		{"name inside mention", "my bca savings account", "1", true},
		{"no match", "Jenius", "", false},
		{"empty", "  ", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveAccount(accounts, tt.mention)
			if ok != tt.wantOK || got.ID != tt.wantID {
				t.Errorf("ResolveAccount(%q) = (%q, %v), want (%q, %v)",
					tt.mention, got.ID, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestBalanceCommand(t *testing.T) {
	h, _, balances := newTestHandler(t, nil)
	seedAccount(t, balances, "BCA", 1_500_000)
	seedAccount(t, balances, "GoPay", 250_000)

	reply, err := h.HandleMessage(context.Background(), testUser, "/saldo")
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	for _, want := range []string{"Saldo Akunmu", "BCA: Rp 1.500.000", "GoPay: Rp 250.000", "Total: Rp 1.750.000"} {
		if !strings.Contains(reply, want) {
			t.Errorf("balance reply missing %q:\n%s", want, reply)
		}
	}

	reply, err = h.HandleMessage(context.Background(), testUser, "balance")
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if !strings.Contains(reply, "Your Account Balances") {
		t.Errorf("english keyword should get english reply:\n%s", reply)
	}
}

func TestSetBalanceCommand(t *testing.T) {
	h, mem, balances := newTestHandler(t, nil)
	a := seedAccount(t, balances, "BCA", 1_000_000)

	reply, err := h.HandleMessage(context.Background(), testUser, "atur bca 1.5jt")
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if !strings.Contains(reply, "Rp 1.000.000 → Rp 1.500.000") {
		t.Errorf("update reply = %q, want old → new balance", reply)
	}

	got, _ := mem.GetAccount(context.Background(), testUser, a.ID)
	if got.Balance != 1_500_000 {
		t.Errorf("balance = %d, want 1500000", got.Balance)
	}
	// Seed snapshot plus the one from the command.
	snaps, _ := mem.ListSnapshots(context.Background(), testUser)
	if len(snaps) != 2 {
		t.Errorf("snapshot count = %d, want 2", len(snaps))
	}
}

func TestSetBalanceCommandCorrectiveReplies(t *testing.T) {
	h, _, balances := newTestHandler(t, nil)
	seedAccount(t, balances, "BCA", 0)

	reply, err := h.HandleMessage(context.Background(), testUser, "set jenius 500rb")
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if !strings.Contains(reply, "not found") || !strings.Contains(reply, "BCA") {
		t.Errorf("unknown account reply should list valid accounts:\n%s", reply)
	}

	reply, err = h.HandleMessage(context.Background(), testUser, "set bca banyak")
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if !strings.Contains(reply, "not valid") {
		t.Errorf("bad amount reply = %q, want corrective message", reply)
	}
}

func TestDefaultAccountCommand(t *testing.T) {
	ctx := context.Background()
	h, mem, balances := newTestHandler(t, nil)
	seedAccount(t, balances, "BCA", 0)
	b := seedAccount(t, balances, "GoPay", 0)

	reply, err := h.HandleMessage(ctx, testUser, "accounts")
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if !strings.Contains(reply, "1. BCA") || !strings.Contains(reply, "2. GoPay") {
		t.Errorf("account list missing indexed entries:\n%s", reply)
	}

	if _, err := h.HandleMessage(ctx, testUser, "accounts 2"); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	settings, err := mem.GetSettings(ctx, testUser)
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if settings.TelegramDefaultAccountID != b.ID {
		t.Errorf("default account = %q, want %q", settings.TelegramDefaultAccountID, b.ID)
	}

	// Out-of-range index falls back to the listing, not a silent no-op.
	reply, _ = h.HandleMessage(ctx, testUser, "accounts 9")
	if !strings.Contains(reply, "1. BCA") {
		t.Errorf("bad index should re-list accounts:\n%s", reply)
	}
}

func TestParsedSpendingUsesDefaultAccount(t *testing.T) {
	ctx := context.Background()
	parser := stubParser{intent: Intent{
		Type:        IntentSpending,
		Amount:      25_000,
		Description: "Kopi",
		Category:    "food",
		Language:    core.Indonesian,
	}}
	h, mem, balances := newTestHandler(t, parser)
	a := seedAccount(t, balances, "GoPay", 100_000)
	if err := balances.SetBalanceMode(ctx, testUser, a.ID, core.Auto); err != nil {
		t.Fatalf("SetBalanceMode: %v", err)
	}
	if err := mem.UpsertSettings(ctx, core.Settings{UserID: testUser, TelegramDefaultAccountID: a.ID}); err != nil {
		t.Fatalf("UpsertSettings: %v", err)
	}

	reply, err := h.HandleMessage(ctx, testUser, "beli kopi 25rb")
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	for _, want := range []string{"Pengeluaran dicatat", "Kopi", "Rp 25.000", "Akun: GoPay", "Kategori: food"} {
		if !strings.Contains(reply, want) {
			t.Errorf("confirmation missing %q:\n%s", want, reply)
		}
	}

	got, _ := mem.GetAccount(ctx, testUser, a.ID)
	if got.Balance != 75_000 {
		t.Errorf("auto balance = %d, want 75000", got.Balance)
	}
}

func TestParsedAccountNameBeatsDefault(t *testing.T) {
	ctx := context.Background()
	parser := stubParser{intent: Intent{
		Type:        IntentIncome,
		Amount:      5_000_000,
		Description: "Gaji",
		AccountName: "bca",
		Language:    core.Indonesian,
	}}
	h, mem, balances := newTestHandler(t, parser)
	a := seedAccount(t, balances, "BCA", 0)
	seedAccount(t, balances, "GoPay", 0)

	if _, err := h.HandleMessage(ctx, testUser, "gajian 5jt ke bca"); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}

	txs, _ := mem.ListTransactions(ctx, testUser)
	if len(txs) != 1 {
		t.Fatalf("transaction count = %d, want 1", len(txs))
	}
	if txs[0].AccountID != a.ID {
		t.Errorf("transaction linked to %q, want BCA %q", txs[0].AccountID, a.ID)
	}
	if txs[0].Type != core.Income || txs[0].Amount != 5_000_000 {
		t.Errorf("transaction = %+v, want income of 5000000", txs[0])
	}
}

func TestParserFailureAsksForClarification(t *testing.T) {
	h, _, _ := newTestHandler(t, stubParser{err: errors.New("model unavailable")})

	reply, err := h.HandleMessage(context.Background(), testUser, "mumble mumble")
	if err != nil {
		t.Fatalf("parser failure must not fail the handler: %v", err)
	}
	if !strings.Contains(reply, "Sorry, I didn't understand") {
		t.Errorf("reply = %q, want clarification request", reply)
	}
}

func TestUnclearIntentReply(t *testing.T) {
	h, _, _ := newTestHandler(t, stubParser{intent: Intent{Type: IntentUnclear, Language: core.Indonesian}})

	reply, err := h.HandleMessage(context.Background(), testUser, "???")
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if !strings.Contains(reply, "Maaf, saya tidak mengerti") {
		t.Errorf("reply = %q, want Indonesian clarification", reply)
	}
}
