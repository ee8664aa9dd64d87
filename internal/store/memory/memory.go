// Package memory is the in-memory store used by tests and the "memory" data
// backend. It mirrors the sqlite implementation's semantics, including
// snapshot ordering and account deletion cascades.
package memory

import (
	"context"
	"sort"
	"sync"

	"celengan/internal/core"
	"celengan/internal/store"
)

type Memory struct {
	mu           sync.Mutex
	accounts     map[string]core.Account
	snapshots    map[string]core.Snapshot
	transactions map[string]core.Transaction
	settings     map[string]core.Settings
	nextSeq      int64
}

func New() *Memory {
	return &Memory{
		accounts:     make(map[string]core.Account),
		snapshots:    make(map[string]core.Snapshot),
		transactions: make(map[string]core.Transaction),
		settings:     make(map[string]core.Settings),
	}
}

func (m *Memory) Close() error { return nil }

func (m *Memory) CreateAccount(_ context.Context, a core.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[a.ID] = a
	return nil
}

func (m *Memory) GetAccount(_ context.Context, userID, id string) (core.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok || a.UserID != userID {
		return core.Account{}, store.ErrNotFound
	}
	return a, nil
}

func (m *Memory) ListAccounts(_ context.Context, userID string) ([]core.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.Account
	for _, a := range m.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) UpdateAccountBalance(_ context.Context, userID, id string, balance int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok || a.UserID != userID {
		return store.ErrNotFound
	}
	a.Balance = balance
	m.accounts[id] = a
	return nil
}

func (m *Memory) UpdateAccountMode(_ context.Context, userID, id string, mode core.BalanceMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok || a.UserID != userID {
		return store.ErrNotFound
	}
	a.BalanceMode = mode
	m.accounts[id] = a
	return nil
}

func (m *Memory) DeleteAccount(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.accounts[id]; !ok || a.UserID != userID {
		return store.ErrNotFound
	}
	delete(m.accounts, id)
	for sid, s := range m.snapshots {
		if s.AccountID == id {
			delete(m.snapshots, sid)
		}
	}
	for tid, t := range m.transactions {
		if t.AccountID == id {
			t.AccountID = ""
			m.transactions[tid] = t
		}
	}
	return nil
}

func (m *Memory) AppendSnapshot(_ context.Context, s core.Snapshot) (core.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextSeq++
	s.Seq = m.nextSeq
	m.snapshots[s.ID] = s
	return s, nil
}

func (m *Memory) ListSnapshots(_ context.Context, userID string) ([]core.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.Snapshot
	for _, s := range m.snapshots {
		a, ok := m.accounts[s.AccountID]
		if ok && a.UserID == userID {
			out = append(out, s)
		}
	}
	core.SortNewestFirst(out)
	return out, nil
}

func (m *Memory) GetSnapshot(_ context.Context, userID, id string) (core.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.snapshots[id]
	if !ok {
		return core.Snapshot{}, store.ErrNotFound
	}
	a, ok := m.accounts[s.AccountID]
	if !ok || a.UserID != userID {
		return core.Snapshot{}, store.ErrNotFound
	}
	return s, nil
}

func (m *Memory) UpdateSnapshot(_ context.Context, userID, id string, balanceAtTime, previousBalance int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.snapshots[id]
	if !ok {
		return store.ErrNotFound
	}
	a, ok := m.accounts[s.AccountID]
	if !ok || a.UserID != userID {
		return store.ErrNotFound
	}
	s.BalanceAtTime = balanceAtTime
	s.PreviousBalance = previousBalance
	m.snapshots[id] = s
	return nil
}

func (m *Memory) DeleteSnapshot(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.snapshots[id]
	if !ok {
		return store.ErrNotFound
	}
	a, ok := m.accounts[s.AccountID]
	if !ok || a.UserID != userID {
		return store.ErrNotFound
	}
	delete(m.snapshots, id)
	return nil
}

func (m *Memory) CreateTransaction(_ context.Context, t core.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[t.ID] = t
	return nil
}

func (m *Memory) GetTransaction(_ context.Context, userID, id string) (core.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[id]
	if !ok || t.UserID != userID {
		return core.Transaction{}, store.ErrNotFound
	}
	return t, nil
}

func (m *Memory) ListTransactions(_ context.Context, userID string) ([]core.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.Transaction
	for _, t := range m.transactions {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date.Time) {
			return out[i].ID > out[j].ID
		}
		return out[i].Date.After(out[j].Date.Time)
	})
	return out, nil
}

func (m *Memory) DeleteTransaction(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[id]
	if !ok || t.UserID != userID {
		return store.ErrNotFound
	}
	delete(m.transactions, id)
	return nil
}

func (m *Memory) GetSettings(_ context.Context, userID string) (core.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.settings[userID]
	if !ok {
		return core.Settings{}, store.ErrNotFound
	}
	return s, nil
}

func (m *Memory) UpsertSettings(_ context.Context, s core.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[s.UserID] = s
	return nil
}

func (m *Memory) FindUserByTelegram(_ context.Context, username string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.settings {
		if s.TelegramUsername != "" && s.TelegramUsername == username {
			return s.UserID, nil
		}
	}
	return "", store.ErrNotFound
}

func (m *Memory) FindUserByWhatsApp(_ context.Context, phone string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.settings {
		if s.WhatsAppPhone != "" && s.WhatsAppPhone == phone {
			return s.UserID, nil
		}
	}
	return "", store.ErrNotFound
}

// Compile-time check that Memory satisfies the full store contract.
var _ store.Store = (*Memory)(nil)
