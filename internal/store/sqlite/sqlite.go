// Package sqlite is the production store backed by modernc.org/sqlite.
// The implicit rowid of balance_history doubles as the snapshot insertion
// order (Seq), which breaks timestamp ties when two snapshots land within
// the same second.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"celengan/internal/core"
	"celengan/internal/store"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db *sql.DB
}

func New(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) CreateAccount(ctx context.Context, a core.Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, user_id, name, type, category, balance, balance_mode, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Name, string(a.Type), string(a.Category), a.Balance, string(a.BalanceMode),
		a.CreatedAt.UTC(), a.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *Repository) GetAccount(ctx context.Context, userID, id string) (core.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, type, category, balance, balance_mode, created_at, updated_at
		FROM accounts WHERE id = ? AND user_id = ?`, id, userID)
	return scanAccount(row)
}

func (r *Repository) ListAccounts(ctx context.Context, userID string) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, type, category, balance, balance_mode, created_at, updated_at
		FROM accounts WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateAccountBalance(ctx context.Context, userID, id string, balance int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET balance = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		balance, time.Now().UTC(), id, userID)
	if err != nil {
		return fmt.Errorf("update account balance: %w", err)
	}
	return requireRow(res)
}

func (r *Repository) UpdateAccountMode(ctx context.Context, userID, id string, mode core.BalanceMode) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET balance_mode = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		string(mode), time.Now().UTC(), id, userID)
	if err != nil {
		return fmt.Errorf("update account mode: %w", err)
	}
	return requireRow(res)
}

func (r *Repository) DeleteAccount(ctx context.Context, userID, id string) error {
	// Snapshots cascade and transactions unlink via the schema's foreign keys.
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return requireRow(res)
}

func (r *Repository) AppendSnapshot(ctx context.Context, s core.Snapshot) (core.Snapshot, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO balance_history (id, account_id, balance_at_time, previous_balance, recorded_at)
		VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.AccountID, s.BalanceAtTime, s.PreviousBalance, s.RecordedAt.UTC())
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("insert snapshot: %w", err)
	}
	seq, err := res.LastInsertId()
	if err == nil {
		s.Seq = seq
	}
	return s, nil
}

func (r *Repository) ListSnapshots(ctx context.Context, userID string) ([]core.Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT h.id, h.rowid, h.account_id, h.balance_at_time, h.previous_balance, h.recorded_at
		FROM balance_history h
		JOIN accounts a ON a.id = h.account_id
		WHERE a.user_id = ?
		ORDER BY h.recorded_at DESC, h.rowid DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []core.Snapshot
	for rows.Next() {
		var s core.Snapshot
		if err := rows.Scan(&s.ID, &s.Seq, &s.AccountID, &s.BalanceAtTime, &s.PreviousBalance, &s.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repository) GetSnapshot(ctx context.Context, userID, id string) (core.Snapshot, error) {
	var s core.Snapshot
	err := r.db.QueryRowContext(ctx, `
		SELECT h.id, h.rowid, h.account_id, h.balance_at_time, h.previous_balance, h.recorded_at
		FROM balance_history h
		JOIN accounts a ON a.id = h.account_id
		WHERE h.id = ? AND a.user_id = ?`, id, userID).
		Scan(&s.ID, &s.Seq, &s.AccountID, &s.BalanceAtTime, &s.PreviousBalance, &s.RecordedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Snapshot{}, store.ErrNotFound
	}
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("get snapshot: %w", err)
	}
	return s, nil
}

func (r *Repository) UpdateSnapshot(ctx context.Context, userID, id string, balanceAtTime, previousBalance int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE balance_history SET balance_at_time = ?, previous_balance = ?
		WHERE id = ? AND account_id IN (SELECT id FROM accounts WHERE user_id = ?)`,
		balanceAtTime, previousBalance, id, userID)
	if err != nil {
		return fmt.Errorf("update snapshot: %w", err)
	}
	return requireRow(res)
}

func (r *Repository) DeleteSnapshot(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM balance_history
		WHERE id = ? AND account_id IN (SELECT id FROM accounts WHERE user_id = ?)`, id, userID)
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return requireRow(res)
}

func (r *Repository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, account_id, description, amount, category, date, type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, nullable(t.AccountID), t.Description, t.Amount, nullable(t.Category),
		t.Date.String(), string(t.Type))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *Repository) GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, account_id, description, amount, category, date, type
		FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	return scanTransaction(row)
}

func (r *Repository) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, account_id, description, amount, category, date, type
		FROM transactions WHERE user_id = ? ORDER BY date DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repository) DeleteTransaction(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res)
}

func (r *Repository) GetSettings(ctx context.Context, userID string) (core.Settings, error) {
	var (
		s       core.Settings
		dateStr string
		tgUser  sql.NullString
		tgAcc   sql.NullString
		waPhone sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, monthly_income, goal_target, goal_target_date,
		       telegram_username, telegram_default_account_id, whatsapp_phone
		FROM settings WHERE user_id = ?`, userID).
		Scan(&s.UserID, &s.MonthlyIncome, &s.GoalTarget, &dateStr, &tgUser, &tgAcc, &waPhone)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Settings{}, store.ErrNotFound
	}
	if err != nil {
		return core.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	if dateStr != "" {
		if d, err := core.ParseDate(dateStr); err == nil {
			s.GoalTargetDate = d
		}
	}
	s.TelegramUsername = tgUser.String
	s.TelegramDefaultAccountID = tgAcc.String
	s.WhatsAppPhone = waPhone.String
	return s, nil
}

func (r *Repository) UpsertSettings(ctx context.Context, s core.Settings) error {
	var dateStr string
	if !s.GoalTargetDate.IsZero() {
		dateStr = s.GoalTargetDate.String()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (user_id, monthly_income, goal_target, goal_target_date,
		                      telegram_username, telegram_default_account_id, whatsapp_phone)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			monthly_income = excluded.monthly_income,
			goal_target = excluded.goal_target,
			goal_target_date = excluded.goal_target_date,
			telegram_username = excluded.telegram_username,
			telegram_default_account_id = excluded.telegram_default_account_id,
			whatsapp_phone = excluded.whatsapp_phone`,
		s.UserID, s.MonthlyIncome, s.GoalTarget, dateStr,
		nullable(s.TelegramUsername), nullable(s.TelegramDefaultAccountID), nullable(s.WhatsAppPhone))
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}

func (r *Repository) FindUserByTelegram(ctx context.Context, username string) (string, error) {
	var userID string
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id FROM settings WHERE telegram_username = ?`, username).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("find user by telegram username: %w", err)
	}
	return userID, nil
}

func (r *Repository) FindUserByWhatsApp(ctx context.Context, phone string) (string, error) {
	var userID string
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id FROM settings WHERE whatsapp_phone = ?`, phone).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("find user by whatsapp phone: %w", err)
	}
	return userID, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (core.Account, error) {
	var (
		a        core.Account
		accType  string
		category string
		mode     string
	)
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &accType, &category, &a.Balance, &mode, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, store.ErrNotFound
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("scan account: %w", err)
	}
	a.Type = core.AccountType(accType)
	a.Category = core.AccountCategory(category)
	a.BalanceMode = core.BalanceMode(mode)
	return a, nil
}

func scanTransaction(row scanner) (core.Transaction, error) {
	var (
		t        core.Transaction
		account  sql.NullString
		category sql.NullString
		dateStr  string
		kind     string
	)
	err := row.Scan(&t.ID, &t.UserID, &account, &t.Description, &t.Amount, &category, &dateStr, &kind)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, store.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	t.AccountID = account.String
	t.Category = category.String
	t.Type = core.TransactionType(kind)
	d, err := core.ParseDate(dateStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction date %q: %w", dateStr, err)
	}
	t.Date = d
	return t, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Compile-time check that Repository satisfies the full store contract.
var _ store.Store = (*Repository)(nil)
