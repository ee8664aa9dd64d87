package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Cash       AccountType = "cash"
	Investment AccountType = "investment"

	Core      AccountCategory = "core"
	Satellite AccountCategory = "satellite"

	Manual BalanceMode = "manual"
	Auto   BalanceMode = "auto"

	Spending TransactionType = "spending"
	Income   TransactionType = "income"

	Indonesian Language = "id"
	English    Language = "en"
)

type (
	AccountType     string
	AccountCategory string
	BalanceMode     string
	TransactionType string
	Language        string

	Date struct {
		time.Time
	}

	// Account holds a user's balance bucket. Balance is in whole rupiah and
	// always mirrors the balance_at_time of the account's newest snapshot.
	Account struct {
		ID          string
		UserID      string
		Name        string
		Type        AccountType
		Category    AccountCategory
		Balance     int64
		BalanceMode BalanceMode
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	// Snapshot is one balance_history row. Seq preserves insertion order so
	// that snapshots recorded within the same second still sort predictably.
	Snapshot struct {
		ID              string
		AccountID       string
		BalanceAtTime   int64
		PreviousBalance int64
		RecordedAt      time.Time
		Seq             int64
	}

	// Transaction direction is carried by Type; Amount is always >= 0.
	// AccountID may be empty ("unassigned").
	Transaction struct {
		ID          string
		UserID      string
		AccountID   string
		Description string
		Amount      int64
		Category    string
		Date        Date
		Type        TransactionType
	}

	// Settings is the per-user singleton used by reconciliation and the
	// chat-bot integrations.
	Settings struct {
		UserID                   string
		MonthlyIncome            int64
		GoalTarget               int64
		GoalTargetDate           Date
		TelegramUsername         string
		TelegramDefaultAccountID string
		WhatsAppPhone            string
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyName          = errors.New("empty name")
	ErrEmptyDescription   = errors.New("empty description")
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrInvalidCategory    = errors.New("invalid account category")
	ErrInvalidBalanceMode = errors.New("invalid balance mode")
	ErrInvalidKind        = errors.New("invalid transaction type")
	ErrInvalidDate        = errors.New("invalid date")
)

// NewDate creates a calendar date with day granularity in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a timestamp to its calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

// MonthKey returns the calendar-month grouping key, e.g. "2026-08".
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	switch a.Type {
	case Cash, Investment:
	default:
		return ErrInvalidAccountType
	}
	switch a.Category {
	case Core, Satellite:
	default:
		return ErrInvalidCategory
	}
	switch a.BalanceMode {
	case Manual, Auto:
	default:
		return ErrInvalidBalanceMode
	}
	return nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if t.Amount < 0 {
		return ErrInvalidAmount
	}
	switch t.Type {
	case Spending, Income:
	default:
		return ErrInvalidKind
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// SignedAmount is the balance effect of the transaction on an auto-mode
// account: positive for income, negative for spending.
func (t Transaction) SignedAmount() int64 {
	if t.Type == Income {
		return t.Amount
	}
	return -t.Amount
}
