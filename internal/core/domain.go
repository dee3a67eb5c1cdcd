package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Kind = "Income"
	Expense Kind = "Expense"
)

// DefaultCategories are the suggestions offered by the entry form.
var DefaultCategories = []string{"Food", "Rent", "Transport", "Entertainment", "Utilities", "Shopping", "Health", "Other"}

// FallbackCategory is used when an entry arrives without a category.
const FallbackCategory = "Other"

const maxNoteLength = 500

type (
	Kind string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID        int64
		UserID    int64
		Kind      Kind
		Amount    Money
		Category  string
		Note      string
		Date      Date
		CreatedAt time.Time
	}

	Budget struct {
		UserID        int64
		MonthlyBudget Money
		UpdatedAt     time.Time
	}

	User struct {
		ID          int64
		Username    string
		DisplayName string
		CreatedAt   time.Time
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidKind   = errors.New("invalid kind: must be Income or Expense")
	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptyCategory = errors.New("empty category")
	ErrEmptyUsername = errors.New("empty username")
	ErrNoteTooLong   = errors.New("note too long (max 500 characters)")
)

// ParseKind normalizes the case of a kind label ("income", "EXPENSE").
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return Income, nil
	case "expense":
		return Expense, nil
	}
	return "", ErrInvalidKind
}

func (k Kind) Validate() error {
	if k != Income && k != Expense {
		return ErrInvalidKind
	}
	return nil
}

func (k Kind) String() string {
	return string(k)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the time component of t, keeping its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006/01/02", "2006-01-02 15:04:05"}

// ParseDate accepts ISO dates plus a few spreadsheet-friendly layouts.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, ErrInvalidDate
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// Before reports whether d is an earlier calendar day than o.
func (d Date) Before(o Date) bool {
	return d.Time.Before(o.Time)
}

// FirstOfMonth returns the first day of the month containing t.
func FirstOfMonth(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), 1)
}

func (t Transaction) Validate() error {
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if len(t.Note) > maxNoteLength {
		return ErrNoteTooLong
	}
	return nil
}

// Signed returns the amount with the direction implied by the kind.
func (t Transaction) Signed() Money {
	if t.Kind == Expense {
		return Money{Cents: -t.Amount.Cents}
	}
	return t.Amount
}

func (b Budget) Validate() error {
	return b.MonthlyBudget.Validate()
}

// NormalizeUsername trims the bare identifier used as a login.
func NormalizeUsername(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyUsername
	}
	return s, nil
}

// Name returns the display name, falling back to the username.
func (u User) Name() string {
	if strings.TrimSpace(u.DisplayName) != "" {
		return u.DisplayName
	}
	return u.Username
}
