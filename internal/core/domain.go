package core

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the textual date format used across the API (query
// parameters, JSON payloads and storage).
const DateLayout = "2006-01-02"

type (
	// Date is a calendar day without a time component.
	Date struct {
		time.Time
	}

	// Money is a monetary amount in minor units (cents).
	Money struct {
		Cents int64
	}

	// Account is a user-owned container for transactions.
	Account struct {
		ID     string `json:"id"`
		UserID string `json:"userId,omitempty"`
		Name   string `json:"name"`
	}

	// Category labels transactions. Same ownership shape as Account.
	Category struct {
		ID     string `json:"id"`
		UserID string `json:"userId,omitempty"`
		Name   string `json:"name"`
	}

	// Transaction is a dated movement of money on an account. It has no
	// userId column of its own: ownership is derived from its account.
	Transaction struct {
		ID         string  `json:"id"`
		Date       Date    `json:"date"`
		Payee      string  `json:"payee"`
		Amount     Money   `json:"amount"`
		Notes      *string `json:"notes"`
		AccountID  string  `json:"accountId"`
		CategoryID *string `json:"categoryId"`
	}

	// TransactionDetail is a transaction row joined with its account and
	// category names, as returned by the list endpoint.
	TransactionDetail struct {
		ID         string  `json:"id"`
		Date       Date    `json:"date"`
		Category   *string `json:"category"`
		CategoryID *string `json:"categoryId"`
		Payee      string  `json:"payee"`
		Amount     Money   `json:"amount"`
		Notes      *string `json:"notes"`
		Account    string  `json:"account"`
		AccountID  string  `json:"accountId"`
	}

	// AuditLog is an immutable record of one user action.
	AuditLog struct {
		ID        int64     `json:"id"`
		UserID    string    `json:"userId"`
		Action    string    `json:"action"`
		Timestamp time.Time `json:"timestamp"`
	}
)

var (
	ErrEmptyName      = errors.New("empty name")
	ErrNameTooLong    = errors.New("name too long (max 200 characters)")
	ErrEmptyPayee     = errors.New("empty payee")
	ErrEmptyAccountID = errors.New("missing account id")
	ErrInvalidDate    = errors.New("invalid date")
	ErrInvalidAmount  = errors.New("invalid amount")
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a yyyy-MM-dd string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// Today returns the current day truncated to a calendar date.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String renders the date in the API's yyyy-MM-dd format.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// AddDays returns the date shifted by the given number of days.
func (d Date) AddDays(days int) Date {
	return Date{Time: d.Time.AddDate(0, 0, days)}
}

// MarshalJSON renders the date as a quoted yyyy-MM-dd string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

// UnmarshalJSON accepts a quoted yyyy-MM-dd string.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		return ErrInvalidDate
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func validateName(name string) error {
	if len(strings.TrimSpace(name)) == 0 {
		return ErrEmptyName
	}
	if len(name) > 200 {
		return ErrNameTooLong
	}
	return nil
}

func (a Account) Validate() error {
	return validateName(a.Name)
}

func (c Category) Validate() error {
	return validateName(c.Name)
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Payee)) == 0 {
		return ErrEmptyPayee
	}
	if strings.TrimSpace(t.AccountID) == "" {
		return ErrEmptyAccountID
	}
	return nil
}
