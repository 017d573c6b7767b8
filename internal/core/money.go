// Package core provides the domain types shared by the HTTP layer and the
// storage layer: accounts, categories, transactions and audit records.
//
// This file contains the Money type. Amounts travel through the API as bare
// integers in minor units; formatting helpers exist for audit descriptions
// and logs only.
package core

import (
	"fmt"
	"strconv"
)

// MarshalJSON renders the amount as a bare integer in minor units.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(m.Cents, 10)), nil
}

// UnmarshalJSON accepts a bare integer amount in minor units.
func (m *Money) UnmarshalJSON(data []byte) error {
	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return ErrInvalidAmount
	}
	m.Cents = v
	return nil
}

// String formats the amount as a decimal string (e.g. "-12.34").
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) String() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// IsDebit reports whether the amount decreases an account balance.
func (m Money) IsDebit() bool {
	return m.Cents < 0
}
