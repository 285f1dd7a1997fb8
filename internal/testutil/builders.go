// Package testutil provides testing utilities and fixtures for the paystream client.
package testutil

import (
	"time"

	domainauth "github.com/target/paystream-client/internal/domain/auth"
	"github.com/target/paystream-client/internal/domain/model"
)

// ExpenseBuilder provides a fluent interface for building Expense fixtures.
type ExpenseBuilder struct {
	e model.Expense
}

// NewExpense creates an ExpenseBuilder with sensible defaults.
func NewExpense() *ExpenseBuilder {
	return &ExpenseBuilder{
		e: model.Expense{
			ID:          "e1",
			EmployeeID:  "u1",
			Description: "Taxi to client site",
			Amount:      42.5,
			Category:    "Travel",
			Status:      model.ExpenseStatusPending,
			Date:        TestTime(),
		},
	}
}

// WithID sets the expense ID.
func (b *ExpenseBuilder) WithID(id string) *ExpenseBuilder {
	b.e.ID = id
	return b
}

// WithEmployee sets the owning employee ID.
func (b *ExpenseBuilder) WithEmployee(id string) *ExpenseBuilder {
	b.e.EmployeeID = id
	return b
}

// WithAmount sets the amount.
func (b *ExpenseBuilder) WithAmount(amount float64) *ExpenseBuilder {
	b.e.Amount = amount
	return b
}

// WithStatus sets the status.
func (b *ExpenseBuilder) WithStatus(status model.ExpenseStatus) *ExpenseBuilder {
	b.e.Status = status
	return b
}

// Build returns the expense.
func (b *ExpenseBuilder) Build() model.Expense {
	return b.e
}

// SalarySlipBuilder provides a fluent interface for building SalarySlip fixtures.
type SalarySlipBuilder struct {
	s model.SalarySlip
}

// NewSalarySlip creates a SalarySlipBuilder with sensible defaults.
func NewSalarySlip() *SalarySlipBuilder {
	return &SalarySlipBuilder{
		s: model.SalarySlip{
			ID:         "s1",
			EmployeeID: "u1",
			Month:      "October",
			Year:       2025,
			Amount:     5000,
		},
	}
}

// WithID sets the slip ID.
func (b *SalarySlipBuilder) WithID(id string) *SalarySlipBuilder {
	b.s.ID = id
	return b
}

// WithEmployee sets the employee ID.
func (b *SalarySlipBuilder) WithEmployee(id string) *SalarySlipBuilder {
	b.s.EmployeeID = id
	return b
}

// WithMonth sets month and year.
func (b *SalarySlipBuilder) WithMonth(month string, year int) *SalarySlipBuilder {
	b.s.Month = month
	b.s.Year = year
	return b
}

// WithAmount sets the amount.
func (b *SalarySlipBuilder) WithAmount(amount float64) *SalarySlipBuilder {
	b.s.Amount = amount
	return b
}

// Build returns the salary slip.
func (b *SalarySlipBuilder) Build() model.SalarySlip {
	return b.s
}

// AdminSession returns an authenticated admin session that never expires.
func AdminSession() domainauth.Session {
	return domainauth.Session{Token: "admin-token", Role: domainauth.RoleAdmin, Subject: "admin@example.com"}
}

// EmployeeSession returns an authenticated employee session that never expires.
func EmployeeSession() domainauth.Session {
	return domainauth.Session{Token: "employee-token", Role: domainauth.RoleEmployee, Subject: "a@b.com"}
}

// ExpiringSession returns s with ExpiresAt set d after TestTime.
func ExpiringSession(s domainauth.Session, d time.Duration) domainauth.Session {
	s.ExpiresAt = TestTime().Add(d)
	return s
}
