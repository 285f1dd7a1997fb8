package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ExpenseStatus is the approval state of an expense claim.
type ExpenseStatus string

const (
	ExpenseStatusPending  ExpenseStatus = "Pending"
	ExpenseStatusApproved ExpenseStatus = "Approved"
	ExpenseStatusRejected ExpenseStatus = "Rejected"
)

// Valid returns true if the status is known.
func (s ExpenseStatus) Valid() bool {
	switch s {
	case ExpenseStatusPending, ExpenseStatusApproved, ExpenseStatusRejected:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transition is permitted from s.
func (s ExpenseStatus) Terminal() bool {
	return s == ExpenseStatusApproved || s == ExpenseStatusRejected
}

// String returns the string representation of the status.
func (s ExpenseStatus) String() string {
	return string(s)
}

// ParseDecision accepts the statuses an admin may set. Matching ignores case.
func ParseDecision(v string) (ExpenseStatus, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "approved", "approve":
		return ExpenseStatusApproved, nil
	case "rejected", "reject":
		return ExpenseStatusRejected, nil
	default:
		return "", fmt.Errorf("invalid decision: %q (valid options: Approved, Rejected)", v)
	}
}

// CanTransition reports whether from -> to is an allowed status change.
// Only Pending may move, and only to a terminal status.
func CanTransition(from, to ExpenseStatus) bool {
	return from == ExpenseStatusPending && to.Terminal()
}

// Expense is an employee expense claim.
type Expense struct {
	ID              string        `json:"id"                         yaml:"id"`
	EmployeeID      string        `json:"employee_id"                yaml:"employee_id"`
	Description     string        `json:"description"                yaml:"description"`
	Amount          float64       `json:"amount"                     yaml:"amount"`
	Category        string        `json:"category"                   yaml:"category"`
	Status          ExpenseStatus `json:"status"                     yaml:"status"`
	Date            time.Time     `json:"date"                       yaml:"date"`
	RejectionReason string        `json:"rejection_reason,omitempty" yaml:"rejection_reason,omitempty"`
}

// UnmarshalJSON tolerates the naive timestamps the server emits (no zone suffix).
func (e *Expense) UnmarshalJSON(data []byte) error {
	type alias Expense
	aux := struct {
		*alias
		Date            flexTime `json:"date"`
		RejectionReason *string  `json:"rejection_reason"`
	}{alias: (*alias)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	e.Date = time.Time(aux.Date)
	if aux.RejectionReason != nil {
		e.RejectionReason = *aux.RejectionReason
	}
	return nil
}

// SubmitExpenseRequest is the employee request to file a claim.
// Ownership and status are assigned by the server.
type SubmitExpenseRequest struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
}

// Validate checks the request shape.
func (r *SubmitExpenseRequest) Validate() error {
	if strings.TrimSpace(r.Description) == "" {
		return errors.New("description is required and cannot be empty")
	}
	if strings.TrimSpace(r.Category) == "" {
		return errors.New("category is required and cannot be empty")
	}
	return validateAmount(r.Amount)
}
