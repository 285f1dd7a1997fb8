package model

import (
	"errors"
	"math"
	"strings"
)

// SalarySlip is a monthly payslip issued to an employee.
type SalarySlip struct {
	ID         string  `json:"id"          yaml:"id"`
	EmployeeID string  `json:"employee_id" yaml:"employee_id"`
	Month      string  `json:"month"       yaml:"month"`
	Year       int     `json:"year"        yaml:"year"`
	Amount     float64 `json:"amount"      yaml:"amount"`
}

// IssueSalarySlipRequest is the admin request to issue a slip.
type IssueSalarySlipRequest struct {
	EmployeeID string  `json:"employee_id"`
	Amount     float64 `json:"amount"`
	Month      string  `json:"month"`
	Year       int     `json:"year"`
}

// Validate checks the request shape. Whether EmployeeID exists is for the server to decide.
func (r *IssueSalarySlipRequest) Validate() error {
	if strings.TrimSpace(r.EmployeeID) == "" {
		return errors.New("employee id is required and cannot be empty")
	}
	if strings.TrimSpace(r.Month) == "" {
		return errors.New("month is required and cannot be empty")
	}
	if r.Year <= 0 {
		return errors.New("year must be a positive number")
	}
	return validateAmount(r.Amount)
}

// Earnings is the split printed on an issued payslip.
type Earnings struct {
	Basic   float64 `json:"basic"   yaml:"basic"`
	HRA     float64 `json:"hra"     yaml:"hra"`
	Special float64 `json:"special" yaml:"special"`
	Bonus   float64 `json:"bonus"   yaml:"bonus"`
	Gross   float64 `json:"gross"   yaml:"gross"`
}

// Breakdown splits the gross amount into 50% basic, 20% HRA and 25% special allowance.
// The bonus takes the remainder so the parts always sum to the gross.
func (s SalarySlip) Breakdown() Earnings {
	basic := roundCents(s.Amount * 0.50)
	hra := roundCents(s.Amount * 0.20)
	special := roundCents(s.Amount * 0.25)
	return Earnings{
		Basic:   basic,
		HRA:     hra,
		Special: special,
		Bonus:   roundCents(s.Amount - (basic + hra + special)),
		Gross:   s.Amount,
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func validateAmount(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.New("amount must be a finite number")
	}
	if v < 0 {
		return errors.New("amount cannot be negative")
	}
	return nil
}
