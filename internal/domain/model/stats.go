package model

// Stats is the admin aggregate recomputed by the server on every fetch.
type Stats struct {
	TotalUsers      int     `json:"total_users"       yaml:"total_users"`
	TotalSalaryPaid float64 `json:"total_salary_paid" yaml:"total_salary_paid"`
	PendingExpenses int     `json:"pending_expenses"  yaml:"pending_expenses"`
}
