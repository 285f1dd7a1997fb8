package ports

import (
	"context"

	"github.com/target/paystream-client/internal/domain/model"
)

// PayrollAPI is the typed surface of the remote payroll API the client consumes.
type PayrollAPI interface {
	Me(ctx context.Context) (model.User, error)
	Stats(ctx context.Context) (model.Stats, error)
	ListUsers(ctx context.Context) ([]model.User, error)

	ListExpenses(ctx context.Context) ([]model.Expense, error)
	// CreateExpense returns nil when the server only acknowledges creation.
	CreateExpense(ctx context.Context, req model.SubmitExpenseRequest) (*model.Expense, error)
	SetExpenseStatus(ctx context.Context, id string, status model.ExpenseStatus) (*model.Expense, error)

	ListSalarySlips(ctx context.Context) ([]model.SalarySlip, error)
	// CreateSalarySlip returns nil when the server only acknowledges creation.
	CreateSalarySlip(ctx context.Context, req model.IssueSalarySlipRequest) (*model.SalarySlip, error)
	DownloadSalarySlip(ctx context.Context, id string) (Document, error)
}

// Document is a binary payload returned by the API.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ArtifactWriter materializes downloaded documents for the user.
type ArtifactWriter interface {
	// Write stores data under name and returns the final location.
	// Nothing is left behind when it fails.
	Write(ctx context.Context, name string, data []byte) (string, error)
}
