package main

import (
	"slices"
	"strings"
	"time"

	"github.com/target/paystream-client/internal/domain/model"
)

type issueSlipOptions struct {
	EmployeeID string
	Month      string
	Year       int
	Amount     float64
}

type submitExpenseOptions struct {
	Description string
	Amount      float64
	Category    string
}

type downloadOptions struct {
	ID    string
	Month string
}

func parseIssueSlipFlags(ctx *commandContext, args []string) (issueSlipOptions, error) {
	fs := newFlagSet(ctx, "issue-slip")

	var opts issueSlipOptions
	fs.StringVar(&opts.EmployeeID, "employee-id", "", "Employee ID to pay (required)")
	fs.StringVar(&opts.Month, "month", "", "Pay period month, e.g. October (required)")
	fs.IntVar(&opts.Year, "year", time.Now().Year(), "Pay period year")
	fs.Float64Var(&opts.Amount, "amount", 0, "Gross amount")

	if err := parseFlags(fs, args); err != nil {
		return issueSlipOptions{}, err
	}
	return opts, nil
}

func runIssueSlip(ctx *commandContext, args []string) error {
	opts, err := parseIssueSlipFlags(ctx, args)
	if err != nil {
		return err
	}

	snap, err := ctx.Services.Workflows.IssueSalarySlip(ctx.Ctx, model.IssueSalarySlipRequest{
		EmployeeID: opts.EmployeeID,
		Amount:     opts.Amount,
		Month:      opts.Month,
		Year:       opts.Year,
	})
	if err != nil {
		return err
	}

	if err := writef(ctx.Stdout, "Salary slip sent to %s for %s %d\n",
		strings.TrimSpace(opts.EmployeeID), strings.TrimSpace(opts.Month), opts.Year); err != nil {
		return err
	}
	if snap.Stats != nil {
		return writef(ctx.Stdout, "Total salary paid: %s\n", formatAmount(snap.Stats.TotalSalaryPaid))
	}
	return nil
}

func parseSubmitExpenseFlags(ctx *commandContext, args []string) (submitExpenseOptions, error) {
	fs := newFlagSet(ctx, "submit-expense")

	var opts submitExpenseOptions
	fs.StringVar(&opts.Description, "description", "", "What the expense was for (required)")
	fs.Float64Var(&opts.Amount, "amount", 0, "Amount claimed")
	fs.StringVar(&opts.Category, "category", "", "Expense category, e.g. Travel (required)")

	if err := parseFlags(fs, args); err != nil {
		return submitExpenseOptions{}, err
	}
	return opts, nil
}

func runSubmitExpense(ctx *commandContext, args []string) error {
	opts, err := parseSubmitExpenseFlags(ctx, args)
	if err != nil {
		return err
	}

	snap, err := ctx.Services.Workflows.SubmitExpense(ctx.Ctx, model.SubmitExpenseRequest{
		Description: opts.Description,
		Amount:      opts.Amount,
		Category:    opts.Category,
	})
	if err != nil {
		return err
	}

	pending := 0
	for _, e := range snap.Expenses {
		if e.Status == model.ExpenseStatusPending {
			pending++
		}
	}
	return writef(ctx.Stdout, "Expense submitted (%d pending)\n", pending)
}

// parseExpenseID accepts the expense ID either as -id or as the first argument.
func parseExpenseID(ctx *commandContext, name string, args []string) (string, error) {
	fs := newFlagSet(ctx, name)

	var id string
	fs.StringVar(&id, "id", "", "Expense ID (or pass it as the first argument)")

	if err := parseFlags(fs, args); err != nil {
		return "", err
	}
	if id == "" && fs.NArg() > 0 {
		id = fs.Arg(0)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return "", usagef("an expense ID is required")
	}
	return id, nil
}

func runApprove(ctx *commandContext, args []string) error {
	return setExpenseStatus(ctx, "approve", args, model.ExpenseStatusApproved)
}

func runReject(ctx *commandContext, args []string) error {
	return setExpenseStatus(ctx, "reject", args, model.ExpenseStatusRejected)
}

func setExpenseStatus(ctx *commandContext, name string, args []string, status model.ExpenseStatus) error {
	id, err := parseExpenseID(ctx, name, args)
	if err != nil {
		return err
	}
	if _, err := requireSession(ctx); err != nil {
		return err
	}

	// Load the current claims so a repeated decision is recognised locally.
	if _, err := ctx.Services.Sync.Resync(ctx.Ctx, model.SliceExpenses); err != nil {
		ctx.Logger.DebugContext(ctx.Ctx, "refresh expenses before decision", "error", err)
	}

	snap, err := ctx.Services.Workflows.SetExpenseStatus(ctx.Ctx, id, status)
	if err != nil {
		return err
	}

	current := status
	if e, ok := snap.Expense(id); ok {
		current = e.Status
	}
	if err := writef(ctx.Stdout, "Expense %s is %s\n", id, current); err != nil {
		return err
	}
	if snap.Stats != nil {
		return writef(ctx.Stdout, "Pending expenses: %d\n", snap.Stats.PendingExpenses)
	}
	return nil
}

func parseDownloadFlags(ctx *commandContext, args []string) (downloadOptions, error) {
	fs := newFlagSet(ctx, "download")

	var opts downloadOptions
	fs.StringVar(&opts.ID, "id", "", "Salary slip ID (or pass it as the first argument)")
	fs.StringVar(&opts.Month, "month", "", "Month used in the file name (looked up when omitted)")

	if err := parseFlags(fs, args); err != nil {
		return downloadOptions{}, err
	}
	if opts.ID == "" && fs.NArg() > 0 {
		opts.ID = fs.Arg(0)
	}
	opts.ID = strings.TrimSpace(opts.ID)
	if opts.ID == "" {
		return downloadOptions{}, usagef("a salary slip ID is required")
	}
	return opts, nil
}

func runDownload(ctx *commandContext, args []string) error {
	opts, err := parseDownloadFlags(ctx, args)
	if err != nil {
		return err
	}

	month := strings.TrimSpace(opts.Month)
	if month == "" {
		if sess := ctx.Services.Sessions.Current(ctx.Ctx); sess.Authenticated() &&
			slices.Contains(model.SlicesFor(sess.Role), model.SliceSalarySlips) {
			if slip, ok := findSlip(ctx, opts.ID); ok {
				month = slip.Month
			}
		}
	}

	path, err := ctx.Services.Workflows.DownloadSlip(ctx.Ctx, opts.ID, month)
	if err != nil {
		return err
	}
	return writef(ctx.Stdout, "Saved %s\n", path)
}
