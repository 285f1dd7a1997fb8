package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"golang.org/x/sync/singleflight"

	domainauth "github.com/target/paystream-client/internal/domain/auth"
	"github.com/target/paystream-client/internal/domain/model"
	apperrors "github.com/target/paystream-client/internal/errors"
	obserrors "github.com/target/paystream-client/internal/observability/errors"
	"github.com/target/paystream-client/internal/observability/metrics"
	"github.com/target/paystream-client/internal/observability/statsd"
	"github.com/target/paystream-client/internal/ports"
)

// User-facing failure messages of the mutation workflows.
const (
	MsgIssueSlipFailed     = "Failed to send slip. Check Employee ID."
	MsgSubmitExpenseFailed = "Failed to submit expense."
	MsgActionFailed        = "Action failed"
	MsgDownloadFailed      = "Failed to download PDF"
)

// Workflow names used in logs and metrics.
const (
	WorkflowIssueSlip     = "issue_salary_slip"
	WorkflowSubmitExpense = "submit_expense"
	WorkflowSetStatus     = "set_expense_status"
	WorkflowDownloadSlip  = "download_slip"
)

// SnapshotSyncer is the part of Synchronizer the workflows depend on.
type SnapshotSyncer interface {
	Snapshot() model.Snapshot
	Resync(ctx context.Context, slices ...model.Slice) (model.Snapshot, error)
}

// WorkflowServiceOptions groups dependencies for WorkflowService.
type WorkflowServiceOptions struct {
	API       ports.PayrollAPI
	Sessions  SessionSource
	Sync      SnapshotSyncer
	Artifacts ports.ArtifactWriter
	Logger    *slog.Logger
	Metrics   statsd.Sink // optional
}

// WorkflowService runs the user mutations. Each one validates locally, checks the
// cached role, calls the API and then resyncs the slices the mutation invalidated.
// A failed workflow leaves the snapshot unchanged.
type WorkflowService struct {
	api       ports.PayrollAPI
	sessions  SessionSource
	sync      SnapshotSyncer
	artifacts ports.ArtifactWriter
	logger    *slog.Logger
	metrics   statsd.Sink

	statusCalls singleflight.Group
}

// NewWorkflowService constructs a new WorkflowService.
func NewWorkflowService(opts WorkflowServiceOptions) *WorkflowService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkflowService{
		api:       opts.API,
		sessions:  opts.Sessions,
		sync:      opts.Sync,
		artifacts: opts.Artifacts,
		logger:    logger.With("component", "workflows"),
		metrics:   opts.Metrics,
	}
}

// IssueSalarySlip sends a payslip to an employee. Admin only.
func (w *WorkflowService) IssueSalarySlip(
	ctx context.Context,
	req model.IssueSalarySlipRequest,
) (model.Snapshot, error) {
	start := time.Now()
	req.EmployeeID = strings.TrimSpace(req.EmployeeID)
	req.Month = strings.TrimSpace(req.Month)

	if err := req.Validate(); err != nil {
		return w.Snapshot(), w.fail(ctx, WorkflowIssueSlip, MsgIssueSlipFailed, start, apperrors.Validation(err.Error()))
	}
	if err := w.requireRole(ctx, domainauth.RoleAdmin); err != nil {
		return w.Snapshot(), w.fail(ctx, WorkflowIssueSlip, MsgIssueSlipFailed, start, err)
	}
	if _, err := w.api.CreateSalarySlip(ctx, req); err != nil {
		return w.Snapshot(), w.fail(ctx, WorkflowIssueSlip, MsgIssueSlipFailed, start, err)
	}

	snap := w.resync(ctx, WorkflowIssueSlip, model.SliceStats)
	w.done(ctx, WorkflowIssueSlip, metrics.ResultSuccess, start, "employee_id", req.EmployeeID, "month", req.Month)
	return snap, nil
}

// SubmitExpense files an expense claim for the logged-in employee.
func (w *WorkflowService) SubmitExpense(
	ctx context.Context,
	req model.SubmitExpenseRequest,
) (model.Snapshot, error) {
	start := time.Now()
	req.Description = strings.TrimSpace(req.Description)
	req.Category = strings.TrimSpace(req.Category)

	if err := req.Validate(); err != nil {
		return w.Snapshot(), w.fail(ctx, WorkflowSubmitExpense, MsgSubmitExpenseFailed, start, apperrors.Validation(err.Error()))
	}
	if err := w.requireRole(ctx, domainauth.RoleEmployee); err != nil {
		return w.Snapshot(), w.fail(ctx, WorkflowSubmitExpense, MsgSubmitExpenseFailed, start, err)
	}
	if _, err := w.api.CreateExpense(ctx, req); err != nil {
		return w.Snapshot(), w.fail(ctx, WorkflowSubmitExpense, MsgSubmitExpenseFailed, start, err)
	}

	snap := w.resync(ctx, WorkflowSubmitExpense, model.SliceExpenses)
	w.done(ctx, WorkflowSubmitExpense, metrics.ResultSuccess, start, "category", req.Category)
	return snap, nil
}

// SetExpenseStatus approves or rejects a pending expense. Admin only.
//
// Setting the status an expense already holds succeeds without a request.
// Identical calls in flight at the same time share one request.
func (w *WorkflowService) SetExpenseStatus(
	ctx context.Context,
	id string,
	status model.ExpenseStatus,
) (model.Snapshot, error) {
	start := time.Now()
	id = strings.TrimSpace(id)

	if id == "" {
		return w.Snapshot(), w.fail(ctx, WorkflowSetStatus, MsgActionFailed, start,
			apperrors.ValidationField("id", "expense id is required"))
	}
	if !status.Terminal() {
		return w.Snapshot(), w.fail(ctx, WorkflowSetStatus, MsgActionFailed, start,
			apperrors.ValidationField("status", "status must be Approved or Rejected"))
	}
	if err := w.requireRole(ctx, domainauth.RoleAdmin); err != nil {
		return w.Snapshot(), w.fail(ctx, WorkflowSetStatus, MsgActionFailed, start, err)
	}

	type outcome struct {
		snap model.Snapshot
		noop bool
	}
	// The snapshot check runs inside the group so a caller arriving after a
	// completed call sees its resynced result.
	v, err, _ := w.statusCalls.Do(id+"|"+status.String(), func() (any, error) {
		snap := w.sync.Snapshot()
		if cur, ok := snap.Expense(id); ok {
			if cur.Status == status {
				return outcome{snap: snap, noop: true}, nil
			}
			if !model.CanTransition(cur.Status, status) {
				return nil, apperrors.Validationf("expense %s is already %s", id, cur.Status)
			}
		}
		if _, err := w.api.SetExpenseStatus(ctx, id, status); err != nil {
			// The server answers 404 when the update changes nothing. A fresh
			// copy tells a repeated decision apart from a missing expense.
			if !apperrors.IsNotFound(err) {
				return nil, err
			}
			fresh := w.resync(ctx, WorkflowSetStatus, model.SliceExpenses, model.SliceStats)
			if cur, ok := fresh.Expense(id); ok && cur.Status == status {
				return outcome{snap: fresh, noop: true}, nil
			}
			return nil, err
		}
		return outcome{snap: w.resync(ctx, WorkflowSetStatus, model.SliceExpenses, model.SliceStats)}, nil
	})
	if err != nil {
		return w.Snapshot(), w.fail(ctx, WorkflowSetStatus, MsgActionFailed, start, err)
	}

	out := v.(outcome)
	result := metrics.ResultSuccess
	if out.noop {
		result = metrics.ResultNoop
	}
	w.done(ctx, WorkflowSetStatus, result, start, "expense_id", id, "status", status.String())
	return out.snap.Clone(), nil
}

// DownloadSlip fetches a payslip PDF and stores it as Payslip_<month>.pdf.
// It returns the location of the stored file.
func (w *WorkflowService) DownloadSlip(ctx context.Context, slipID, month string) (string, error) {
	start := time.Now()
	slipID = strings.TrimSpace(slipID)

	if slipID == "" {
		return "", w.fail(ctx, WorkflowDownloadSlip, MsgDownloadFailed, start,
			apperrors.ValidationField("id", "salary slip id is required"))
	}
	if err := w.requireRole(ctx, ""); err != nil {
		return "", w.fail(ctx, WorkflowDownloadSlip, MsgDownloadFailed, start, err)
	}

	doc, err := w.api.DownloadSalarySlip(ctx, slipID)
	if err != nil {
		return "", w.fail(ctx, WorkflowDownloadSlip, MsgDownloadFailed, start, err)
	}

	name := SlipFilename(month)
	if strings.TrimSpace(month) == "" && doc.Filename != "" {
		name = filepath.Base(doc.Filename)
	}
	path, err := w.artifacts.Write(ctx, name, doc.Data)
	if err != nil {
		return "", w.fail(ctx, WorkflowDownloadSlip, MsgDownloadFailed, start,
			apperrors.Wrap(err, apperrors.ErrCodeInternal, "store payslip"))
	}

	w.done(ctx, WorkflowDownloadSlip, metrics.ResultSuccess, start, "slip_id", slipID, "path", path, "bytes", len(doc.Data))
	return path, nil
}

// SlipFilename names a downloaded payslip. Characters that are unsafe in file
// names are replaced with underscores.
func SlipFilename(month string) string {
	month = strings.TrimSpace(month)
	if month == "" {
		month = "slip"
	}
	clean := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, month)
	return "Payslip_" + clean + ".pdf"
}

// Snapshot returns the latest published snapshot.
func (w *WorkflowService) Snapshot() model.Snapshot {
	return w.sync.Snapshot()
}

// requireRole gates on the cached session. An empty role admits any logged-in user.
func (w *WorkflowService) requireRole(ctx context.Context, role domainauth.Role) error {
	sess := w.sessions.Current(ctx)
	if !sess.Authenticated() {
		return apperrors.Unauthenticated("not logged in")
	}
	if role != "" && sess.Role != role {
		return apperrors.Forbiddenf("%s only", role)
	}
	return nil
}

// resync refreshes the invalidated slices after a successful mutation.
// A failed refresh leaves those slices stale; the mutation itself still succeeded.
func (w *WorkflowService) resync(ctx context.Context, workflow string, slices ...model.Slice) model.Snapshot {
	snap, err := w.sync.Resync(ctx, slices...)
	if err != nil {
		w.logger.WarnContext(ctx, "resync after mutation failed",
			"workflow", workflow,
			"error_class", obserrors.Classify(err),
			"error", err,
		)
	}
	return snap
}

func (w *WorkflowService) fail(ctx context.Context, workflow, message string, start time.Time, err error) error {
	w.logger.WarnContext(ctx, "workflow failed",
		"workflow", workflow,
		"error_class", obserrors.Classify(err),
		"error", err,
	)
	metrics.EmitWorkflow(w.metrics, metrics.WorkflowMetric{
		Workflow: workflow,
		Result:   metrics.ResultError,
		Duration: time.Since(start),
		Err:      err,
	})
	return apperrors.Surface(err, message)
}

func (w *WorkflowService) done(ctx context.Context, workflow, result string, start time.Time, attrs ...any) {
	w.logger.InfoContext(ctx, "workflow completed", append([]any{"workflow", workflow, "result", result}, attrs...)...)
	metrics.EmitWorkflow(w.metrics, metrics.WorkflowMetric{
		Workflow: workflow,
		Result:   result,
		Duration: time.Since(start),
	})
}
