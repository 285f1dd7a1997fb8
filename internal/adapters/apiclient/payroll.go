package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/target/paystream-client/internal/domain/model"
	apperrors "github.com/target/paystream-client/internal/errors"
	"github.com/target/paystream-client/internal/ports"
)

var _ ports.PayrollAPI = (*Client)(nil)

// Me returns the account behind the current bearer token.
func (c *Client) Me(ctx context.Context) (model.User, error) {
	var u model.User
	err := c.getJSON(ctx, "/auth/me", &u)
	return u, err
}

// Stats returns the admin aggregate.
func (c *Client) Stats(ctx context.Context) (model.Stats, error) {
	var st model.Stats
	err := c.getJSON(ctx, "/admin/stats", &st)
	return st, err
}

// ListUsers returns the user directory.
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var out []model.User
	err := c.getJSON(ctx, "/users", &out)
	return out, err
}

// ListExpenses returns the expenses visible to the caller.
func (c *Client) ListExpenses(ctx context.Context) ([]model.Expense, error) {
	var out []model.Expense
	err := c.getJSON(ctx, "/expense", &out)
	return out, err
}

// CreateExpense files a claim for the caller.
func (c *Client) CreateExpense(ctx context.Context, req model.SubmitExpenseRequest) (*model.Expense, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/expense", Body: req})
	if err != nil {
		return nil, err
	}
	return decodeCreated[model.Expense](resp)
}

// SetExpenseStatus records an approval decision.
func (c *Client) SetExpenseStatus(ctx context.Context, id string, status model.ExpenseStatus) (*model.Expense, error) {
	resp, err := c.Do(ctx, Request{
		Method: http.MethodPut,
		Path:   "/expense/" + pathSegment(id) + "/status",
		Query:  url.Values{"status": {status.String()}},
	})
	if err != nil {
		return nil, err
	}
	return decodeCreated[model.Expense](resp)
}

// ListSalarySlips returns the slips visible to the caller.
func (c *Client) ListSalarySlips(ctx context.Context) ([]model.SalarySlip, error) {
	var out []model.SalarySlip
	err := c.getJSON(ctx, "/salary-slip", &out)
	return out, err
}

// CreateSalarySlip issues a slip to an employee.
func (c *Client) CreateSalarySlip(ctx context.Context, req model.IssueSalarySlipRequest) (*model.SalarySlip, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/salary-slip", Body: req})
	if err != nil {
		return nil, err
	}
	return decodeCreated[model.SalarySlip](resp)
}

// DownloadSalarySlip fetches the payslip document.
func (c *Client) DownloadSalarySlip(ctx context.Context, id string) (ports.Document, error) {
	resp, err := c.Do(ctx, Request{Path: "/salary-slip/" + pathSegment(id) + "/download", Binary: true})
	if err != nil {
		return ports.Document{}, err
	}
	if len(resp.Body) == 0 {
		return ports.Document{}, apperrors.Wrap(errEmptyDocument, apperrors.ErrCodeUnknown, "empty document")
	}
	return ports.Document{
		Filename:    resp.Filename,
		ContentType: resp.ContentType,
		Data:        resp.Body,
	}, nil
}

// pathSegment escapes id so it stays a single path segment. Dot segments are
// escaped too, otherwise path cleaning would resolve them.
func pathSegment(id string) string {
	switch id {
	case ".":
		return "%2E"
	case "..":
		return "%2E%2E"
	}
	return url.PathEscape(id)
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	resp, err := c.Do(ctx, Request{Path: path})
	if err != nil {
		return err
	}
	return resp.Decode(v)
}

// decodeCreated returns nil when the body is an acknowledgement rather than the entity.
func decodeCreated[T any](resp *Response) (*T, error) {
	var probe struct {
		ID string `json:"id"`
	}
	if len(resp.Body) == 0 || json.Unmarshal(resp.Body, &probe) != nil || probe.ID == "" {
		return nil, nil //nolint:nilnil // acknowledgement only
	}
	var out T
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
