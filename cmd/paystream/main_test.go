package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/paystream-client/internal/domain/auth"
	"github.com/target/paystream-client/internal/domain/model"
	"github.com/target/paystream-client/internal/testutil/fakeapi"
)

type cliEnv struct {
	srv        *fakeapi.Server
	dir        string
	employeeID string
	adminID    string
}

func newCLIEnv(t *testing.T) cliEnv {
	t.Helper()
	srv := fakeapi.New(t)
	dir := t.TempDir()

	t.Setenv("API_BASE_URL", srv.URL)
	t.Setenv("SESSION_BACKEND", "file")
	t.Setenv("SESSION_PATH", filepath.Join(dir, "session.json"))
	t.Setenv("DOWNLOAD_DIR", dir)
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("OBSERVABILITY_METRICS_ENABLED", "false")

	env := cliEnv{
		srv:        srv,
		dir:        dir,
		adminID:    srv.AddAccount("admin@example.com", "admin-pw", domainauth.RoleAdmin),
		employeeID: srv.AddAccount("emp@example.com", "emp-pw", domainauth.RoleEmployee),
	}
	srv.AddSalarySlip(model.SalarySlip{ID: "s1", EmployeeID: env.employeeID, Month: "October", Year: 2025, Amount: 5000})
	srv.AddExpense(model.Expense{
		ID:          "e1",
		EmployeeID:  env.employeeID,
		Description: "Taxi",
		Amount:      42.5,
		Category:    "Travel",
		Status:      model.ExpenseStatusPending,
	})
	return env
}

type cliResult struct {
	code   int
	stdout string
	stderr string
}

func execute(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return cliResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func (e cliEnv) loginEmployee(t *testing.T) {
	t.Helper()
	res := execute(t, "", "login", "-email", "emp@example.com", "-password", "emp-pw")
	require.Equal(t, 0, res.code, res.stderr)
}

func (e cliEnv) loginAdmin(t *testing.T) {
	t.Helper()
	res := execute(t, "", "login", "-email", "admin@example.com", "-password", "admin-pw")
	require.Equal(t, 0, res.code, res.stderr)
}

func TestRun_Usage(t *testing.T) {
	res := execute(t, "")
	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stdout, "Usage: paystream <command> [flags]")
	assert.Contains(t, res.stdout, "submit-expense")

	res = execute(t, "", "help")
	assert.Equal(t, 0, res.code)

	res = execute(t, "", "payday")
	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr, `unknown command "payday"`)
}

func TestRun_LoginLogoutRoundTrip(t *testing.T) {
	env := newCLIEnv(t)

	res := execute(t, "", "view")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "login\n", res.stdout)

	res = execute(t, "emp-pw\n", "login", "-email", "emp@example.com")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Logged in as emp@example.com (employee)")

	data, err := os.ReadFile(filepath.Join(env.dir, "session.json"))
	require.NoError(t, err)
	var stored domainauth.Session
	require.NoError(t, json.Unmarshal(data, &stored))
	assert.Equal(t, domainauth.RoleEmployee, stored.Role)
	assert.NotEmpty(t, stored.Token)

	res = execute(t, "", "view")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "employee_dashboard")
	assert.Contains(t, res.stdout, "salary_slips")

	res = execute(t, "", "logout")
	require.Equal(t, 0, res.code, res.stderr)
	_, err = os.Stat(filepath.Join(env.dir, "session.json"))
	assert.True(t, os.IsNotExist(err), "session file should be removed")

	res = execute(t, "", "view")
	assert.Equal(t, "login\n", res.stdout)
}

func TestRun_LoginSyncsVisibleSlices(t *testing.T) {
	env := newCLIEnv(t)

	res := execute(t, "", "login", "-email", "emp@example.com", "-password", "emp-pw")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "SLICE")
	assert.Contains(t, res.stdout, "salary_slips")

	reqs := env.srv.Requests()
	assert.Contains(t, reqs, "GET /salary-slip")
	assert.Contains(t, reqs, "GET /expense")
	assert.NotContains(t, reqs, "GET /users")
	assert.NotContains(t, reqs, "GET /admin/stats")
}

func TestRun_LoginSucceedsWhenSyncFails(t *testing.T) {
	env := newCLIEnv(t)
	env.srv.Fail("GET /expense", http.StatusInternalServerError, "boom")

	res := execute(t, "", "login", "-email", "emp@example.com", "-password", "emp-pw")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Logged in as emp@example.com (employee)")
	assert.Contains(t, res.stdout, "stale")

	res = execute(t, "", "view")
	assert.Contains(t, res.stdout, "employee_dashboard")
}

func TestRun_LoginFailure(t *testing.T) {
	newCLIEnv(t)

	res := execute(t, "", "login", "-email", "emp@example.com", "-password", "wrong")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Error: authentication failed")
	assert.NotContains(t, res.stderr, "Invalid credentials")

	res = execute(t, "", "login", "-password", "x")
	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr, "-email is required")
}

func TestRun_Signup(t *testing.T) {
	env := newCLIEnv(t)

	res := execute(t, "", "signup", "-email", "new@example.com", "-password", "pw", "-role", "admin")
	require.Equal(t, 0, res.code, res.stderr)
	acct, ok := env.srv.Account("new@example.com")
	require.True(t, ok)
	assert.Equal(t, domainauth.RoleAdmin, acct.Role)

	res = execute(t, "", "view")
	assert.Equal(t, "login\n", res.stdout, "signup does not sign in")

	res = execute(t, "", "signup", "-email", "x@example.com", "-password", "pw", "-role", "owner")
	assert.Equal(t, 2, res.code)
}

func TestRun_ReadCommandsRequireSession(t *testing.T) {
	env := newCLIEnv(t)

	res := execute(t, "", "expenses")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Not logged in")
	assert.Empty(t, env.srv.Requests())
}

func TestRun_EmployeeCommands(t *testing.T) {
	env := newCLIEnv(t)
	env.loginEmployee(t)

	res := execute(t, "", "expenses")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "e1")
	assert.Contains(t, res.stdout, "Taxi")

	res = execute(t, "", "submit-expense", "-description", "Hotel", "-amount", "120", "-category", "Travel")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Expense submitted (2 pending)")

	res = execute(t, "", "expenses", "-o", "json", "-query", "[?description=='Hotel'].status | [0]")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "\"Pending\"\n", res.stdout)

	res = execute(t, "", "slips", "-breakdown", "-o", "yaml")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "month: October")
	assert.Contains(t, res.stdout, "basic: 2500")

	res = execute(t, "", "users")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "users are not available to the employee role")
	assert.Zero(t, env.srv.Count("GET /users"))
}

func TestRun_SubmitExpenseValidation(t *testing.T) {
	env := newCLIEnv(t)
	env.loginEmployee(t)
	env.srv.ResetRequests()

	res := execute(t, "", "submit-expense", "-description", "Lunch", "-amount", "-5", "-category", "Food")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Failed to submit expense.")
	assert.Zero(t, env.srv.Count("POST /expense"))
}

func TestRun_Download(t *testing.T) {
	env := newCLIEnv(t)
	env.loginEmployee(t)

	res := execute(t, "", "download", "s1")
	require.Equal(t, 0, res.code, res.stderr)

	path := filepath.Join(env.dir, "Payslip_October.pdf")
	assert.Contains(t, res.stdout, path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, fakeapi.PDF(env.srv.SalarySlips()[0]), data)

	res = execute(t, "", "download")
	assert.Equal(t, 2, res.code)
}

func TestRun_AdminCommands(t *testing.T) {
	env := newCLIEnv(t)
	env.loginAdmin(t)

	res := execute(t, "", "stats", "-o", "json")
	require.Equal(t, 0, res.code, res.stderr)
	var st model.Stats
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &st))
	assert.Equal(t, model.Stats{TotalUsers: 2, TotalSalaryPaid: 5000, PendingExpenses: 1}, st)

	res = execute(t, "", "users")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "admin@example.com")
	assert.Contains(t, res.stdout, "emp@example.com")

	res = execute(t, "", "issue-slip", "-employee-id", env.employeeID, "-month", "November", "-year", "2025", "-amount", "6000")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Total salary paid: 11000.00")
	assert.Len(t, env.srv.SalarySlips(), 2)

	res = execute(t, "", "slips")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "salary slips are not available to the admin role")
}

func TestRun_IssueSlipUnknownEmployee(t *testing.T) {
	env := newCLIEnv(t)
	env.loginAdmin(t)

	res := execute(t, "", "issue-slip", "-employee-id", "nobody", "-month", "November", "-amount", "100")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Failed to send slip. Check Employee ID.")
	assert.Len(t, env.srv.SalarySlips(), 1)
}

func TestRun_ApproveIsIdempotent(t *testing.T) {
	env := newCLIEnv(t)
	env.loginAdmin(t)

	res := execute(t, "", "approve", "e1")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Expense e1 is Approved")
	assert.Contains(t, res.stdout, "Pending expenses: 0")

	res = execute(t, "", "approve", "-id", "e1")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Expense e1 is Approved")

	assert.Equal(t, 1, env.srv.Transitions("e1"))
	assert.Equal(t, 1, env.srv.Count("PUT /expense/e1/status"))

	res = execute(t, "", "reject", "e1")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Action failed")
	assert.Equal(t, model.ExpenseStatusApproved, env.srv.Expenses()[0].Status)
}

func TestRun_SyncAndWhoami(t *testing.T) {
	env := newCLIEnv(t)
	env.loginAdmin(t)

	res := execute(t, "", "sync")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "SLICE")
	assert.Contains(t, res.stdout, "users")
	assert.NotContains(t, res.stdout, "salary_slips")

	res = execute(t, "", "whoami", "-verify", "-o", "json")
	require.Equal(t, 0, res.code, res.stderr)
	var who whoamiResult
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &who))
	assert.Equal(t, domainauth.RoleAdmin, who.Role)
	assert.Equal(t, "admin_dashboard", who.View)
	require.NotNil(t, who.User)
	assert.Equal(t, env.adminID, who.User.ID)
}

func TestRun_OutputFlagValidation(t *testing.T) {
	env := newCLIEnv(t)
	env.loginAdmin(t)

	res := execute(t, "", "users", "-o", "xml")
	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr, "invalid output format")

	res = execute(t, "", "users", "-query", "[?")
	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr, "invalid query")

	res = execute(t, "", "expenses", "-status", "Lost")
	assert.Equal(t, 2, res.code)
}
