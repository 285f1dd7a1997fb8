// Package fakeapi serves an in-process payroll API for tests.
//
// It follows the wire contract of the real service: form-encoded password login,
// bearer-protected JSON resources, acknowledgement bodies on create, and a
// binary payslip download. Tests can inspect the request log, inject failures
// and hold requests in flight.
package fakeapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	domainauth "github.com/target/paystream-client/internal/domain/auth"
	"github.com/target/paystream-client/internal/domain/model"
)

// Account is a user known to the fake server.
type Account struct {
	model.User
	Password string
}

// Server is a fake payroll API backed by httptest.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	accounts    map[string]*Account // by email
	tokens      map[string]string   // token -> email
	slips       []model.SalarySlip
	expenses    []model.Expense
	transitions map[string]int
	nextTokens  []string
	requests    []string
	overrides   map[string]http.HandlerFunc
	routes      *mux.Router
	seq         int
	now         func() time.Time

	// unchangedNotFound answers a decision that changes nothing with 404,
	// as the production server does.
	unchangedNotFound bool
}

// New starts a fake server. It is closed when the test ends.
func New(t interface{ Cleanup(func()) }) *Server {
	s := &Server{
		accounts:    make(map[string]*Account),
		tokens:      make(map[string]string),
		transitions: make(map[string]int),
		overrides:   make(map[string]http.HandlerFunc),
		now:         func() time.Time { return time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC) },
	}
	s.routes = s.router()
	s.Server = httptest.NewServer(s.record(s.routes))
	t.Cleanup(s.Close)
	return s
}

func (s *Server) router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/auth/signup", s.handleSignup).Methods(http.MethodPost)
	r.HandleFunc("/auth/me", s.authed(s.handleMe)).Methods(http.MethodGet)

	r.HandleFunc("/admin/stats", s.admin(s.handleStats)).Methods(http.MethodGet)
	r.HandleFunc("/users", s.admin(s.handleUsers)).Methods(http.MethodGet)

	r.HandleFunc("/expense", s.authed(s.handleListExpenses)).Methods(http.MethodGet)
	r.HandleFunc("/expense", s.authed(s.handleCreateExpense)).Methods(http.MethodPost)
	r.HandleFunc("/expense/{id}/status", s.admin(s.handleSetStatus)).Methods(http.MethodPut)

	r.HandleFunc("/salary-slip", s.authed(s.handleListSlips)).Methods(http.MethodGet)
	r.HandleFunc("/salary-slip", s.admin(s.handleCreateSlip)).Methods(http.MethodPost)
	r.HandleFunc("/salary-slip/{id}/download", s.authed(s.handleDownload)).Methods(http.MethodGet)
	return r
}

// record logs every request and dispatches to an override when one is set.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		s.mu.Lock()
		s.requests = append(s.requests, key)
		override := s.overrides[key]
		s.mu.Unlock()

		if override != nil {
			override(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AddAccount registers a user and returns its ID.
func (s *Server) AddAccount(email, password string, role domainauth.Role) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addAccountLocked(email, password, role)
}

func (s *Server) addAccountLocked(email, password string, role domainauth.Role) string {
	s.seq++
	id := fmt.Sprintf("u%d", s.seq)
	s.accounts[email] = &Account{User: model.User{ID: id, Email: email, Role: role}, Password: password}
	return id
}

// SetRole changes the role of an existing account.
func (s *Server) SetRole(email string, role domainauth.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[email]; ok {
		a.Role = role
	}
}

// Account returns the registered account for email.
func (s *Server) Account(email string) (Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[email]
	if !ok {
		return Account{}, false
	}
	return *a, true
}

// NextToken queues the bearer token issued by the next successful login.
func (s *Server) NextToken(tok string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTokens = append(s.nextTokens, tok)
}

// GrantToken makes tok valid for email without a login round trip.
func (s *Server) GrantToken(tok, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[tok] = email
}

// AddSalarySlip seeds a slip.
func (s *Server) AddSalarySlip(slip model.SalarySlip) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slips = append(s.slips, slip)
}

// AddExpense seeds an expense.
func (s *Server) AddExpense(e model.Expense) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses = append(s.expenses, e)
}

// Expenses returns the server-side expenses.
func (s *Server) Expenses() []model.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Expense(nil), s.expenses...)
}

// SalarySlips returns the server-side slips.
func (s *Server) SalarySlips() []model.SalarySlip {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.SalarySlip(nil), s.slips...)
}

// Transitions reports how many status changes were applied to an expense.
func (s *Server) Transitions(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transitions[id]
}

// Requests returns the "METHOD /path" log in arrival order.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// Count returns how many times "METHOD /path" was requested.
func (s *Server) Count(key string) int {
	n := 0
	for _, r := range s.Requests() {
		if r == key {
			n++
		}
	}
	return n
}

// ResetRequests clears the request log.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// StrictDecisions makes a status update that leaves the expense unchanged
// answer 404 instead of 200.
func (s *Server) StrictDecisions(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unchangedNotFound = on
}

// Override replaces the handler of "METHOD /path". A nil handler removes the override.
func (s *Server) Override(key string, h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h == nil {
		delete(s.overrides, key)
		return
	}
	s.overrides[key] = h
}

// Fail makes "METHOD /path" answer with status and a detail body.
func (s *Server) Fail(key string, status int, detail string) {
	s.Override(key, func(w http.ResponseWriter, _ *http.Request) {
		writeDetail(w, status, detail)
	})
}

// Hold blocks "METHOD /path" until release is called, then serves it normally.
// started receives once for every request that reaches the hold.
func (s *Server) Hold(key string) (started <-chan struct{}, release func()) {
	ch := make(chan struct{}, 16)
	gate := make(chan struct{})
	var once sync.Once
	s.Override(key, func(w http.ResponseWriter, r *http.Request) {
		ch <- struct{}{}
		<-gate
		s.Override(key, nil)
		s.routes.ServeHTTP(w, r)
	})
	return ch, func() { once.Do(func() { close(gate) }) }
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusBadRequest, "malformed form")
		return
	}
	email := r.PostForm.Get("username")
	password := r.PostForm.Get("password")

	s.mu.Lock()
	a, ok := s.accounts[email]
	if !ok || a.Password != password {
		s.mu.Unlock()
		writeDetail(w, http.StatusBadRequest, "Invalid credentials")
		return
	}
	tok := "tok-" + uuid.NewString()
	if len(s.nextTokens) > 0 {
		tok, s.nextTokens = s.nextTokens[0], s.nextTokens[1:]
	}
	s.tokens[tok] = email
	role := a.Role
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": tok,
		"token_type":   "bearer",
		"role":         string(role),
	})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Email == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	role, err := domainauth.ParseRole(in.Role)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid role")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[in.Email]; exists {
		writeDetail(w, http.StatusBadRequest, "Email exists")
		return
	}
	s.addAccountLocked(in.Email, in.Password, role)
	writeJSON(w, http.StatusOK, map[string]string{"status": "User created"})
}

type authedHandler func(w http.ResponseWriter, r *http.Request, caller model.User)

func (s *Server) authed(h authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || tok == "" {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		s.mu.Lock()
		email, known := s.tokens[tok]
		var caller model.User
		if a, exists := s.accounts[email]; known && exists {
			caller = a.User
		}
		s.mu.Unlock()
		if caller.ID == "" {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		h(w, r, caller)
	}
}

func (s *Server) admin(h authedHandler) http.HandlerFunc {
	return s.authed(func(w http.ResponseWriter, r *http.Request, caller model.User) {
		if caller.Role != domainauth.RoleAdmin {
			writeDetail(w, http.StatusForbidden, "Admin only")
			return
		}
		h(w, r, caller)
	})
}

func (s *Server) handleMe(w http.ResponseWriter, _ *http.Request, caller model.User) {
	writeJSON(w, http.StatusOK, caller)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request, _ model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := model.Stats{TotalUsers: len(s.accounts)}
	for _, sl := range s.slips {
		st.TotalSalaryPaid += sl.Amount
	}
	for _, e := range s.expenses {
		if e.Status == model.ExpenseStatusPending {
			st.PendingExpenses++
		}
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleUsers(w http.ResponseWriter, _ *http.Request, _ model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.User, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a.User)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, _ *http.Request, caller model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Expense, 0, len(s.expenses))
	for _, e := range s.expenses {
		if caller.Role == domainauth.RoleAdmin || e.EmployeeID == caller.ID {
			out = append(out, e)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request, caller model.User) {
	var in model.SubmitExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.expenses = append(s.expenses, model.Expense{
		ID:          fmt.Sprintf("e%d", s.seq),
		EmployeeID:  caller.ID,
		Description: in.Description,
		Amount:      in.Amount,
		Category:    in.Category,
		Status:      model.ExpenseStatusPending,
		Date:        s.now(),
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "Expense submitted"})
}

func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request, _ model.User) {
	id := mux.Vars(r)["id"]
	status := model.ExpenseStatus(r.URL.Query().Get("status"))
	if !status.Terminal() {
		writeDetail(w, http.StatusBadRequest, "Invalid status")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.expenses {
		if s.expenses[i].ID != id {
			continue
		}
		if s.expenses[i].Status == status {
			if s.unchangedNotFound {
				writeDetail(w, http.StatusNotFound, "Expense not found")
				return
			}
		} else {
			s.expenses[i].Status = status
			s.transitions[id]++
		}
		writeJSON(w, http.StatusOK, s.expenses[i])
		return
	}
	writeDetail(w, http.StatusNotFound, "Expense not found")
}

func (s *Server) handleListSlips(w http.ResponseWriter, _ *http.Request, caller model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.SalarySlip, 0, len(s.slips))
	for _, sl := range s.slips {
		if caller.Role == domainauth.RoleAdmin || sl.EmployeeID == caller.ID {
			out = append(out, sl)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateSlip(w http.ResponseWriter, r *http.Request, _ model.User) {
	var in model.IssueSalarySlipRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	known := false
	for _, a := range s.accounts {
		if a.ID == in.EmployeeID {
			known = true
			break
		}
	}
	if !known {
		writeDetail(w, http.StatusBadRequest, "Invalid Employee ID")
		return
	}
	s.seq++
	s.slips = append(s.slips, model.SalarySlip{
		ID:         fmt.Sprintf("s%d", s.seq),
		EmployeeID: in.EmployeeID,
		Month:      in.Month,
		Year:       in.Year,
		Amount:     in.Amount,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "Salary slip created"})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request, caller model.User) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	var slip *model.SalarySlip
	for i := range s.slips {
		if s.slips[i].ID == id {
			slip = &s.slips[i]
			break
		}
	}
	s.mu.Unlock()

	if slip == nil {
		writeDetail(w, http.StatusNotFound, "Slip not found")
		return
	}
	if caller.Role != domainauth.RoleAdmin && slip.EmployeeID != caller.ID {
		writeDetail(w, http.StatusForbidden, "Not your slip")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=Payslip_"+slip.Month+".pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(PDF(*slip))
}

// PDF returns the document bytes the fake serves for a slip.
func PDF(slip model.SalarySlip) []byte {
	return fmt.Appendf(nil, "%%PDF-1.4\n%% payslip %s %s %d %.2f\n%%%%EOF\n",
		slip.ID, slip.Month, slip.Year, slip.Amount)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
