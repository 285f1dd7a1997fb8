package model

import (
	"maps"
	"slices"
	"time"

	"github.com/target/paystream-client/internal/domain/auth"
)

// Slice names one independently fetched part of a snapshot.
type Slice string

const (
	SliceStats       Slice = "stats"
	SliceUsers       Slice = "users"
	SliceExpenses    Slice = "expenses"
	SliceSalarySlips Slice = "salary_slips"
)

// SlicesFor returns the slices a role is allowed to fetch, in fetch order.
func SlicesFor(role auth.Role) []Slice {
	switch role {
	case auth.RoleAdmin:
		return []Slice{SliceStats, SliceExpenses, SliceUsers}
	case auth.RoleEmployee:
		return []Slice{SliceSalarySlips, SliceExpenses}
	default:
		return nil
	}
}

// Snapshot is the client's read-through copy of server data for one role.
// Each slice is replaced wholesale on a successful fetch and never patched.
type Snapshot struct {
	Role        auth.Role    `json:"role"                   yaml:"role"`
	Stats       *Stats       `json:"stats,omitempty"        yaml:"stats,omitempty"`
	Users       []User       `json:"users,omitempty"        yaml:"users,omitempty"`
	Expenses    []Expense    `json:"expenses,omitempty"     yaml:"expenses,omitempty"`
	SalarySlips []SalarySlip `json:"salary_slips,omitempty" yaml:"salary_slips,omitempty"`

	// Stale holds the last fetch error of each slice that kept its previous value.
	Stale map[Slice]error `json:"-" yaml:"-"`

	Generation uint64    `json:"generation"          yaml:"generation"`
	SyncedAt   time.Time `json:"synced_at,omitempty" yaml:"synced_at,omitempty"`
}

// EmptySnapshot returns the snapshot of a role before anything was fetched.
func EmptySnapshot(role auth.Role) Snapshot {
	return Snapshot{Role: role}
}

// IsStale reports whether the slice failed its last fetch.
func (s Snapshot) IsStale(sl Slice) bool {
	_, ok := s.Stale[sl]
	return ok
}

// StaleSlices lists the stale slices in a stable order.
func (s Snapshot) StaleSlices() []Slice {
	out := make([]Slice, 0, len(s.Stale))
	for sl := range s.Stale {
		out = append(out, sl)
	}
	slices.Sort(out)
	return out
}

// Expense finds an expense by ID.
func (s Snapshot) Expense(id string) (Expense, bool) {
	for _, e := range s.Expenses {
		if e.ID == id {
			return e, true
		}
	}
	return Expense{}, false
}

// Clone returns a deep copy so callers cannot alter published state.
func (s Snapshot) Clone() Snapshot {
	out := s
	if s.Stats != nil {
		st := *s.Stats
		out.Stats = &st
	}
	out.Users = slices.Clone(s.Users)
	out.Expenses = slices.Clone(s.Expenses)
	out.SalarySlips = slices.Clone(s.SalarySlips)
	out.Stale = maps.Clone(s.Stale)
	return out
}
