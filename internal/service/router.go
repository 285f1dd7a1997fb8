package service

import (
	domainauth "github.com/target/paystream-client/internal/domain/auth"
	"github.com/target/paystream-client/internal/domain/model"
)

// View is the top-level screen shown for a session.
type View int

const (
	ViewLogin View = iota
	ViewAdminDashboard
	ViewEmployeeDashboard
)

func (v View) String() string {
	switch v {
	case ViewAdminDashboard:
		return "admin_dashboard"
	case ViewEmployeeDashboard:
		return "employee_dashboard"
	default:
		return "login"
	}
}

// Slices lists the snapshot slices the view displays.
func (v View) Slices() []model.Slice {
	switch v {
	case ViewAdminDashboard:
		return model.SlicesFor(domainauth.RoleAdmin)
	case ViewEmployeeDashboard:
		return model.SlicesFor(domainauth.RoleEmployee)
	default:
		return nil
	}
}

// ResolveView picks the view for a session. Anything short of a complete
// session with a known role resolves to the login view.
func ResolveView(sess domainauth.Session) View {
	if !sess.Authenticated() {
		return ViewLogin
	}
	switch sess.Role {
	case domainauth.RoleAdmin:
		return ViewAdminDashboard
	case domainauth.RoleEmployee:
		return ViewEmployeeDashboard
	default:
		return ViewLogin
	}
}
