package main

import (
	"strings"
	"text/tabwriter"
	"time"

	domainauth "github.com/target/paystream-client/internal/domain/auth"
	"github.com/target/paystream-client/internal/domain/model"
	apperrors "github.com/target/paystream-client/internal/errors"
	"github.com/target/paystream-client/internal/service"
)

type loginOptions struct {
	Email    string
	Password string
}

type signupOptions struct {
	Email    string
	Password string
	Role     domainauth.Role
}

type whoamiOptions struct {
	Verify bool
	Output outputOptions
}

type whoamiResult struct {
	Role      domainauth.Role `json:"role"                 yaml:"role"`
	Subject   string          `json:"subject,omitempty"    yaml:"subject,omitempty"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	View      string          `json:"view"                 yaml:"view"`
	User      *model.User     `json:"user,omitempty"       yaml:"user,omitempty"`
}

func parseLoginFlags(ctx *commandContext, args []string) (loginOptions, error) {
	fs := newFlagSet(ctx, "login")

	var opts loginOptions
	fs.StringVar(&opts.Email, "email", "", "Account email (required)")
	fs.StringVar(&opts.Password, "password", "", "Account password (prompted when omitted)")

	if err := parseFlags(fs, args); err != nil {
		return loginOptions{}, err
	}

	opts.Email = strings.TrimSpace(opts.Email)
	if opts.Email == "" {
		return loginOptions{}, usagef("-email is required")
	}
	if opts.Password == "" {
		pw, err := readPassword(ctx, "Password: ")
		if err != nil {
			return loginOptions{}, err
		}
		opts.Password = pw
	}
	return opts, nil
}

func runLogin(ctx *commandContext, args []string) error {
	opts, err := parseLoginFlags(ctx, args)
	if err != nil {
		return err
	}

	sess, err := ctx.Services.Sessions.Login(ctx.Ctx, domainauth.Credentials{
		Username: opts.Email,
		Password: opts.Password,
	})
	if err != nil {
		return err
	}

	if err := writef(ctx.Stdout, "Logged in as %s (%s)\n", opts.Email, sess.Role); err != nil {
		return err
	}

	// Serve the sync the login queued before the process exits.
	snap, err := ctx.Services.Sync.Drain(ctx.Ctx)
	if err != nil {
		ctx.Logger.WarnContext(ctx.Ctx, "initial sync failed", "error", err)
	}
	return renderSnapshot(ctx, outputOptions{Format: string(outputTable)}, snap)
}

func parseSignupFlags(ctx *commandContext, args []string) (signupOptions, error) {
	fs := newFlagSet(ctx, "signup")

	var opts signupOptions
	var role string
	fs.StringVar(&opts.Email, "email", "", "Account email (required)")
	fs.StringVar(&opts.Password, "password", "", "Account password (prompted when omitted)")
	fs.StringVar(&role, "role", string(domainauth.RoleEmployee), "Account role: admin or employee")

	if err := parseFlags(fs, args); err != nil {
		return signupOptions{}, err
	}

	opts.Email = strings.TrimSpace(opts.Email)
	if opts.Email == "" {
		return signupOptions{}, usagef("-email is required")
	}
	r, err := domainauth.ParseRole(role)
	if err != nil {
		return signupOptions{}, usageError{err: err}
	}
	opts.Role = r

	if opts.Password == "" {
		pw, err := readPassword(ctx, "Password: ")
		if err != nil {
			return signupOptions{}, err
		}
		opts.Password = pw
	}
	if opts.Password == "" {
		return signupOptions{}, usagef("password cannot be empty")
	}
	return opts, nil
}

func runSignup(ctx *commandContext, args []string) error {
	opts, err := parseSignupFlags(ctx, args)
	if err != nil {
		return err
	}

	if err := ctx.Services.Sessions.Signup(ctx.Ctx, domainauth.Profile{
		Email:    opts.Email,
		Password: opts.Password,
		Role:     opts.Role,
	}); err != nil {
		return err
	}

	return writef(ctx.Stdout, "Account created for %s. Run \"paystream login\" to sign in.\n", opts.Email)
}

func runLogout(ctx *commandContext, args []string) error {
	if err := parseFlags(newFlagSet(ctx, "logout"), args); err != nil {
		return err
	}
	if err := ctx.Services.Sessions.Logout(ctx.Ctx); err != nil {
		return err
	}
	return writeln(ctx.Stdout, "Logged out")
}

func parseWhoamiFlags(ctx *commandContext, args []string) (whoamiOptions, error) {
	fs := newFlagSet(ctx, "whoami")

	var opts whoamiOptions
	fs.BoolVar(&opts.Verify, "verify", false, "Confirm the session with the server")
	addOutputFlags(fs, &opts.Output)

	if err := parseFlags(fs, args); err != nil {
		return whoamiOptions{}, err
	}
	if err := opts.Output.validate(); err != nil {
		return whoamiOptions{}, err
	}
	return opts, nil
}

func runWhoami(ctx *commandContext, args []string) error {
	opts, err := parseWhoamiFlags(ctx, args)
	if err != nil {
		return err
	}

	sess, err := requireSession(ctx)
	if err != nil {
		return err
	}

	res := whoamiResult{Role: sess.Role, Subject: sess.Subject}
	if opts.Verify {
		user, verr := ctx.Services.Sessions.Revalidate(ctx.Ctx)
		if verr != nil {
			return verr
		}
		res.User = &user
		// Revalidate may have replaced the role.
		sess = ctx.Services.Sessions.Current(ctx.Ctx)
		res.Role = sess.Role
	}
	if !sess.ExpiresAt.IsZero() {
		exp := sess.ExpiresAt
		res.ExpiresAt = &exp
	}
	res.View = service.ResolveView(sess).String()

	return render(ctx.Stdout, opts.Output, res, func(tw *tabwriter.Writer) error {
		if err := writef(tw, "Role:\t%s\n", res.Role); err != nil {
			return err
		}
		if err := writef(tw, "Subject:\t%s\n", orDash(res.Subject)); err != nil {
			return err
		}
		expires := "-"
		if res.ExpiresAt != nil {
			expires = res.ExpiresAt.Format(time.RFC3339)
		}
		if err := writef(tw, "Expires:\t%s\n", expires); err != nil {
			return err
		}
		if err := writef(tw, "View:\t%s\n", res.View); err != nil {
			return err
		}
		if res.User != nil {
			return writef(tw, "Verified:\t%s (%s)\n", res.User.Email, res.User.ID)
		}
		return nil
	})
}

func runView(ctx *commandContext, args []string) error {
	if err := parseFlags(newFlagSet(ctx, "view"), args); err != nil {
		return err
	}

	view := service.ResolveView(ctx.Services.Sessions.Current(ctx.Ctx))
	if err := writeln(ctx.Stdout, view.String()); err != nil {
		return err
	}
	for _, sl := range view.Slices() {
		if err := writef(ctx.Stdout, "  %s\n", sl); err != nil {
			return err
		}
	}
	return nil
}

// requireSession returns the current session or an Unauthenticated error.
func requireSession(ctx *commandContext) (domainauth.Session, error) {
	sess := ctx.Services.Sessions.Current(ctx.Ctx)
	if !sess.Authenticated() {
		return domainauth.Session{}, apperrors.Unauthenticated("Not logged in. Run \"paystream login\" first.")
	}
	return sess, nil
}
