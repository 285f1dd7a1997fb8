package main

import (
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/target/paystream-client/internal/domain/model"
	apperrors "github.com/target/paystream-client/internal/errors"
)

type syncOptions struct {
	Interval time.Duration
	Output   outputOptions
}

type expensesOptions struct {
	Status model.ExpenseStatus
	Output outputOptions
}

type slipsOptions struct {
	Breakdown bool
	Output    outputOptions
}

type slipRow struct {
	model.SalarySlip `yaml:",inline"`

	Breakdown *model.Earnings `json:"breakdown,omitempty" yaml:"breakdown,omitempty"`
}

func parseSyncFlags(ctx *commandContext, args []string) (syncOptions, error) {
	fs := newFlagSet(ctx, "sync")

	var opts syncOptions
	fs.DurationVar(&opts.Interval, "interval", 0, "Keep syncing at this interval until interrupted")
	addOutputFlags(fs, &opts.Output)

	if err := parseFlags(fs, args); err != nil {
		return syncOptions{}, err
	}
	if opts.Interval < 0 {
		return syncOptions{}, usagef("-interval cannot be negative")
	}
	if err := opts.Output.validate(); err != nil {
		return syncOptions{}, err
	}
	return opts, nil
}

func runSync(ctx *commandContext, args []string) error {
	opts, err := parseSyncFlags(ctx, args)
	if err != nil {
		return err
	}
	if _, err := requireSession(ctx); err != nil {
		return err
	}
	if opts.Interval > 0 {
		return watchSync(ctx, opts)
	}

	snap, err := ctx.Services.Sync.Sync(ctx.Ctx)
	if rerr := renderSnapshot(ctx, opts.Output, snap); rerr != nil {
		return rerr
	}
	return err
}

// watchSync runs the background loop and publishes a summary per snapshot
// until the process is interrupted.
func watchSync(ctx *commandContext, opts syncOptions) error {
	runCtx, stop := signal.NotifyContext(ctx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sync := ctx.Services.Sync
	unsubscribe := sync.Subscribe(func(snap model.Snapshot) {
		if snap.Generation == 0 {
			return
		}
		if err := renderSnapshot(ctx, opts.Output, snap); err != nil {
			ctx.Logger.WarnContext(runCtx, "render snapshot", "error", err)
		}
	})
	defer unsubscribe()

	done := make(chan error, 1)
	go func() { done <- sync.Run(runCtx) }()

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()
	sync.Request()
	for {
		select {
		case <-runCtx.Done():
			return <-done
		case <-ticker.C:
			sync.Request()
		}
	}
}

func renderSnapshot(ctx *commandContext, out outputOptions, snap model.Snapshot) error {
	return render(ctx.Stdout, out, snap, func(tw *tabwriter.Writer) error {
		if err := writeln(tw, "SLICE\tITEMS\tSTATE"); err != nil {
			return err
		}
		for _, sl := range model.SlicesFor(snap.Role) {
			state := "ok"
			if err := snap.Stale[sl]; err != nil {
				state = "stale: " + apperrors.UserMessage(err)
			}
			if err := writef(tw, "%s\t%d\t%s\n", sl, sliceLen(snap, sl), state); err != nil {
				return err
			}
		}
		return nil
	})
}

func sliceLen(snap model.Snapshot, sl model.Slice) int {
	switch sl {
	case model.SliceStats:
		if snap.Stats != nil {
			return 1
		}
		return 0
	case model.SliceUsers:
		return len(snap.Users)
	case model.SliceExpenses:
		return len(snap.Expenses)
	case model.SliceSalarySlips:
		return len(snap.SalarySlips)
	default:
		return 0
	}
}

// fetchSlice refreshes one slice the session is allowed to see.
func fetchSlice(ctx *commandContext, sl model.Slice) (model.Snapshot, error) {
	sess, err := requireSession(ctx)
	if err != nil {
		return model.Snapshot{}, err
	}
	if !slices.Contains(model.SlicesFor(sess.Role), sl) {
		return model.Snapshot{}, apperrors.Forbiddenf("%s are not available to the %s role", sliceLabel(sl), sess.Role)
	}
	return ctx.Services.Sync.Resync(ctx.Ctx, sl)
}

func sliceLabel(sl model.Slice) string {
	return strings.ReplaceAll(string(sl), "_", " ")
}

func parseReadFlags(ctx *commandContext, name string, args []string) (outputOptions, error) {
	fs := newFlagSet(ctx, name)

	var out outputOptions
	addOutputFlags(fs, &out)

	if err := parseFlags(fs, args); err != nil {
		return outputOptions{}, err
	}
	if err := out.validate(); err != nil {
		return outputOptions{}, err
	}
	return out, nil
}

func runStats(ctx *commandContext, args []string) error {
	out, err := parseReadFlags(ctx, "stats", args)
	if err != nil {
		return err
	}
	snap, err := fetchSlice(ctx, model.SliceStats)
	if err != nil {
		return err
	}
	if snap.Stats == nil {
		return apperrors.Internal("stats are not available")
	}

	st := *snap.Stats
	return render(ctx.Stdout, out, st, func(tw *tabwriter.Writer) error {
		if err := writef(tw, "Total users:\t%d\n", st.TotalUsers); err != nil {
			return err
		}
		if err := writef(tw, "Total salary paid:\t%s\n", formatAmount(st.TotalSalaryPaid)); err != nil {
			return err
		}
		return writef(tw, "Pending expenses:\t%d\n", st.PendingExpenses)
	})
}

func runUsers(ctx *commandContext, args []string) error {
	out, err := parseReadFlags(ctx, "users", args)
	if err != nil {
		return err
	}
	snap, err := fetchSlice(ctx, model.SliceUsers)
	if err != nil {
		return err
	}

	users := slices.Clone(snap.Users)
	slices.SortFunc(users, func(a, b model.User) int { return strings.Compare(a.Email, b.Email) })
	return render(ctx.Stdout, out, users, func(tw *tabwriter.Writer) error {
		if err := writeln(tw, "ID\tEMAIL\tROLE"); err != nil {
			return err
		}
		for _, u := range users {
			if err := writef(tw, "%s\t%s\t%s\n", u.ID, u.Email, u.Role); err != nil {
				return err
			}
		}
		return nil
	})
}

func parseExpensesFlags(ctx *commandContext, args []string) (expensesOptions, error) {
	fs := newFlagSet(ctx, "expenses")

	var opts expensesOptions
	var status string
	fs.StringVar(&status, "status", "", "Only show claims in this status: Pending, Approved or Rejected")
	addOutputFlags(fs, &opts.Output)

	if err := parseFlags(fs, args); err != nil {
		return expensesOptions{}, err
	}
	if status = strings.TrimSpace(status); status != "" {
		st, err := parseStatus(status)
		if err != nil {
			return expensesOptions{}, err
		}
		opts.Status = st
	}
	if err := opts.Output.validate(); err != nil {
		return expensesOptions{}, err
	}
	return opts, nil
}

func parseStatus(v string) (model.ExpenseStatus, error) {
	for _, st := range []model.ExpenseStatus{
		model.ExpenseStatusPending,
		model.ExpenseStatusApproved,
		model.ExpenseStatusRejected,
	} {
		if strings.EqualFold(v, st.String()) {
			return st, nil
		}
	}
	return "", usagef("invalid status %q (valid options: Pending, Approved, Rejected)", v)
}

func runExpenses(ctx *commandContext, args []string) error {
	opts, err := parseExpensesFlags(ctx, args)
	if err != nil {
		return err
	}
	snap, err := fetchSlice(ctx, model.SliceExpenses)
	if err != nil {
		return err
	}

	expenses := make([]model.Expense, 0, len(snap.Expenses))
	for _, e := range snap.Expenses {
		if opts.Status == "" || e.Status == opts.Status {
			expenses = append(expenses, e)
		}
	}
	return render(ctx.Stdout, opts.Output, expenses, func(tw *tabwriter.Writer) error {
		if err := writeln(tw, "ID\tEMPLOYEE\tDATE\tCATEGORY\tAMOUNT\tSTATUS\tDESCRIPTION"); err != nil {
			return err
		}
		for _, e := range expenses {
			date := "-"
			if !e.Date.IsZero() {
				date = e.Date.Format(time.DateOnly)
			}
			if err := writef(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				e.ID, e.EmployeeID, date, e.Category, formatAmount(e.Amount), e.Status, e.Description,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func parseSlipsFlags(ctx *commandContext, args []string) (slipsOptions, error) {
	fs := newFlagSet(ctx, "slips")

	var opts slipsOptions
	fs.BoolVar(&opts.Breakdown, "breakdown", false, "Include the earnings breakdown of each slip")
	addOutputFlags(fs, &opts.Output)

	if err := parseFlags(fs, args); err != nil {
		return slipsOptions{}, err
	}
	if err := opts.Output.validate(); err != nil {
		return slipsOptions{}, err
	}
	return opts, nil
}

func runSlips(ctx *commandContext, args []string) error {
	opts, err := parseSlipsFlags(ctx, args)
	if err != nil {
		return err
	}
	snap, err := fetchSlice(ctx, model.SliceSalarySlips)
	if err != nil {
		return err
	}

	rows := make([]slipRow, 0, len(snap.SalarySlips))
	for _, s := range snap.SalarySlips {
		row := slipRow{SalarySlip: s}
		if opts.Breakdown {
			b := s.Breakdown()
			row.Breakdown = &b
		}
		rows = append(rows, row)
	}
	return render(ctx.Stdout, opts.Output, rows, func(tw *tabwriter.Writer) error {
		return writeSlipTable(tw, rows, opts.Breakdown)
	})
}

func writeSlipTable(tw *tabwriter.Writer, rows []slipRow, breakdown bool) error {
	header := "ID\tMONTH\tYEAR\tAMOUNT"
	if breakdown {
		header += "\tBASIC\tHRA\tSPECIAL\tBONUS"
	}
	if err := writeln(tw, header); err != nil {
		return err
	}
	for _, r := range rows {
		line := fmt.Sprintf("%s\t%s\t%d\t%s", r.ID, r.Month, r.Year, formatAmount(r.Amount))
		if r.Breakdown != nil {
			line += fmt.Sprintf("\t%s\t%s\t%s\t%s",
				formatAmount(r.Breakdown.Basic),
				formatAmount(r.Breakdown.HRA),
				formatAmount(r.Breakdown.Special),
				formatAmount(r.Breakdown.Bonus),
			)
		}
		if err := writeln(tw, line); err != nil {
			return err
		}
	}
	return nil
}

// findSlip looks a slip up in a fresh copy of the session's slips.
func findSlip(ctx *commandContext, id string) (model.SalarySlip, bool) {
	snap, err := ctx.Services.Sync.Resync(ctx.Ctx, model.SliceSalarySlips)
	if err != nil {
		return model.SalarySlip{}, false
	}
	for _, s := range snap.SalarySlips {
		if s.ID == id {
			return s, true
		}
	}
	return model.SalarySlip{}, false
}
