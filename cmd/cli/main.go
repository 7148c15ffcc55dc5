package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/amirasaad/finshare/infra/initializer"
	"github.com/amirasaad/finshare/pkg/app"
	"github.com/amirasaad/finshare/pkg/config"
	"github.com/amirasaad/finshare/pkg/domain/scope"
	"github.com/amirasaad/finshare/pkg/service/goal"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"golang.org/x/term"
)

const usage = `Usage: cli <username|email> <command> [flags]

Commands:
  accounts  [-context own|member|all] [-member <user id>]   accounts with current balances
  goals     [-context own|member|all] [-member <user id>]   goals and their progress
  dashboard [-context ...] [-year Y -month M]               monthly income and spending
  rebuild                                                   replay stored balances from transactions`

var (
	header  = color.New(color.FgCyan, color.Bold)
	good    = color.New(color.FgGreen)
	bad     = color.New(color.FgRed)
	warning = color.New(color.FgYellow)
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		_, _ = bad.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		fmt.Println(usage)
		return nil
	}
	identity, cmd, rest := args[0], args[1], args[2:]

	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}
	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	a := app.New(deps, cfg)

	password, err := readPassword(os.Stdin, os.Stderr)
	if err != nil {
		return err
	}
	user, err := a.AuthService.Login(ctx, identity, password)
	if err != nil {
		return err
	}
	if user == nil {
		return errors.New("invalid credentials")
	}
	return dispatch(ctx, a, user.ID, cmd, rest, os.Stdout)
}

// readPassword prompts without echo on a terminal and reads one line otherwise.
func readPassword(in *os.File, prompt io.Writer) (string, error) {
	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		_, _ = fmt.Fprint(prompt, "Password: ")
		raw, err := term.ReadPassword(fd)
		_, _ = fmt.Fprintln(prompt)
		return string(raw), err
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func dispatch(ctx context.Context, a *app.App, userID uuid.UUID, cmd string, args []string, w io.Writer) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(w)
	viewContext := fs.String("context", "own", "own, member or all")
	member := fs.String("member", "", "member user id for -context member")
	now := time.Now().UTC()
	year := fs.Int("year", now.Year(), "year")
	month := fs.Int("month", int(now.Month()), "month (1-12)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	sc, err := scope.Parse(*viewContext, *member)
	if err != nil {
		return err
	}

	switch cmd {
	case "accounts":
		return printAccounts(ctx, a, userID, sc, w)
	case "goals":
		return printGoals(ctx, a, userID, sc, w)
	case "dashboard":
		return printDashboard(ctx, a, userID, sc, *year, *month, w)
	case "rebuild":
		return printRebuild(ctx, a, userID, w)
	default:
		_, _ = fmt.Fprintln(w, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func printAccounts(ctx context.Context, a *app.App, userID uuid.UUID, sc scope.Scope, w io.Writer) error {
	accounts, err := a.AccountService.ListAccounts(ctx, userID, sc)
	if err != nil {
		return err
	}
	_, _ = header.Fprintln(w, "Accounts")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, acc := range accounts {
		status := "active"
		if !acc.IsActive {
			status = "inactive"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", acc.ID, acc.Name, acc.Type, status, acc.CurrentBalance.StringFixed(2))
	}
	return tw.Flush()
}

func printGoals(ctx context.Context, a *app.App, userID uuid.UUID, sc scope.Scope, w io.Writer) error {
	goals, err := a.GoalService.ListGoals(ctx, userID, sc, goal.FilterAll)
	if err != nil {
		return err
	}
	_, _ = header.Fprintln(w, "Goals")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, g := range goals {
		progress := fmt.Sprintf("%s/%s (%s%%)",
			g.CurrentAmount.StringFixed(2), g.TargetAmount.StringFixed(2), g.ProgressPercentage.StringFixed(0))
		if g.IsCompleted {
			progress = good.Sprint(progress + " done")
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", g.ID, g.Name, progress)
	}
	return tw.Flush()
}

func printDashboard(
	ctx context.Context,
	a *app.App,
	userID uuid.UUID,
	sc scope.Scope,
	year, month int,
	w io.Writer,
) error {
	summary, err := a.DashboardService.ForMonth(ctx, userID, sc, year, month)
	if err != nil {
		return err
	}
	_, _ = header.Fprintf(w, "Dashboard %04d-%02d\n", year, month)
	_, _ = fmt.Fprintf(w, "Income:   %s\n", good.Sprint(summary.TotalIncome.StringFixed(2)))
	_, _ = fmt.Fprintf(w, "Expenses: %s\n", bad.Sprint(summary.TotalExpenses.StringFixed(2)))
	balance := summary.Balance.StringFixed(2)
	if summary.Balance.IsNegative() {
		balance = bad.Sprint(balance)
	}
	_, _ = fmt.Fprintf(w, "Balance:  %s\n", balance)
	if len(summary.TopCategories) == 0 {
		return nil
	}
	_, _ = header.Fprintln(w, "Top categories")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, c := range summary.TopCategories {
		_, _ = fmt.Fprintf(tw, "%s.\t%s\t%s\t%s%%\n",
			strconv.Itoa(i+1), c.CategoryName, c.Amount.StringFixed(2), c.Percentage.StringFixed(1))
	}
	return tw.Flush()
}

func printRebuild(ctx context.Context, a *app.App, userID uuid.UUID, w io.Writer) error {
	reports, err := a.BalanceService.Rebuild(ctx, userID)
	if err != nil {
		return err
	}
	corrected := 0
	for _, r := range reports {
		if !r.Corrected {
			continue
		}
		corrected++
		_, _ = warning.Fprintf(w, "%s: stored %s, replayed %s\n",
			r.AccountID, r.Stored.StringFixed(2), r.Replayed.StringFixed(2))
	}
	_, _ = good.Fprintf(w, "%d accounts checked, %d corrected\n", len(reports), corrected)
	return nil
}
