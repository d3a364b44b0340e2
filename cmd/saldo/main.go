package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"saldo/internal/auth"
	"saldo/internal/backend"
	"saldo/internal/cli"
	"saldo/internal/config"
	"saldo/internal/core"
	"saldo/internal/form"
	applog "saldo/internal/log"
	"saldo/internal/profile"
	"saldo/internal/remote"
	"saldo/internal/repository"
	"saldo/internal/theme"
)

// localUserID is the fixed account used by the sqlite and memory backends,
// which have no authentication service.
const localUserID = "local"

type app struct {
	logger *applog.Logger
	cfg    *config.Config

	authState     *auth.State
	authenticator auth.Authenticator

	store  backend.Backend
	events repository.Publisher

	repo     *repository.Repository
	form     *form.Session
	profiles *profile.Service
	themes   *theme.Store

	in  *bufio.Scanner
	out io.Writer
}

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	if err := backendCfg.Validate(); err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	authState := auth.NewState()

	factory := backend.NewFactory(logger)
	result, err := factory.CreateBackend(context.Background(), backendCfg, authState.AccessToken)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	a := &app{
		logger:    logger,
		cfg:       cfg,
		authState: authState,
		store:     result.Backend,
		events:    result.Events,
		themes:    theme.NewStore(),
		in:        bufio.NewScanner(os.Stdin),
		out:       os.Stdout,
	}

	var uploader remote.AvatarUploader
	if result.Remote != nil {
		a.authenticator = result.Remote
		uploader = result.Remote
	}
	a.profiles = profile.NewService(result.Backend, uploader)

	// Every session change swaps the per-user state wholesale. Nothing from
	// the previous user survives.
	authState.OnChange(func(s auth.Session) {
		if !s.Valid() {
			a.repo = nil
			a.form = nil
			return
		}
		a.repo = repository.New(a.store, s.UserID, a.events)
		a.form = form.NewSession(a.repo)
	})

	cleanup := func() {
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Cleanup failed", "error", err)
			}
		}
	}
	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, cleanup)

	// The REPL blocks on stdin, so a signal exits here once cleanup ran.
	go func() {
		cli.WaitForShutdown(ctx, done)
		os.Exit(0)
	}()

	if err := a.run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("Fatal error", "error", err)
		cleanup()
		os.Exit(1)
	}
	cleanup()
}

func (a *app) run(ctx context.Context) error {
	if a.authenticator != nil {
		if err := a.signInLoop(ctx); err != nil {
			return err
		}
	} else {
		a.authState.Set(auth.Session{AccessToken: localUserID, UserID: localUserID})
	}

	if err := a.bootstrap(ctx); err != nil {
		a.printf("warning: initial load failed: %v\n", err)
	}
	a.printList()

	a.printf("type 'help' for commands\n")
	for ctx.Err() == nil {
		a.printf("> ")
		if !a.in.Scan() {
			return a.in.Err()
		}
		line := strings.TrimSpace(a.in.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		if cmd == "quit" || cmd == "exit" {
			return nil
		}
		if err := a.dispatch(ctx, cmd, args); err != nil {
			a.printf("error: %v\n", err)
		}
	}
	return ctx.Err()
}

// bootstrap loads the transaction list and the profile concurrently after
// sign-in. The profile is cosmetic, so only the list load is fatal.
func (a *app) bootstrap(ctx context.Context) error {
	session, ok := a.authState.Current()
	if !ok {
		return auth.ErrNoSession
	}

	var prof remote.Profile
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.repo.Load(gctx)
	})
	g.Go(func() error {
		p, err := a.profiles.Get(gctx, session.UserID)
		if err != nil {
			a.logger.Warn("Failed to load profile", "error", err)
			return nil
		}
		prof = p
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if prof.FullName != nil {
		a.printf("welcome back, %s\n", *prof.FullName)
	}
	return nil
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		a.printHelp()
	case "list":
		a.printList()
	case "refresh":
		if err := a.repo.Load(ctx); err != nil {
			return err
		}
		a.printList()
	case "add":
		return a.addTransaction(ctx)
	case "edit":
		if len(args) != 1 {
			return fmt.Errorf("usage: edit <id>")
		}
		return a.editTransaction(ctx, args[0])
	case "del":
		if len(args) != 1 {
			return fmt.Errorf("usage: del <id>")
		}
		return a.deleteTransaction(ctx, args[0])
	case "profile":
		return a.profileCommand(ctx, args)
	case "avatar":
		if len(args) != 1 {
			return fmt.Errorf("usage: avatar <image-path>")
		}
		return a.avatarCommand(ctx, args[0])
	case "theme":
		return a.themeCommand(args)
	case "logout":
		return a.logout(ctx)
	default:
		return fmt.Errorf("unknown command %q, try 'help'", cmd)
	}
	return nil
}

func (a *app) printHelp() {
	a.printf(`commands:
  list                     show transactions and balance
  refresh                  reload from the backend
  add                      add a transaction
  edit <id>                edit a transaction
  del <id>                 delete a transaction
  profile [full name]      show or update the profile
  avatar <image-path>      upload a profile picture
  theme [primary secondary] show or set the palette
  logout                   sign out
  quit                     exit
`)
}

func (a *app) printList() {
	if a.repo == nil {
		return
	}
	state := a.repo.State()
	if state.Err != nil {
		a.printf("(showing cached data, last refresh failed: %v)\n", state.Err)
	}

	txs := a.repo.Transactions()
	if len(txs) == 0 {
		a.printf("no transactions yet\n")
	} else {
		w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDATE\tTYPE\tAMOUNT\tDESCRIPTION")
		for _, t := range txs {
			desc := ""
			if t.Description != nil {
				desc = *t.Description
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", shortID(t.ID), t.Date, t.Type, t.Amount.Decimal(), desc)
		}
		w.Flush()
	}

	s := a.repo.Summary()
	a.printf("income %s  expenses %s  balance %s\n",
		s.IncomeTotal.Decimal(), s.ExpenseTotal.Decimal(), s.Balance.Decimal())
}

func (a *app) addTransaction(ctx context.Context) error {
	a.form.OpenCreate()
	return a.fillAndSubmit(ctx)
}

func (a *app) editTransaction(ctx context.Context, id string) error {
	tx, ok := a.findByID(id)
	if !ok {
		return fmt.Errorf("no transaction with id %q", id)
	}
	a.form.OpenEdit(tx)
	return a.fillAndSubmit(ctx)
}

// fillAndSubmit prompts for each field, keeping the current value when the
// user just presses enter. A failed submit keeps the form open with the
// entered values, so the retry only needs corrections.
func (a *app) fillAndSubmit(ctx context.Context) error {
	for {
		f := a.form.Fields()
		if v := a.prompt(fmt.Sprintf("date [%s]: ", f.Date)); v != "" {
			a.form.SetDate(v)
		}
		if v := a.prompt(fmt.Sprintf("amount [%s]: ", f.Amount)); v != "" {
			a.form.SetAmount(v)
		}
		if v := a.prompt(fmt.Sprintf("type (income/expense) [%s]: ", f.Type)); v != "" {
			a.form.SetType(v)
		}
		if v := a.prompt(fmt.Sprintf("description [%s]: ", f.Description)); v != "" {
			a.form.SetDescription(v)
		}

		tx, err := a.form.Submit(ctx)
		if err == nil {
			a.printf("saved %s\n", shortID(tx.ID))
			a.printList()
			return nil
		}
		a.printf("error: %v\n", err)
		if a.prompt("retry? [Y/n]: ") == "n" {
			a.form.Cancel()
			return nil
		}
	}
}

func (a *app) deleteTransaction(ctx context.Context, id string) error {
	tx, ok := a.findByID(id)
	if !ok {
		return fmt.Errorf("no transaction with id %q", id)
	}
	if a.prompt(fmt.Sprintf("delete %s %s of %s? [y/N]: ", tx.Date, tx.Type, tx.Amount.Decimal())) != "y" {
		a.printf("kept\n")
		return nil
	}
	if err := a.repo.Remove(ctx, tx.ID); err != nil {
		return err
	}
	a.printList()
	return nil
}

func (a *app) profileCommand(ctx context.Context, args []string) error {
	session, ok := a.authState.Current()
	if !ok {
		return auth.ErrNoSession
	}
	if len(args) == 0 {
		p, err := a.profiles.Get(ctx, session.UserID)
		if err != nil {
			return err
		}
		name, avatar := "(not set)", "(not set)"
		if p.FullName != nil {
			name = *p.FullName
		}
		if p.AvatarURL != nil {
			avatar = *p.AvatarURL
		}
		a.printf("name: %s\navatar: %s\n", name, avatar)
		return nil
	}

	p, err := a.profiles.SetFullName(ctx, session.UserID, strings.Join(args, " "))
	if err != nil {
		return err
	}
	a.printf("name set to %s\n", *p.FullName)
	return nil
}

func (a *app) avatarCommand(ctx context.Context, path string) error {
	session, ok := a.authState.Current()
	if !ok {
		return auth.ErrNoSession
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	p, err := a.profiles.AttachAvatar(ctx, session.UserID, filepath.Base(path), contentType, data)
	if err != nil {
		return err
	}
	a.printf("avatar set: %s\n", *p.AvatarURL)
	return nil
}

func (a *app) themeCommand(args []string) error {
	switch len(args) {
	case 0:
		t := a.themes.Current()
		a.printf("primary %s  secondary %s\n", t.Primary, t.Secondary)
		return nil
	case 2:
		if err := a.themes.Set(theme.Theme{Primary: args[0], Secondary: args[1]}); err != nil {
			return err
		}
		a.printf("theme updated\n")
		return nil
	default:
		return fmt.Errorf("usage: theme [primary secondary]")
	}
}

func (a *app) signInLoop(ctx context.Context) error {
	for ctx.Err() == nil {
		choice := a.prompt("sign in or sign up? [in/up]: ")
		email := a.prompt("email: ")
		password := a.prompt("password: ")
		if err := auth.ValidateCredentials(email, password); err != nil {
			a.printf("error: %v\n", err)
			continue
		}

		if choice == "up" {
			if err := a.authenticator.SignUp(ctx, email, password); err != nil {
				a.printf("sign up failed: %v\n", err)
				continue
			}
			a.printf("account created, confirm the address from your mailbox, then sign in\n")
			continue
		}

		session, err := a.authenticator.SignIn(ctx, email, password)
		if err != nil {
			a.printf("sign in failed: %v\n", err)
			continue
		}
		a.authState.Set(session)
		a.logger.Info("Signed in", "user_id", session.UserID)
		return nil
	}
	return ctx.Err()
}

func (a *app) logout(ctx context.Context) error {
	session, ok := a.authState.Current()
	if !ok {
		return auth.ErrNoSession
	}
	if a.authenticator != nil {
		if err := a.authenticator.SignOut(ctx, session.AccessToken); err != nil {
			a.logger.Warn("Sign out request failed", "error", err)
		}
	}
	a.authState.Clear()

	if a.authenticator == nil {
		a.authState.Set(auth.Session{AccessToken: localUserID, UserID: localUserID})
		return a.repo.Load(ctx)
	}
	if err := a.signInLoop(ctx); err != nil {
		return err
	}
	if err := a.bootstrap(ctx); err != nil {
		a.printf("warning: initial load failed: %v\n", err)
	}
	a.printList()
	return nil
}

func (a *app) findByID(id string) (core.Transaction, bool) {
	if tx, ok := a.repo.Get(id); ok {
		return tx, true
	}
	// Allow the shortened ids shown in the list.
	for _, tx := range a.repo.Transactions() {
		if shortID(tx.ID) == id {
			return tx, true
		}
	}
	return core.Transaction{}, false
}

func (a *app) prompt(label string) string {
	a.printf("%s", label)
	if !a.in.Scan() {
		return ""
	}
	return strings.TrimSpace(a.in.Text())
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
