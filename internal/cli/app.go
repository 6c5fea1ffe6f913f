// Package cli drives the screens from a terminal. Each command enters the
// screen it needs, feeds it input and prints where navigation ended up.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/pflag"

	"github.com/jwalitptl/medops-mobile/internal/model"
	"github.com/jwalitptl/medops-mobile/internal/screen"
	"github.com/jwalitptl/medops-mobile/internal/service/assignment"
	"github.com/jwalitptl/medops-mobile/internal/service/auth"
	"github.com/jwalitptl/medops-mobile/internal/service/role"
	"github.com/jwalitptl/medops-mobile/internal/service/user"
	"github.com/jwalitptl/medops-mobile/pkg/logger"
)

var (
	ErrUsage       = errors.New("usage error")
	ErrNotLoggedIn = errors.New("not logged in")
	ErrRejected    = errors.New("rejected")
)

// Deps are the collaborators the screens run against.
type Deps struct {
	Auth    auth.AuthService
	Roles   role.RoleService
	Users   user.UserServicer
	Session screen.SessionStore
	Policy  assignment.Policy
	Logger  *logger.Logger
}

type App struct {
	out  io.Writer
	nav  *terminalNavigator
	deps Deps

	login    *screen.LoginScreen
	register *screen.RegistrationScreen
	userView *screen.UserViewScreen
}

type command struct {
	usage string
	run   func(ctx context.Context, args []string) error
}

func NewApp(deps Deps, out io.Writer) *App {
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	nav := &terminalNavigator{out: out, history: screen.NewHistory()}
	return &App{
		out:      out,
		nav:      nav,
		deps:     deps,
		login:    screen.NewLoginScreen(deps.Auth, deps.Session, nav, deps.Logger),
		register: screen.NewRegistrationScreen(deps.Auth, deps.Roles, nav, deps.Logger),
		userView: screen.NewUserViewScreen(deps.Users, deps.Roles, deps.Session, nav, deps.Logger,
			screen.WithSelectionPolicy(deps.Policy)),
	}
}

func (a *App) commands() map[string]command {
	return map[string]command{
		"login":           {"login EMAIL PASSWORD", a.runLogin},
		"logout":          {"logout", a.runLogout},
		"whoami":          {"whoami", a.runWhoami},
		"register":        {"register --email E --password P --first F --last L [--dob YYYY-MM-DD] [--role NAME]", a.runRegister},
		"roles":           {"roles", a.runRoles},
		"users":           {"users --role NAME", a.runUsers},
		"assign-staff":    {"assign-staff --toggle ID[,ID...]", a.assign(assignment.ModeAddStaff)},
		"assign-patients": {"assign-patients --toggle ID[,ID...]", a.assign(assignment.ModeAddPatients)},
	}
}

// Usage lists every command.
func (a *App) Usage() string {
	cmds := a.commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("commands:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "  %s\n", cmds[name].usage)
	}
	return b.String()
}

// Run executes one command. args[0] is the command name.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command\n%s", ErrUsage, a.Usage())
	}
	cmd, ok := a.commands()[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown command %q\n%s", ErrUsage, args[0], a.Usage())
	}
	return cmd.run(ctx, args[1:])
}

// Route is where the last navigation landed.
func (a *App) Route() (screen.Route, bool) {
	v, ok := a.nav.history.Current()
	return v.Route, ok
}

func (a *App) runLogin(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: login EMAIL PASSWORD", ErrUsage)
	}
	defer a.login.Exit()
	a.login.Username, a.login.Password = args[0], args[1]
	if !a.login.Submit(ctx) {
		return fmt.Errorf("%w: %s", ErrRejected, a.login.Error)
	}
	return nil
}

func (a *App) runLogout(ctx context.Context, _ []string) error {
	if err := a.deps.Session.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	a.nav.Navigate(screen.RouteLogin, nil)
	return nil
}

func (a *App) runWhoami(ctx context.Context, _ []string) error {
	u, err := a.resume(ctx)
	if err != nil {
		return err
	}
	printUser(a.out, u)
	return nil
}

func (a *App) runRegister(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("register", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	email := fs.String("email", "", "email address, used as the username")
	password := fs.String("password", "", "password")
	first := fs.String("first", "", "first name")
	last := fs.String("last", "", "last name")
	dob := fs.String("dob", screen.DefaultDOB.String(), "date of birth")
	roleName := fs.String("role", "", "role name, defaults to Patient")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	date, err := model.ParseDate(*dob)
	if err != nil {
		return fmt.Errorf("%w: invalid --dob %q", ErrUsage, *dob)
	}

	a.register.Enter(ctx)
	defer a.register.Exit()
	if a.register.Error != "" {
		return fmt.Errorf("%w: %s", ErrRejected, a.register.Error)
	}
	if *roleName != "" {
		r, ok := findRole(a.register.AvailableRoles, *roleName)
		if !ok {
			return fmt.Errorf("%w: role %q is not offered", ErrUsage, *roleName)
		}
		a.register.SelectRole(r.RoleID)
	}

	a.register.Username = *email
	a.register.Password = *password
	a.register.FirstName = *first
	a.register.LastName = *last
	a.register.DOB = date
	if !a.register.Submit(ctx) {
		return fmt.Errorf("%w: %s", ErrRejected, a.register.Error)
	}
	return nil
}

func (a *App) runRoles(ctx context.Context, _ []string) error {
	roles, err := a.deps.Roles.ListRoles(ctx)
	if err != nil {
		return err
	}
	for _, r := range role.AssignableRoles(roles) {
		fmt.Fprintf(a.out, "%d\t%s\n", r.RoleID, r.RoleName)
	}
	return nil
}

func (a *App) runUsers(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("users", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	roleName := fs.String("role", model.RoleDoctor, "role name")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	users, err := a.deps.Roles.ListUsersByRole(ctx, *roleName)
	if err != nil {
		return err
	}
	for _, u := range users {
		fmt.Fprintf(a.out, "%d\t%s\t%s\n", u.UserID, u.FullName(), u.Email)
	}
	return nil
}

// assign opens a picker on the logged-in user, flips each --toggle id and saves.
func (a *App) assign(mode assignment.Mode) func(context.Context, []string) error {
	return func(ctx context.Context, args []string) error {
		fs := pflag.NewFlagSet(string(mode), pflag.ContinueOnError)
		fs.SetOutput(io.Discard)
		toggles := fs.IntSlice("toggle", nil, "candidate ids to flip")
		if err := fs.Parse(args); err != nil {
			return fmt.Errorf("%w: %v", ErrUsage, err)
		}

		if _, err := a.resume(ctx); err != nil {
			return err
		}
		defer a.userView.Exit()

		if mode == assignment.ModeAddPatients {
			a.userView.AddPatients(ctx)
		} else {
			a.userView.AddMedicalStaff(ctx)
		}
		if a.userView.Error != "" {
			return fmt.Errorf("%w: %s", ErrRejected, a.userView.Error)
		}

		for _, id := range *toggles {
			a.userView.Toggle(id)
		}
		for _, c := range a.userView.Candidates() {
			mark := " "
			if a.userView.IsSelected(c.UserID) {
				mark = "x"
			}
			fmt.Fprintf(a.out, "[%s] %d\t%s\n", mark, c.UserID, c.FullName())
		}

		res := a.userView.Assign(ctx)
		fmt.Fprintf(a.out, "update %s\n", res.Outcome)
		if res.Applied() {
			// each command is a cold start, so keep the saved copy current
			if err := a.deps.Session.Save(ctx, a.userView.User()); err != nil {
				a.deps.Logger.Error(err, "failed to refresh session")
			}
			printUser(a.out, a.userView.User())
		}
		return nil
	}
}

// resume loads the saved user through Login and lands on User View.
func (a *App) resume(ctx context.Context) (*model.User, error) {
	a.login.Enter(ctx)
	v, ok := a.nav.history.Current()
	if !ok || v.Route != screen.RouteUserView || v.User == nil {
		return nil, ErrNotLoggedIn
	}
	a.userView.Enter(ctx, v.User)
	if route, _ := a.Route(); route != screen.RouteUserView {
		return nil, ErrNotLoggedIn
	}
	return a.userView.User(), nil
}

func findRole(roles []model.Role, name string) (model.Role, bool) {
	for _, r := range roles {
		if strings.EqualFold(r.RoleName, name) {
			return r, true
		}
	}
	return model.Role{}, false
}

func printUser(w io.Writer, u *model.User) {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.RoleName)
	}
	fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", u.UserID, u.FullName(), u.Email, u.DOB, strings.Join(names, ","))
	for _, s := range u.MedicalStaff {
		fmt.Fprintf(w, "  staff   %d\t%s\n", s.UserID, s.FullName())
	}
	for _, p := range u.Patients {
		fmt.Fprintf(w, "  patient %d\t%s\n", p.UserID, p.FullName())
	}
}
