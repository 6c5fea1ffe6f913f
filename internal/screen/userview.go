package screen

import (
	"context"

	"github.com/jwalitptl/medops-mobile/internal/model"
	"github.com/jwalitptl/medops-mobile/internal/service/assignment"
	"github.com/jwalitptl/medops-mobile/internal/service/user"
	apperrors "github.com/jwalitptl/medops-mobile/pkg/errors"
	"github.com/jwalitptl/medops-mobile/pkg/logger"
)

// UserViewScreen shows a user record and its relationship pickers.
type UserViewScreen struct {
	Error string

	editor *assignment.Editor

	users   user.UserServicer
	dir     assignment.Directory
	session SessionStore
	nav     Navigator
	policy  assignment.Policy
	logger  *logger.Logger
}

type UserViewOption func(*UserViewScreen)

func WithSelectionPolicy(p assignment.Policy) UserViewOption {
	return func(s *UserViewScreen) { s.policy = p }
}

func NewUserViewScreen(users user.UserServicer, dir assignment.Directory, session SessionStore, nav Navigator, log *logger.Logger, opts ...UserViewOption) *UserViewScreen {
	if log == nil {
		log = logger.Nop()
	}
	s := &UserViewScreen{
		users:   users,
		dir:     dir,
		session: session,
		nav:     nav,
		policy:  assignment.DefaultPolicy(),
		logger:  log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enter shows u and checks it still exists on the backend. A user that is
// gone ends the session.
func (s *UserViewScreen) Enter(ctx context.Context, u *model.User) {
	s.Error = ""
	s.editor = assignment.NewEditor(u, s.dir, s.users,
		assignment.WithPolicy(s.policy),
		assignment.WithLogger(s.logger))

	if _, err := s.users.GetByEmail(ctx, u.Email); err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			s.logger.Warn("user no longer exists, logging out", "user_id", u.UserID)
			s.LogOut(ctx)
			return
		}
		s.logger.Error(err, "failed to verify user", "user_id", u.UserID)
	}
}

// User is the record being shown, nil before Enter.
func (s *UserViewScreen) User() *model.User {
	if s.editor == nil {
		return nil
	}
	return s.editor.User()
}

func (s *UserViewScreen) Mode() assignment.Mode {
	if s.editor == nil {
		return assignment.ModeOverview
	}
	return s.editor.Mode()
}

func (s *UserViewScreen) Candidates() []model.User {
	if s.editor == nil {
		return nil
	}
	return s.editor.Candidates()
}

func (s *UserViewScreen) IsSelected(id int) bool {
	return s.editor != nil && s.editor.IsSelected(id)
}

func (s *UserViewScreen) AddMedicalStaff(ctx context.Context) {
	s.begin(ctx, assignment.ModeAddStaff)
}

func (s *UserViewScreen) AddPatients(ctx context.Context) {
	s.begin(ctx, assignment.ModeAddPatients)
}

func (s *UserViewScreen) begin(ctx context.Context, mode assignment.Mode) {
	s.Error = ""
	if s.editor == nil {
		return
	}
	begin := s.editor.BeginAddStaff
	if mode == assignment.ModeAddPatients {
		begin = s.editor.BeginAddPatients
	}
	if err := begin(ctx); err != nil {
		s.logger.Error(err, "failed to load candidates")
		s.Error = apperrors.Message(err)
	}
}

func (s *UserViewScreen) Toggle(id int) {
	if s.editor == nil {
		return
	}
	if err := s.editor.Toggle(id); err != nil {
		s.logger.Debug("toggle ignored", "user_id", id, "error", err.Error())
	}
}

// Assign saves the selection. Update failures are logged by the user
// client and not shown.
func (s *UserViewScreen) Assign(ctx context.Context) user.FireAndForgetResult {
	if s.editor == nil {
		return user.FireAndForgetResult{}
	}
	res, err := s.editor.Assign(ctx)
	if err != nil {
		s.logger.Debug("assign ignored", "error", err.Error())
	}
	return res
}

func (s *UserViewScreen) LogOut(ctx context.Context) {
	if err := s.session.Clear(ctx); err != nil {
		s.logger.Error(err, "failed to clear session")
	}
	s.nav.Navigate(RouteLogin, nil)
}

// Exit abandons any open picker.
func (s *UserViewScreen) Exit() {
	s.Error = ""
	if s.editor != nil {
		s.editor.Reset()
	}
}
