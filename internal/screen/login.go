package screen

import (
	"context"

	"github.com/jwalitptl/medops-mobile/internal/service/auth"
	apperrors "github.com/jwalitptl/medops-mobile/pkg/errors"
	"github.com/jwalitptl/medops-mobile/pkg/logger"
)

// LoginScreen collects credentials and opens User View on success.
type LoginScreen struct {
	Username string
	Password string
	Error    string

	auth    auth.AuthService
	session SessionStore
	nav     Navigator
	logger  *logger.Logger
}

func NewLoginScreen(authSvc auth.AuthService, session SessionStore, nav Navigator, log *logger.Logger) *LoginScreen {
	if log == nil {
		log = logger.Nop()
	}
	return &LoginScreen{
		auth:    authSvc,
		session: session,
		nav:     nav,
		logger:  log,
	}
}

// Enter skips the form when a user is already saved.
func (s *LoginScreen) Enter(ctx context.Context) {
	user, ok := s.session.Load(ctx)
	if !ok {
		s.logger.Debug("no user logged in")
		return
	}
	s.logger.Info("resuming session", "user_id", user.UserID)
	s.nav.Navigate(RouteUserView, user)
}

// Submit logs in with the current fields. It reports whether navigation happened.
func (s *LoginScreen) Submit(ctx context.Context) bool {
	s.Error = ""

	user, err := s.auth.Login(ctx, s.Username, s.Password)
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrValidation) {
			s.logger.Error(err, "login failed")
		}
		s.Error = apperrors.Message(err)
		return false
	}

	if err := s.session.Save(ctx, user); err != nil {
		// the user is still logged in for this run, only resumption is lost
		s.logger.Error(err, "failed to persist session", "user_id", user.UserID)
	}
	s.nav.Navigate(RouteUserView, user)
	return true
}

func (s *LoginScreen) OpenRegistration() {
	s.nav.Navigate(RouteRegistration, nil)
}

// Exit clears the form.
func (s *LoginScreen) Exit() {
	s.Username = ""
	s.Password = ""
	s.Error = ""
}
