package screen

import (
	"context"
	"time"

	"github.com/jwalitptl/medops-mobile/internal/model"
	"github.com/jwalitptl/medops-mobile/internal/service/auth"
	"github.com/jwalitptl/medops-mobile/internal/service/role"
	apperrors "github.com/jwalitptl/medops-mobile/pkg/errors"
	"github.com/jwalitptl/medops-mobile/pkg/logger"
)

// DefaultDOB pre-fills the date of birth picker.
var DefaultDOB = model.NewDate(2010, time.January, 1)

// RegistrationScreen creates an account and returns to Login.
type RegistrationScreen struct {
	Username  string
	FirstName string
	LastName  string
	DOB       model.Date
	Password  string
	RoleID    int

	AvailableRoles []model.Role
	Error          string

	auth   auth.AuthService
	roles  role.RoleService
	nav    Navigator
	logger *logger.Logger
}

func NewRegistrationScreen(authSvc auth.AuthService, roles role.RoleService, nav Navigator, log *logger.Logger) *RegistrationScreen {
	if log == nil {
		log = logger.Nop()
	}
	return &RegistrationScreen{
		DOB:    DefaultDOB,
		auth:   authSvc,
		roles:  roles,
		nav:    nav,
		logger: log,
	}
}

// Enter loads the role picker. Admin is never offered.
func (s *RegistrationScreen) Enter(ctx context.Context) {
	roles, err := s.roles.ListRoles(ctx)
	if err != nil {
		s.logger.Error(err, "failed to load roles")
		s.Error = apperrors.Message(err)
		return
	}

	s.AvailableRoles = role.AssignableRoles(roles)
	if def, ok := role.DefaultRole(roles); ok {
		s.RoleID = def.RoleID
	}
}

// Submit registers with the single selected role.
func (s *RegistrationScreen) Submit(ctx context.Context) bool {
	s.Error = ""

	req := &model.RegisterRequest{
		FirstName: s.FirstName,
		LastName:  s.LastName,
		DOB:       s.DOB,
		Email:     s.Username,
		Password:  s.Password,
		RoleIDs:   []int{s.RoleID},
	}
	if err := s.auth.Register(ctx, req); err != nil {
		s.Error = apperrors.Message(err)
		return false
	}

	s.logger.Info("registered user")
	s.nav.Navigate(RouteLogin, nil)
	return true
}

func (s *RegistrationScreen) SelectRole(roleID int) {
	s.RoleID = roleID
}

// Exit resets the form. The role list and selection survive until the next Enter.
func (s *RegistrationScreen) Exit() {
	s.Username = ""
	s.FirstName = ""
	s.LastName = ""
	s.DOB = DefaultDOB
	s.Password = ""
	s.Error = ""
}
