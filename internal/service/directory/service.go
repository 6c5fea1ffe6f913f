// Package directory is the stub backend's user and role logic. It serves the
// same wire contract the mobile client talks to.
package directory

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jwalitptl/medops-mobile/internal/model"
	"github.com/jwalitptl/medops-mobile/internal/repository"
	apperrors "github.com/jwalitptl/medops-mobile/pkg/errors"
	"github.com/jwalitptl/medops-mobile/pkg/logger"
	"github.com/jwalitptl/medops-mobile/pkg/security"
)

const MsgInvalidCredentials = "Invalid username or password."

// DefaultRoles are created by Seed in this order.
var DefaultRoles = []string{model.RoleAdmin, model.RoleDoctor, model.RolePatient}

// UpdateUserInput is a partial update. Nil fields keep their current value,
// except RoleIDs which must be present. Each id list replaces the stored one.
type UpdateUserInput struct {
	FirstName       *string `json:"first_name"`
	LastName        *string `json:"last_name"`
	DOB             *string `json:"dob"`
	RoleIDs         []int   `json:"role_ids"`
	MedicalStaffIDs []int   `json:"medical_staff_ids"`
	PatientIDs      []int   `json:"patient_ids"`
}

type Service struct {
	users  repository.UserRepository
	roles  repository.RoleRepository
	hasher security.PasswordHasher
	logger *logger.Logger
}

func NewService(users repository.UserRepository, roles repository.RoleRepository, hasher security.PasswordHasher, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{users: users, roles: roles, hasher: hasher, logger: log}
}

// Seed creates DefaultRoles when no role exists yet.
func (s *Service) Seed(ctx context.Context) error {
	existing, err := s.roles.ListRoles(ctx)
	if err != nil {
		return fmt.Errorf("failed to list roles: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	for _, name := range DefaultRoles {
		if err := s.roles.CreateRole(ctx, &model.Role{RoleName: name}); err != nil {
			return fmt.Errorf("failed to seed role %s: %w", name, err)
		}
	}
	s.logger.Info("seeded roles", "roles", strings.Join(DefaultRoles, ","))
	return nil
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	rec, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Validation(http.StatusBadRequest, []string{MsgInvalidCredentials})
	}
	if err != nil {
		return nil, err
	}
	if err := s.hasher.Compare(rec.PasswordHash, password); err != nil {
		return nil, apperrors.Validation(http.StatusBadRequest, []string{MsgInvalidCredentials})
	}
	return s.hydrate(ctx, rec), nil
}

// Register expects req to be validated already.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if errs := s.checkRoles(ctx, req.RoleIDs); len(errs) > 0 {
		return nil, apperrors.Validation(http.StatusBadRequest, errs)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	rec := &repository.UserRecord{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		DOB:          req.DOB,
		PasswordHash: hash,
		RoleIDs:      req.RoleIDs,
	}
	if err := s.users.CreateUser(ctx, rec); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, apperrors.Validation(http.StatusBadRequest, []string{"User already exists with email: " + req.Email})
		}
		return nil, err
	}
	s.logger.Info("user created", "user_id", rec.UserID)
	return s.hydrate(ctx, rec), nil
}

func (s *Service) Get(ctx context.Context, id int) (*model.User, error) {
	rec, err := s.users.GetUser(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("User %d does not exist.", id)
	}
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, rec), nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	rec, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("User does not exist with email: %s", email)
	}
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, rec), nil
}

// List returns every user, or only holders of roleName when it is set.
func (s *Service) List(ctx context.Context, roleName string) ([]model.User, error) {
	recs, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	out := make([]model.User, 0, len(recs))
	for _, rec := range recs {
		u := s.hydrate(ctx, rec)
		if roleName == "" || u.HasRole(roleName) {
			out = append(out, *u)
		}
	}
	return out, nil
}

// Update applies in. The counterpart lists of referenced users are left alone.
func (s *Service) Update(ctx context.Context, id int, in *UpdateUserInput) (*model.User, error) {
	rec, err := s.users.GetUser(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("User %d does not exist.", id)
	}
	if err != nil {
		return nil, err
	}

	var errs []string
	if in.FirstName != nil {
		rec.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		rec.LastName = *in.LastName
	}
	if in.DOB != nil {
		dob, err := model.ParseDate(*in.DOB)
		if err != nil {
			errs = append(errs, "Invalid date string: "+*in.DOB)
		}
		rec.DOB = dob
	}

	if in.RoleIDs == nil {
		errs = append(errs, "Missing required field: role_ids")
	} else {
		errs = append(errs, s.checkRoles(ctx, in.RoleIDs)...)
		rec.RoleIDs = in.RoleIDs
	}

	if in.MedicalStaffIDs != nil {
		errs = append(errs, s.checkUsers(ctx, in.MedicalStaffIDs)...)
		rec.MedicalStaffIDs = in.MedicalStaffIDs
	}
	if in.PatientIDs != nil {
		errs = append(errs, s.checkUsers(ctx, in.PatientIDs)...)
		rec.PatientIDs = in.PatientIDs
	}

	if len(errs) > 0 {
		return nil, apperrors.Validation(http.StatusBadRequest, errs)
	}
	if err := s.users.UpdateUser(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	s.logger.Info("user updated", "user_id", id,
		"medical_staff_ids", rec.MedicalStaffIDs, "patient_ids", rec.PatientIDs)
	return s.hydrate(ctx, rec), nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	return s.users.DeleteUser(ctx, id)
}

func (s *Service) ListRoles(ctx context.Context) ([]model.Role, error) {
	return s.roles.ListRoles(ctx)
}

func (s *Service) GetRole(ctx context.Context, id int) (*model.Role, error) {
	role, err := s.roles.GetRole(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("User role does not exist with id: %d", id)
	}
	return role, err
}

func (s *Service) CreateRole(ctx context.Context, name string) (*model.Role, error) {
	role := &model.Role{RoleName: strings.TrimSpace(name)}
	if role.RoleName == "" {
		return nil, apperrors.Validation(http.StatusBadRequest, []string{"Missing required field: role_name"})
	}
	if err := s.roles.CreateRole(ctx, role); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, apperrors.Validation(http.StatusBadRequest, []string{"User role already exists: " + role.RoleName})
		}
		return nil, err
	}
	return role, nil
}

func (s *Service) RenameRole(ctx context.Context, id int, name string) (*model.Role, error) {
	role, err := s.GetRole(ctx, id)
	if err != nil {
		return nil, err
	}
	role.RoleName = strings.TrimSpace(name)
	if role.RoleName == "" {
		return nil, apperrors.Validation(http.StatusBadRequest, []string{"Missing required field: role_name"})
	}
	if err := s.roles.UpdateRole(ctx, role); err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	return role, nil
}

// checkRoles stops at the first unknown id.
func (s *Service) checkRoles(ctx context.Context, ids []int) []string {
	for _, id := range ids {
		if _, err := s.roles.GetRole(ctx, id); err != nil {
			return []string{fmt.Sprintf("Role does not exist with id: %d", id)}
		}
	}
	return nil
}

func (s *Service) checkUsers(ctx context.Context, ids []int) []string {
	var errs []string
	for _, id := range ids {
		if _, err := s.users.GetUser(ctx, id); err != nil {
			errs = append(errs, fmt.Sprintf("User does not exist with id: %d", id))
		}
	}
	return errs
}

// hydrate resolves ids one level deep. Related users carry their roles but
// empty relationship lists; ids that no longer resolve are skipped.
func (s *Service) hydrate(ctx context.Context, rec *repository.UserRecord) *model.User {
	u := s.shallow(ctx, rec)
	u.MedicalStaff = s.related(ctx, rec.MedicalStaffIDs)
	u.Patients = s.related(ctx, rec.PatientIDs)
	return u
}

func (s *Service) shallow(ctx context.Context, rec *repository.UserRecord) *model.User {
	roles := make([]model.Role, 0, len(rec.RoleIDs))
	for _, id := range rec.RoleIDs {
		if role, err := s.roles.GetRole(ctx, id); err == nil {
			roles = append(roles, *role)
		}
	}
	return &model.User{
		UserID:       rec.UserID,
		FirstName:    rec.FirstName,
		LastName:     rec.LastName,
		Email:        rec.Email,
		DOB:          rec.DOB,
		Roles:        roles,
		MedicalStaff: []model.User{},
		Patients:     []model.User{},
	}
}

func (s *Service) related(ctx context.Context, ids []int) []model.User {
	out := make([]model.User, 0, len(ids))
	for _, id := range ids {
		rec, err := s.users.GetUser(ctx, id)
		if err != nil {
			s.logger.Debug("skipping dangling relation", "user_id", id)
			continue
		}
		out = append(out, *s.shallow(ctx, rec))
	}
	return out
}

func notFound(format string, args ...interface{}) *apperrors.AppError {
	return &apperrors.AppError{
		Code:    apperrors.ErrNotFound,
		Message: fmt.Sprintf(format, args...),
		Status:  http.StatusNotFound,
	}
}
