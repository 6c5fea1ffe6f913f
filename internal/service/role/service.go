package role

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jwalitptl/medops-mobile/internal/api"
	"github.com/jwalitptl/medops-mobile/internal/model"
)

type RoleService interface {
	ListRoles(ctx context.Context) ([]model.Role, error)
	ListUsersByRole(ctx context.Context, roleName string) ([]model.User, error)
}

type Service struct {
	client *api.Client
}

func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// ListRoles returns every role exactly as the backend orders them.
func (s *Service) ListRoles(ctx context.Context) ([]model.Role, error) {
	resp, err := s.client.Do(ctx, api.Request{
		Operation: "list_roles",
		Method:    http.MethodGet,
		Path:      "/users/roles",
		Expect:    http.StatusOK,
	})
	if err != nil {
		return nil, err
	}
	if !resp.OK(http.StatusOK) {
		return nil, resp.Failure()
	}

	var body model.RolesEnvelope
	if err := resp.Decode(&body); err != nil {
		return nil, err
	}
	return body.UserRoles, nil
}

func (s *Service) ListUsersByRole(ctx context.Context, roleName string) ([]model.User, error) {
	resp, err := s.client.Do(ctx, api.Request{
		Operation: "list_users_by_role",
		Method:    http.MethodGet,
		Path:      "/users",
		Query:     url.Values{"role": {roleName}},
		Expect:    http.StatusOK,
	})
	if err != nil {
		return nil, err
	}
	if !resp.OK(http.StatusOK) {
		return nil, resp.Failure()
	}

	var body model.UsersEnvelope
	if err := resp.Decode(&body); err != nil {
		return nil, err
	}
	if body.Users == nil {
		body.Users = []model.User{}
	}
	return body.Users, nil
}

// AssignableRoles drops Admin, keeping backend order.
func AssignableRoles(roles []model.Role) []model.Role {
	out := make([]model.Role, 0, len(roles))
	for _, r := range roles {
		if r.RoleName != model.RoleAdmin {
			out = append(out, r)
		}
	}
	return out
}

// DefaultRole picks the registration default: Patient when assignable,
// otherwise the first assignable role.
func DefaultRole(roles []model.Role) (model.Role, bool) {
	assignable := AssignableRoles(roles)
	for _, r := range assignable {
		if r.RoleName == model.RolePatient {
			return r, true
		}
	}
	if len(assignable) == 0 {
		return model.Role{}, false
	}
	return assignable[0], true
}
