package role

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/medops-mobile/internal/api"
	"github.com/jwalitptl/medops-mobile/internal/model"
	apperrors "github.com/jwalitptl/medops-mobile/pkg/errors"
)

var (
	admin   = model.Role{RoleID: 1, RoleName: model.RoleAdmin}
	doctor  = model.Role{RoleID: 2, RoleName: model.RoleDoctor}
	patient = model.Role{RoleID: 3, RoleName: model.RolePatient}
	nurse   = model.Role{RoleID: 4, RoleName: "Nurse"}
)

func TestDefaultRole(t *testing.T) {
	cases := []struct {
		name  string
		roles []model.Role
		want  model.Role
		ok    bool
	}{
		{"patient preferred", []model.Role{admin, doctor, patient}, patient, true},
		{"first non-admin", []model.Role{admin, doctor}, doctor, true},
		{"backend order kept", []model.Role{nurse, admin, doctor}, nurse, true},
		{"patient wins over order", []model.Role{nurse, doctor, patient}, patient, true},
		{"only admin", []model.Role{admin}, model.Role{}, false},
		{"empty", nil, model.Role{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := DefaultRole(tc.roles)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAssignableRoles(t *testing.T) {
	assert.Equal(t, []model.Role{doctor, patient}, AssignableRoles([]model.Role{admin, doctor, patient}))
	assert.Empty(t, AssignableRoles([]model.Role{admin}))
}

func TestListRoles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/roles", r.URL.Path)
		_, _ = w.Write([]byte(`{"user_roles":[{"role_id":1,"role_name":"Admin"},{"role_id":3,"role_name":"Patient"}]}`))
	}))
	defer srv.Close()

	roles, err := NewService(api.NewClient(srv.URL)).ListRoles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.Role{admin, patient}, roles)
}

func TestListUsersByRole(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("role") {
		case model.RoleDoctor:
			_, _ = w.Write([]byte(`{"users":[{"user_id":2,"first_name":"Eric"},{"user_id":6,"first_name":"Robert"}]}`))
		case "Ghost":
			_, _ = w.Write([]byte(`{"users":null}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()
	svc := NewService(api.NewClient(srv.URL))

	users, err := svc.ListUsersByRole(context.Background(), model.RoleDoctor)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 6}, model.UserIDs(users))

	users, err = svc.ListUsersByRole(context.Background(), "Ghost")
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)

	_, err = svc.ListUsersByRole(context.Background(), model.RolePatient)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnknown))
}
