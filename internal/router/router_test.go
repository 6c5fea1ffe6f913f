package router

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/medops-mobile/internal/api"
	"github.com/jwalitptl/medops-mobile/internal/config"
	"github.com/jwalitptl/medops-mobile/internal/model"
	"github.com/jwalitptl/medops-mobile/internal/service/auth"
	"github.com/jwalitptl/medops-mobile/internal/service/role"
	"github.com/jwalitptl/medops-mobile/internal/service/user"
	apperrors "github.com/jwalitptl/medops-mobile/pkg/errors"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := &config.MockAPIConfig{Seed: true, AllowedOrigins: "*"}
	r, _, err := NewMockAPI(context.Background(), cfg, nil, prometheus.NewRegistry(), MockAPIOptions{BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)

	srv := httptest.NewServer(r.Engine())
	t.Cleanup(srv.Close)
	return srv
}

func registration(email string, roleID int) *model.RegisterRequest {
	return &model.RegisterRequest{
		FirstName: "Lisa",
		LastName:  "Cuddy",
		DOB:       model.NewDate(1968, time.May, 2),
		Email:     email,
		Password:  "password1",
		RoleIDs:   []int{roleID},
	}
}

func TestClientAgainstMockAPI(t *testing.T) {
	ctx := context.Background()
	srv := newServer(t)
	client := api.NewClient(srv.URL)
	authSvc := auth.NewService(client, nil)
	roleSvc := role.NewService(client)
	userSvc := user.NewService(client, nil)

	roles, err := roleSvc.ListRoles(ctx)
	require.NoError(t, err)
	def, ok := role.DefaultRole(roles)
	require.True(t, ok)
	assert.Equal(t, model.RolePatient, def.RoleName)

	require.NoError(t, authSvc.Register(ctx, registration("cuddy@example.com", 2)))
	require.NoError(t, authSvc.Register(ctx, registration("p1@example.com", def.RoleID)))
	require.NoError(t, authSvc.Register(ctx, registration("p2@example.com", def.RoleID)))

	doc, err := authSvc.Login(ctx, "cuddy@example.com", "password1")
	require.NoError(t, err)
	assert.True(t, doc.HasRole(model.RoleDoctor))

	_, err = authSvc.Login(ctx, "cuddy@example.com", "nope")
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
	assert.Equal(t, "Invalid username or password.", apperrors.Message(err))

	patients, err := roleSvc.ListUsersByRole(ctx, model.RolePatient)
	require.NoError(t, err)
	assert.Len(t, patients, 2)

	doc.Patients = patients
	res := userSvc.Update(ctx, doc)
	require.True(t, res.Applied(), "%+v", res)

	fetched, err := userSvc.GetByEmail(ctx, "cuddy@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.UserIDs(patients), model.UserIDs(fetched.Patients))

	// the counterpart list is untouched
	p1, err := userSvc.Get(ctx, patients[0].UserID)
	require.NoError(t, err)
	assert.Empty(t, p1.MedicalStaff)

	_, err = userSvc.GetByEmail(ctx, "ghost@example.com")
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestRegisterValidationMessages(t *testing.T) {
	srv := newServer(t)
	authSvc := auth.NewService(api.NewClient(srv.URL), nil)

	req := registration("bad", 2)
	req.FirstName = ""
	req.DOB = model.Date{}
	err := authSvc.Register(context.Background(), req)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrValidation, appErr.Code)
	assert.Equal(t, []string{
		"Missing required field: first_name",
		"Missing required field: dob",
		"Invalid email address: bad",
	}, appErr.Messages)
}

func TestUpdateRejectedByBackend(t *testing.T) {
	ctx := context.Background()
	srv := newServer(t)
	client := api.NewClient(srv.URL)
	require.NoError(t, auth.NewService(client, nil).Register(ctx, registration("x@example.com", 3)))

	users := user.NewService(client, nil)
	u, err := users.GetByEmail(ctx, "x@example.com")
	require.NoError(t, err)

	u.MedicalStaff = []model.User{{UserID: 999}}
	res := users.Update(ctx, u)
	assert.Equal(t, user.UpdateRejected, res.Outcome)
	assert.Equal(t, []string{"User does not exist with id: 999"}, res.Errors)
}

func TestRawRoutes(t *testing.T) {
	srv := newServer(t)

	cases := []struct {
		method, path, body string
		status             int
		contains           string
	}{
		{http.MethodGet, "/health", "", http.StatusOK, `"UP"`},
		{http.MethodGet, "/health/ready", "", http.StatusOK, `"UP"`},
		{http.MethodGet, "/users/roles", "", http.StatusOK, `"user_roles"`},
		{http.MethodPost, "/users/roles", `{"role_name":"Nurse"}`, http.StatusOK, `"role_name":"Nurse"`},
		{http.MethodGet, "/users/roles/1", "", http.StatusOK, `"Admin"`},
		{http.MethodGet, "/users/roles/42", "", http.StatusNotFound, "User role does not exist with id: 42"},
		{http.MethodGet, "/users/17", "", http.StatusNotFound, "User 17 does not exist."},
		{http.MethodGet, "/users/abc", "", http.StatusNotFound, "User abc does not exist."},
		{http.MethodPost, "/users", `{"user_id":1}`, http.StatusBadRequest, "Do not provide a user id"},
		{http.MethodPost, "/users", `{"dob":"not-a-date"}`, http.StatusBadRequest, "Error creating field"},
		{http.MethodPost, "/users/login", `{}`, http.StatusBadRequest, "Missing required field: username"},
		{http.MethodGet, "/users?role=Doctor", "", http.StatusOK, `{"users":[]}`},
		{http.MethodDelete, "/users/5", "", http.StatusCreated, ""},
		{http.MethodGet, "/metrics", "", http.StatusOK, "mockapi_http_requests_total"},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			var body io.Reader
			if tc.body != "" {
				body = strings.NewReader(tc.body)
			}
			req, err := http.NewRequest(tc.method, srv.URL+tc.path, body)
			require.NoError(t, err)
			req.Header.Set("Content-Type", "application/json")

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			raw, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			assert.Equal(t, tc.status, resp.StatusCode, string(raw))
			assert.Contains(t, string(raw), tc.contains)
			assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
		})
	}
}
