package directory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/medops-mobile/internal/model"
	"github.com/jwalitptl/medops-mobile/internal/repository/memory"
	apperrors "github.com/jwalitptl/medops-mobile/pkg/errors"
	"github.com/jwalitptl/medops-mobile/pkg/security"
)

func newSeeded(t *testing.T) *Service {
	t.Helper()
	store := memory.NewStore()
	svc := NewService(store, store, security.NewBcryptHasher(bcrypt.MinCost), nil)
	require.NoError(t, svc.Seed(context.Background()))
	return svc
}

func register(t *testing.T, svc *Service, email string, roleID int) *model.User {
	t.Helper()
	u, err := svc.Register(context.Background(), &model.RegisterRequest{
		FirstName: "First",
		LastName:  "Last",
		DOB:       model.NewDate(1980, time.March, 3),
		Email:     email,
		Password:  "password1",
		RoleIDs:   []int{roleID},
	})
	require.NoError(t, err)
	return u
}

func messages(t *testing.T, err error) []string {
	t.Helper()
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.Messages
}

func TestSeedIsIdempotent(t *testing.T) {
	svc := newSeeded(t)
	require.NoError(t, svc.Seed(context.Background()))

	roles, err := svc.ListRoles(context.Background())
	require.NoError(t, err)
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.RoleName)
	}
	assert.Equal(t, DefaultRoles, names)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := newSeeded(t)
	created := register(t, svc, "wilson@example.com", 2)
	assert.True(t, created.HasRole(model.RoleDoctor))
	assert.NotNil(t, created.Patients)

	u, err := svc.Authenticate(context.Background(), "wilson@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, created.UserID, u.UserID)

	_, err = svc.Authenticate(context.Background(), "wilson@example.com", "wrong-password")
	assert.Equal(t, []string{MsgInvalidCredentials}, messages(t, err))

	_, err = svc.Authenticate(context.Background(), "nobody@example.com", "password1")
	assert.Equal(t, []string{MsgInvalidCredentials}, messages(t, err))
}

func TestRegisterRejections(t *testing.T) {
	svc := newSeeded(t)
	register(t, svc, "taken@example.com", 3)

	_, err := svc.Register(context.Background(), &model.RegisterRequest{Email: "x@example.com", Password: "password1", RoleIDs: []int{9}})
	assert.Equal(t, []string{"Role does not exist with id: 9"}, messages(t, err))

	_, err = svc.Register(context.Background(), &model.RegisterRequest{Email: "TAKEN@example.com", Password: "password1", RoleIDs: []int{3}})
	assert.Equal(t, []string{"User already exists with email: TAKEN@example.com"}, messages(t, err))
}

func TestListByRole(t *testing.T) {
	svc := newSeeded(t)
	register(t, svc, "doc1@example.com", 2)
	register(t, svc, "pat1@example.com", 3)
	register(t, svc, "doc2@example.com", 2)

	doctors, err := svc.List(context.Background(), model.RoleDoctor)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, model.UserIDs(doctors))

	all, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := svc.List(context.Background(), "Nurse")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestUpdateReplacesWithoutMirroring(t *testing.T) {
	ctx := context.Background()
	svc := newSeeded(t)
	doc := register(t, svc, "doc@example.com", 2)
	p1 := register(t, svc, "p1@example.com", 3)
	p2 := register(t, svc, "p2@example.com", 3)

	updated, err := svc.Update(ctx, doc.UserID, &UpdateUserInput{
		RoleIDs:    []int{2},
		PatientIDs: []int{p2.UserID, p1.UserID},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{p2.UserID, p1.UserID}, model.UserIDs(updated.Patients))
	assert.Empty(t, updated.Patients[0].Patients)

	patient, err := svc.Get(ctx, p1.UserID)
	require.NoError(t, err)
	assert.Empty(t, patient.MedicalStaff)

	updated, err = svc.Update(ctx, doc.UserID, &UpdateUserInput{RoleIDs: []int{2}, PatientIDs: []int{}})
	require.NoError(t, err)
	assert.Empty(t, updated.Patients)
}

func TestUpdatePartialFields(t *testing.T) {
	ctx := context.Background()
	svc := newSeeded(t)
	u := register(t, svc, "edit@example.com", 3)
	name := "Changed"
	dob := "1991-12-24"

	updated, err := svc.Update(ctx, u.UserID, &UpdateUserInput{FirstName: &name, DOB: &dob, RoleIDs: []int{2, 3}})
	require.NoError(t, err)
	assert.Equal(t, "Changed", updated.FirstName)
	assert.Equal(t, "Last", updated.LastName)
	assert.Equal(t, "1991-12-24", updated.DOB.String())
	assert.Equal(t, []int{2, 3}, model.RoleIDs(updated.Roles))
}

func TestUpdateRejections(t *testing.T) {
	ctx := context.Background()
	svc := newSeeded(t)
	u := register(t, svc, "edit@example.com", 3)
	bad := "yesterday"

	_, err := svc.Update(ctx, u.UserID, &UpdateUserInput{DOB: &bad, MedicalStaffIDs: []int{77}})
	assert.Equal(t, []string{
		"Invalid date string: yesterday",
		"Missing required field: role_ids",
		"User does not exist with id: 77",
	}, messages(t, err))

	// nothing was persisted
	still, err := svc.Get(ctx, u.UserID)
	require.NoError(t, err)
	assert.Equal(t, "1980-03-03", still.DOB.String())

	_, err = svc.Update(ctx, 404, &UpdateUserInput{RoleIDs: []int{3}})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	assert.Equal(t, "User 404 does not exist.", apperrors.Message(err))
}

func TestDeletedRelationsAreSkipped(t *testing.T) {
	ctx := context.Background()
	svc := newSeeded(t)
	pat := register(t, svc, "p@example.com", 3)
	doc := register(t, svc, "d@example.com", 2)
	_, err := svc.Update(ctx, pat.UserID, &UpdateUserInput{RoleIDs: []int{3}, MedicalStaffIDs: []int{doc.UserID}})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, doc.UserID))
	got, err := svc.GetByEmail(ctx, "p@example.com")
	require.NoError(t, err)
	assert.Empty(t, got.MedicalStaff)

	_, err = svc.GetByEmail(ctx, "d@example.com")
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestRoles(t *testing.T) {
	ctx := context.Background()
	svc := newSeeded(t)

	nurse, err := svc.CreateRole(ctx, " Nurse ")
	require.NoError(t, err)
	assert.Equal(t, "Nurse", nurse.RoleName)

	_, err = svc.CreateRole(ctx, "")
	assert.Equal(t, []string{"Missing required field: role_name"}, messages(t, err))

	renamed, err := svc.RenameRole(ctx, nurse.RoleID, "Nurse Practitioner")
	require.NoError(t, err)
	assert.Equal(t, "Nurse Practitioner", renamed.RoleName)

	_, err = svc.GetRole(ctx, 99)
	assert.Equal(t, "User role does not exist with id: 99", apperrors.Message(err))
}
