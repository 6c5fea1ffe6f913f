package repository

import (
	"context"
	"errors"

	"github.com/jwalitptl/medops-mobile/internal/model"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey  = errors.New("duplicate key")
)

// UserRecord is a user as stored: relationships are kept as ids and
// resolved when the record is served.
type UserRecord struct {
	UserID          int
	FirstName       string
	LastName        string
	Email           string
	DOB             model.Date
	PasswordHash    string
	RoleIDs         []int
	MedicalStaffIDs []int
	PatientIDs      []int
}

// Clone returns a deep copy of r.
func (r *UserRecord) Clone() *UserRecord {
	c := *r
	c.RoleIDs = append([]int{}, r.RoleIDs...)
	c.MedicalStaffIDs = append([]int{}, r.MedicalStaffIDs...)
	c.PatientIDs = append([]int{}, r.PatientIDs...)
	return &c
}

// All repository interfaces in one file
type (
	// UserRepository stores user records keyed by id and unique by email
	UserRepository interface {
		CreateUser(ctx context.Context, rec *UserRecord) error
		GetUser(ctx context.Context, id int) (*UserRecord, error)
		GetUserByEmail(ctx context.Context, email string) (*UserRecord, error)
		UpdateUser(ctx context.Context, rec *UserRecord) error
		DeleteUser(ctx context.Context, id int) error
		ListUsers(ctx context.Context) ([]*UserRecord, error)
	}

	RoleRepository interface {
		CreateRole(ctx context.Context, role *model.Role) error
		GetRole(ctx context.Context, id int) (*model.Role, error)
		UpdateRole(ctx context.Context, role *model.Role) error
		ListRoles(ctx context.Context) ([]model.Role, error)
	}
)
