// Package assignment implements the user-detail editing flow that replaces a
// user's medical staff or patient list from a multi-select of candidates.
package assignment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jwalitptl/medops-mobile/internal/model"
	"github.com/jwalitptl/medops-mobile/internal/service/user"
	"github.com/jwalitptl/medops-mobile/pkg/logger"
)

// Mode is the editor state
type Mode string

const (
	ModeOverview    Mode = "overview"
	ModeAddStaff    Mode = "addStaff"
	ModeAddPatients Mode = "addPatients"
)

var (
	ErrNotOverview = errors.New("assignment already in progress")
	ErrNotEditing  = errors.New("no assignment in progress")
)

// SelectionPolicy decides the initial selection when an add mode opens
type SelectionPolicy int

const (
	// SelectionFromCurrent starts from the ids already in the target list.
	SelectionFromCurrent SelectionPolicy = iota
	// SelectionEmpty starts with nothing selected.
	SelectionEmpty
)

// Policy holds one SelectionPolicy per add mode
type Policy struct {
	Staff    SelectionPolicy
	Patients SelectionPolicy
}

// DefaultPolicy pre-selects current staff but not current patients.
func DefaultPolicy() Policy {
	return Policy{Staff: SelectionFromCurrent, Patients: SelectionEmpty}
}

// Directory supplies candidates for an add mode
type Directory interface {
	ListUsersByRole(ctx context.Context, roleName string) ([]model.User, error)
}

// Updater persists the edited record
type Updater interface {
	Update(ctx context.Context, u *model.User) user.FireAndForgetResult
}

// Editor is owned by a single screen and is not safe for concurrent use.
type Editor struct {
	user       *model.User
	mode       Mode
	candidates []model.User
	selection  []int

	dir     Directory
	updater Updater
	policy  Policy
	logger  *logger.Logger
}

type Option func(*Editor)

func WithPolicy(p Policy) Option {
	return func(e *Editor) { e.policy = p }
}

func WithLogger(l *logger.Logger) Option {
	return func(e *Editor) { e.logger = l }
}

// NewEditor edits u in place.
func NewEditor(u *model.User, dir Directory, updater Updater, opts ...Option) *Editor {
	e := &Editor{
		user:    u,
		mode:    ModeOverview,
		dir:     dir,
		updater: updater,
		policy:  DefaultPolicy(),
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Editor) User() *model.User {
	return e.user
}

func (e *Editor) Mode() Mode {
	return e.mode
}

// Candidates returns the selectable users of the current add mode.
func (e *Editor) Candidates() []model.User {
	return append([]model.User(nil), e.candidates...)
}

// Selection returns the selected ids in the order they were selected.
func (e *Editor) Selection() []int {
	return append([]int(nil), e.selection...)
}

func (e *Editor) IsSelected(id int) bool {
	return indexOf(e.selection, id) >= 0
}

// BeginAddStaff opens the Doctor picker.
func (e *Editor) BeginAddStaff(ctx context.Context) error {
	return e.begin(ctx, ModeAddStaff, model.RoleDoctor, e.policy.Staff, e.user.MedicalStaff)
}

// BeginAddPatients opens the Patient picker.
func (e *Editor) BeginAddPatients(ctx context.Context) error {
	return e.begin(ctx, ModeAddPatients, model.RolePatient, e.policy.Patients, e.user.Patients)
}

func (e *Editor) begin(ctx context.Context, mode Mode, roleName string, policy SelectionPolicy, current []model.User) error {
	if e.mode != ModeOverview {
		return ErrNotOverview
	}

	candidates, err := e.dir.ListUsersByRole(ctx, roleName)
	if err != nil {
		return fmt.Errorf("failed to list %s users: %w", roleName, err)
	}

	selection := []int{}
	if policy == SelectionFromCurrent {
		selection = model.UserIDs(current)
	}

	e.candidates = candidates
	e.selection = selection
	e.mode = mode
	e.logger.Debug("assignment started", "mode", string(mode), "candidates", len(candidates), "selected", selection)
	return nil
}

// Toggle removes id from the selection if present, appends it otherwise.
func (e *Editor) Toggle(id int) error {
	if e.mode == ModeOverview {
		return ErrNotEditing
	}
	if i := indexOf(e.selection, id); i >= 0 {
		e.selection = append(e.selection[:i:i], e.selection[i+1:]...)
		return nil
	}
	e.selection = append(e.selection, id)
	return nil
}

// Assign replaces the target list with the selected candidates, in candidate
// order, submits the whole record and returns to overview whatever the
// update outcome. Only invalid state is reported as an error.
func (e *Editor) Assign(ctx context.Context) (user.FireAndForgetResult, error) {
	if e.mode == ModeOverview {
		return user.FireAndForgetResult{}, ErrNotEditing
	}

	chosen := make([]model.User, 0, len(e.selection))
	for _, c := range e.candidates {
		if e.IsSelected(c.UserID) {
			chosen = append(chosen, c)
		}
	}

	if e.mode == ModeAddPatients {
		e.user.Patients = chosen
	} else {
		e.user.MedicalStaff = chosen
	}

	res := e.updater.Update(ctx, e.user)
	if !res.Applied() {
		e.logger.Warn("assignment not applied",
			"user_id", e.user.UserID, "mode", string(e.mode), "outcome", string(res.Outcome))
	}
	e.Reset()
	return res, nil
}

// Reset returns to overview and drops candidates and selection.
func (e *Editor) Reset() {
	e.mode = ModeOverview
	e.candidates = nil
	e.selection = nil
}

func indexOf(ids []int, id int) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
