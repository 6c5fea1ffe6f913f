package user

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jwalitptl/medops-mobile/internal/api"
	"github.com/jwalitptl/medops-mobile/internal/model"
	apperrors "github.com/jwalitptl/medops-mobile/pkg/errors"
	"github.com/jwalitptl/medops-mobile/pkg/logger"
)

type UserServicer interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Get(ctx context.Context, id int) (*model.User, error)
	Update(ctx context.Context, user *model.User) FireAndForgetResult
}

// UpdateOutcome classifies a fire-and-forget update
type UpdateOutcome string

const (
	UpdateApplied     UpdateOutcome = "applied"
	UpdateRejected    UpdateOutcome = "rejected"
	UpdateUnreachable UpdateOutcome = "unreachable"
)

// FireAndForgetResult reports what happened to an update that the caller is
// not expected to surface. StatusCode is zero when no response arrived.
type FireAndForgetResult struct {
	Outcome    UpdateOutcome
	StatusCode int
	Errors     []string
	Err        error
}

func (r FireAndForgetResult) Applied() bool {
	return r.Outcome == UpdateApplied
}

type Service struct {
	client *api.Client
	logger *logger.Logger
}

func NewService(client *api.Client, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{client: client, logger: log}
}

// GetByEmail looks a user up by login email. Any non-200 answer is NotFound.
func (s *Service) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.lookup(ctx, api.Request{
		Operation: "lookup_user",
		Method:    http.MethodGet,
		Path:      "/users",
		Query:     url.Values{"email": {email}},
		Expect:    http.StatusOK,
	})
}

// Get fetches a user by id with the same NotFound convention as GetByEmail.
func (s *Service) Get(ctx context.Context, id int) (*model.User, error) {
	return s.lookup(ctx, api.Request{
		Operation: "get_user",
		Method:    http.MethodGet,
		Path:      "/users/" + strconv.Itoa(id),
		Expect:    http.StatusOK,
	})
}

func (s *Service) lookup(ctx context.Context, req api.Request) (*model.User, error) {
	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if !resp.OK(http.StatusOK) {
		return nil, apperrors.NotFound("user", resp.StatusCode)
	}

	var body model.UserEnvelope
	if err := resp.Decode(&body); err != nil {
		return nil, err
	}
	if body.User == nil {
		return nil, apperrors.NotFound("user", resp.StatusCode)
	}
	return body.User, nil
}

// Update sends the complete record with its id projections. Failures are
// logged and reported in the result, never returned as errors.
func (s *Service) Update(ctx context.Context, user *model.User) FireAndForgetResult {
	payload := model.NewUpdateUserRequest(user)
	s.logger.Debug("updating user",
		"user_id", user.UserID,
		"medical_staff_ids", payload.MedicalStaffIDs,
		"patient_ids", payload.PatientIDs,
		"role_ids", payload.RoleIDs)

	resp, err := s.client.Do(ctx, api.Request{
		Operation: "update_user",
		Method:    http.MethodPost,
		Path:      "/users/" + strconv.Itoa(user.UserID),
		Body:      payload,
		Expect:    http.StatusOK,
	})
	if err != nil {
		s.logger.Error(err, "error updating user", "user_id", user.UserID)
		return FireAndForgetResult{Outcome: UpdateUnreachable, Err: err}
	}
	if resp.OK(http.StatusOK) {
		return FireAndForgetResult{Outcome: UpdateApplied, StatusCode: resp.StatusCode}
	}

	failure := resp.Failure()
	s.logger.Error(failure, "error updating user",
		"user_id", user.UserID, "status", resp.StatusCode, "body", resp.Text())
	return FireAndForgetResult{
		Outcome:    UpdateRejected,
		StatusCode: resp.StatusCode,
		Errors:     failure.Messages,
		Err:        failure,
	}
}
