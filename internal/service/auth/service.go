package auth

import (
	"context"
	"net/http"

	"github.com/jwalitptl/medops-mobile/internal/api"
	"github.com/jwalitptl/medops-mobile/internal/model"
	apperrors "github.com/jwalitptl/medops-mobile/pkg/errors"
	"github.com/jwalitptl/medops-mobile/pkg/logger"
)

// MsgLoginFailed is shown when the backend rejects a login without saying why.
const MsgLoginFailed = "Login Failed"

type AuthService interface {
	Login(ctx context.Context, username, password string) (*model.User, error)
	Register(ctx context.Context, req *model.RegisterRequest) error
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

// Login exchanges credentials for the user record. It does not touch the session.
func (s *Service) Login(ctx context.Context, username, password string) (*model.User, error) {
	resp, err := s.client.Do(ctx, api.Request{
		Operation: "login",
		Method:    http.MethodPost,
		Path:      "/users/login",
		Body:      model.LoginRequest{Username: username, Password: password},
		Expect:    http.StatusCreated,
	})
	if err != nil {
		return nil, err
	}

	if !resp.OK(http.StatusCreated) {
		s.logger.Info("bad login response", "status", resp.StatusCode)
		failure := resp.Failure()
		if failure.Code == apperrors.ErrValidation && len(failure.Messages) == 0 {
			failure.Message = MsgLoginFailed
		}
		return nil, failure
	}

	var body model.UserEnvelope
	if err := resp.Decode(&body); err != nil {
		return nil, err
	}
	if body.User == nil {
		return nil, apperrors.Validation(resp.StatusCode, []string{MsgLoginFailed})
	}
	return body.User, nil
}

// Register creates a new account. The success body is ignored.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) error {
	resp, err := s.client.Do(ctx, api.Request{
		Operation: "register",
		Method:    http.MethodPost,
		Path:      "/users",
		Body:      req,
		Expect:    http.StatusOK,
	})
	if err != nil {
		return err
	}

	if !resp.OK(http.StatusOK) {
		failure := resp.Failure()
		if failure.Code == apperrors.ErrUnknown {
			s.logger.Error(failure, "non-json registration response", "status", resp.StatusCode, "body", resp.Text())
		}
		return failure
	}
	return nil
}
