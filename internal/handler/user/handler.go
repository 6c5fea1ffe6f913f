package user

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/medops-mobile/internal/model"
	"github.com/jwalitptl/medops-mobile/internal/service/directory"
	apperrors "github.com/jwalitptl/medops-mobile/pkg/errors"
	"github.com/jwalitptl/medops-mobile/pkg/httputil"
	"github.com/jwalitptl/medops-mobile/pkg/validator"
)

// Directory is the user side of directory.Service
type Directory interface {
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)
	Get(ctx context.Context, id int) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, roleName string) ([]model.User, error)
	Update(ctx context.Context, id int, in *directory.UpdateUserInput) (*model.User, error)
	Delete(ctx context.Context, id int) error
}

type Handler struct {
	service   Directory
	validator validator.Validator
}

func NewHandler(service Directory, v validator.Validator) *Handler {
	return &Handler{service: service, validator: v}
}

// createUserRequest lets Create reject a client-chosen id.
type createUserRequest struct {
	model.RegisterRequest
	UserID *int `json:"user_id"`
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/users")
	{
		users.POST("/login", h.Login)
		users.POST("", h.CreateUser)
		users.GET("", h.ListUsers)
		users.GET("/:id", h.GetUser)
		users.POST("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
	}
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithErrors(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	user, err := h.service.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithJSON(c, http.StatusCreated, model.UserEnvelope{User: user})
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithErrors(c, http.StatusBadRequest, "Error creating field: "+err.Error())
		return
	}

	var messages []string
	if req.UserID != nil {
		messages = append(messages, "Do not provide a user id when creating a new user.")
	}
	if err := h.validator.Validate(&req.RegisterRequest); err != nil {
		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			httputil.RespondWithError(c, err)
			return
		}
		messages = append(messages, appErr.Messages...)
	}
	if len(messages) > 0 {
		httputil.RespondWithErrors(c, http.StatusBadRequest, messages...)
		return
	}

	user, err := h.service.Register(c.Request.Context(), &req.RegisterRequest)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithJSON(c, http.StatusOK, model.UserEnvelope{User: user})
}

// ListUsers answers ?email= with a single user and ?role= (or nothing) with a list.
func (h *Handler) ListUsers(c *gin.Context) {
	ctx := c.Request.Context()

	if email := c.Query("email"); email != "" {
		user, err := h.service.GetByEmail(ctx, email)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		httputil.RespondWithJSON(c, http.StatusOK, model.UserEnvelope{User: user})
		return
	}

	users, err := h.service.List(ctx, c.Query("role"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithJSON(c, http.StatusOK, model.UsersEnvelope{Users: users})
}

func (h *Handler) GetUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	user, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithJSON(c, http.StatusOK, model.UserEnvelope{User: user})
}

func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	var in directory.UpdateUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		httputil.RespondWithErrors(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	user, err := h.service.Update(c.Request.Context(), id, &in)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithJSON(c, http.StatusOK, model.UserEnvelope{User: user})
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func userID(c *gin.Context) (int, bool) {
	raw := c.Param("id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		httputil.RespondWithErrors(c, http.StatusNotFound, "User "+raw+" does not exist.")
		return 0, false
	}
	return id, true
}
