package rbac

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/medops-mobile/internal/model"
	"github.com/jwalitptl/medops-mobile/pkg/httputil"
)

// RoleDirectory is the role side of directory.Service
type RoleDirectory interface {
	ListRoles(ctx context.Context) ([]model.Role, error)
	GetRole(ctx context.Context, id int) (*model.Role, error)
	CreateRole(ctx context.Context, name string) (*model.Role, error)
	RenameRole(ctx context.Context, id int, name string) (*model.Role, error)
}

type Handler struct {
	service RoleDirectory
}

func NewHandler(service RoleDirectory) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	roles := r.Group("/users/roles")
	{
		roles.GET("", h.ListRoles)
		roles.POST("", h.CreateRole)
		roles.GET("/:id", h.GetRole)
		roles.POST("/:id", h.UpdateRole)
	}
}

func (h *Handler) ListRoles(c *gin.Context) {
	roles, err := h.service.ListRoles(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithJSON(c, http.StatusOK, model.RolesEnvelope{UserRoles: roles})
}

func (h *Handler) CreateRole(c *gin.Context) {
	var req model.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithErrors(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	role, err := h.service.CreateRole(c.Request.Context(), req.RoleName)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithJSON(c, http.StatusOK, model.RoleEnvelope{UserRole: role})
}

func (h *Handler) GetRole(c *gin.Context) {
	id, ok := roleID(c)
	if !ok {
		return
	}

	role, err := h.service.GetRole(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithJSON(c, http.StatusOK, model.RoleEnvelope{UserRole: role})
}

func (h *Handler) UpdateRole(c *gin.Context) {
	id, ok := roleID(c)
	if !ok {
		return
	}

	var req model.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithErrors(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	role, err := h.service.RenameRole(c.Request.Context(), id, req.RoleName)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithJSON(c, http.StatusOK, model.RoleEnvelope{UserRole: role})
}

func roleID(c *gin.Context) (int, bool) {
	raw := c.Param("id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		httputil.RespondWithErrors(c, http.StatusNotFound, "User role does not exist with id: "+raw)
		return 0, false
	}
	return id, true
}
