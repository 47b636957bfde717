package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/accessly/rbac-service/internal/core/domain"
	"github.com/accessly/rbac-service/internal/core/ports"
)

// RoleHandler handles HTTP requests for role operations.
type RoleHandler struct {
	service ports.RoleService
}

func NewRoleHandler(service ports.RoleService) *RoleHandler {
	return &RoleHandler{service: service}
}

// Create handles POST /roles.
//
// @Summary      Create a role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Param        body  body      createRoleRequest  true  "Role details"
// @Success      201   {object}  domain.Role
// @Failure      400   {object}  messageResponse
// @Failure      500   {object}  messageResponse
// @Router       /roles [post]
func (h *RoleHandler) Create(c echo.Context) error {
	var req createRoleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: err.Error()})
	}

	role, err := h.service.Create(c.Request().Context(), req.RoleName, req.AccessModules)
	if err != nil {
		// Duplicate names surface like any other persistence failure.
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, role)
}

// List handles GET /roles?search=<text>.
//
// @Summary      List roles
// @Tags         roles
// @Produce      json
// @Param        search  query     string  false  "Case-insensitive substring match on roleName"
// @Success      200     {array}   domain.Role
// @Failure      500     {object}  messageResponse
// @Router       /roles [get]
func (h *RoleHandler) List(c echo.Context) error {
	roles, err := h.service.List(c.Request().Context(), c.QueryParam("search"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: err.Error()})
	}
	return c.JSON(http.StatusOK, roles)
}

// Get handles GET /roles/:id.
//
// @Summary      Get a role by id
// @Tags         roles
// @Produce      json
// @Param        id   path      string  true  "Role id"
// @Success      200  {object}  domain.Role
// @Failure      404  {object}  messageResponse
// @Router       /roles/{id} [get]
func (h *RoleHandler) Get(c echo.Context) error {
	role, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.roleError(c, err)
	}
	return c.JSON(http.StatusOK, role)
}

// Update handles PUT /roles/:id with a partial patch.
//
// @Summary      Update a role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Param        id    path      string          true  "Role id"
// @Param        body  body      map[string]any  true  "Fields to set"
// @Success      200   {object}  domain.Role
// @Failure      404   {object}  messageResponse
// @Router       /roles/{id} [put]
func (h *RoleHandler) Update(c echo.Context) error {
	fields := map[string]any{}
	if err := c.Bind(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "invalid payload"})
	}

	role, err := h.service.Update(c.Request().Context(), c.Param("id"), fields)
	if err != nil {
		return h.roleError(c, err)
	}
	return c.JSON(http.StatusOK, role)
}

// Delete handles DELETE /roles/:id. Users referencing the role are untouched.
//
// @Summary      Delete a role
// @Tags         roles
// @Produce      json
// @Param        id   path      string  true  "Role id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Router       /roles/{id} [delete]
func (h *RoleHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return h.roleError(c, err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Role deleted successfully"})
}

// UpdateAccessModules handles PATCH /roles/update-access-modules, replacing
// the whole accessModules set (duplicates collapsed).
//
// @Summary      Replace a role's access modules
// @Tags         roles
// @Accept       json
// @Produce      json
// @Param        body  body      updateAccessModulesRequest  true  "Role id and the new module list"
// @Success      200   {object}  domain.Role
// @Failure      404   {object}  messageResponse
// @Router       /roles/update-access-modules [patch]
func (h *RoleHandler) UpdateAccessModules(c echo.Context) error {
	var req updateAccessModulesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: err.Error()})
	}

	role, err := h.service.ReplaceModules(c.Request().Context(), req.RoleID, req.NewAccessModules)
	if err != nil {
		return h.roleError(c, err)
	}
	return c.JSON(http.StatusOK, role)
}

// AddAccessModule handles PATCH /roles/add-access-module.
//
// @Summary      Add an access module to a role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Param        body  body      moduleMutationRequest  true  "Role id and module name"
// @Success      200   {object}  domain.Role
// @Failure      404   {object}  messageResponse
// @Router       /roles/add-access-module [patch]
func (h *RoleHandler) AddAccessModule(c echo.Context) error {
	var req moduleMutationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: err.Error()})
	}

	role, err := h.service.AddModule(c.Request().Context(), req.RoleID, req.ModuleName)
	if err != nil {
		if errors.Is(err, domain.ErrModuleUnchanged) {
			return c.JSON(http.StatusNotFound, messageResponse{Message: "Role not found or module already exists"})
		}
		return h.roleError(c, err)
	}
	return c.JSON(http.StatusOK, role)
}

// RemoveAccessModule handles PATCH /roles/remove-access-module. All
// occurrences of the module are removed.
//
// @Summary      Remove an access module from a role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Param        body  body      moduleMutationRequest  true  "Role id and module name"
// @Success      200   {object}  domain.Role
// @Failure      404   {object}  messageResponse
// @Router       /roles/remove-access-module [patch]
func (h *RoleHandler) RemoveAccessModule(c echo.Context) error {
	var req moduleMutationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: err.Error()})
	}

	role, err := h.service.RemoveModule(c.Request().Context(), req.RoleID, req.ModuleName)
	if err != nil {
		if errors.Is(err, domain.ErrModuleUnchanged) {
			return c.JSON(http.StatusNotFound, messageResponse{Message: "Role not found or module does not exist"})
		}
		return h.roleError(c, err)
	}
	return c.JSON(http.StatusOK, role)
}

func (h *RoleHandler) roleError(c echo.Context, err error) error {
	if errors.Is(err, domain.ErrRoleNotFound) {
		return c.JSON(http.StatusNotFound, messageResponse{Message: "Role not found"})
	}
	return c.JSON(http.StatusInternalServerError, messageResponse{Message: err.Error()})
}
