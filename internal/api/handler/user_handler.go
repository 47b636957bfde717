package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/accessly/rbac-service/internal/core/domain"
	"github.com/accessly/rbac-service/internal/core/ports"
)

// UserHandler handles HTTP requests for user operations, including the
// joined search, bulk updates, and the access query.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Create handles POST /users.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      createUserRequest  true  "User details"
// @Success      201   {object}  domain.User
// @Failure      400   {object}  messageResponse
// @Failure      500   {object}  messageResponse
// @Router       /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: err.Error()})
	}

	user, err := h.service.Create(c.Request().Context(), ports.CreateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		RoleID:    req.Role,
		Active:    req.Active,
	})
	if err != nil {
		if errors.Is(err, domain.ErrRoleNotFound) {
			return c.JSON(http.StatusBadRequest, messageResponse{Message: "Role not found"})
		}
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, user)
}

// List handles GET /users?search=<text>, joining each user to its role.
//
// @Summary      List users with role details
// @Tags         users
// @Produce      json
// @Param        search  query     string  false  "Matches name, email, role name, or any access module"
// @Success      200     {array}   domain.UserWithRole
// @Failure      500     {object}  messageResponse
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.service.List(c.Request().Context(), c.QueryParam("search"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: err.Error()})
	}
	return c.JSON(http.StatusOK, users)
}

// Get handles GET /users/:id with the role populated.
//
// @Summary      Get a user by id
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  domain.User
// @Failure      404  {object}  messageResponse
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.userError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// Update handles PUT /users/:id with a partial patch.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      string          true  "User id"
// @Param        body  body      map[string]any  true  "Fields to set"
// @Success      200   {object}  domain.User
// @Failure      404   {object}  messageResponse
// @Router       /users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	fields := map[string]any{}
	if err := c.Bind(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "invalid payload"})
	}

	user, err := h.service.Update(c.Request().Context(), c.Param("id"), fields)
	if err != nil {
		return h.userError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// Delete handles DELETE /users/:id.
//
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return h.userError(c, err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "User deleted successfully"})
}

// BulkUpdateSame handles PUT /users/bulk/same, setting the same lastName on
// every user. Zero modified users is a valid outcome.
//
// @Summary      Set one lastName on all users
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      bulkSameRequest  true  "Value applied to every user"
// @Success      200   {object}  messageResponse
// @Failure      500   {object}  messageResponse
// @Router       /users/bulk/same [put]
func (h *UserHandler) BulkUpdateSame(c echo.Context) error {
	var req bulkSameRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: err.Error()})
	}

	count, err := h.service.BulkSetField(c.Request().Context(), "lastName", req.LastName)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: err.Error()})
	}
	return c.JSON(http.StatusOK, messageResponse{Message: fmt.Sprintf("%d users updated", count)})
}

// BulkUpdateDifferent handles PUT /users/bulk/different, applying a distinct
// patch per user id in one batched write. A malformed id fails the whole
// batch.
//
// @Summary      Apply per-user patches in one batch
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      bulkDifferentRequest  true  "Per-user patches"
// @Success      200   {object}  messageResponse
// @Failure      500   {object}  messageResponse
// @Router       /users/bulk/different [put]
func (h *UserHandler) BulkUpdateDifferent(c echo.Context) error {
	var req bulkDifferentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: err.Error()})
	}

	patches := make([]ports.UserPatch, 0, len(req.Updates))
	for _, u := range req.Updates {
		patches = append(patches, ports.UserPatch{UserID: u.UserID, Fields: u.Data})
	}

	count, err := h.service.BulkApplyPatches(c.Request().Context(), patches)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: err.Error()})
	}
	return c.JSON(http.StatusOK, messageResponse{Message: fmt.Sprintf("%d users updated", count)})
}

// CheckAccess handles POST /users/check-access.
//
// @Summary      Check whether a user's role grants a module
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      checkAccessRequest  true  "User id and module name"
// @Success      200   {object}  checkAccessResponse
// @Failure      404   {object}  messageResponse
// @Router       /users/check-access [post]
func (h *UserHandler) CheckAccess(c echo.Context) error {
	var req checkAccessRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, messageResponse{Message: err.Error()})
	}

	hasAccess, err := h.service.CheckAccess(c.Request().Context(), req.UserID, req.ModuleName)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, messageResponse{Message: "User not found or Role not associated with user"})
		}
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: err.Error()})
	}
	return c.JSON(http.StatusOK, checkAccessResponse{HasAccess: hasAccess})
}

func (h *UserHandler) userError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, messageResponse{Message: "User not found"})
	case errors.Is(err, domain.ErrRoleNotFound):
		return c.JSON(http.StatusBadRequest, messageResponse{Message: "Role not found"})
	}
	return c.JSON(http.StatusInternalServerError, messageResponse{Message: err.Error()})
}
