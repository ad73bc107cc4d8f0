package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/stockroom/inventory-system/internal/api/metrics"
	"github.com/stockroom/inventory-system/internal/api/middleware"
	"github.com/stockroom/inventory-system/internal/core/domain"
	"github.com/stockroom/inventory-system/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log}
}

// Signup creates a new user account and opens its first session.
//
// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Account details"
// @Success      201   {object}  signupResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Signup(c.Request().Context(), ports.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	observe("signup", err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, signupResponse{SavedUser: user})
}

// Login authenticates a user and returns the user with a fresh token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	observe("login", err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, userResponse{User: user})
}

// Logout revokes the caller's session when one is presented. It always succeeds.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if userID, _ := c.Get(middleware.ContextKeyUserID).(string); userID != "" {
		err := h.authService.Logout(c.Request().Context(), userID)
		observe("logout", err)
		if err != nil {
			h.log.Warn().Err(err).Str("user_id", userID).Msg("logout cleanup incomplete")
		}
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "logged out"})
}

// Me returns the authenticated user.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	user, err := h.authService.Me(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: user})
}

// UpdateProfile replaces the caller's profile picture.
//
// @Summary      Update profile picture
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "New profile picture (data URL)"
// @Success      200   {object}  updatedUserResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/auth/updateProfile [put]
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.UpdateProfile(c.Request().Context(), userID, req.ProfilePic)
	observe("update_profile", err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, updatedUserResponse{UpdatedUser: user})
}

// ListStaff handles GET /api/auth/staffuser.
//
// @Summary      List staff users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.User
// @Failure      401  {object}  errorResponse
// @Router       /api/auth/staffuser [get]
func (h *AuthHandler) ListStaff(c echo.Context) error {
	return h.listByRole(c, domain.RoleStaff)
}

// ListManagers handles GET /api/auth/manageruser.
//
// @Summary      List manager users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.User
// @Failure      401  {object}  errorResponse
// @Router       /api/auth/manageruser [get]
func (h *AuthHandler) ListManagers(c echo.Context) error {
	return h.listByRole(c, domain.RoleManager)
}

// ListAdmins handles GET /api/auth/adminuser.
//
// @Summary      List admin users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.User
// @Failure      401  {object}  errorResponse
// @Router       /api/auth/adminuser [get]
func (h *AuthHandler) ListAdmins(c echo.Context) error {
	return h.listByRole(c, domain.RoleAdmin)
}

func (h *AuthHandler) listByRole(c echo.Context, role domain.Role) error {
	if _, _, err := ctxIdentity(c); err != nil {
		return err
	}

	users, err := h.authService.ListByRole(c.Request().Context(), role)
	observe("list_users", err)
	if err != nil {
		return err
	}
	if users == nil {
		users = []*domain.User{}
	}
	return c.JSON(http.StatusOK, users)
}

// AssignRole changes another user's role. Admin only.
//
// @Summary      Assign role
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User ID"
// @Param        body  body      assignRoleRequest  true  "New role"
// @Success      200   {object}  updatedUserResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/auth/role/{id} [put]
func (h *AuthHandler) AssignRole(c echo.Context) error {
	actorID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req assignRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.AssignRole(c.Request().Context(), actorID, c.Param("id"), domain.Role(req.Role))
	observe("assign_role", err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, updatedUserResponse{UpdatedUser: user})
}

// RemoveUser deletes a user account. Admin only.
//
// @Summary      Remove user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/auth/removeuser/{id} [delete]
func (h *AuthHandler) RemoveUser(c echo.Context) error {
	actorID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	err = h.authService.RemoveUser(c.Request().Context(), actorID, c.Param("id"))
	observe("remove_user", err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "user removed"})
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}

func observe(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.AuthOperationsTotal.WithLabelValues(operation, result).Inc()
}
