package user

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hospitalhq/hms/internal/platform/access"
	"github.com/hospitalhq/hms/internal/platform/auth"
	"github.com/hospitalhq/hms/internal/platform/authz"
	"github.com/hospitalhq/hms/internal/platform/db"
	"github.com/hospitalhq/hms/internal/platform/record"
	"github.com/hospitalhq/hms/pkg/pagination"
)

const badCredentials = "Unfortunately the credentials you are entering is not matching our records. " +
	"Please try again later or try resetting the credentials"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts tenant scoped account endpoints. public carries
// tenant resolution only; authed also requires a bearer token.
func (h *Handler) RegisterRoutes(public, authed *echo.Group, az *authz.Authorizer) {
	public.POST("/user/register", h.Register)
	public.POST("/login", h.Login)

	authed.GET("/user/detail", h.Detail, az.Require(authz.ObjectProfile, authz.ActionRead))
	authed.GET("/tenant/user", h.ListTenant, az.Require(authz.ObjectTenantUsers, authz.ActionAdmin))
	authed.GET("/tenant/user/:id", h.Get, az.Require(authz.ObjectProfile, authz.ActionRead))
	authed.PATCH("/tenant/user/:id", h.Update, az.Require(authz.ObjectProfile, authz.ActionWrite))
	authed.DELETE("/tenant/user/:id", h.Delete, az.Require(authz.ObjectProfile, authz.ActionWrite))
}

// RegisterTokenRoutes mounts endpoints that work without a tenant.
func (h *Handler) RegisterTokenRoutes(g *echo.Group) {
	g.POST("/api/superadmin-login", h.SuperadminLogin)
	g.POST("/api/token/refresh", h.Refresh)
}

func validationFailed(c echo.Context, err error) (bool, error) {
	var verr *record.ValidationError
	if errors.As(err, &verr) {
		return true, c.JSON(http.StatusBadRequest, map[string]interface{}{"error": verr.Fields})
	}
	return false, nil
}

func (h *Handler) Register(c echo.Context) error {
	var in RegisterInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid data. Expected a dictionary.")
	}
	tenantID := db.TenantFromContext(c.Request().Context())
	u, err := h.svc.Register(c.Request().Context(), tenantID, in)
	if ok, resp := validationFailed(c, err); ok {
		return resp
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"data": map[string]string{"email": u.Email, "username": u.Username},
		"msg":  "User created successfully",
	})
}

func (h *Handler) Login(c echo.Context) error {
	var in LoginInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid data. Expected a dictionary.")
	}
	tenantID := db.TenantFromContext(c.Request().Context())
	u, pair, err := h.svc.Login(c.Request().Context(), tenantID, in)
	if ok, resp := validationFailed(c, err); ok {
		return resp
	}
	if errors.Is(err, ErrInvalidCredentials) {
		return c.JSON(http.StatusBadRequest, map[string]string{"msg": badCredentials})
	}
	if err != nil {
		return err
	}

	msg := "User Logged in Successfully!"
	if u.IsTenantAdmin {
		msg = "Tenant admin Logged in Successfully!"
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"email":           u.Email,
		"username":        u.Username,
		"msg":             msg,
		"is_tenant_admin": u.IsTenantAdmin,
		"access_token":    pair,
	})
}

func (h *Handler) SuperadminLogin(c echo.Context) error {
	var in LoginInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid data. Expected a dictionary.")
	}
	pair, err := h.svc.SuperadminLogin(c.Request().Context(), in)
	if ok, resp := validationFailed(c, err); ok {
		return resp
	}
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "No active account found with the given credentials")
	case errors.Is(err, ErrNotSuperuser):
		return echo.NewHTTPError(http.StatusUnauthorized, "Only global superusers are allowed to generate tokens.")
	case err != nil:
		return err
	}
	return c.JSON(http.StatusOK, pair)
}

func (h *Handler) Refresh(c echo.Context) error {
	var in struct {
		Refresh string `json:"refresh"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid data. Expected a dictionary.")
	}
	if in.Refresh == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": map[string][]string{"refresh": {"This field is required."}},
		})
	}
	token, err := h.svc.Refresh(c.Request().Context(), in.Refresh)
	if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrWrongType) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Token is invalid or expired")
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"access": token})
}

func scopeOf(c echo.Context) (access.Scope, error) {
	scope, ok := access.FromContext(c.Request().Context())
	if !ok || !scope.Authenticated() {
		return access.Scope{}, echo.NewHTTPError(http.StatusUnauthorized, "Authentication credentials were not provided.")
	}
	return scope, nil
}

func notFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, map[string]string{
		"msg": fmt.Sprintf("User with ID %s not found.", c.Param("id")),
	})
}

func parseID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *Handler) Detail(c echo.Context) error {
	scope, err := scopeOf(c)
	if err != nil {
		return err
	}
	u, err := h.svc.Profile(c.Request().Context(), scope)
	if errors.Is(err, ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"msg": fmt.Sprintf("%s doesn't exist!", scope.Principal.Email)})
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": u})
}

func (h *Handler) ListTenant(c echo.Context) error {
	scope, err := scopeOf(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	users, total, err := h.svc.ListTenant(c.Request().Context(), scope.TenantID, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	if users == nil {
		users = []*User{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(users, total, pg))
}

func (h *Handler) Get(c echo.Context) error {
	scope, err := scopeOf(c)
	if err != nil {
		return err
	}
	id, ok := parseID(c)
	if !ok {
		return notFound(c)
	}
	u, err := h.svc.Get(c.Request().Context(), scope, id)
	if errors.Is(err, ErrNotFound) {
		return notFound(c)
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": u})
}

func (h *Handler) Update(c echo.Context) error {
	scope, err := scopeOf(c)
	if err != nil {
		return err
	}
	id, ok := parseID(c)
	if !ok {
		return notFound(c)
	}
	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid data. Expected a dictionary.")
	}
	_, err = h.svc.Update(c.Request().Context(), scope, id, in)
	if ok, resp := validationFailed(c, err); ok {
		return resp
	}
	if errors.Is(err, ErrNotFound) {
		return notFound(c)
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"msg": "User updated successfully!"})
}

func (h *Handler) Delete(c echo.Context) error {
	scope, err := scopeOf(c)
	if err != nil {
		return err
	}
	id, ok := parseID(c)
	if !ok {
		return notFound(c)
	}
	err = h.svc.Delete(c.Request().Context(), scope, id)
	if errors.Is(err, ErrNotFound) {
		return notFound(c)
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"msg": "User deleted successfully!"})
}
