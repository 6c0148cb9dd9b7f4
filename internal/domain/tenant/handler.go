package tenant

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hospitalhq/hms/internal/domain/user"
	"github.com/hospitalhq/hms/internal/platform/authz"
	"github.com/hospitalhq/hms/internal/platform/db"
	"github.com/hospitalhq/hms/internal/platform/record"
	"github.com/hospitalhq/hms/pkg/pagination"
)

type Handler struct {
	svc   *Service
	users *user.Service
}

func NewHandler(svc *Service, users *user.Service) *Handler {
	return &Handler{svc: svc, users: users}
}

// RegisterRoutes mounts the public signup endpoints on public and the SaaS
// administration endpoints on saas, which must carry authentication.
func (h *Handler) RegisterRoutes(public, saas *echo.Group, az *authz.Authorizer) {
	public.GET("/", h.Index)
	public.POST("/tenant", h.Register)
	public.GET("/check-tenant", h.Check)

	read := az.Require(authz.ObjectSaaS, authz.ActionRead)
	write := az.Require(authz.ObjectSaaS, authz.ActionWrite)
	saas.GET("/tenants", h.List, read)
	saas.POST("/tenants", h.Create, write)
	saas.GET("/domains", h.ListDomains, read)
	saas.POST("/domains", h.CreateDomain, write)
	saas.GET("/users", h.ListUsers, read)
}

func fail(c echo.Context, err error) error {
	var verr *record.ValidationError
	if errors.As(err, &verr) {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"error": verr.Fields})
	}
	return err
}

func (h *Handler) Index(c echo.Context) error {
	tenantID := db.TenantFromContext(c.Request().Context())
	return c.JSON(http.StatusOK, map[string]string{"msg": "you are at " + tenantID + " view"})
}

func (h *Handler) Register(c echo.Context) error {
	var in RegisterInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid data. Expected a dictionary.")
	}
	reg, err := h.svc.Register(c.Request().Context(), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"msg":        "Tenant created successfully!",
		"tenant_url": h.svc.URL(reg.Domain),
		"user_data": map[string]string{
			"email":    reg.Admin.Email,
			"username": reg.Admin.Username,
		},
	})
}

func (h *Handler) Check(c echo.Context) error {
	exists, err := h.svc.Exists(c.Request().Context(), c.QueryParam("username"))
	if err != nil {
		return err
	}
	if !exists {
		return c.JSON(http.StatusNotFound, map[string]bool{"msg": false})
	}
	return c.JSON(http.StatusOK, map[string]bool{"msg": true})
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	tenants, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	if tenants == nil {
		tenants = []*Tenant{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(tenants, total, pg))
}

func (h *Handler) Create(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid data. Expected a dictionary.")
	}
	t, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) ListDomains(c echo.Context) error {
	pg := pagination.FromContext(c)
	domains, total, err := h.svc.ListDomains(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	if domains == nil {
		domains = []*Domain{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(domains, total, pg))
}

func (h *Handler) CreateDomain(c echo.Context) error {
	var in DomainInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid data. Expected a dictionary.")
	}
	d, err := h.svc.CreateDomain(c.Request().Context(), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) ListUsers(c echo.Context) error {
	pg := pagination.FromContext(c)
	users, total, err := h.users.ListAll(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	if users == nil {
		users = []*user.User{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(users, total, pg))
}
