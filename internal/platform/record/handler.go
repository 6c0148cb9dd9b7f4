package record

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hospitalhq/hms/internal/platform/access"
	"github.com/hospitalhq/hms/pkg/pagination"
)

// Handler exposes a Service over HTTP:
//
//	GET    /{kind}        list
//	POST   /{kind}        create
//	GET    /{kind}/:id    fetch one
//	PATCH  /{kind}/:id    partial update
//	DELETE /{kind}/:id    delete
//	GET    {AllPath}      tenant-wide list, when configured
type Handler[T Payload] struct {
	svc *Service[T]
}

func NewHandler[T Payload](svc *Service[T]) *Handler[T] {
	return &Handler[T]{svc: svc}
}

// RegisterRoutes mounts read endpoints on read and mutating endpoints on
// write so callers can guard them separately.
func (h *Handler[T]) RegisterRoutes(read, write *echo.Group) {
	def := h.svc.Definition()
	base := "/" + def.Kind

	read.GET(base, h.List)
	read.GET(base+"/:id", h.Get)
	if def.AllPath != "" {
		read.GET(def.AllPath, h.ListAll)
	}

	write.POST(base, h.Create)
	write.PATCH(base+"/:id", h.Update)
	write.DELETE(base+"/:id", h.Delete)
}

func scopeOf(c echo.Context) (access.Scope, error) {
	scope, ok := access.FromContext(c.Request().Context())
	if !ok {
		return access.Scope{}, echo.NewHTTPError(http.StatusUnauthorized, "Authentication credentials were not provided.")
	}
	return scope, nil
}

func (h *Handler[T]) filters(c echo.Context) map[string]string {
	out := map[string]string{}
	for param, field := range h.svc.Definition().Filters {
		if v := c.QueryParam(param); v != "" {
			out[field] = v
		}
	}
	return out
}

func (h *Handler[T]) List(c echo.Context) error {
	scope, err := scopeOf(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), scope, h.filters(c), pg)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(nonNil(items), total, pg))
}

func (h *Handler[T]) ListAll(c echo.Context) error {
	scope, err := scopeOf(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListAll(c.Request().Context(), scope, h.filters(c), pg)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(nonNil(items), total, pg))
}

func (h *Handler[T]) Get(c echo.Context) error {
	scope, err := scopeOf(c)
	if err != nil {
		return err
	}
	id, ok := parseID(c)
	if !ok {
		return h.notFound(c)
	}
	rec, err := h.svc.Get(c.Request().Context(), scope, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": rec})
}

func (h *Handler[T]) Create(c echo.Context) error {
	scope, err := scopeOf(c)
	if err != nil {
		return err
	}
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}
	rec, err := h.svc.Create(c.Request().Context(), scope, body)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"msg": h.svc.Definition().Title + " added successfully!",
		"id":  rec.ID,
	})
}

func (h *Handler[T]) Update(c echo.Context) error {
	scope, err := scopeOf(c)
	if err != nil {
		return err
	}
	id, ok := parseID(c)
	if !ok {
		return h.notFound(c)
	}
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}
	if _, err := h.svc.Update(c.Request().Context(), scope, id, body); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"msg": h.svc.Definition().Title + " updated successfully!"})
}

func (h *Handler[T]) Delete(c echo.Context) error {
	scope, err := scopeOf(c)
	if err != nil {
		return err
	}
	id, ok := parseID(c)
	if !ok {
		return h.notFound(c)
	}
	if err := h.svc.Delete(c.Request().Context(), scope, id); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"msg": h.svc.Definition().Title + " deleted successfully!"})
}

func (h *Handler[T]) fail(c echo.Context, err error) error {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"error": verr.Fields})
	case errors.Is(err, ErrNotFound):
		return h.notFound(c)
	case errors.Is(err, ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "You do not have permission to perform this action.")
	}
	return err
}

func (h *Handler[T]) notFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, map[string]string{
		"msg": fmt.Sprintf("%s with ID %s not found.", h.svc.Definition().Title, c.Param("id")),
	})
}

func parseID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

func nonNil[T any](items []*Record[T]) []*Record[T] {
	if items == nil {
		return []*Record[T]{}
	}
	return items
}
