package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hospitalhq/hms/internal/platform/access"
)

// AuditEntry describes one mutating request against tenant data.
type AuditEntry struct {
	TenantID   string
	UserID     int64
	Resource   string
	RecordID   string
	Action     string // create, update, delete
	Method     string
	Path       string
	IPAddress  string
	UserAgent  string
	RequestID  string
	StatusCode int
	Timestamp  time.Time
}

type AuditRecorder interface {
	RecordAccess(entry AuditEntry) error
}

type AuditRecorderFunc func(entry AuditEntry) error

func (f AuditRecorderFunc) RecordAccess(entry AuditEntry) error {
	return f(entry)
}

// Audit logs every mutating request after the handler ran. Reads are
// not audited. Recorders, when given, receive the entry as well.
func Audit(logger zerolog.Logger, recorders ...AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			action := methodAction(req.Method)
			if action == "" {
				return next(c)
			}

			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}

			entry := AuditEntry{
				Action:     action,
				Method:     req.Method,
				Path:       req.URL.Path,
				IPAddress:  c.RealIP(),
				UserAgent:  req.UserAgent(),
				StatusCode: status,
				Timestamp:  time.Now().UTC(),
			}
			entry.Resource, entry.RecordID = splitResourcePath(req.URL.Path)
			entry.RequestID, _ = c.Get("request_id").(string)
			entry.TenantID, _ = c.Get("tenant_id").(string)
			if scope, ok := access.FromContext(req.Context()); ok {
				entry.UserID = scope.Principal.UserID
				if entry.TenantID == "" {
					entry.TenantID = scope.TenantID
				}
			}

			for _, r := range recorders {
				if r == nil {
					continue
				}
				if recErr := r.RecordAccess(entry); recErr != nil {
					logger.Error().Err(recErr).Str("request_id", entry.RequestID).Msg("failed to record audit entry")
				}
			}

			evt := logger.Info()
			if status >= http.StatusBadRequest {
				evt = logger.Warn()
			}
			evt.
				Str("type", "audit").
				Str("request_id", entry.RequestID).
				Str("tenant_id", entry.TenantID).
				Int64("user_id", entry.UserID).
				Str("resource", entry.Resource).
				Str("record_id", entry.RecordID).
				Str("action", entry.Action).
				Str("path", entry.Path).
				Str("remote_ip", entry.IPAddress).
				Int("status", entry.StatusCode).
				Msg("record mutation")

			return err
		}
	}
}

func methodAction(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	}
	return ""
}

// splitResourcePath turns "/api/ipd/ipd-bill/7" into ("ipd/ipd-bill", "7").
func splitResourcePath(path string) (resource, id string) {
	path = strings.Trim(path, "/")
	path = strings.TrimPrefix(path, "api/")
	segments := strings.Split(path, "/")
	if n := len(segments); n > 1 {
		if _, err := strconv.ParseInt(segments[n-1], 10, 64); err == nil {
			id = segments[n-1]
			segments = segments[:n-1]
		}
	}
	resource = strings.Join(segments, "/")
	if resource == "" {
		resource = "unknown"
	}
	return resource, id
}
