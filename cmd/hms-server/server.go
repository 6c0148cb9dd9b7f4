package main

import (
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/hospitalhq/hms/internal/config"
	"github.com/hospitalhq/hms/internal/domain/appointment"
	"github.com/hospitalhq/hms/internal/domain/billing"
	"github.com/hospitalhq/hms/internal/domain/blog"
	"github.com/hospitalhq/hms/internal/domain/ipd"
	"github.com/hospitalhq/hms/internal/domain/leave"
	"github.com/hospitalhq/hms/internal/domain/opd"
	"github.com/hospitalhq/hms/internal/domain/pathology"
	"github.com/hospitalhq/hms/internal/domain/patient"
	"github.com/hospitalhq/hms/internal/domain/pharmacy"
	"github.com/hospitalhq/hms/internal/domain/radiology"
	"github.com/hospitalhq/hms/internal/domain/staff"
	"github.com/hospitalhq/hms/internal/domain/tenant"
	"github.com/hospitalhq/hms/internal/domain/user"
	"github.com/hospitalhq/hms/internal/platform/auth"
	"github.com/hospitalhq/hms/internal/platform/authz"
	"github.com/hospitalhq/hms/internal/platform/db"
	"github.com/hospitalhq/hms/internal/platform/middleware"
	"github.com/hospitalhq/hms/internal/platform/record"
)

// module is a group of record kinds served under one URL prefix.
type module struct {
	prefix string
	mount  func(b record.Backend, read, write *echo.Group)
}

// modules lists every hospital department. Blog keeps the root prefix of
// the clients app it shipped with.
var modules = []module{
	{"/api/patients", patient.Mount},
	{"/api/staff", staff.Mount},
	{"/api/appointments", appointment.Mount},
	{"/api/opd", opd.Mount},
	{"/api/billing", billing.Mount},
	{"/api/ipd", ipd.Mount},
	{"/api/pathology", pathology.Mount},
	{"/api/radiology", radiology.Mount},
	{"/api/pharmacy", pharmacy.Mount},
	{"/api/leave-management", leave.Mount},
	{"", blog.Mount},
}

// services holds what both the HTTP server and the CLI commands need.
type services struct {
	backend  record.Backend
	tokens   *auth.Tokens
	users    *user.Service
	tenants  *tenant.Service
	resolver *tenant.Resolver
}

// newServices builds the account and tenant services. A nil pool keeps
// everything in memory.
func newServices(cfg *config.Config, pool *pgxpool.Pool, logger zerolog.Logger) *services {
	var (
		userRepo   user.Repository
		tenantRepo tenant.Repository
		tx         record.TxRunner = record.NoTx{}
	)
	if pool != nil {
		userRepo = user.NewRepo(pool)
		tenantRepo = tenant.NewRepo(pool)
		tx = db.NewTransactor(pool)
	} else {
		userRepo = user.NewMemoryRepo()
		tenantRepo = tenant.NewMemoryRepo()
	}

	tokens := auth.NewTokens(auth.TokenConfig{
		Secret:     []byte(cfg.Secret()),
		Issuer:     cfg.JWTIssuer,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	})
	resolver := tenant.NewResolver(tenantRepo, cfg.TenantCacheSize, cfg.TenantCacheTTL)
	users := user.NewService(userRepo, tokens, logger)

	return &services{
		backend: record.Backend{
			Pool:     pool,
			Registry: record.NewRegistry(),
			Tx:       tx,
			Logger:   logger,
		},
		tokens:   tokens,
		users:    users,
		tenants:  tenant.NewService(tenantRepo, users, tx, resolver, cfg.BaseDomain, logger),
		resolver: resolver,
	}
}

// newServer wires middleware and every route onto a fresh echo instance.
func newServer(cfg *config.Config, svc *services, logger zerolog.Logger) (*echo.Echo, error) {
	mode, err := authz.ParseMode(cfg.AuthzMode)
	if err != nil {
		return nil, err
	}
	az, err := authz.NewAuthorizer(cfg.AuthzPolicyFile, mode, logger)
	if err != nil {
		return nil, fmt.Errorf("load authorization policy: %w", err)
	}
	pool := svc.backend.Pool

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.ErrorHandler(logger)

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID", db.TenantHeader},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	if pool != nil {
		e.GET("/health/db", db.HealthHandler(pool))
	}

	userHandler := user.NewHandler(svc.users)
	tenantHandler := tenant.NewHandler(svc.tenants, svc.users)

	// Token endpoints are valid on any host.
	userHandler.RegisterTokenRoutes(e.Group(""))

	rl := middleware.DefaultRateLimitConfig()
	if cfg.RateLimitRPS > 0 {
		rl.RequestsPerSecond = cfg.RateLimitRPS
	}
	if cfg.RateLimitBurst > 0 {
		rl.BurstSize = cfg.RateLimitBurst
	}
	public := e.Group("", db.TenantMiddleware(svc.resolver, cfg.DefaultTenant), middleware.RateLimit(rl))
	authed := public.Group("", auth.JWTMiddleware(svc.tokens), middleware.Audit(logger))

	userHandler.RegisterRoutes(public, authed, az)
	tenantHandler.RegisterRoutes(public, authed, az)

	for _, m := range modules {
		read := authed.Group(m.prefix, az.Require(authz.ObjectRecords, authz.ActionRead))
		write := authed.Group(m.prefix, az.Require(authz.ObjectRecords, authz.ActionWrite))
		m.mount(svc.backend, read, write)
	}

	logger.Info().
		Int("modules", len(modules)).
		Int("kinds", len(svc.backend.Registry.Kinds())).
		Bool("memory", pool == nil).
		Msg("routes registered")
	return e, nil
}
