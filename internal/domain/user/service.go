package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hospitalhq/hms/internal/platform/access"
	"github.com/hospitalhq/hms/internal/platform/auth"
	"github.com/hospitalhq/hms/internal/platform/record"
)

type Service struct {
	repo   Repository
	tokens *auth.Tokens
	logger zerolog.Logger
}

func NewService(repo Repository, tokens *auth.Tokens, logger zerolog.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, logger: logger.With().Str("component", "user").Logger()}
}

func validateRegister(in *RegisterInput, requirePhone bool) error {
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)

	var v record.Validator
	v.Required("email", in.Email)
	v.Email("email", in.Email)
	v.MaxLen("email", in.Email, 255)
	v.Required("username", in.Username)
	v.MaxLen("username", in.Username, 150)
	v.Required("password", in.Password)
	if requirePhone {
		v.Required("phone", in.Phone)
	}
	v.Phone("phone", in.Phone)
	return v.Err()
}

func (s *Service) create(ctx context.Context, u *User, password string) (*User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = hash
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			verr := &record.ValidationError{}
			verr.Add("email", "User with this email is already registered for this tenant.")
			return nil, verr
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Register creates an ordinary member of tenantID.
func (s *Service) Register(ctx context.Context, tenantID string, in RegisterInput) (*User, error) {
	if err := validateRegister(&in, true); err != nil {
		return nil, err
	}
	u, err := s.create(ctx, &User{
		TenantID: &tenantID,
		Email:    in.Email,
		Username: in.Username,
		Phone:    in.Phone,
	}, in.Password)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("tenant_id", tenantID).Int64("user_id", u.ID).Msg("user registered")
	return u, nil
}

// CreateTenantAdmin creates the administrator of a freshly registered tenant.
func (s *Service) CreateTenantAdmin(ctx context.Context, tenantID string, in RegisterInput) (*User, error) {
	if err := validateRegister(&in, false); err != nil {
		return nil, err
	}
	return s.create(ctx, &User{
		TenantID:      &tenantID,
		Email:         in.Email,
		Username:      in.Username,
		Phone:         in.Phone,
		IsTenantAdmin: true,
		IsStaff:       true,
	}, in.Password)
}

// CreateSuperuser creates a global SaaS administrator.
func (s *Service) CreateSuperuser(ctx context.Context, in RegisterInput) (*User, error) {
	if err := validateRegister(&in, false); err != nil {
		return nil, err
	}
	u, err := s.create(ctx, &User{
		Email:       in.Email,
		Username:    in.Username,
		IsSuperuser: true,
		IsStaff:     true,
	}, in.Password)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("user_id", u.ID).Msg("superuser created")
	return u, nil
}

func validateLogin(in *LoginInput) error {
	in.Email = strings.TrimSpace(in.Email)
	var v record.Validator
	v.Required("email", in.Email)
	v.Email("email", in.Email)
	v.Required("password", in.Password)
	return v.Err()
}

func (s *Service) authenticate(ctx context.Context, tenantID *string, in LoginInput) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, tenantID, in.Email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !auth.CheckPassword(u.PasswordHash, in.Password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Login authenticates a member of tenantID and issues a token pair.
func (s *Service) Login(ctx context.Context, tenantID string, in LoginInput) (*User, auth.Pair, error) {
	if err := validateLogin(&in); err != nil {
		return nil, auth.Pair{}, err
	}
	u, err := s.authenticate(ctx, &tenantID, in)
	if err != nil {
		s.logger.Warn().Str("tenant_id", tenantID).Msg("login failed")
		return nil, auth.Pair{}, err
	}
	pair, err := s.tokens.Issue(identityOf(u))
	if err != nil {
		return nil, auth.Pair{}, err
	}
	s.logger.Info().Str("tenant_id", tenantID).Int64("user_id", u.ID).Bool("tenant_admin", u.IsTenantAdmin).Msg("user logged in")
	return u, pair, nil
}

// SuperadminLogin authenticates a global superuser.
func (s *Service) SuperadminLogin(ctx context.Context, in LoginInput) (auth.Pair, error) {
	if err := validateLogin(&in); err != nil {
		return auth.Pair{}, err
	}
	u, err := s.authenticate(ctx, nil, in)
	if err != nil {
		return auth.Pair{}, err
	}
	if !u.IsSuperuser {
		return auth.Pair{}, ErrNotSuperuser
	}
	return s.tokens.Issue(identityOf(u))
}

// Refresh exchanges a refresh token for a new access token as long as the
// account still exists.
func (s *Service) Refresh(ctx context.Context, raw string) (string, error) {
	claims, err := s.tokens.Parse(raw, auth.TokenRefresh)
	if err != nil {
		return "", err
	}
	uid, _ := claims.UserID()
	if _, err := s.repo.GetByID(ctx, uid); err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", auth.ErrInvalidToken
		}
		return "", err
	}
	return s.tokens.Refresh(raw)
}

func identityOf(u *User) auth.Identity {
	return auth.Identity{
		UserID:        u.ID,
		TenantID:      u.OwnerTenant(),
		Email:         u.Email,
		IsTenantAdmin: u.IsTenantAdmin,
		IsSuperuser:   u.IsSuperuser,
	}
}

// Profile returns the caller's own account.
func (s *Service) Profile(ctx context.Context, scope access.Scope) (*User, error) {
	return s.repo.GetByID(ctx, scope.Principal.UserID)
}

// Get returns any user of the caller's tenant.
func (s *Service) Get(ctx context.Context, scope access.Scope, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.AuthorizeTenant(scope.Principal, u) || u.OwnerTenant() != scope.TenantID {
		return nil, ErrNotFound
	}
	return u, nil
}

// fetch loads id and applies the ownership policy: admins manage every
// user of their tenant, others only themselves.
func (s *Service) fetch(ctx context.Context, scope access.Scope, id int64, a access.Action) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.OwnerTenant() != scope.TenantID || !access.Authorize(scope.Principal, u, a) {
		s.logger.Debug().Str("tenant_id", scope.TenantID).Int64("user_id", id).Str("action", string(a)).Msg("user access denied")
		return nil, ErrNotFound
	}
	return u, nil
}

func (s *Service) Update(ctx context.Context, scope access.Scope, id int64, in UpdateInput) (*User, error) {
	u, err := s.fetch(ctx, scope, id, access.ActionUpdate)
	if err != nil {
		return nil, err
	}

	var v record.Validator
	if in.Email != nil {
		u.Email = strings.TrimSpace(*in.Email)
		v.Required("email", u.Email)
		v.Email("email", u.Email)
	}
	if in.Username != nil {
		u.Username = strings.TrimSpace(*in.Username)
		v.Required("username", u.Username)
		v.MaxLen("username", u.Username, 150)
	}
	if in.Phone != nil {
		u.Phone = *in.Phone
		v.Phone("phone", u.Phone)
	}
	admin := scope.Principal.IsTenantAdmin
	if in.IsTenantAdmin != nil {
		v.Check(admin, "is_tenant_admin", "Only tenant admins may change this field.")
		u.IsTenantAdmin = *in.IsTenantAdmin
	}
	if in.IsStaff != nil {
		v.Check(admin, "is_staff", "Only tenant admins may change this field.")
		u.IsStaff = *in.IsStaff
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, u); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			verr := &record.ValidationError{}
			verr.Add("email", "User with this email is already registered for this tenant.")
			return nil, verr
		}
		return nil, err
	}
	s.logger.Info().Str("tenant_id", scope.TenantID).Int64("user_id", id).Int64("by", scope.Principal.UserID).Msg("user updated")
	return u, nil
}

func (s *Service) Delete(ctx context.Context, scope access.Scope, id int64) error {
	if _, err := s.fetch(ctx, scope, id, access.ActionDelete); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("tenant_id", scope.TenantID).Int64("user_id", id).Int64("by", scope.Principal.UserID).Msg("user deleted")
	return nil
}

func (s *Service) ListTenant(ctx context.Context, tenantID string, limit, offset int) ([]*User, int, error) {
	return s.repo.ListByTenant(ctx, tenantID, limit, offset)
}

func (s *Service) ListAll(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.repo.List(ctx, limit, offset)
}
