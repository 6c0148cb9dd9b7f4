package tenant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hospitalhq/hms/internal/domain/user"
	"github.com/hospitalhq/hms/internal/platform/db"
	"github.com/hospitalhq/hms/internal/platform/record"
)

// Registration is the outcome of a self-service tenant signup.
type Registration struct {
	Tenant *Tenant
	Domain *Domain
	Admin  *user.User
}

type invalidator interface {
	Invalidate()
}

type Service struct {
	repo       Repository
	users      *user.Service
	tx         record.TxRunner
	cache      invalidator
	baseDomain string
	logger     zerolog.Logger
}

// NewService wires tenant management. cache may be nil.
func NewService(repo Repository, users *user.Service, tx record.TxRunner, cache invalidator, baseDomain string, logger zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		users:      users,
		tx:         tx,
		cache:      cache,
		baseDomain: strings.ToLower(strings.TrimSpace(baseDomain)),
		logger:     logger.With().Str("component", "tenant").Logger(),
	}
}

func (s *Service) invalidate() {
	if s.cache != nil {
		s.cache.Invalidate()
	}
}

// URL returns the address of a tenant's primary domain.
func (s *Service) URL(d *Domain) string {
	return "http://" + d.Domain
}

func validateTenantID(v *record.Validator, field, id string) {
	v.Required(field, id)
	v.MaxLen(field, id, 100)
	if id != "" {
		v.Check(db.ValidTenantID(id), field, "Enter a valid tenant name consisting of letters, numbers or underscores.")
	}
}

func (s *Service) taken(ctx context.Context, v *record.Validator, field, id string) error {
	if id == "" || !db.ValidTenantID(id) {
		return nil
	}
	exists, err := s.repo.TenantExists(ctx, id)
	if err != nil {
		return err
	}
	v.Check(!exists, field, "Tenant name already taken.")
	return nil
}

// Register creates a tenant, its primary domain and its admin account in
// one transaction.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Registration, error) {
	in.Username = strings.TrimSpace(in.Username)

	var v record.Validator
	validateTenantID(&v, "username", in.Username)
	v.Required("company_name", in.CompanyName)
	v.MaxLen("company_name", in.CompanyName, 100)
	v.MaxLen("address", in.Address, 255)
	v.MaxLen("registration_number", in.RegistrationNumber, 255)
	v.Required("email", in.Email)
	v.Email("email", in.Email)
	v.Required("first_name", in.FirstName)
	v.MaxLen("first_name", in.FirstName, 255)
	v.Required("password", in.Password)
	if err := s.taken(ctx, &v, "username", in.Username); err != nil {
		return nil, fmt.Errorf("check tenant: %w", err)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	reg := &Registration{
		Tenant: &Tenant{
			ID:                 in.Username,
			Name:               in.CompanyName,
			Address:            in.Address,
			RegistrationNumber: in.RegistrationNumber,
		},
		Domain: &Domain{
			Domain:    strings.ToLower(in.Username) + "." + s.baseDomain,
			TenantID:  in.Username,
			IsPrimary: true,
		},
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateTenant(ctx, reg.Tenant); err != nil {
			return err
		}
		if err := s.repo.CreateDomain(ctx, reg.Domain); err != nil {
			return err
		}
		admin, err := s.users.CreateTenantAdmin(ctx, reg.Tenant.ID, user.RegisterInput{
			Email:    in.Email,
			Username: in.FirstName,
			Password: in.Password,
		})
		if err != nil {
			return err
		}
		reg.Admin = admin
		return nil
	})
	switch {
	case errors.Is(err, ErrTenantTaken):
		return nil, takenError("username")
	case errors.Is(err, ErrDomainTaken):
		verr := &record.ValidationError{}
		verr.Add("username", "A domain for this tenant name is already registered.")
		return nil, verr
	case err != nil:
		return nil, err
	}

	s.invalidate()
	s.logger.Info().Str("tenant_id", reg.Tenant.ID).Str("domain", reg.Domain.Domain).Msg("tenant registered")
	return reg, nil
}

func takenError(field string) error {
	verr := &record.ValidationError{}
	verr.Add(field, "Tenant name already taken.")
	return verr
}

func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	if !db.ValidTenantID(id) {
		return false, nil
	}
	return s.repo.TenantExists(ctx, id)
}

func (s *Service) Get(ctx context.Context, id string) (*Tenant, error) {
	return s.repo.GetTenant(ctx, id)
}

// Create adds a tenant without a domain or admin; SaaS administrators
// attach those separately.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Tenant, error) {
	in.SchemaName = strings.TrimSpace(in.SchemaName)

	var v record.Validator
	validateTenantID(&v, "schema_name", in.SchemaName)
	v.Required("name", in.Name)
	v.MaxLen("name", in.Name, 100)
	v.MaxLen("address", in.Address, 255)
	v.MaxLen("registration_number", in.RegistrationNumber, 255)
	if err := v.Err(); err != nil {
		return nil, err
	}

	t := &Tenant{ID: in.SchemaName, Name: in.Name, Address: in.Address, RegistrationNumber: in.RegistrationNumber}
	if err := s.repo.CreateTenant(ctx, t); err != nil {
		if errors.Is(err, ErrTenantTaken) {
			return nil, takenError("schema_name")
		}
		return nil, err
	}
	s.invalidate()
	s.logger.Info().Str("tenant_id", t.ID).Msg("tenant created")
	return t, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Tenant, int, error) {
	return s.repo.ListTenants(ctx, limit, offset)
}

func (s *Service) CreateDomain(ctx context.Context, in DomainInput) (*Domain, error) {
	in.Domain = strings.ToLower(strings.TrimSpace(in.Domain))

	var v record.Validator
	v.Required("domain", in.Domain)
	v.MaxLen("domain", in.Domain, 253)
	v.Check(!strings.ContainsAny(in.Domain, " /:@"), "domain", "Enter a valid hostname.")
	v.Required("tenant", in.TenantID)
	if err := v.Err(); err != nil {
		return nil, err
	}

	d := &Domain{Domain: in.Domain, TenantID: in.TenantID, IsPrimary: in.IsPrimary}
	err := s.repo.CreateDomain(ctx, d)
	switch {
	case errors.Is(err, ErrDomainTaken):
		verr := &record.ValidationError{}
		verr.Add("domain", "domain with this domain already exists.")
		return nil, verr
	case errors.Is(err, ErrUnknownOwner):
		verr := &record.ValidationError{}
		verr.Add("tenant", fmt.Sprintf("Invalid pk \"%s\" - object does not exist.", in.TenantID))
		return nil, verr
	case err != nil:
		return nil, err
	}
	s.invalidate()
	s.logger.Info().Str("tenant_id", d.TenantID).Str("domain", d.Domain).Msg("domain created")
	return d, nil
}

func (s *Service) ListDomains(ctx context.Context, limit, offset int) ([]*Domain, int, error) {
	return s.repo.ListDomains(ctx, limit, offset)
}
