package record

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hospitalhq/hms/internal/platform/access"
	"github.com/hospitalhq/hms/pkg/pagination"
)

// Service implements CRUD for one kind on behalf of a request scope.
type Service[T Payload] struct {
	def    Definition[T]
	store  Store[T]
	reg    *Registry
	tx     TxRunner
	logger zerolog.Logger
}

// NewService registers store with reg and returns the kind's service.
func NewService[T Payload](def Definition[T], store Store[T], reg *Registry, tx TxRunner, logger zerolog.Logger) *Service[T] {
	Register(reg, def, store)
	return &Service[T]{
		def:    def,
		store:  store,
		reg:    reg,
		tx:     tx,
		logger: logger.With().Str("kind", def.Kind).Logger(),
	}
}

func (s *Service[T]) Definition() Definition[T] { return s.def }

// List returns the kind's list view: tenant-wide or owned by the caller,
// depending on the definition. filters maps payload fields to values.
func (s *Service[T]) List(ctx context.Context, scope access.Scope, filters map[string]string, page pagination.Params) ([]*Record[T], int, error) {
	if err := s.member(scope); err != nil {
		return nil, 0, err
	}
	f := Filter{Fields: filters, Limit: page.Limit, Offset: page.Offset}
	if s.def.List == ListOwned {
		if !scope.Authenticated() {
			return nil, 0, nil
		}
		f.CreatedBy = scope.UserID()
	}
	return s.list(ctx, scope, f)
}

// ListAll returns every row of the tenant.
func (s *Service[T]) ListAll(ctx context.Context, scope access.Scope, filters map[string]string, page pagination.Params) ([]*Record[T], int, error) {
	if err := s.member(scope); err != nil {
		return nil, 0, err
	}
	return s.list(ctx, scope, Filter{Fields: filters, Limit: page.Limit, Offset: page.Offset})
}

func (s *Service[T]) list(ctx context.Context, scope access.Scope, f Filter) ([]*Record[T], int, error) {
	items, total, err := s.store.List(ctx, scope.TenantID, f)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", s.def.Kind, err)
	}
	return items, total, nil
}

// member rejects authenticated principals whose tenant differs from the
// scope's. Single-record operations get the same rule from fetch.
func (s *Service[T]) member(scope access.Scope) error {
	if !scope.Authenticated() || scope.Principal.TenantID == scope.TenantID {
		return nil
	}
	s.logger.Warn().
		Str("tenant_id", scope.TenantID).
		Str("principal_tenant", scope.Principal.TenantID).
		Int64("user_id", scope.Principal.UserID).
		Msg("cross-tenant access rejected")
	return ErrForbidden
}

// fetch loads id inside the tenant and applies the item access rule.
// Denials are reported as ErrNotFound so other users' records stay
// invisible.
func (s *Service[T]) fetch(ctx context.Context, scope access.Scope, id int64, action access.Action) (*Record[T], error) {
	rec, err := s.store.Get(ctx, scope.TenantID, id)
	if err != nil {
		return nil, err
	}

	var d access.Decision
	switch s.def.Item {
	case ItemTenantWide:
		d = access.AuthorizeTenant(scope.Principal, rec)
	default:
		d = access.Authorize(scope.Principal, rec, action)
	}
	if d == access.Deny {
		s.logger.Debug().
			Str("tenant_id", scope.TenantID).
			Int64("user_id", scope.Principal.UserID).
			Int64("id", id).
			Str("action", string(action)).
			Msg("access denied")
		return nil, ErrNotFound
	}
	return rec, nil
}

func (s *Service[T]) Get(ctx context.Context, scope access.Scope, id int64) (*Record[T], error) {
	return s.fetch(ctx, scope, id, access.ActionRead)
}

// Create stores a new record from a JSON object. Tenant and creator come
// from scope; client supplied values for them are dropped.
func (s *Service[T]) Create(ctx context.Context, scope access.Scope, body []byte) (*Record[T], error) {
	if err := s.member(scope); err != nil {
		return nil, err
	}
	fields, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	stripReserved(fields)

	var data T
	if s.def.Defaults != nil {
		s.def.Defaults(&data)
	}
	if err := decodeInto(fields, &data); err != nil {
		return nil, err
	}
	if s.def.Derive != nil {
		s.def.Derive(&data)
	}
	if err := s.validate(ctx, scope.TenantID, data); err != nil {
		return nil, err
	}

	rec := &Record[T]{TenantID: scope.TenantID, CreatedBy: scope.UserID(), Data: data}
	if err := s.store.Create(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("tenant_id", rec.TenantID).
		Int64("id", rec.ID).
		Msg("record created")
	return rec, nil
}

// Update merges a partial JSON object onto the stored payload.
func (s *Service[T]) Update(ctx context.Context, scope access.Scope, id int64, body []byte) (*Record[T], error) {
	patch, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	stripReserved(patch)

	rec, err := s.fetch(ctx, scope, id, access.ActionUpdate)
	if err != nil {
		return nil, err
	}

	fields, err := fieldsOf(rec.Data)
	if err != nil {
		return nil, err
	}
	for _, k := range s.def.Derived {
		delete(fields, k)
	}
	for k, v := range patch {
		fields[k] = v
	}

	var data T
	if err := decodeInto(fields, &data); err != nil {
		return nil, err
	}
	if s.def.Derive != nil {
		s.def.Derive(&data)
	}
	if err := s.validate(ctx, scope.TenantID, data); err != nil {
		return nil, err
	}

	rec.Data = data
	if err := s.store.Update(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("tenant_id", rec.TenantID).
		Int64("id", rec.ID).
		Int("fields", len(patch)).
		Msg("record updated")
	return rec, nil
}

// Delete removes the record and nulls references to it. A second delete
// of the same id fails with ErrNotFound.
func (s *Service[T]) Delete(ctx context.Context, scope access.Scope, id int64) error {
	if _, err := s.fetch(ctx, scope, id, access.ActionDelete); err != nil {
		return err
	}

	var detached int64
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.store.Delete(ctx, scope.TenantID, id); err != nil {
			return err
		}
		n, err := s.reg.Detach(ctx, s.def.Kind, scope.TenantID, id)
		if err != nil {
			return fmt.Errorf("detach references: %w", err)
		}
		detached = n
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().
		Str("tenant_id", scope.TenantID).
		Int64("id", id).
		Int64("detached", detached).
		Msg("record deleted")
	return nil
}

// validate runs payload checks and verifies references point at records
// of the same tenant.
func (s *Service[T]) validate(ctx context.Context, tenantID string, data T) error {
	verr := &ValidationError{}
	if err := data.Validate(); err != nil {
		var ve *ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		verr.merge(ve)
	}

	for _, ref := range s.def.References {
		id := ref.Value(data)
		if id == nil {
			continue
		}
		ok, err := s.reg.Exists(ctx, ref.Target, tenantID, *id)
		if err != nil {
			return fmt.Errorf("check %s reference: %w", ref.Field, err)
		}
		if !ok {
			verr.Add(ref.Field, fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", *id))
		}
	}
	return verr.Err()
}
