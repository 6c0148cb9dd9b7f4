// Package record implements tenant-scoped storage and CRUD for hospital
// resources. Every resource shares one shape: a system-assigned id, the
// owning tenant, the creating user and a domain payload T.
package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Payload is the domain part of a record.
type Payload interface {
	Validate() error
}

// Record is a stored row of kind T.
type Record[T any] struct {
	ID        int64
	TenantID  string
	CreatedBy *int64
	Data      T
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r *Record[T]) OwnerTenant() string { return r.TenantID }
func (r *Record[T]) Owner() *int64       { return r.CreatedBy }

// MarshalJSON flattens the payload next to the system columns.
func (r Record[T]) MarshalJSON() ([]byte, error) {
	fields, err := fieldsOf(r.Data)
	if err != nil {
		return nil, err
	}
	put := func(key string, v any) error {
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		fields[key] = raw
		return nil
	}
	if err := put("id", r.ID); err != nil {
		return nil, err
	}
	if err := put("tenant_id", r.TenantID); err != nil {
		return nil, err
	}
	if err := put("created_by", r.CreatedBy); err != nil {
		return nil, err
	}
	if err := put("created_at", r.CreatedAt); err != nil {
		return nil, err
	}
	if err := put("updated_at", r.UpdatedAt); err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

// reservedKeys are never taken from client input.
var reservedKeys = []string{"id", "tenant", "tenant_id", "user", "created_by", "created_at", "updated_at"}

func stripReserved(fields map[string]json.RawMessage) {
	for _, k := range reservedKeys {
		delete(fields, k)
	}
}

// fieldsOf returns the top-level JSON members of v.
func fieldsOf(v any) (map[string]json.RawMessage, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// decodeObject parses a request body into its top-level members. An empty
// body is an empty object.
func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	fields := map[string]json.RawMessage{}
	if len(bytes.TrimSpace(body)) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fieldError(NonFieldErrors, "Invalid data. Expected a dictionary.")
	}
	if fields == nil {
		return map[string]json.RawMessage{}, nil
	}
	return fields, nil
}

// decodeInto unmarshals fields onto dst, leaving members absent from
// fields untouched.
func decodeInto[T any](fields map[string]json.RawMessage, dst *T) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) && te.Field != "" {
			return fieldError(te.Field, "Incorrect type. Expected "+te.Type.String()+".")
		}
		if verr := memberErrors[T](fields); verr != nil {
			return verr
		}
		return fieldError(NonFieldErrors, err.Error())
	}
	return nil
}

// memberErrors decodes each member on its own so that errors raised by
// custom unmarshalers are reported against the member that caused them.
func memberErrors[T any](fields map[string]json.RawMessage) error {
	verr := &ValidationError{Fields: map[string][]string{}}
	for key, raw := range fields {
		one, err := json.Marshal(map[string]json.RawMessage{key: raw})
		if err != nil {
			continue
		}
		var probe T
		if err := json.Unmarshal(one, &probe); err != nil {
			var te *json.UnmarshalTypeError
			if errors.As(err, &te) {
				verr.Fields[key] = append(verr.Fields[key], "Incorrect type. Expected "+te.Type.String()+".")
				continue
			}
			verr.Fields[key] = append(verr.Fields[key], err.Error())
		}
	}
	if len(verr.Fields) == 0 {
		return nil
	}
	return verr
}

// textValue renders a JSON member the way PostgreSQL's ->> operator does.
func textValue(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(raw, &str); err == nil {
			return str
		}
	}
	return s
}
