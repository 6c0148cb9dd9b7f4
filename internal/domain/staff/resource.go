// Package staff serves roles and employees.
package staff

import (
	"github.com/labstack/echo/v4"

	"github.com/hospitalhq/hms/internal/domain/common"
	"github.com/hospitalhq/hms/internal/platform/record"
)

const RoleKind = "roles"

func RoleDefinition() record.Definition[Role] {
	return record.Definition[Role]{
		Kind:   RoleKind,
		Table:  "staff_roles",
		Title:  "Role",
		Unique: []string{"name"},
	}
}

// EmployeeDefinition makes single employees readable and editable by any
// member of the tenant; staff records are shared.
func EmployeeDefinition() record.Definition[Employee] {
	return record.Definition[Employee]{
		Kind:    common.EmployeeKind,
		Table:   "staff_employees",
		Title:   "Employee",
		Item:    record.ItemTenantWide,
		Unique:  []string{"email"},
		Filters: map[string]string{"role": "role"},
		References: []record.Reference[Employee]{
			record.Ref("role", RoleKind, func(e Employee) *int64 { return e.Role }),
		},
	}
}

func Mount(b record.Backend, read, write *echo.Group) {
	record.Mount(b, RoleDefinition(), read, write)
	record.Mount(b, EmployeeDefinition(), read, write)
}
