// Package leave serves leave types and leave requests.
package leave

import (
	"github.com/labstack/echo/v4"

	"github.com/hospitalhq/hms/internal/domain/common"
	"github.com/hospitalhq/hms/internal/platform/record"
)

const TypeKind = "leave-type"

func TypeDefinition() record.Definition[Type] {
	return record.Definition[Type]{
		Kind:   TypeKind,
		Table:  "leave_types",
		Title:  "Leave Type",
		Unique: []string{"name"},
	}
}

func RequestDefinition() record.Definition[Request] {
	return record.Definition[Request]{
		Kind:    "leave-request",
		Table:   "leave_requests",
		Title:   "Leave Request",
		Filters: map[string]string{"employee": "employee", "status": "status"},
		References: []record.Reference[Request]{
			record.Ref("employee", common.EmployeeKind, func(r Request) *int64 { return r.Employee }),
			record.Ref("leave_type", TypeKind, func(r Request) *int64 { return r.LeaveType }),
		},
		Defaults: func(r *Request) { r.Status = "Pending" },
	}
}

func Mount(b record.Backend, read, write *echo.Group) {
	record.Mount(b, TypeDefinition(), read, write)
	record.Mount(b, RequestDefinition(), read, write)
}
