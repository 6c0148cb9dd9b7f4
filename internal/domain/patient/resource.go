// Package patient serves the patient register. Members see the patients
// they registered; /all-patient lists the whole tenant.
package patient

import (
	"github.com/labstack/echo/v4"

	"github.com/hospitalhq/hms/internal/domain/common"
	"github.com/hospitalhq/hms/internal/platform/record"
)

func Definition() record.Definition[Patient] {
	return record.Definition[Patient]{
		Kind:    common.PatientKind,
		Table:   "patients",
		Title:   "Patient",
		List:    record.ListOwned,
		Item:    record.ItemOwnerGated,
		AllPath: "/all-patient",
		Unique:  []string{"email", "phone"},
	}
}

func Mount(b record.Backend, read, write *echo.Group) {
	record.Mount(b, Definition(), read, write)
}
