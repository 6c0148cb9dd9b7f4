package staff

import "github.com/hospitalhq/hms/internal/platform/record"

// Role is a job title such as "Doctor" or "Nurse".
type Role struct {
	Name string `json:"name"`
}

func (r Role) Validate() error {
	var v record.Validator
	v.Required("name", r.Name)
	v.MaxLen("name", r.Name, 255)
	return v.Err()
}

// Employee is a member of staff. Appointments, bills and visits point at
// employees as their doctor.
type Employee struct {
	Role          *int64      `json:"role"`
	Name          string      `json:"name"`
	Email         string      `json:"email"`
	Phone         string      `json:"phone"`
	Address       string      `json:"address"`
	DateOfJoining record.Date `json:"date_of_joining"`
}

func (e Employee) Validate() error {
	var v record.Validator
	v.Required("name", e.Name)
	v.MaxLen("name", e.Name, 255)
	v.Required("email", e.Email)
	v.Email("email", e.Email)
	v.MaxLen("phone", e.Phone, 15)
	v.Phone("phone", e.Phone)
	v.RequiredDate("date_of_joining", e.DateOfJoining)
	return v.Err()
}
