package leave

import "github.com/hospitalhq/hms/internal/platform/record"

// Type is a kind of leave with its yearly allowance in days.
type Type struct {
	Name        string `json:"name"`
	Days        int    `json:"days"`
	Description string `json:"description"`
}

func (t Type) Validate() error {
	var v record.Validator
	v.Required("name", t.Name)
	v.MaxLen("name", t.Name, 100)
	v.NonNegativeInt("days", t.Days)
	return v.Err()
}

var Statuses = record.Choices{"Pending", "Approved", "Rejected"}

// Request is an employee's application for leave.
type Request struct {
	Employee  *int64      `json:"employee"`
	LeaveType *int64      `json:"leave_type"`
	StartDate record.Date `json:"start_date"`
	EndDate   record.Date `json:"end_date"`
	Reason    string      `json:"reason"`
	Status    string      `json:"status"`
}

func (r Request) Validate() error {
	var v record.Validator
	v.RequiredRef("employee", r.Employee)
	v.RequiredRef("leave_type", r.LeaveType)
	v.RequiredDate("start_date", r.StartDate)
	v.RequiredDate("end_date", r.EndDate)
	if !r.StartDate.IsZero() && !r.EndDate.IsZero() {
		v.Check(!r.EndDate.Before(r.StartDate.Time), "end_date", "End date must not be before start date.")
	}
	v.OneOf("status", r.Status, Statuses)
	return v.Err()
}

// Days returns the number of calendar days the request covers.
func (r Request) Days() int {
	if r.StartDate.IsZero() || r.EndDate.IsZero() || r.EndDate.Before(r.StartDate.Time) {
		return 0
	}
	return int(r.EndDate.Sub(r.StartDate.Time).Hours()/24) + 1
}
