package patient

import "github.com/hospitalhq/hms/internal/platform/record"

// Patient is a person registered with the hospital. Every field is optional
// but email and phone are unique within a tenant when given.
type Patient struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (p Patient) Validate() error {
	var v record.Validator
	v.MaxLen("name", p.Name, 255)
	v.Email("email", p.Email)
	v.Phone("phone", p.Phone)
	return v.Err()
}
