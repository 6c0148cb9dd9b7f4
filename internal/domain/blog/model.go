package blog

import "github.com/hospitalhq/hms/internal/platform/record"

// Post is a tenant blog entry.
type Post struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (p Post) Validate() error {
	var v record.Validator
	v.Required("title", p.Title)
	v.MaxLen("title", p.Title, 255)
	return v.Err()
}
