package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultLimit = 100
	MaxLimit     = 500
)

// Params is a window over a list endpoint.
type Params struct {
	Limit  int
	Offset int
}

// FromContext reads ?limit= and either ?offset= or a 1-based ?page=.
// Offset wins when both are present. Bad values fall back to the first
// page of DefaultLimit rows.
func FromContext(c echo.Context) Params {
	p := Params{Limit: positive(c.QueryParam("limit"), DefaultLimit)}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}

	switch {
	case c.QueryParam("offset") != "":
		p.Offset = positive(c.QueryParam("offset"), 0)
	case c.QueryParam("page") != "":
		p.Offset = (positive(c.QueryParam("page"), 1) - 1) * p.Limit
	}
	return p
}

func positive(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// Response is the list envelope. Data always holds the rows so clients
// that only read {"data": [...]} keep working.
type Response[T any] struct {
	Data   []T  `json:"data"`
	Total  int  `json:"total"`
	Limit  int  `json:"limit"`
	Offset int  `json:"offset"`
	Next   *int `json:"next"`
}

func NewResponse[T any](data []T, total int, p Params) *Response[T] {
	if data == nil {
		data = []T{}
	}
	resp := &Response[T]{Data: data, Total: total, Limit: p.Limit, Offset: p.Offset}
	if next := p.Offset + p.Limit; next < total {
		resp.Next = &next
	}
	return resp
}
