// Package blog serves the tenant blog. Authors list their own posts;
// /all-blogs lists every post of the tenant.
package blog

import (
	"github.com/labstack/echo/v4"

	"github.com/hospitalhq/hms/internal/platform/record"
)

func Definition() record.Definition[Post] {
	return record.Definition[Post]{
		Kind:    "blog",
		Table:   "blogs",
		Title:   "Blog",
		List:    record.ListOwned,
		AllPath: "/all-blogs",
	}
}

func Mount(b record.Backend, read, write *echo.Group) {
	record.Mount(b, Definition(), read, write)
}
