package params

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// QueryParams carries common list query parameters
type QueryParams struct {
	PageNumber int
	PageSize   int
	Search     string
}

// FromContext extracts pagination params with sane bounds
func FromContext(c echo.Context) QueryParams {
	p := QueryParams{PageNumber: 1, PageSize: 20}

	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
		p.PageNumber = v
	}
	if v, err := strconv.Atoi(c.QueryParam("page_size")); err == nil && v > 0 {
		if v > 100 {
			v = 100
		}
		p.PageSize = v
	}
	p.Search = c.QueryParam("search")

	return p
}
