package common

import (
	"net/http"
	"strconv"
)

// MaxPerPage caps list page sizes.
const MaxPerPage = 100

// Page describes one page of a list response.
type Page struct {
	Number  int `json:"page"`
	PerPage int `json:"per_page"`
	Count   int `json:"count"`
}

// Offset returns the number of rows skipped before this page.
func (p Page) Offset() int { return (p.Number - 1) * p.PerPage }

// ParsePage reads page and per_page (or limit) from the query. Invalid values
// fall back to page 1 and defaultPerPage; sizes above MaxPerPage are capped.
func ParsePage(r *http.Request, defaultPerPage int) Page {
	q := r.URL.Query()
	p := Page{Number: 1, PerPage: defaultPerPage}
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 0 {
		p.Number = n
	}
	size := q.Get("per_page")
	if size == "" {
		size = q.Get("limit")
	}
	if n, err := strconv.Atoi(size); err == nil && n > 0 {
		p.PerPage = n
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}
