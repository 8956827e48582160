package model

import "strings"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageParams selects one page of circles. Current is 1-based.
type PageParams struct {
	Current  int    `json:"current"`
	PageSize int    `json:"pageSize"`
	Name     string `json:"name,omitempty"`
	Desc     string `json:"desc,omitempty"`
}

// Normalize clamps paging to sane bounds and trims the keyword filters.
func (p PageParams) Normalize() PageParams {
	if p.Current <= 0 {
		p.Current = 1
	}
	switch {
	case p.PageSize > MaxPageSize:
		p.PageSize = MaxPageSize
	case p.PageSize <= 0:
		p.PageSize = DefaultPageSize
	}
	p.Name = strings.TrimSpace(p.Name)
	p.Desc = strings.TrimSpace(p.Desc)
	return p
}

// Offset is the number of records before the page.
func (p PageParams) Offset() int {
	p = p.Normalize()
	return (p.Current - 1) * p.PageSize
}

// Page is one page of results plus the total count across all pages.
type Page struct {
	Data    []Circle `json:"data"`
	Total   int      `json:"total"`
	Success bool     `json:"success"`
}

// Pages is the number of pages needed for total records at the given size.
func Pages(total, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}
