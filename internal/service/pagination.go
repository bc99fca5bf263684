package service

import (
	"math"

	"tasktracker/internal/repository"
)

const (
	DefaultTaskPerPage   = 10
	DefaultMemberPerPage = 20
	MaxPerPage           = 100
	// MaxPage keeps the row offset within int32 for any per-page value.
	MaxPage = math.MaxInt32 / MaxPerPage
)

// PageRequest is the caller's raw page choice; zero values select defaults.
type PageRequest struct {
	Page    int
	PerPage int
}

type Pagination struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	TotalPages  int   `json:"total_pages"`
	TotalCount  int64 `json:"total_count"`
}

func (p PageRequest) normalize(defaultPerPage int) PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.PerPage <= 0 {
		p.PerPage = defaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

func (p PageRequest) query() repository.PageQuery {
	return repository.PageQuery{Offset: (p.Page - 1) * p.PerPage, Limit: p.PerPage}
}

// paginate expects a normalized request.
func paginate(p PageRequest, total int64) Pagination {
	per := int64(p.PerPage)
	return Pagination{
		CurrentPage: p.Page,
		PerPage:     p.PerPage,
		TotalPages:  int((total + per - 1) / per),
		TotalCount:  total,
	}
}
