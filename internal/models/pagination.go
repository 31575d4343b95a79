package models

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page            int  `json:"page"`
	Limit           int  `json:"limit"`
	TotalCount      int  `json:"total_count"`
	TotalPages      int  `json:"total_pages"`
	HasNextPage     bool `json:"has_next_page"`
	HasPreviousPage bool `json:"has_previous_page"`
}

const (
	defaultPage  = 1
	defaultLimit = 10
)

// NormalizePage returns a valid page number, defaulting when out of range.
func NormalizePage(page int) int {
	if page < 1 {
		return defaultPage
	}
	return page
}

// NormalizeLimit returns a valid page size, defaulting when out of range.
func NormalizeLimit(limit int) int {
	if limit < 1 {
		return defaultLimit
	}
	return limit
}

// NewPagination builds pagination metadata. Invalid page/limit values fall
// back to defaults rather than failing; totalPages = ceil(total/limit).
func NewPagination(page, limit, totalCount int) *Pagination {
	page = NormalizePage(page)
	limit = NormalizeLimit(limit)

	totalPages := 0
	if totalCount > 0 {
		totalPages = (totalCount + limit - 1) / limit
	}

	return &Pagination{
		Page:            page,
		Limit:           limit,
		TotalCount:      totalCount,
		TotalPages:      totalPages,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}
}
