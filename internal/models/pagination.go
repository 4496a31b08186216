package models

// Pagination contains the metadata returned alongside list responses.
type Pagination struct {
	CurrentPage     int  `json:"currentPage"`
	PageSize        int  `json:"pageSize"`
	TotalItems      int  `json:"totalItems"`
	TotalPages      int  `json:"totalPages"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// NewPagination derives the full metadata set from page, size and total.
func NewPagination(page, size, totalItems int) *Pagination {
	totalPages := 0
	if size > 0 {
		totalPages = (totalItems + size - 1) / size
	}
	return &Pagination{
		CurrentPage:     page,
		PageSize:        size,
		TotalItems:      totalItems,
		TotalPages:      totalPages,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}
}

// PagedResponse is the raw shape returned by list endpoints.
type PagedResponse struct {
	Items interface{} `json:"items"`
	*Pagination
}

// ClampPage normalises an out-of-range page to 1.
func ClampPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// ClampPageSize replaces sizes outside [1,100] with the entity default
// instead of rejecting the request.
func ClampPageSize(size, fallback int) int {
	if size < 1 || size > 100 {
		return fallback
	}
	return size
}
