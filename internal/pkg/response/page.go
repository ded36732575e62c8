package response

// Pagination is the metadata block returned next to a page of items.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewPagination computes the number of pages for the given total.
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: pages,
	}
}

// EmptyIfNil avoids JSON null for empty lists.
func EmptyIfNil[T any](items []T) []T {
	if items == nil {
		return make([]T, 0)
	}
	return items
}
