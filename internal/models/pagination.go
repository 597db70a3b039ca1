package models

// Page is the pagination block returned with every list response.
type Page struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// NewPage computes pages as ceil(total/limit).
func NewPage(page, limit int, total int64) Page {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Page{Page: page, Limit: limit, Total: total, Pages: pages}
}

// PageQuery is a normalized page/limit request.
type PageQuery struct {
	Page  int
	Limit int
}

// Offset returns the number of rows to skip.
func (q PageQuery) Offset() int {
	if q.Page <= 1 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}
