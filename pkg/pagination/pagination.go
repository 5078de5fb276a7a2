package pagination

import (
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/JaimeStill/stark/pkg/query"
)

// SortFields decodes from either "clinic,-startDate" or a JSON array of
// query.SortField objects.
type SortFields []query.SortField

func (s *SortFields) UnmarshalJSON(data []byte) error {
	var raw string
	if json.Unmarshal(data, &raw) == nil {
		*s = query.ParseSortFields(raw)
		return nil
	}
	return json.Unmarshal(data, (*[]query.SortField)(s))
}

// PageRequest is a 1-based page with optional free-text search and ordering.
type PageRequest struct {
	Page     int        `json:"page"`
	PageSize int        `json:"pageSize"`
	Search   *string    `json:"search,omitempty"`
	Sort     SortFields `json:"sort,omitempty"`
}

// Normalize clamps Page to at least 1 and PageSize into [1, MaxPageSize],
// using DefaultPageSize when none was given.
func (r *PageRequest) Normalize(cfg Config) {
	r.Page = max(r.Page, 1)
	if r.PageSize < 1 {
		r.PageSize = cfg.DefaultPageSize
	}
	r.PageSize = min(r.PageSize, cfg.MaxPageSize)
}

func (r *PageRequest) Offset() int {
	return (r.Page - 1) * r.PageSize
}

// PageRequestFromQuery reads page, pageSize (or page_size), search and
// sort from a query string and normalizes the result.
func PageRequestFromQuery(values url.Values, cfg Config) PageRequest {
	var req PageRequest

	req.Page, _ = strconv.Atoi(values.Get("page"))
	for _, key := range []string{"pageSize", "page_size"} {
		if v := values.Get(key); v != "" {
			req.PageSize, _ = strconv.Atoi(v)
			break
		}
	}
	if s := values.Get("search"); s != "" {
		req.Search = &s
	}
	req.Sort = query.ParseSortFields(values.Get("sort"))

	req.Normalize(cfg)
	return req
}

// PageResult is one page of T. TotalPages is at least 1 and Data is never
// null on the wire.
type PageResult[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

func NewPageResult[T any](data []T, total, page, pageSize int) PageResult[T] {
	if data == nil {
		data = []T{}
	}
	pages := 1
	if pageSize > 0 && total > 0 {
		pages = (total + pageSize - 1) / pageSize
	}
	return PageResult[T]{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: pages,
	}
}
