// Package listing implements the shared list-endpoint query surface:
// page/limit pagination, comma-separated sort with a "-" descending prefix,
// and a whitelisted fields projection.
package listing

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/go-querystring/query"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params are the parsed list controls for one request.
type Params struct {
	Page   int
	Limit  int
	Sort   string // raw sort expression as sent by the client
	Fields string // raw fields expression as sent by the client
}

func Parse(r *http.Request) Params {
	p := Params{
		Page:   1,
		Limit:  DefaultLimit,
		Sort:   r.URL.Query().Get("sort"),
		Fields: r.URL.Query().Get("fields"),
	}

	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.Page = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= MaxLimit {
			p.Limit = n
		}
	}
	return p
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// OrderBy translates the sort expression into a SQL ORDER BY clause using
// only whitelisted columns. Unknown fields are dropped; an empty result
// falls back to the provided default.
func (p Params) OrderBy(allowed map[string]string, fallback string) string {
	var clauses []string
	for _, field := range strings.Split(p.Sort, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		dir := "ASC"
		if strings.HasPrefix(field, "-") {
			dir = "DESC"
			field = field[1:]
		}
		col, ok := allowed[field]
		if !ok {
			continue
		}
		clauses = append(clauses, col+" "+dir)
	}
	if len(clauses) == 0 {
		return fallback
	}
	return strings.Join(clauses, ", ")
}

// Project returns the whitelisted subset of the requested fields, or nil
// when no projection was requested.
func (p Params) Project(allowed map[string]bool) []string {
	if p.Fields == "" {
		return nil
	}
	var fields []string
	for _, f := range strings.Split(p.Fields, ",") {
		f = strings.TrimSpace(f)
		if allowed[f] {
			fields = append(fields, f)
		}
	}
	return fields
}

// ProjectItems narrows a slice of items to the given JSON field names.
// With no fields requested the items pass through untouched; otherwise
// each item is reshaped to carry only the requested keys.
func ProjectItems(items interface{}, fields []string) interface{} {
	if len(fields) == 0 {
		return items
	}

	raw, err := json.Marshal(items)
	if err != nil {
		return items
	}
	var rows []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return items
	}

	keep := make(map[string]bool, len(fields))
	for _, f := range fields {
		keep[f] = true
	}

	projected := make([]map[string]json.RawMessage, len(rows))
	for i, row := range rows {
		out := make(map[string]json.RawMessage, len(fields))
		for k, v := range row {
			if keep[k] {
				out[k] = v
			}
		}
		projected[i] = out
	}
	return projected
}

// Meta is the pagination block of a list response.
type Meta struct {
	Total        int     `json:"total"`
	TotalPages   int     `json:"totalPages"`
	CurrentPage  int     `json:"currentPage"`
	ItemsPerPage int     `json:"itemsPerPage"`
	NextPage     *string `json:"nextPage"`
	PrevPage     *string `json:"prevPage"`
}

// pageLink is the canonical query-string shape of pagination URLs.
type pageLink struct {
	Page   int    `url:"page"`
	Limit  int    `url:"limit"`
	Sort   string `url:"sort,omitempty"`
	Fields string `url:"fields,omitempty"`
}

// BuildMeta computes the pagination meta for a list response, including
// absolute next/prev page URLs derived from the current request.
func BuildMeta(r *http.Request, p Params, total int) Meta {
	totalPages := (total + p.Limit - 1) / p.Limit

	m := Meta{
		Total:        total,
		TotalPages:   totalPages,
		CurrentPage:  p.Page,
		ItemsPerPage: p.Limit,
	}
	if p.Page < totalPages {
		m.NextPage = pageURL(r, p, p.Page+1)
	}
	if p.Page > 1 {
		m.PrevPage = pageURL(r, p, p.Page-1)
	}
	return m
}

func pageURL(r *http.Request, p Params, page int) *string {
	v, err := query.Values(pageLink{
		Page:   page,
		Limit:  p.Limit,
		Sort:   p.Sort,
		Fields: p.Fields,
	})
	if err != nil {
		return nil
	}

	// Carry entity-specific filters through unchanged.
	for key, vals := range r.URL.Query() {
		switch key {
		case "page", "limit", "sort", "fields":
			continue
		}
		for _, val := range vals {
			v.Add(key, val)
		}
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	u := scheme + "://" + r.Host + r.URL.Path + "?" + v.Encode()
	return &u
}
