// Copyright (c) 2026 Pixagen. All rights reserved.
// Author: dev@pixagen.app

// Package pagination standardizes page-based navigation for API list
// endpoints: how "page" and "limit" are read from the query string, and the
// metadata block that accompanies every paginated response.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	// DefaultLimit is the page size when the client does not specify one.
	DefaultLimit = 20
	// MaxLimit caps the page size a client may request.
	MaxLimit = 100
	// DefaultPage is the first page (pages are 1-indexed).
	DefaultPage = 1
)

// Params holds the sanitized page and limit for one list request.
type Params struct {
	Page  int
	Limit int
}

// Offset returns the SQL OFFSET for the page.
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Meta is the metadata block attached to paginated responses.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewMeta builds the metadata for a page, deriving TotalPages by ceiling
// division of total over limit.
func NewMeta(page, limit, total int) Meta {
	meta := Meta{Page: page, Limit: limit, Total: total}
	if limit > 0 {
		meta.TotalPages = (total + limit - 1) / limit
	}
	return meta
}

// FromRequest reads "page" and "limit" from the query string.
//
// Missing, non-numeric, or out-of-range values fall back to the defaults,
// so handlers always receive usable params and never validate these
// themselves.
func FromRequest(r *http.Request) Params {
	params := Params{Page: DefaultPage, Limit: DefaultLimit}

	if page, ok := intQuery(r, "page"); ok && page >= 1 {
		params.Page = page
	}
	if limit, ok := intQuery(r, "limit"); ok && limit >= 1 && limit <= MaxLimit {
		params.Limit = limit
	}

	return params
}

// intQuery parses one integer query parameter, reporting whether it was
// present and well-formed.
func intQuery(r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return value, true
}
