// Copyright (c) 2026 Pals. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination turns "page" and "limit" query parameters into a window
// over a list of pals, and describes that window back to the client.
package pagination

import (
	"net/http"
	"net/url"
	"strconv"
)

const (
	// DefaultLimit is the number of pals shown per page.
	DefaultLimit = 10
	// MaxLimit caps the page size a client may ask for.
	MaxLimit = 100
)

// Params is a 1-indexed page of Limit items.
type Params struct {
	Page  int
	Limit int
}

// Offset is the number of rows before the page.
func (params Params) Offset() int {
	return (params.Page - 1) * params.Limit
}

// Meta describes a page within a result set of Total items.
type Meta struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}

// NewMeta builds the metadata for a page of limit items over total items.
func NewMeta(page, limit, total int) Meta {
	meta := Meta{Page: page, Limit: limit, Total: total}
	if limit > 0 {
		meta.TotalPages = (total + limit - 1) / limit
	}
	meta.HasNext = page < meta.TotalPages
	return meta
}

// FromRequest reads page and limit from the query string.
//
// A missing, malformed or non-positive page falls back to the first page;
// a limit outside 1..MaxLimit falls back to DefaultLimit.
func FromRequest(request *http.Request) Params {
	return Parse(request.URL.Query())
}

// Parse is [FromRequest] over already decoded query values.
func Parse(query url.Values) Params {
	params := Params{
		Page:  positiveInt(query.Get("page"), 1),
		Limit: positiveInt(query.Get("limit"), DefaultLimit),
	}
	if params.Limit > MaxLimit {
		params.Limit = DefaultLimit
	}
	return params
}

func positiveInt(raw string, fallback int) int {
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
