// Copyright (c) 2026 Pals. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pagination_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/pals/pkg/pagination"
)

/*
TestParse covers defaults and fallbacks for page and limit.
*/
func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  pagination.Params
	}{
		{"empty", "", pagination.Params{Page: 1, Limit: pagination.DefaultLimit}},
		{"explicit", "page=3&limit=25", pagination.Params{Page: 3, Limit: 25}},
		{"malformed", "page=abc&limit=x", pagination.Params{Page: 1, Limit: pagination.DefaultLimit}},
		{"non_positive", "page=0&limit=-5", pagination.Params{Page: 1, Limit: pagination.DefaultLimit}},
		{"over_max", "limit=500", pagination.Params{Page: 1, Limit: pagination.DefaultLimit}},
		{"at_max", "limit=100", pagination.Params{Page: 1, Limit: pagination.MaxLimit}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, err := url.ParseQuery(tt.query)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, pagination.Parse(query))
		})
	}
}

/*
TestParams_Offset checks the row offset of a page.
*/
func TestParams_Offset(t *testing.T) {
	assert.Equal(t, 0, pagination.Params{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 20, pagination.Params{Page: 3, Limit: 10}.Offset())
}

/*
TestNewMeta verifies page counts and the next-page flag.
*/
func TestNewMeta(t *testing.T) {
	assert.Equal(t, pagination.Meta{Page: 1, Limit: 10, Total: 25, TotalPages: 3, HasNext: true}, pagination.NewMeta(1, 10, 25))
	assert.Equal(t, pagination.Meta{Page: 3, Limit: 10, Total: 25, TotalPages: 3}, pagination.NewMeta(3, 10, 25))
	assert.Equal(t, pagination.Meta{Page: 1, Limit: 10}, pagination.NewMeta(1, 10, 0))
}
