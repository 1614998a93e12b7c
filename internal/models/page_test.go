package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPage(t *testing.T) {
	cases := []struct {
		name    string
		page    int
		total   int64
		pages   int
		hasPrev bool
		hasNext bool
	}{
		{"empty", 1, 0, 0, false, false},
		{"single page", 1, 5, 1, false, false},
		{"first of three", 1, 11, 3, false, true},
		{"middle", 2, 11, 3, true, true},
		{"last", 3, 11, 3, true, false},
		{"past the end", 7, 11, 3, true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPage[int](nil, tc.page, 5, tc.total)
			assert.NotNil(t, p.Items)
			assert.Equal(t, tc.pages, p.Pages)
			assert.Equal(t, tc.hasPrev, p.HasPrev)
			assert.Equal(t, tc.hasNext, p.HasNext)
			if tc.hasNext {
				assert.Equal(t, tc.page+1, p.NextNum)
			}
			if tc.hasPrev {
				assert.Equal(t, tc.page-1, p.PrevNum)
			}
		})
	}
}
