package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageNormalize(t *testing.T) {
	assert.Equal(t, Page{Page: 1, Limit: DefaultPageLimit}, Page{}.Normalize())
	assert.Equal(t, Page{Page: 1, Limit: MaxPageLimit}, Page{Page: -3, Limit: 1000}.Normalize())
	assert.Equal(t, 20, Page{Page: 3, Limit: 10}.Offset())
}

func TestNewPagination(t *testing.T) {
	assert.Equal(t, Pagination{Page: 1, Limit: 10, Total: 0, Pages: 0}, NewPagination(Page{Page: 1, Limit: 10}, 0))
	assert.Equal(t, Pagination{Page: 2, Limit: 10, Total: 21, Pages: 3}, NewPagination(Page{Page: 2, Limit: 10}, 21))
}

func TestJSONListContainsEscapes(t *testing.T) {
	cond, pattern := jsonListContains("skills", "50%_Off")
	assert.Equal(t, "LOWER(CAST(skills AS TEXT)) LIKE ? ESCAPE '\\'", cond)
	assert.Equal(t, `%"50\%\_off"%`, pattern)
}

func TestCleanList(t *testing.T) {
	assert.Equal(t, []string{"Go", "Sales"}, cleanList([]string{" Go", "", "go ", "Sales"}))
	assert.Empty(t, cleanList(nil))
}
