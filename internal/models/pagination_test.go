package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	p := NewPagination(5, 10, 12)
	assert.Equal(t, 5, p.CurrentPage)
	assert.Equal(t, 10, p.PageSize)
	assert.Equal(t, 12, p.TotalItems)
	assert.Equal(t, 2, p.TotalPages)
	assert.False(t, p.HasNextPage)
	assert.True(t, p.HasPreviousPage)
}

func TestNewPaginationFirstPage(t *testing.T) {
	p := NewPagination(1, 15, 40)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNextPage)
	assert.False(t, p.HasPreviousPage)
}

func TestNewPaginationEmpty(t *testing.T) {
	p := NewPagination(1, 15, 0)
	assert.Equal(t, 0, p.TotalPages)
	assert.False(t, p.HasNextPage)
	assert.False(t, p.HasPreviousPage)
}

func TestClampPage(t *testing.T) {
	assert.Equal(t, 1, ClampPage(0))
	assert.Equal(t, 1, ClampPage(-3))
	assert.Equal(t, 7, ClampPage(7))
}

func TestClampPageSize(t *testing.T) {
	assert.Equal(t, 15, ClampPageSize(0, 15))
	assert.Equal(t, 10, ClampPageSize(101, 10))
	assert.Equal(t, 100, ClampPageSize(100, 15))
	assert.Equal(t, 25, ClampPageSize(25, 15))
}
