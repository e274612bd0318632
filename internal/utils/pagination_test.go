package utils

import (
	"math"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func contextWithQuery(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/tasks?"+query, nil)
	return c
}

func TestGetPaginationParams(t *testing.T) {
	_, ok := GetPaginationParams(contextWithQuery(""))
	assert.False(t, ok, "no page means unpaged")

	params, ok := GetPaginationParams(contextWithQuery("page=3&limit=10"))
	assert.True(t, ok)
	assert.Equal(t, PaginationParams{Page: 3, Limit: 10, Offset: 20}, params)

	params, ok = GetPaginationParams(contextWithQuery("page=0&limit=1000"))
	assert.True(t, ok)
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 20, params.Limit)
}

func TestGetPaginationParams_HugePageIsCapped(t *testing.T) {
	params, ok := GetPaginationParams(contextWithQuery("page=9223372036854775807&limit=100"))
	assert.True(t, ok)
	assert.Equal(t, math.MaxInt32/100, params.Page)
	assert.Equal(t, (params.Page-1)*100, params.Offset)
	assert.Positive(t, params.Offset)
	assert.LessOrEqual(t, params.Offset, math.MaxInt32)
}

func TestNewPaginationResponse(t *testing.T) {
	resp := NewPaginationResponse(PaginationParams{Page: 1, Limit: 20}, 41)
	assert.Equal(t, 3, resp.TotalPages)
	assert.EqualValues(t, 41, resp.Total)

	resp = NewPaginationResponse(PaginationParams{Page: 1, Limit: 20}, 0)
	assert.Equal(t, 0, resp.TotalPages)
}
