package utils

import (
	"strconv"

	"github.com/agencydesk/agency-api/internal/constants"
	"github.com/gin-gonic/gin"
)

// PaginationParams holds skip/limit parameters.
type PaginationParams struct {
	Skip  int
	Limit int
}

// PaginationResponse is the pagination envelope in list responses.
type PaginationResponse struct {
	Skip  int   `json:"skip"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// GetPaginationParams extracts and clamps skip/limit query parameters.
func GetPaginationParams(c *gin.Context) PaginationParams {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(constants.DefaultPageSize)))

	if skip < 0 {
		skip = 0
	}
	if limit < 1 || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}

	return PaginationParams{Skip: skip, Limit: limit}
}
