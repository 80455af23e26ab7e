package pagination

import (
	"math"

	"github.com/gofiber/fiber/v2"
)

// Metadata describes where a page sits in the full result set
type Metadata struct {
	TotalCount  int64 `json:"totalCount"`
	PageSize    int   `json:"pageSize"`
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	HasPrevious bool  `json:"hasPrevious"`
	HasNext     bool  `json:"hasNext"`
}

// GetLimitOffset reads limit/offset query parameters. limit is clamped to
// [1, maxLimit] and offset to >= 0.
func GetLimitOffset(c *fiber.Ctx, defaultLimit, maxLimit int) (limit int, offset int) {
	limit = c.QueryInt("limit", defaultLimit)
	offset = c.QueryInt("offset", 0)

	if limit < 1 {
		limit = 1
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}

	return limit, offset
}

// CalculateWithOffset calculates pagination metadata when using offset/limit style parameters
func CalculateWithOffset(totalCount int64, offset, limit int) Metadata {
	if limit < 1 {
		limit = 1
	}
	currentPage := (offset / limit) + 1

	totalPages := int(math.Ceil(float64(totalCount) / float64(limit)))
	if totalPages < 0 {
		totalPages = 0
	}

	hasPrevious := offset > 0
	hasNext := int64(offset+limit) < totalCount

	if totalCount == 0 {
		hasPrevious = false
		hasNext = false
		currentPage = 1
	}

	return Metadata{
		TotalCount:  totalCount,
		PageSize:    limit,
		CurrentPage: currentPage,
		TotalPages:  totalPages,
		HasPrevious: hasPrevious,
		HasNext:     hasNext,
	}
}
