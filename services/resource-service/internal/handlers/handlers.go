package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

func paginationParams(c *gin.Context) (limit, offset int) {
	limit = 50
	offset = 0
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}

func respondError(c *gin.Context, status int, errTag, message string, conflicts []gin.H) {
	body := gin.H{
		"success": false,
		"error":   errTag,
		"message": message,
	}
	if conflicts != nil {
		body["conflicts"] = conflicts
	}
	c.JSON(status, body)
}
