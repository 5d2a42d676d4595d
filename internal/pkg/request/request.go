// Package request holds small gin helpers for path and query parameters.
package request

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"musicportal/internal/pkg/response"
)

// ID parses a positive int64 path parameter. On failure it writes a 400 and returns false.
func ID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+param)
		return 0, false
	}
	return id, true
}

// Time parses an optional RFC 3339 query parameter. Missing values yield the zero time.
func Time(c *gin.Context, key string) (time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request",
			map[string]string{key: "must be an RFC 3339 timestamp"})
		return time.Time{}, false
	}
	return t, true
}

// Int parses an optional integer query parameter, falling back to def.
func Int(c *gin.Context, key string, def int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil {
		return v
	}
	return def
}

// Bool reports whether a query flag is set to a true value.
func Bool(c *gin.Context, key string) bool {
	v, err := strconv.ParseBool(c.Query(key))
	return err == nil && v
}
