// Package handlers contains the HTTP endpoint implementations.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ledgerpost/internal/core/apperror"
	"ledgerpost/internal/core/id"
)

// pathID parses a UUID path parameter, failing with a validation error.
func pathID(c *gin.Context, name string) (id.ID, bool) {
	parsed, err := id.Parse(c.Param(name))
	if err != nil {
		fail(c, apperror.NewValidation("invalid id").WithDetail("param", name))
		return id.Nil(), false
	}
	return parsed, true
}

// bindJSON binds the request body, failing with a validation error.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, apperror.NewValidation("invalid request body").WithCause(err))
		return false
	}
	return true
}

// fail records the error for the ErrorHandler middleware to render.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func ok(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func created(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// queryInt reads an integer query parameter with a default.
func queryInt(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	var v int
	for _, r := range raw {
		if r < '0' || r > '9' {
			return def
		}
		v = v*10 + int(r-'0')
	}
	return v
}
