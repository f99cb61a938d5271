package api

import (
	"net/http"
	"strconv"

	"commerce-server/internal/handler/httperr"
	"commerce-server/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

// pathID parses a positive int64 path parameter and aborts with 400 otherwise.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		httperr.AbortWithError(c, http.StatusBadRequest, errs.Wrapf(errs.ErrInvalidID, "%s=%q", name, c.Param(name)), "Invalid "+name, nil)
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return false
	}
	return true
}

func bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query", nil)
		return false
	}
	return true
}
