package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-reservation/services"
	"github.com/yeremiapane/restaurant-reservation/utils"
)

var (
	ErrNoPermission = errors.New("you do not have permission to access this reservation")
	errInternal     = errors.New("internal server error")
)

// respondServiceError maps a domain error to its HTTP status. Conflicts are
// user-correctable and share 400 with validation failures; the body tells them
// apart. Storage failures are logged and answered with an opaque message.
func respondServiceError(c *gin.Context, err error) {
	var (
		ve *services.ValidationError
		ce *services.ConflictError
		ne *services.NotFoundError
	)

	switch {
	case errors.As(err, &ve):
		utils.RespondErrorData(c, http.StatusBadRequest, ve, gin.H{"fields": ve.Fields})
	case errors.As(err, &ce):
		var data interface{}
		if len(ce.Tables) > 0 {
			data = gin.H{"conflictingTables": ce.Tables}
		}
		utils.RespondErrorData(c, http.StatusBadRequest, ce, data)
	case errors.As(err, &ne):
		utils.RespondError(c, http.StatusNotFound, ne)
	default:
		_ = c.Error(err)
		utils.ErrorLogger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		utils.RespondError(c, http.StatusInternalServerError, errInternal)
	}
}

func badRequest(c *gin.Context, err error) {
	utils.RespondError(c, http.StatusBadRequest, err)
}
