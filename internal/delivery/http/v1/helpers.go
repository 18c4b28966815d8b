package v1

import (
	"net/http"
	"strconv"
	"strings"

	"go-recruiter-backend/pkg/apperror"
	"go-recruiter-backend/pkg/validation"

	"github.com/gin-gonic/gin"
)

// bindError turns a binding failure into a 400 listing every invalid field.
func bindError(err error) *apperror.AppError {
	return apperror.New(http.StatusBadRequest, strings.Join(validation.FormatValidationErrors(err), "; "), err)
}

// idParam parses a positive integer path parameter.
func idParam(c *gin.Context, name, label string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		_ = c.Error(apperror.BadRequest("Invalid " + label + " ID"))
		return 0, false
	}
	return id, true
}

// orNext substitutes a pass-through for an unset optional middleware.
func orNext(h gin.HandlerFunc) gin.HandlerFunc {
	if h != nil {
		return h
	}
	return func(c *gin.Context) { c.Next() }
}
