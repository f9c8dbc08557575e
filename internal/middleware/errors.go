package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cityconnect/internal/apperr"
)

var statusByKind = map[error]struct {
	status int
	code   string
}{
	apperr.ErrValidation:         {http.StatusBadRequest, "validation_failed"},
	apperr.ErrConflict:           {http.StatusConflict, "conflict"},
	apperr.ErrNotFound:           {http.StatusNotFound, "not_found"},
	apperr.ErrInvalidCredentials: {http.StatusUnauthorized, "invalid_credentials"},
	apperr.ErrMissingToken:       {http.StatusUnauthorized, "missing_token"},
	apperr.ErrInvalidToken:       {http.StatusUnauthorized, "invalid_token"},
	apperr.ErrForbidden:          {http.StatusForbidden, "forbidden"},
}

// ErrorStatus maps an error to its HTTP status and machine readable code.
// Errors without a kind become 500 internal_error.
func ErrorStatus(err error) (int, string) {
	if entry, ok := statusByKind[apperr.KindOf(err)]; ok {
		return entry.status, entry.code
	}
	return http.StatusInternalServerError, "internal_error"
}

// AbortWithError writes the error body used across the API. The detail of
// unexpected failures stays out of the response.
func AbortWithError(c *gin.Context, err error) {
	status, code := ErrorStatus(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{
		"error":   code,
		"message": apperr.MessageOf(err),
	})
}

