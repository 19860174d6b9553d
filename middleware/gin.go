package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/shield/errors"
)

// Gin returns a gin middleware guarding the route with a named circuit
// breaker and, optionally, a bulkhead.
func Gin(name string, opts ...Option) gin.HandlerFunc {
	o := buildOptions(opts)
	breaker := o.registry.Get(name)

	return func(c *gin.Context) {
		if !breaker.Admit() {
			abortUnavailable(c, apperrors.OpenCircuit(name))
			return
		}

		serve := func() error {
			c.Next()
			if c.Writer.Status() >= o.failureStatus {
				breaker.ReportFailure()
			} else {
				breaker.ReportSuccess()
			}
			return nil
		}

		if o.bulkhead != nil {
			if err := o.bulkhead.Do(c.Request.Context(), serve); err != nil {
				abortUnavailable(c, err)
			}
			return
		}
		_ = serve()
	}
}

func abortUnavailable(c *gin.Context, err error) {
	status := http.StatusServiceUnavailable
	if appErr, ok := err.(*apperrors.AppError); ok && appErr.HTTPStatus != 0 {
		status = appErr.HTTPStatus
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
