package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/orablu/space-adoption/internal/logger"
)

// RequestLogger attaches a request-scoped zap logger to the request context
// and writes one line per request once it completes.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			start := time.Now()
			reqID := req.Header.Get(echo.HeaderXRequestID)
			if reqID == "" {
				reqID = c.Response().Header().Get(echo.HeaderXRequestID)
			}

			l := logger.Default().With(zap.String("request_id", reqID))
			c.SetRequest(req.WithContext(logger.WithContext(req.Context(), l)))

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("ip", c.RealIP()),
				zap.String("user", Subject(c)),
			}
			if c.Response().Status >= http.StatusInternalServerError {
				l.Warn("request failed", fields...)
			} else {
				l.Info("request", fields...)
			}
			return nil
		}
	}
}

// Recover turns a panic in a handler into a 500 JSON response.
func Recover() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.ErrorCtx(c.Request().Context(), fmt.Errorf("panic: %v", r),
						zap.ByteString("stack", debug.Stack()))
					if !c.Response().Committed {
						err = c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
					}
				}
			}()
			return next(c)
		}
	}
}
