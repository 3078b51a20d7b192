package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/khoahotran/skillpath/pkg/apperror"
	"github.com/khoahotran/skillpath/pkg/auth"
	"github.com/khoahotran/skillpath/pkg/logger"
	"go.uber.org/zap"
)

const (
	GinContextKeySessionID = "sessionID"
)

// SessionMiddleware resolves the Bearer token to a wizard session ID.
func SessionMiddleware(jwtSvc *auth.JWTService, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Error(apperror.NewUnauthorized("Authorization header is required", nil))
			c.Abort()
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok {
			c.Error(apperror.NewUnauthorized("invalid token format", nil))
			c.Abort()
			return
		}

		claims, err := jwtSvc.ValidateToken(tokenString)
		if err != nil {
			log.Debug("Rejected session token", zap.Error(err))
			c.Error(apperror.NewUnauthorized("invalid or expired token", err))
			c.Abort()
			return
		}

		c.Set(GinContextKeySessionID, claims.SessionID)
		c.Next()
	}
}

func GetSessionIDFromGinContext(c *gin.Context) (string, bool) {
	id, ok := c.Get(GinContextKeySessionID)
	if !ok {
		return "", false
	}
	sid, ok := id.(string)
	return sid, ok && sid != ""
}

// ErrorMiddleware renders the last error a handler attached to the context.
// Not-found responses carry a start_url so the client can begin a new
// session.
func ErrorMiddleware(log logger.Logger, publicOrigin string) gin.HandlerFunc {
	startURL := strings.TrimRight(publicOrigin, "/") + "/"
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			appErr = apperror.NewInternal("unexpected error", err)
		}
		status := apperror.ToHTTPStatus(appErr)

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
		}
		if status >= http.StatusInternalServerError {
			log.Error(appErr.Message, appErr.Cause(), fields...)
		} else {
			log.Debug(appErr.Message, append(fields, zap.String("details", appErr.Details))...)
		}

		body := appErr.ToJSON()
		if status == http.StatusNotFound {
			body["start_url"] = startURL
		}
		c.AbortWithStatusJSON(status, body)
	}
}

// NotFoundHandler answers unknown routes in the same shape as ErrorMiddleware.
func NotFoundHandler(publicOrigin string) gin.HandlerFunc {
	startURL := strings.TrimRight(publicOrigin, "/") + "/"
	return func(c *gin.Context) {
		body := apperror.NewNotFound("route", c.Request.URL.Path).ToJSON()
		body["start_url"] = startURL
		c.JSON(http.StatusNotFound, body)
	}
}
