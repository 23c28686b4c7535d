package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/vidtube-accounts/internal/domain/entity"
	"github.com/oksasatya/vidtube-accounts/internal/domain/repository"
	"github.com/oksasatya/vidtube-accounts/pkg/apperror"
	"github.com/oksasatya/vidtube-accounts/pkg/helpers"
	"github.com/oksasatya/vidtube-accounts/pkg/response"
)

const (
	CtxUserKey   = "user"
	CtxUserIDKey = "userID"
)

// UserLookup resolves the subject of an access token.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
}

// Auth admits requests carrying a valid access token whose user still exists.
// The token is read from the accessToken cookie, then the bearer header.
// On success the sanitized user and its id are set in the Gin context.
// A store failure other than not-found is pushed to ErrorHandler as a 500.
func Auth(jwt *helpers.JWTManager, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := helpers.ExtractToken(c, helpers.AccessTokenSources)
		if token == "" {
			response.Abort(c, http.StatusUnauthorized, "Unauthorized request", nil)
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "Invalid access token", nil)
			return
		}
		u, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			_ = c.Error(apperror.Internal("Something went wrong", err))
			c.Abort()
			return
		}
		if u == nil {
			response.Abort(c, http.StatusUnauthorized, "Invalid access token", nil)
			return
		}

		c.Set(CtxUserKey, u.Sanitized())
		c.Set(CtxUserIDKey, u.ID)
		c.Next()
	}
}

// CurrentUser returns the user attached by Auth.
func CurrentUser(c *gin.Context) (*entity.User, bool) {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*entity.User)
	return u, ok && u != nil
}
