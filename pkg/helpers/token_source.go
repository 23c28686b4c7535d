package helpers

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// TokenSource pulls a candidate token out of a request; "" means not present.
type TokenSource func(c *gin.Context) string

// FromCookie reads the named cookie.
func FromCookie(name string) TokenSource {
	return func(c *gin.Context) string {
		v, err := c.Cookie(name)
		if err != nil {
			return ""
		}
		return strings.TrimSpace(v)
	}
}

// FromBearer reads "Authorization: Bearer <token>". The scheme is case-insensitive.
func FromBearer() TokenSource {
	return func(c *gin.Context) string {
		h := strings.TrimSpace(c.GetHeader("Authorization"))
		scheme, tok, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return ""
		}
		return strings.TrimSpace(tok)
	}
}

// FromBody reads a field from a JSON or form body. The body is consumed.
func FromBody(field string) TokenSource {
	return func(c *gin.Context) string {
		if c.Request.Body == nil || c.Request.ContentLength == 0 {
			return ""
		}
		var body map[string]any
		if strings.HasPrefix(c.ContentType(), gin.MIMEJSON) {
			if err := c.ShouldBindJSON(&body); err != nil {
				return ""
			}
			s, _ := body[field].(string)
			return strings.TrimSpace(s)
		}
		return strings.TrimSpace(c.PostForm(field))
	}
}

var (
	// AccessTokenSources: cookie first, then bearer header.
	AccessTokenSources = []TokenSource{FromCookie(AccessTokenCookie), FromBearer()}
	// RefreshTokenSources: cookie first, then request body.
	RefreshTokenSources = []TokenSource{FromCookie(RefreshTokenCookie), FromBody(RefreshTokenCookie)}
)

// ExtractToken returns the first non-empty token in precedence order.
func ExtractToken(c *gin.Context, sources []TokenSource) string {
	for _, src := range sources {
		if tok := src(c); tok != "" {
			return tok
		}
	}
	return ""
}
