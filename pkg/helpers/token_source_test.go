package helpers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func ctxFor(req *http.Request) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req
	return c
}

func TestExtractToken_AccessPrecedence(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "from-cookie"})
	req.Header.Set("Authorization", "Bearer from-header")
	require.Equal(t, "from-cookie", ExtractToken(ctxFor(req), AccessTokenSources))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer from-header")
	require.Equal(t, "from-header", ExtractToken(ctxFor(req), AccessTokenSources))
}

func TestExtractToken_NoneFound(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic abc")
	require.Equal(t, "", ExtractToken(ctxFor(req), AccessTokenSources))
}

func TestExtractToken_RefreshFromBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"refreshToken":"from-json"}`))
	req.Header.Set("Content-Type", "application/json")
	require.Equal(t, "from-json", ExtractToken(ctxFor(req), RefreshTokenSources))

	form := url.Values{"refreshToken": {"from-form"}}
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	require.Equal(t, "from-form", ExtractToken(ctxFor(req), RefreshTokenSources))
}

func TestExtractToken_RefreshCookieWins(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"refreshToken":"from-json"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "from-cookie"})
	require.Equal(t, "from-cookie", ExtractToken(ctxFor(req), RefreshTokenSources))
}
