package router

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/vidtube-accounts/config"
	"github.com/oksasatya/vidtube-accounts/internal/application"
	"github.com/oksasatya/vidtube-accounts/internal/container"
	"github.com/oksasatya/vidtube-accounts/internal/infrastructure/memory"
	"github.com/oksasatya/vidtube-accounts/pkg/helpers"
)

type stubMedia struct{}

func (stubMedia) Upload(_ context.Context, localPath, folder string) (string, error) {
	return "https://cdn.example/" + folder + "/" + filepath.Base(localPath), nil
}

type env struct {
	engine    *gin.Engine
	uploadDir string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		UploadTempDir:       t.TempDir(),
		CookieSecure:        true,
		DebugMetricsEnabled: true,
	}
	logger := helpers.NewNopLogger()
	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	users := memory.NewUserRepository()
	c := &container.Container{
		Config:  cfg,
		Logger:  logger,
		Users:   users,
		JWT:     jwt,
		Cookies: helpers.NewCookie("", true),
		Service: application.NewService(users, jwt, stubMedia{}, logger),
	}
	return &env{engine: Setup(c), uploadDir: cfg.UploadTempDir}
}

type apiResponse struct {
	StatusCode int             `json:"statusCode"`
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

func (e *env) do(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	var body apiResponse
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func jsonReq(method, path string, body any) *http.Request {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartReq(t *testing.T, method, path string, fields map[string]string, files map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for field, name := range files {
		fw, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = fw.Write([]byte("\x89PNG\r\n\x1a\nfake"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func cookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func withBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

var aliceFields = map[string]string{
	"fullName": "Alice A",
	"userName": "Alice",
	"email":    "alice@x.io",
	"password": "secret1",
}

func TestUserRoutes_SessionLifecycle(t *testing.T) {
	e := newEnv(t)

	// register
	w, body := e.do(t, multipartReq(t, http.MethodPost, "/api/v1/users/register", aliceFields,
		map[string]string{"avatar": "me.png", "coverImage": "cover.png"}))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.True(t, body.Success)
	require.NotContains(t, string(body.Data), "password")
	require.NotContains(t, string(body.Data), "refreshToken")
	var user map[string]any
	require.NoError(t, json.Unmarshal(body.Data, &user))
	require.Equal(t, "alice", user["userName"])
	require.Contains(t, user["avatar"], "https://cdn.example/avatars/")
	require.Contains(t, user["coverImage"], "https://cdn.example/covers/")

	staged, err := os.ReadDir(e.uploadDir)
	require.NoError(t, err)
	require.Empty(t, staged)

	// duplicate
	w, body = e.do(t, multipartReq(t, http.MethodPost, "/api/v1/users/register", aliceFields,
		map[string]string{"avatar": "me.png"}))
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "User with email or username already exists", body.Message)

	// login
	w, body = e.do(t, jsonReq(http.MethodPost, "/api/v1/users/login", map[string]string{"email": "alice@x.io", "password": "secret1"}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	access, refresh := cookie(w, helpers.AccessTokenCookie), cookie(w, helpers.RefreshTokenCookie)
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	require.True(t, access.HttpOnly)
	require.True(t, access.Secure)
	require.Equal(t, http.SameSiteLaxMode, access.SameSite)
	require.Greater(t, refresh.MaxAge, access.MaxAge)

	var login struct {
		User         map[string]any `json:"user"`
		AccessToken  string         `json:"accessToken"`
		RefreshToken string         `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &login))
	require.Equal(t, access.Value, login.AccessToken)
	require.Equal(t, refresh.Value, login.RefreshToken)
	require.NotContains(t, login.User, "password")

	// current user via cookie, then bearer
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil)
	req.AddCookie(&http.Cookie{Name: helpers.AccessTokenCookie, Value: login.AccessToken})
	w, _ = e.do(t, req)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = e.do(t, withBearer(httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil), login.AccessToken))
	require.Equal(t, http.StatusOK, w.Code)

	w, body = e.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Unauthorized request", body.Message)

	// refresh via cookie rotates the pair
	req = httptest.NewRequest(http.MethodPost, "/api/v1/users/refreshToken", nil)
	req.AddCookie(&http.Cookie{Name: helpers.RefreshTokenCookie, Value: login.RefreshToken})
	w, body = e.do(t, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var pair struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &pair))
	require.NotEqual(t, login.RefreshToken, pair.RefreshToken)
	require.Equal(t, pair.RefreshToken, cookie(w, helpers.RefreshTokenCookie).Value)

	// the old refresh token is now spent
	w, body = e.do(t, jsonReq(http.MethodPost, "/api/v1/users/refreshToken", map[string]string{"refreshToken": login.RefreshToken}))
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Refresh token is expired or used", body.Message)

	// body fallback with the current token
	w, body = e.do(t, jsonReq(http.MethodPost, "/api/v1/users/refreshToken", map[string]string{"refreshToken": pair.RefreshToken}))
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(body.Data, &pair))

	// logout clears cookies and the stored token
	w, _ = e.do(t, withBearer(httptest.NewRequest(http.MethodPost, "/api/v1/users/logout", nil), pair.AccessToken))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "", cookie(w, helpers.AccessTokenCookie).Value)
	require.Less(t, cookie(w, helpers.RefreshTokenCookie).MaxAge, 0)

	w, _ = e.do(t, jsonReq(http.MethodPost, "/api/v1/users/refreshToken", map[string]string{"refreshToken": pair.RefreshToken}))
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// access tokens stay valid until expiry
	w, _ = e.do(t, withBearer(httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil), pair.AccessToken))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestUserRoutes_RegisterValidation(t *testing.T) {
	e := newEnv(t)

	w, body := e.do(t, multipartReq(t, http.MethodPost, "/api/v1/users/register", aliceFields, nil))
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Avatar file is required", body.Message)

	fields := map[string]string{"fullName": "", "userName": "bob", "email": "bob@x.io", "password": "pw"}
	w, body = e.do(t, multipartReq(t, http.MethodPost, "/api/v1/users/register", fields, map[string]string{"avatar": "a.png"}))
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "All fields are required", body.Message)

	staged, err := os.ReadDir(e.uploadDir)
	require.NoError(t, err)
	require.Empty(t, staged)
}

func TestUserRoutes_ProfileUpdates(t *testing.T) {
	e := newEnv(t)
	w, _ := e.do(t, multipartReq(t, http.MethodPost, "/api/v1/users/register", aliceFields, map[string]string{"avatar": "me.png"}))
	require.Equal(t, http.StatusCreated, w.Code)

	_, body := e.do(t, jsonReq(http.MethodPost, "/api/v1/users/login", map[string]string{"userName": "alice", "password": "secret1"}))
	var login struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &login))
	tok := login.AccessToken

	w, body = e.do(t, withBearer(jsonReq(http.MethodPatch, "/api/v1/users/update-account",
		map[string]string{"fullName": "Alice B", "email": "alice.b@x.io"}), tok))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Contains(t, string(body.Data), `"email":"alice.b@x.io"`)

	w, body = e.do(t, withBearer(multipartReq(t, http.MethodPatch, "/api/v1/users/avatar", nil,
		map[string]string{"avatar": "new.png"}), tok))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Contains(t, string(body.Data), "https://cdn.example/avatars/")

	w, body = e.do(t, withBearer(httptest.NewRequest(http.MethodPatch, "/api/v1/users/cover-image", nil), tok))
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Cover image file is missing", body.Message)

	w, body = e.do(t, withBearer(jsonReq(http.MethodPost, "/api/v1/users/change-password",
		map[string]string{"oldPassword": "nope", "newPassword": "secret2"}), tok))
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Invalid old password", body.Message)

	w, _ = e.do(t, withBearer(jsonReq(http.MethodPost, "/api/v1/users/change-password",
		map[string]string{"oldPassword": "secret1", "newPassword": "secret2"}), tok))
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = e.do(t, jsonReq(http.MethodPost, "/api/v1/users/login", map[string]string{"userName": "alice", "password": "secret2"}))
	require.Equal(t, http.StatusOK, w.Code)

	w, body = e.do(t, withBearer(httptest.NewRequest(http.MethodGet, "/api/v1/users/search?q=ali", nil), tok))
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `[]`, string(body.Data))
}

func TestHealthAndDebug(t *testing.T) {
	e := newEnv(t)

	w, _ := e.do(t, httptest.NewRequest(http.MethodGet, "/api/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/debug/vars", nil)
	req.RemoteAddr = "127.0.0.1:5000"
	w, _ = e.do(t, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"accounts"`)

	req = httptest.NewRequest(http.MethodGet, "/api/debug/vars", nil)
	req.RemoteAddr = "203.0.113.5:5000"
	w, _ = e.do(t, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}
