package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/vidtube-accounts/pkg/apperror"
	"github.com/oksasatya/vidtube-accounts/pkg/helpers"
)

func TestErrorHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), ErrorHandler(helpers.NewNopLogger()))
	r.GET("/conflict", func(c *gin.Context) {
		_ = c.Error(apperror.Conflict("User with email or username already exists"))
	})
	r.GET("/details", func(c *gin.Context) {
		_ = c.Error(apperror.Validation("Invalid payload").WithDetails(map[string]string{"email": "is required"}))
	})
	r.GET("/plain", func(c *gin.Context) { _ = c.Error(errors.New("db exploded")) })
	r.GET("/upstream", func(c *gin.Context) {
		_ = c.Error(apperror.Upstream("Failed to upload avatar", errors.New("timeout")))
	})

	cases := []struct {
		path    string
		status  int
		message string
	}{
		{"/conflict", http.StatusConflict, "User with email or username already exists"},
		{"/details", http.StatusBadRequest, "Invalid payload"},
		{"/plain", http.StatusInternalServerError, "Something went wrong"},
		{"/upstream", http.StatusBadRequest, "Failed to upload avatar"},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))
			require.Equal(t, tc.status, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			require.Equal(t, false, body["success"])
			require.Equal(t, tc.message, body["message"])
			require.NotEmpty(t, body["requestId"])
			require.NotContains(t, w.Body.String(), "db exploded")
			if tc.path == "/details" {
				require.Equal(t, map[string]any{"email": "is required"}, body["errors"])
			}
		})
	}
}
