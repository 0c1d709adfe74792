package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/renovation-tracker-api/internal/auth"
	"github.com/yukikurage/renovation-tracker-api/internal/constants"
)

type stubRevocations struct {
	revoked map[string]bool
	err     error
}

func (s stubRevocations) Revoke(context.Context, string, time.Duration) error { return nil }

func (s stubRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	return s.revoked[tokenID], s.err
}

func newAuthRouter(tokens *auth.TokenManager, revocations auth.RevocationStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/private", RequireAuth(tokens, revocations), func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		principal, _ := GetPrincipal(c)
		c.JSON(http.StatusOK, gin.H{"userId": userID, "jti": principal.TokenID})
	})
	return r
}

func doRequest(r *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	tokens := auth.NewTokenManager("middleware-secret", time.Hour)
	token, claims, err := tokens.Issue(7)
	require.NoError(t, err)

	expired := auth.NewTokenManager("middleware-secret", time.Hour, auth.WithClock(func() time.Time {
		return time.Now().Add(-2 * time.Hour)
	}))
	expiredToken, _, err := expired.Issue(7)
	require.NoError(t, err)

	foreignToken, _, err := auth.NewTokenManager("someone-else", time.Hour).Issue(7)
	require.NoError(t, err)

	r := newAuthRouter(tokens, nil)

	tests := []struct {
		name          string
		authorization string
		status        int
		code          string
	}{
		{"valid", "Bearer " + token, http.StatusOK, ""},
		{"lowercase scheme", "bearer " + token, http.StatusOK, ""},
		{"missing header", "", http.StatusUnauthorized, "MISSING_TOKEN"},
		{"wrong scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, "MISSING_TOKEN"},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, "MISSING_TOKEN"},
		{"garbage", "Bearer not-a-jwt", http.StatusForbidden, "INVALID_TOKEN"},
		{"expired", "Bearer " + expiredToken, http.StatusForbidden, "INVALID_TOKEN"},
		{"foreign signature", "Bearer " + foreignToken, http.StatusForbidden, "INVALID_TOKEN"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(r, tc.authorization)
			assert.Equal(t, tc.status, w.Code)
			if tc.code != "" {
				assert.Contains(t, w.Body.String(), tc.code)
			} else {
				assert.Contains(t, w.Body.String(), claims.ID)
			}
		})
	}
}

func TestRequireAuth_Revocation(t *testing.T) {
	tokens := auth.NewTokenManager("middleware-secret", time.Hour)
	token, claims, err := tokens.Issue(7)
	require.NoError(t, err)

	r := newAuthRouter(tokens, stubRevocations{revoked: map[string]bool{claims.ID: true}})
	assert.Equal(t, http.StatusForbidden, doRequest(r, "Bearer "+token).Code)

	r = newAuthRouter(tokens, stubRevocations{err: errors.New("redis down")})
	assert.Equal(t, http.StatusServiceUnavailable, doRequest(r, "Bearer "+token).Code)

	r = newAuthRouter(tokens, stubRevocations{revoked: map[string]bool{}})
	assert.Equal(t, http.StatusOK, doRequest(r, "Bearer "+token).Code)
}

func TestGetUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetUserID(c)
	assert.False(t, ok)

	c.Set(constants.ContextKeyUserID, -1)
	_, ok = GetUserID(c)
	assert.False(t, ok)

	c.Set(constants.ContextKeyUserID, uint64(42))
	userID, ok := GetUserID(c)
	assert.True(t, ok)
	assert.Equal(t, uint64(42), userID)
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Logger())
	r.GET("/ping", func(c *gin.Context) {
		id, _ := c.Get(constants.ContextKeyRequestID)
		c.String(http.StatusOK, id.(string))
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(constants.HeaderRequestID, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Body.String())
	assert.Equal(t, "req-123", w.Header().Get(constants.HeaderRequestID))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, w.Header().Get(constants.HeaderRequestID))
	assert.Equal(t, w.Body.String(), w.Header().Get(constants.HeaderRequestID))
}

func TestCORS_ExposesTotalCount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"http://app.example"}))
	r.GET("/items", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	req.Header.Set("Origin", "http://app.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "http://app.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, strings.ToLower(w.Header().Get("Access-Control-Expose-Headers")), strings.ToLower(constants.HeaderTotalCount))
}
