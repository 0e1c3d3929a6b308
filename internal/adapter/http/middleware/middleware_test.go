package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gameserver-market/internal/core/ports"
	"gameserver-market/internal/core/ports/mocks"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(r *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPlayerIdentity_ValidHeader(t *testing.T) {
	r := gin.New()
	r.Use(PlayerIdentity())
	r.GET("/x", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"account_id": c.GetInt64(CtxAccountID)})
	})

	w := performRequest(r, http.MethodGet, "/x", map[string]string{HeaderUserID: "7"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"account_id":7`)
}

func TestPlayerIdentity_MissingHeader(t *testing.T) {
	r := gin.New()
	r.Use(PlayerIdentity())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := performRequest(r, http.MethodGet, "/x", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPlayerIdentity_GarbageHeader(t *testing.T) {
	r := gin.New()
	r.Use(PlayerIdentity())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, v := range []string{"abc", "-1", "0", "7; drop"} {
		w := performRequest(r, http.MethodGet, "/x", map[string]string{HeaderUserID: v})
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header value %q", v)
	}
}

func TestAdminAuth_ValidToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tokenSvc := mocks.NewMockTokenService(ctrl)
	tokenSvc.EXPECT().Validate("good-token").Return(&ports.TokenClaims{AdminID: 1, Username: "root_admin"}, nil)

	r := gin.New()
	r.Use(AdminAuth(tokenSvc, zerolog.Nop()))
	r.GET("/x", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"admin_id": c.GetInt64(CtxAdminID),
			"username": c.GetString(CtxAdminName),
		})
	})

	w := performRequest(r, http.MethodGet, "/x", map[string]string{"Authorization": "Bearer good-token"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"admin_id":1`)
	assert.Contains(t, w.Body.String(), "root_admin")
}

func TestAdminAuth_MissingOrMalformedHeader(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tokenSvc := mocks.NewMockTokenService(ctrl)

	r := gin.New()
	r.Use(AdminAuth(tokenSvc, zerolog.Nop()))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, h := range []map[string]string{
		nil,
		{"Authorization": "token-without-scheme"},
		{"Authorization": "Basic abc"},
	} {
		w := performRequest(r, http.MethodGet, "/x", h)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
}

func TestAdminAuth_InvalidToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tokenSvc := mocks.NewMockTokenService(ctrl)
	tokenSvc.EXPECT().Validate("expired").Return(nil, assert.AnError)

	r := gin.New()
	r.Use(AdminAuth(tokenSvc, zerolog.Nop()))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := performRequest(r, http.MethodGet, "/x", map[string]string{"Authorization": "Bearer expired"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestID_GeneratedAndEchoed(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := performRequest(r, http.MethodGet, "/x", nil)
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))

	w = performRequest(r, http.MethodGet, "/x", map[string]string{HeaderRequestID: "req-123"})
	assert.Equal(t, "req-123", w.Header().Get(HeaderRequestID))
}

func TestRecovery_ConvertsPanic(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(zerolog.Nop()))
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := performRequest(r, http.MethodGet, "/boom", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "SYS_001")
}

func TestMaxBodySize_RejectsOversizedBody(t *testing.T) {
	r := gin.New()
	r.Use(MaxBodySize(16))
	r.POST("/x", func(c *gin.Context) {
		var body struct{}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	big := strings.NewReader(`{"padding":"` + strings.Repeat("x", 64) + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/x", big)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRequestLogger_PassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(zerolog.Nop()))
	r.GET("/x", func(c *gin.Context) {
		time.Sleep(time.Millisecond)
		c.Status(http.StatusOK)
	})

	w := performRequest(r, http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
