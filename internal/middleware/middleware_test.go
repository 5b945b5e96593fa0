package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	apperrors "github.com/wfunc/serious-game/internal/errors"
	"github.com/wfunc/serious-game/internal/utils"
)

type jwtValidator struct {
	jwt *utils.JWTManager
}

func (v jwtValidator) ValidateToken(ctx context.Context, token string) (*utils.AdminClaims, error) {
	claims, err := v.jwt.ValidateToken(token)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrTokenInvalid)
	}
	return claims, nil
}

type observer struct {
	routes []string
}

func (o *observer) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	o.routes = append(o.routes, route)
}

// MiddlewareTestSuite 中间件测试套件
type MiddlewareTestSuite struct {
	suite.Suite
	jwt *utils.JWTManager
}

func (suite *MiddlewareTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	suite.jwt = utils.NewJWTManager("mw-secret", time.Hour)
}

func (suite *MiddlewareTestSuite) adminEngine() *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	auth := NewAuthMiddleware(jwtValidator{jwt: suite.jwt})
	r.DELETE("/games/:id", auth.RequireAdmin(), func(c *gin.Context) {
		name, _ := GetUsername(c)
		sid, _ := GetSessionID(c)
		c.JSON(http.StatusOK, gin.H{"user": name, "session": sid, "admin": IsAdmin(c)})
	})
	return r
}

func decodeError(body []byte) *apperrors.ErrorResponse {
	var resp apperrors.ErrorResponse
	_ = json.Unmarshal(body, &resp)
	return &resp
}

func (suite *MiddlewareTestSuite) TestRequireAdmin_NoToken() {
	rec := httptest.NewRecorder()
	suite.adminEngine().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/games/1", nil))
	suite.Equal(http.StatusUnauthorized, rec.Code)

	resp := decodeError(rec.Body.Bytes())
	suite.False(resp.Success)
	suite.Equal(apperrors.ErrAuthentication, resp.Error.Code)
	suite.NotEmpty(resp.RequestID)
}

func (suite *MiddlewareTestSuite) TestRequireAdmin_InvalidToken() {
	req := httptest.NewRequest(http.MethodDelete, "/games/1", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec := httptest.NewRecorder()
	suite.adminEngine().ServeHTTP(rec, req)
	suite.Equal(http.StatusUnauthorized, rec.Code)
}

func (suite *MiddlewareTestSuite) TestRequireAdmin_TokenSources() {
	token, _, err := suite.jwt.GenerateAdminToken("admin", "s-1")
	suite.Require().NoError(err)

	bearer := httptest.NewRequest(http.MethodDelete, "/games/1", nil)
	bearer.Header.Set("Authorization", "Bearer "+token)

	header := httptest.NewRequest(http.MethodDelete, "/games/1", nil)
	header.Header.Set("X-Access-Token", token)

	cookie := httptest.NewRequest(http.MethodDelete, "/games/1", nil)
	cookie.AddCookie(&http.Cookie{Name: "access_token", Value: token})

	for _, req := range []*http.Request{bearer, header, cookie} {
		rec := httptest.NewRecorder()
		suite.adminEngine().ServeHTTP(rec, req)
		suite.Equal(http.StatusOK, rec.Code)

		var body map[string]interface{}
		suite.NoError(json.Unmarshal(rec.Body.Bytes(), &body))
		suite.Equal("admin", body["user"])
		suite.Equal("s-1", body["session"])
		suite.Equal(true, body["admin"])
	}
}

func (suite *MiddlewareTestSuite) TestRateLimit() {
	limiter := NewIPRateLimiter(60, 2)
	rejected := 0

	r := gin.New()
	r.POST("/scores", RateLimit(limiter, func() { rejected++ }), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/scores", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	suite.Equal([]int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)
	suite.Equal(1, rejected)

	// 其他IP不受影响
	req := httptest.NewRequest(http.MethodPost, "/scores", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	suite.Equal(http.StatusCreated, rec.Code)
}

func (suite *MiddlewareTestSuite) TestRateLimiterPrunesIdle() {
	limiter := NewIPRateLimiter(60, 1)
	past := time.Now().Add(-time.Hour)
	limiter.now = func() time.Time { return past }
	for i := 0; i <= cleanupThreshold; i++ {
		limiter.GetLimiter(string(rune('a'+i%26)) + time.Duration(i).String())
	}
	suite.Equal(cleanupThreshold+1, limiter.Size())

	limiter.now = time.Now
	limiter.GetLimiter("fresh")
	suite.Equal(1, limiter.Size())
}

func (suite *MiddlewareTestSuite) TestAccessLogAndRecovery() {
	obs := &observer{}
	r := gin.New()
	r.Use(RequestID(), AccessLog(obs), Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	suite.Equal(http.StatusInternalServerError, rec.Code)
	suite.NotEmpty(rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("X-Request-ID", "fixed")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	suite.Equal(http.StatusOK, rec.Code)
	suite.Equal("fixed", rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	suite.Equal([]string{"/boom", "/ok", "unmatched"}, obs.routes)
}

func TestMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(MiddlewareTestSuite))
}
