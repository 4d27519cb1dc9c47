package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/civic-triage-api/internal/models"
	appErrors "github.com/noah-isme/civic-triage-api/pkg/errors"
)

type stubValidator struct {
	claims map[string]*models.JWTClaims
}

func (s stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := s.claims[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

type observed struct {
	method, path string
	status       int
}

type stubObserver struct {
	calls []observed
}

func (s *stubObserver) ObserveHTTPRequest(method, path string, status int, _ time.Duration) {
	s.calls = append(s.calls, observed{method: method, path: path, status: status})
}

func newTestRouter() (*gin.Engine, stubValidator) {
	gin.SetMode(gin.TestMode)
	validator := stubValidator{claims: map[string]*models.JWTClaims{
		"citizen":  {UserID: "u-1", Role: models.RoleCitizen},
		"official": {UserID: "o-1", Role: models.RoleOfficial},
	}}
	return gin.New(), validator
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func TestJWTMiddleware(t *testing.T) {
	router, validator := newTestRouter()
	router.GET("/me", JWT(validator), func(c *gin.Context) {
		value, _ := c.Get(ContextUserKey)
		c.String(http.StatusOK, value.(*models.JWTClaims).UserID)
	})

	cases := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{name: "valid", header: "Bearer citizen", status: http.StatusOK, body: "u-1"},
		{name: "lowercase scheme", header: "bearer official", status: http.StatusOK, body: "o-1"},
		{name: "missing", header: "", status: http.StatusUnauthorized},
		{name: "basic auth", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "unknown token", header: "Bearer nope", status: http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			if tc.body != "" {
				assert.Equal(t, tc.body, rec.Body.String())
			} else {
				assert.Equal(t, appErrors.ErrUnauthorized.Code, errorCode(t, rec))
			}
		})
	}
}

func TestOptionalJWTMiddleware(t *testing.T) {
	router, validator := newTestRouter()
	router.GET("/ranked", OptionalJWT(validator), func(c *gin.Context) {
		_, authenticated := c.Get(ContextUserKey)
		c.JSON(http.StatusOK, gin.H{"authenticated": authenticated})
	})

	for header, want := range map[string]string{
		"":               `{"authenticated":false}`,
		"Bearer nope":    `{"authenticated":false}`,
		"Bearer citizen": `{"authenticated":true}`,
	} {
		req := httptest.NewRequest(http.MethodGet, "/ranked", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, want, rec.Body.String())
	}
}

func TestRequireRoles(t *testing.T) {
	router, validator := newTestRouter()
	router.PATCH("/status", JWT(validator), RequireRoles(models.RoleOfficial, models.RoleStaff, models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPatch, "/status", nil)
	req.Header.Set("Authorization", "Bearer official")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodPatch, "/status", nil)
	req.Header.Set("Authorization", "Bearer citizen")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, appErrors.ErrForbidden.Code, errorCode(t, rec))
}

func TestRBACWithoutClaims(t *testing.T) {
	router, _ := newTestRouter()
	router.GET("/admin", RBAC(string(models.RoleAdmin)), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMetricsMiddleware(t *testing.T) {
	router, _ := newTestRouter()
	observer := &stubObserver{}
	router.Use(Metrics(observer))
	router.GET("/complaints/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/complaints/abc", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	require.Len(t, observer.calls, 2)
	assert.Equal(t, observed{method: http.MethodGet, path: "/complaints/:id", status: http.StatusOK}, observer.calls[0])
	assert.Equal(t, observed{method: http.MethodGet, path: "unmatched", status: http.StatusNotFound}, observer.calls[1])
}

func TestResponseMeta(t *testing.T) {
	router, _ := newTestRouter()
	router.Use(WithResponseMeta())
	router.GET("/dashboard", func(c *gin.Context) {
		SetCacheHit(c, true)
		c.JSON(http.StatusOK, ExtractMeta(c))
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.JSONEq(t, `{"cache_hit":true}`, rec.Body.String())
}
