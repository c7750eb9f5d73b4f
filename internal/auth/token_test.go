package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestVerifier_IssueAndVerify(t *testing.T) {
	verifier := NewVerifier("test-secret")

	token, err := verifier.Issue("patient@x.com", time.Hour)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := verifier.Verify(token)
	assert.NoError(t, err)
	assert.Equal(t, "patient@x.com", claims.Email)
}

func TestVerifier_RejectsExpiredToken(t *testing.T) {
	verifier := NewVerifier("test-secret")

	token, err := verifier.Issue("patient@x.com", -time.Minute)
	assert.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.Error(t, err)
}

func TestVerifier_RejectsForeignSecret(t *testing.T) {
	token, err := NewVerifier("one-secret").Issue("patient@x.com", time.Hour)
	assert.NoError(t, err)

	_, err = NewVerifier("other-secret").Verify(token)
	assert.Error(t, err)
}

func TestVerifier_RejectsGarbage(t *testing.T) {
	_, err := NewVerifier("test-secret").Verify("not-a-token")
	assert.Error(t, err)
}

func authedRouter(verifier *Verifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/whoami", Middleware(verifier), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"email": CallerEmail(c)})
	})
	return router
}

func TestMiddleware_ExposesCallerEmail(t *testing.T) {
	verifier := NewVerifier("test-secret")
	router := authedRouter(verifier)

	token, err := verifier.Issue("patient@x.com", time.Hour)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "patient@x.com")
}

func TestMiddleware_MissingHeader(t *testing.T) {
	router := authedRouter(NewVerifier("test-secret"))

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_InvalidToken(t *testing.T) {
	router := authedRouter(NewVerifier("test-secret"))

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
