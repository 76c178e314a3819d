package adminapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParseTokenRoundTrip(t *testing.T) {
	tok, err := issueToken("secret", "root")
	require.NoError(t, err)

	sub, err := parseToken("secret", tok)
	require.NoError(t, err)
	assert.Equal(t, "root", sub)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	tok, err := issueToken("secret", "root")
	require.NoError(t, err)

	_, err = parseToken("other-secret", tok)
	assert.ErrorIs(t, err, errInvalidToken)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := parseToken("secret", "not-a-jwt")
	assert.ErrorIs(t, err, errInvalidToken)
}

func TestRequireTokenAcceptsQueryParam(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", requireToken("secret"), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("admin_subject"))
	})

	tok, err := issueToken("secret", "root")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/x?token="+tok, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "root", rec.Body.String())
}

func TestRequireTokenAcceptsBearerHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", requireToken("secret"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	tok, err := issueToken("secret", "root")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireTokenRejectsMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", requireToken("secret"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
