package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"fruitpack/internal/config"
	"fruitpack/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func testConfig() config.Config {
	return config.Config{JWTSecret: testSecret}
}

func signToken(t *testing.T, method jwt.SigningMethod, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(method, claims)
	signed, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims(userID int64, role model.Role) jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"sub":  strconv.FormatInt(userID, 10),
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  now.Add(15 * time.Minute).Unix(),
	}
}

// ミドルウェアを通してhandlerまで届いたかどうかを見る
func runAuthJWT(t *testing.T, authorization string) (*httptest.ResponseRecorder, echo.Context, bool) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	reached := false
	h := AuthJWT(testConfig())(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec, c, reached
}

func TestAuthJWT_NoHeader(t *testing.T) {
	rec, _, reached := runAuthJWT(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
}

func TestAuthJWT_BadScheme(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, testSecret, validClaims(42, model.RoleCustomer))
	rec, _, reached := runAuthJWT(t, "Basic "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
}

func TestAuthJWT_BadSignature(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, "wrong-secret", validClaims(42, model.RoleCustomer))
	rec, _, reached := runAuthJWT(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
}

func TestAuthJWT_WrongAlg(t *testing.T) {
	// HS256以外は署名鍵が合っていても拒否する
	token := signToken(t, jwt.SigningMethodHS512, testSecret, validClaims(42, model.RoleCustomer))
	rec, _, reached := runAuthJWT(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
}

func TestAuthJWT_Expired(t *testing.T) {
	claims := validClaims(42, model.RoleCustomer)
	claims["exp"] = time.Now().Add(-time.Minute).Unix()
	token := signToken(t, jwt.SigningMethodHS256, testSecret, claims)

	rec, _, reached := runAuthJWT(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
}

func TestAuthJWT_Success_SetsContext(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, testSecret, validClaims(42, model.RoleDriver))

	rec, c, reached := runAuthJWT(t, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, reached)

	assert.Equal(t, int64(42), c.Get(CtxUserIDKey))
	assert.Equal(t, string(model.RoleDriver), c.Get(CtxUserRoleKey))
}

func TestRequireRole(t *testing.T) {
	e := echo.New()

	newCtx := func(role string) (echo.Context, *httptest.ResponseRecorder) {
		req := httptest.NewRequest(http.MethodGet, "/claims/driver/claims", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != "" {
			c.Set(CtxUserRoleKey, role)
		}
		return c, rec
	}

	h := RequireRole(model.RoleDriver)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	// ドライバーは通る
	c, rec := newCtx(string(model.RoleDriver))
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	// 顧客は403
	c, rec = newCtx(string(model.RoleCustomer))
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// ロール未設定も403
	c, rec = newCtx("")
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
