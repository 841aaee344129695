package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kofiadjei/robolab-api/internal/model"
	"github.com/kofiadjei/robolab-api/internal/utils"
)

const testSecret = "unit-test-secret"

func doRequest(t *testing.T, mw echo.MiddlewareFunc, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := mw(func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	require.NoError(t, h(c))
	return rec, c
}

func TestJWTAuthValidToken(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, 7, "FACULTY", 15)
	require.NoError(t, err)

	rec, c := doRequest(t, JWTAuth(testSecret), "Bearer "+at.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(7), c.Get(CtxUserID))
	assert.Equal(t, model.RoleFaculty, c.Get(CtxRole))
}

func TestJWTAuthRejections(t *testing.T) {
	rec, _ := doRequest(t, JWTAuth(testSecret), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = doRequest(t, JWTAuth(testSecret), "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Token signed with a different secret.
	at, err := utils.NewAccessToken("other-secret", 7, "STUDENT", 15)
	require.NoError(t, err)
	rec, _ = doRequest(t, JWTAuth(testSecret), "Bearer "+at.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Unknown role claim.
	at, err = utils.NewAccessToken(testSecret, 7, "WIZARD", 15)
	require.NoError(t, err)
	rec, _ = doRequest(t, JWTAuth(testSecret), "Bearer "+at.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	run := func(role interface{}) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != nil {
			c.Set(CtxRole, role)
		}
		h := RequireRole(model.RoleAdmin)(func(c echo.Context) error {
			return c.String(http.StatusOK, "ok")
		})
		require.NoError(t, h(c))
		return rec
	}

	assert.Equal(t, http.StatusOK, run(model.RoleAdmin).Code)
	assert.Equal(t, http.StatusForbidden, run(model.RoleStudent).Code)
	assert.Equal(t, http.StatusForbidden, run(nil).Code)
}

func TestRequireStaff(t *testing.T) {
	e := echo.New()
	run := func(role model.Role) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(CtxRole, role)
		h := RequireStaff()(func(c echo.Context) error {
			return c.String(http.StatusOK, "ok")
		})
		require.NoError(t, h(c))
		return rec
	}

	assert.Equal(t, http.StatusOK, run(model.RoleAdmin).Code)
	assert.Equal(t, http.StatusOK, run(model.RoleFaculty).Code)
	assert.Equal(t, http.StatusForbidden, run(model.RoleTeacher).Code)
	assert.Equal(t, http.StatusForbidden, run(model.RoleEmployee).Code)
}
