package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carewire/hospital-api/internal/model"
	"github.com/carewire/hospital-api/internal/repository/memory"
	"github.com/carewire/hospital-api/internal/service/auth"
	jwtauth "github.com/carewire/hospital-api/pkg/auth"
)

func newAuthStack(t *testing.T) (*AuthMiddleware, *auth.Service, *memory.UserRepository) {
	t.Helper()
	jwtSvc, err := jwtauth.NewJWTService("middleware-test-secret", time.Hour)
	require.NoError(t, err)
	userRepo := memory.NewUserRepository()
	authSvc := auth.NewService(userRepo, jwtSvc, time.Hour)
	return NewAuthMiddleware(authSvc), authSvc, userRepo
}

func loginAs(t *testing.T, authSvc *auth.Service, userRepo *memory.UserRepository, role model.Role) string {
	t.Helper()
	ctx := context.Background()
	_, err := authSvc.Signup(ctx, &model.SignupRequest{
		Name:     "Test " + string(role),
		Email:    string(role) + "@example.com",
		Password: "s3cret-pass",
		Role:     string(role),
	})
	require.NoError(t, err)
	token, err := authSvc.Login(ctx, string(role)+"@example.com", "s3cret-pass")
	require.NoError(t, err)
	return token.AccessToken
}

func protectedEngine(mw *AuthMiddleware, roles ...model.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	group := engine.Group("/protected")
	group.Use(mw.Authenticate())
	if len(roles) > 0 {
		group.Use(mw.RequireRoles(roles...))
	}
	group.GET("", func(c *gin.Context) {
		user, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"email": user.Email, "role": user.Role})
	})
	return engine
}

func get(engine *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestAuthenticateMissingHeader(t *testing.T) {
	mw, _, _ := newAuthStack(t)
	engine := protectedEngine(mw)

	w := get(engine, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateMalformedHeader(t *testing.T) {
	mw, _, _ := newAuthStack(t)
	engine := protectedEngine(mw)

	for _, header := range []string{"Bearer", "Basic abc", "Bearer a b"} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}

func TestAuthenticateAttachesUser(t *testing.T) {
	mw, authSvc, userRepo := newAuthStack(t)
	engine := protectedEngine(mw)

	token := loginAs(t, authSvc, userRepo, model.RolePatient)
	w := get(engine, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "patient@example.com")
}

func TestRequireRolesMatrix(t *testing.T) {
	mw, authSvc, userRepo := newAuthStack(t)

	tokens := map[model.Role]string{}
	for _, role := range model.AllRoles() {
		tokens[role] = loginAs(t, authSvc, userRepo, role)
	}

	staffOnly := protectedEngine(mw, model.RoleAdmin, model.RoleDoctor, model.RoleReceptionist)
	patientOnly := protectedEngine(mw, model.RolePatient)

	for _, role := range []model.Role{model.RoleAdmin, model.RoleDoctor, model.RoleReceptionist} {
		assert.Equal(t, http.StatusOK, get(staffOnly, tokens[role]).Code, "staff route, role %s", role)
		assert.Equal(t, http.StatusForbidden, get(patientOnly, tokens[role]).Code, "patient route, role %s", role)
	}
	assert.Equal(t, http.StatusForbidden, get(staffOnly, tokens[model.RolePatient]).Code)
	assert.Equal(t, http.StatusOK, get(patientOnly, tokens[model.RolePatient]).Code)
}

func TestRequireRolesWithoutAuthenticate(t *testing.T) {
	mw, _, _ := newAuthStack(t)

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/protected", mw.RequireRoles(model.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := get(engine, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
