package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/campuscarry/campuscarry-api/middleware"
	"github.com/campuscarry/campuscarry-api/models"
	"github.com/campuscarry/campuscarry-api/services"
	"github.com/campuscarry/campuscarry-api/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupMockAuth0Server simulates Auth0's /userinfo endpoint, keyed by access token
func setupMockAuth0Server(t *testing.T, userInfo map[string]*services.Auth0UserInfo) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/userinfo" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		info, ok := userInfo[strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")]
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(info)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCreateUserEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, path("/users"), "carol", CreateUserRequest{
		Name:           "Carol",
		Email:          "carol@campus.test",
		RolePreference: models.RoleDeliverer,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	user := decode[models.User](t, w)
	assert.Equal(t, "carol@campus.test", user.Email)
	assert.Equal(t, models.RoleDeliverer, user.RolePreference)

	w = env.do(t, http.MethodPost, path("/users"), "carol", CreateUserRequest{Name: "Carol", Email: "carol2@campus.test"})
	requireError(t, w, http.StatusConflict, "CONFLICT")

	w = env.do(t, http.MethodPost, path("/users"), "dave", CreateUserRequest{Name: "Dave", Email: "dave@campus.test", RolePreference: "ADMIN"})
	requireError(t, w, http.StatusBadRequest, "INVALID_INPUT")

	w = env.do(t, http.MethodPost, path("/users"), "dave", CreateUserRequest{Name: "Dave"})
	requireError(t, w, http.StatusBadRequest, "INVALID_INPUT")

	w = env.do(t, http.MethodPost, path("/users"), "", CreateUserRequest{Name: "Nobody", Email: "nobody@campus.test"})
	requireError(t, w, http.StatusUnauthorized, "UNAUTHORIZED")
}

func TestCreateUserFillsFromAuth0(t *testing.T) {
	gin.SetMode(gin.TestMode)
	server := setupMockAuth0Server(t, map[string]*services.Auth0UserInfo{
		"token-erin": {Sub: "auth0|erin", Name: "Erin", Email: "Erin@Campus.test"},
	})

	db := testutil.NewTestDB(t)
	h := NewUserController(services.NewUserService(db, zap.NewNop()), services.NewAuth0Service(server.URL))

	router := gin.New()
	router.POST("/users", func(c *gin.Context) {
		c.Set(middleware.ContextUserID, "auth0|erin")
		c.Set(middleware.ContextAccessToken, c.GetHeader("X-Access-Token"))
	}, h.CreateUser)

	send := func(token string, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Access-Token", token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := send("expired-token", `{"campus":"North"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = send("token-erin", `{"campus":"North"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	user := decode[models.User](t, w)
	assert.Equal(t, "Erin", user.Name)
	assert.Equal(t, "erin@campus.test", user.Email)
	require.NotNil(t, user.Campus)
	assert.Equal(t, "North", *user.Campus)
}

func TestProfileEndpoints(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, path("/users/me"), "buyer", nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[models.User](t, w)
	assert.Equal(t, env.buyer.ID, me.ID)
	assert.Equal(t, env.buyer.Email, me.Email)

	w = env.do(t, http.MethodGet, path("/users/me"), "ghost", nil)
	requireError(t, w, http.StatusUnauthorized, "UNAUTHORIZED")

	w = env.do(t, http.MethodPut, path("/users/me"), "buyer", map[string]any{"campus": "North", "role_preference": "BUYER"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[models.User](t, w)
	require.NotNil(t, updated.Campus)
	assert.Equal(t, "North", *updated.Campus)
	assert.Equal(t, models.RoleBuyer, updated.RolePreference)

	w = env.do(t, http.MethodPut, path("/users/me"), "buyer", map[string]any{"role_preference": "ROOT"})
	requireError(t, w, http.StatusBadRequest, "INVALID_INPUT")

	w = env.do(t, http.MethodGet, path("/users/%d", env.buyer.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	public := decode[map[string]any](t, w)
	assert.Equal(t, "buyer", public["name"])
	assert.NotContains(t, public, "email")

	w = env.do(t, http.MethodGet, path("/users/0"), "", nil)
	requireError(t, w, http.StatusBadRequest, "INVALID_INPUT")
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, path("/health"), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode[map[string]any](t, w)["status"])

	w = env.do(t, http.MethodGet, path("/database/status"), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Tables []string `json:"tables"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Subset(t, body.Tables, []string{"users", "orders", "delivery_offers", "matches", "messages", "reviews"})
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(services.CodePreconditionFailed))
	assert.Equal(t, http.StatusConflict, HTTPStatus(services.CodeConflict))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus("SOMETHING_ELSE"))
}
