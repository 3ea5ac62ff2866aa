package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/campuscarry/campuscarry-api/models"
	"github.com/campuscarry/campuscarry-api/services"
	"github.com/campuscarry/campuscarry-api/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	db       *gorm.DB
	router   *gin.Engine
	notifier *testutil.RecordingNotifier

	buyer     models.User
	deliverer models.User
	stranger  models.User
	order     models.Order
	offer     models.DeliveryOffer
}

func newTestEnv(t *testing.T, auth0 *services.Auth0Service) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t)
	notifier := &testutil.RecordingNotifier{}
	logger := zap.NewNop()

	router := gin.New()
	err := RegisterRoutes(router, testutil.MockAuth(), Dependencies{
		DB:       db,
		Users:    services.NewUserService(db, logger),
		Orders:   services.NewOrderService(db, logger),
		Offers:   services.NewOfferService(db, logger),
		Matches:  services.NewMatchService(db, notifier, logger),
		Messages: services.NewMessageService(db, notifier, logger),
		Reviews:  services.NewReviewService(db, logger),
		Auth0:    auth0,
	})
	require.NoError(t, err)

	env := &testEnv{
		db:        db,
		router:    router,
		notifier:  notifier,
		buyer:     testutil.CreateUser(t, db, "buyer"),
		deliverer: testutil.CreateUser(t, db, "deliverer"),
		stranger:  testutil.CreateUser(t, db, "stranger"),
	}
	env.order = testutil.CreateOrder(t, db, env.buyer)
	env.offer = testutil.CreateOffer(t, db, env.deliverer)
	return env
}

// do sends a request as the named test user; an empty name sends no credentials
func (e *testEnv) do(t *testing.T, method, path, as string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if as != "" {
		req.Header.Set("X-Test-Subject", testutil.SubjectFor(as))
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func requireError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) errorBody {
	t.Helper()
	require.Equal(t, status, w.Code, "body: %s", w.Body.String())
	body := decode[errorBody](t, w)
	require.Equal(t, code, body.Code)
	require.NotEmpty(t, body.Error)
	return body
}

func path(format string, args ...any) string {
	return "/api/v1" + fmt.Sprintf(format, args...)
}
